// Package scoring rates how closely a stroke approximates a circle.
//
// The scorer is a pure function of the stroke: no I/O, no randomness and no
// context, so it runs to completion inside a single input-handling turn.
package scoring

import (
	"math"

	"github.com/okian/perfectcircle/internal/domain/model"
)

// Default scoring configuration constants.
const (
	DefaultMinPoints          = 9
	DefaultLeniency           = 0.3
	DefaultCircularityWeight  = 0.65
	DefaultPerimeterWeight    = 0.25
	DefaultClosureWeight      = 0.10
	DefaultHighScoreThreshold = 90

	MaxScore = 100

	// degenerateRadius is the mean radius below which a stroke is treated as
	// a single point. Centroids of coincident samples are not exact in
	// floating point, so a literal zero test is not enough.
	degenerateRadius = 1e-6
)

// Weights combines the three sub-scores into the composite.
type Weights struct {
	Circularity float64 `json:"circularity"`
	Perimeter   float64 `json:"perimeter"`
	Closure     float64 `json:"closure"`
}

// DefaultWeights returns {0.65, 0.25, 0.10}.
func DefaultWeights() Weights {
	return Weights{
		Circularity: DefaultCircularityWeight,
		Perimeter:   DefaultPerimeterWeight,
		Closure:     DefaultClosureWeight,
	}
}

// Params holds the tunable thresholds.
type Params struct {
	MinPoints int
	Leniency  float64
	Weights   Weights
}

// DefaultParams returns the production thresholds.
func DefaultParams() Params {
	return Params{
		MinPoints: DefaultMinPoints,
		Leniency:  DefaultLeniency,
		Weights:   DefaultWeights(),
	}
}

// Breakdown exposes the sub-scores, each in [0, 100].
type Breakdown struct {
	Circularity float64 `json:"circularity"`
	Perimeter   float64 `json:"perimeter"`
	Closure     float64 `json:"closure"`
}

// Result is the score of one completed stroke and the circle it was scored
// against.
type Result struct {
	Score     int          `json:"score"`
	Circle    model.Circle `json:"circle"`
	Breakdown Breakdown    `json:"breakdown"`
}

// Scorer computes a Result from a completed stroke.
type Scorer interface {
	// Score rates stroke. Callers must pass at least MinPoints samples.
	Score(stroke model.Stroke) Result
	// MinPoints is the smallest stroke Score accepts.
	MinPoints() int
}

// CircleScorer scores against the centroid/mean-radius circle.
type CircleScorer struct {
	params Params
}

var _ Scorer = (*CircleScorer)(nil)

// NewCircleScorer creates a scorer with the default parameters adjusted by opts.
func NewCircleScorer(opts ...Option) *CircleScorer {
	s := &CircleScorer{params: DefaultParams()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Params returns the active parameters.
func (s *CircleScorer) Params() Params { return s.params }

// MinPoints implements Scorer.
func (s *CircleScorer) MinPoints() int { return s.params.MinPoints }

// Score implements Scorer. An empty stroke yields the zero Result.
func (s *CircleScorer) Score(stroke model.Stroke) Result {
	if len(stroke) == 0 {
		return Result{}
	}

	center := centroid(stroke)
	radii := make([]float64, len(stroke))
	var sum float64
	for i, p := range stroke {
		radii[i] = p.Distance(center)
		sum += radii[i]
	}
	meanRadius := sum / float64(len(radii))
	if meanRadius < degenerateRadius {
		meanRadius = 0
	}

	b := Breakdown{
		Circularity: s.circularity(radii, meanRadius),
		Perimeter:   perimeterScore(stroke.PathLength(), meanRadius),
		Closure:     closureScore(stroke.ClosureGap(), meanRadius),
	}

	w := s.params.Weights
	composite := b.Circularity*w.Circularity + b.Perimeter*w.Perimeter + b.Closure*w.Closure

	return Result{
		Score:     clampScore(composite),
		Circle:    model.Circle{Center: center, Radius: meanRadius},
		Breakdown: b,
	}
}

// centroid is the arithmetic mean of the samples. It leans toward dense
// regions of the stroke rather than the geometric center.
func centroid(stroke model.Stroke) model.Point {
	var sx, sy float64
	for _, p := range stroke {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(stroke))
	return model.Point{X: sx / n, Y: sy / n}
}

// circularity penalizes the population standard deviation of the radii
// relative to leniency * meanRadius.
func (s *CircleScorer) circularity(radii []float64, meanRadius float64) float64 {
	maxExpectedVariance := meanRadius * s.params.Leniency
	if meanRadius == 0 || maxExpectedVariance <= 0 {
		return 0
	}
	var sq float64
	for _, r := range radii {
		d := r - meanRadius
		sq += d * d
	}
	stdDev := math.Sqrt(sq / float64(len(radii)))
	return clampSub(100 - (stdDev/maxExpectedVariance)*100)
}

// perimeterScore compares the open path length with 2*pi*meanRadius.
func perimeterScore(perimeter, meanRadius float64) float64 {
	expected := 2 * math.Pi * meanRadius
	if expected == 0 {
		return 0
	}
	return clampSub(100 - math.Abs(perimeter-expected)/expected*100)
}

// closureScore penalizes the gap between the first and last sample.
func closureScore(gap, meanRadius float64) float64 {
	if meanRadius == 0 {
		return 0
	}
	return clampSub(100 - (gap/meanRadius)*100)
}

func clampSub(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

func clampScore(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	r := math.Round(v)
	if r > MaxScore {
		return MaxScore
	}
	return int(r)
}

// IsHighScore reports whether score reaches threshold.
func IsHighScore(score, threshold int) bool {
	return score >= threshold
}
