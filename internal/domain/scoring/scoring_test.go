package scoring

import (
	"math"
	"math/rand"
	"testing"

	"github.com/okian/perfectcircle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// circleStroke samples segs+1 points on a circle, the last coinciding with
// the first. The final point is pushed outward by gap along the start ray.
func circleStroke(cx, cy, r float64, segs int, gap float64) model.Stroke {
	s := make(model.Stroke, 0, segs+1)
	for i := 0; i <= segs; i++ {
		a := 2 * math.Pi * float64(i) / float64(segs)
		s = append(s, model.Pt(cx+r*math.Cos(a), cy+r*math.Sin(a)))
	}
	s[segs] = model.Pt(cx+r+gap, cy)
	return s
}

func squareStroke(side float64) model.Stroke {
	unit := []model.Point{
		{X: 0, Y: 0}, {X: 1.0 / 3, Y: 0}, {X: 2.0 / 3, Y: 0}, {X: 1, Y: 0},
		{X: 1, Y: 1.0 / 3}, {X: 1, Y: 2.0 / 3}, {X: 1, Y: 1},
		{X: 2.0 / 3, Y: 1}, {X: 1.0 / 3, Y: 1}, {X: 0, Y: 1},
		{X: 0, Y: 2.0 / 3}, {X: 0, Y: 1.0 / 3},
	}
	s := make(model.Stroke, len(unit))
	for i, p := range unit {
		s[i] = model.Pt(p.X*side, p.Y*side)
	}
	return s
}

func TestCircleScorerDefaults(t *testing.T) {
	Convey("Given a scorer with default options", t, func() {
		s := NewCircleScorer()

		Convey("Then production thresholds are active", func() {
			So(s.MinPoints(), ShouldEqual, DefaultMinPoints)
			So(s.Params().Leniency, ShouldEqual, DefaultLeniency)
			So(s.Params().Weights, ShouldResemble, DefaultWeights())
		})

		Convey("When invalid options are supplied", func() {
			s = NewCircleScorer(
				WithMinPoints(0),
				WithLeniency(-1),
				WithWeights(Weights{Circularity: -1}),
				WithWeights(Weights{}),
			)

			Convey("Then they are ignored", func() {
				So(s.Params(), ShouldResemble, DefaultParams())
			})
		})
	})
}

func TestCircleScorerShapes(t *testing.T) {
	Convey("Given the default scorer", t, func() {
		s := NewCircleScorer()

		Convey("When scoring a closely sampled full circle", func() {
			res := s.Score(circleStroke(200, 150, 100, 72, 0))

			Convey("Then the score is near perfect", func() {
				So(res.Score, ShouldBeGreaterThanOrEqualTo, 95)
				So(res.Score, ShouldBeLessThanOrEqualTo, MaxScore)
			})

			Convey("And the fitted circle matches the drawn one", func() {
				So(res.Circle.Radius, ShouldAlmostEqual, 100, 1)
				So(res.Circle.Center.X, ShouldAlmostEqual, 200, 2)
				So(res.Circle.Center.Y, ShouldAlmostEqual, 150, 2)
				So(res.Breakdown.Closure, ShouldBeGreaterThan, 99)
			})
		})

		Convey("When scoring coincident points", func() {
			stroke := make(model.Stroke, 20)
			for i := range stroke {
				stroke[i] = model.Pt(5, 5)
			}
			res := s.Score(stroke)

			Convey("Then the score and radius are zero", func() {
				So(res.Score, ShouldEqual, 0)
				So(res.Circle.Radius, ShouldEqual, 0.0)
				So(res.Breakdown, ShouldResemble, Breakdown{})
			})
		})

		Convey("When scoring a square", func() {
			res := s.Score(squareStroke(1))
			circle := s.Score(circleStroke(200, 150, 100, 72, 0))

			Convey("Then it lands well below the circle", func() {
				So(res.Score, ShouldEqual, 63)
				So(res.Score, ShouldBeLessThan, circle.Score-20)
				So(res.Circle.Center.X, ShouldAlmostEqual, 0.5, 1e-9)
				So(res.Circle.Center.Y, ShouldAlmostEqual, 0.5, 1e-9)
			})

			Convey("And the score does not depend on scale", func() {
				So(s.Score(squareStroke(100)).Score, ShouldEqual, res.Score)
			})
		})

		Convey("When scoring a half circle", func() {
			arc := make(model.Stroke, 0, 37)
			for i := 0; i <= 36; i++ {
				a := math.Pi * float64(i) / 36
				arc = append(arc, model.Pt(100*math.Cos(a), 100*math.Sin(a)))
			}

			Convey("Then it scores poorly", func() {
				So(s.Score(arc).Score, ShouldBeLessThan, 50)
			})
		})

		Convey("When scoring an empty stroke", func() {
			Convey("Then the zero result is returned", func() {
				So(s.Score(nil), ShouldResemble, Result{})
			})
		})
	})
}

func TestCircleScorerClosure(t *testing.T) {
	Convey("Given a circle whose end drifts away from its start", t, func() {
		s := NewCircleScorer()
		prev := MaxScore + 1

		Convey("Then widening the gap never raises the score", func() {
			for _, gap := range []float64{0, 5, 10, 20, 40, 80} {
				res := s.Score(circleStroke(200, 150, 100, 72, gap))
				So(res.Score, ShouldBeLessThanOrEqualTo, prev)
				prev = res.Score
			}
			So(prev, ShouldBeLessThan, 95)
		})
	})
}

func TestCircleScorerRange(t *testing.T) {
	Convey("Given random strokes", t, func() {
		s := NewCircleScorer()
		rng := rand.New(rand.NewSource(42))

		Convey("Then every score and sub-score is within bounds", func() {
			for i := 0; i < 200; i++ {
				n := DefaultMinPoints + rng.Intn(120)
				stroke := make(model.Stroke, n)
				for j := range stroke {
					stroke[j] = model.Pt(rng.Float64()*800, rng.Float64()*600)
				}
				res := s.Score(stroke)
				So(res.Score, ShouldBeBetweenOrEqual, 0, MaxScore)
				So(res.Breakdown.Circularity, ShouldBeBetweenOrEqual, 0, MaxScore)
				So(res.Breakdown.Perimeter, ShouldBeBetweenOrEqual, 0, MaxScore)
				So(res.Breakdown.Closure, ShouldBeBetweenOrEqual, 0, MaxScore)
			}
		})
	})
}

func TestCircleScorerTuning(t *testing.T) {
	Convey("Given a near-perfect circle", t, func() {
		stroke := circleStroke(200, 150, 100, 72, 0)

		Convey("When only circularity is weighted", func() {
			res := NewCircleScorer(WithWeights(Weights{Circularity: 1})).Score(stroke)

			Convey("Then the score is the rounded circularity", func() {
				So(res.Score, ShouldEqual, int(math.Round(res.Breakdown.Circularity)))
			})
		})

		Convey("When leniency is tightened", func() {
			strict := NewCircleScorer(WithLeniency(0.01)).Score(stroke)
			loose := NewCircleScorer().Score(stroke)

			Convey("Then circularity drops", func() {
				So(strict.Breakdown.Circularity, ShouldBeLessThan, loose.Breakdown.Circularity)
				So(strict.Score, ShouldBeLessThan, loose.Score)
			})
		})

		Convey("When parameters are replaced wholesale", func() {
			s := NewCircleScorer(WithParams(Params{MinPoints: 20, Leniency: 0.5, Weights: DefaultWeights()}))

			Convey("Then all of them apply", func() {
				So(s.MinPoints(), ShouldEqual, 20)
				So(s.Params().Leniency, ShouldEqual, 0.5)
			})
		})
	})
}

func TestFeedback(t *testing.T) {
	Convey("Given scores across every band", t, func() {
		cases := []struct {
			score     int
			title     string
			celebrate bool
		}{
			{100, "Perfect! 100%", true},
			{95, "Perfect! 95%", true},
			{94, "Excellent! 94%", true},
			{90, "Excellent! 90%", true},
			{89, "Excellent! 89%", false},
			{85, "Excellent! 85%", false},
			{84, "Good! 84%", false},
			{70, "Good! 70%", false},
			{69, "69%", false},
			{50, "50%", false},
			{0, "0%", false},
		}

		Convey("Then titles and celebration follow the thresholds", func() {
			for _, c := range cases {
				fb := FeedbackFor(c.score)
				So(fb.Title, ShouldEqual, c.title)
				So(fb.Celebrate, ShouldEqual, c.celebrate)
				So(fb.Message, ShouldNotBeEmpty)
			}
		})

		Convey("And the lowest bands differ in message", func() {
			So(FeedbackFor(50).Message, ShouldNotEqual, FeedbackFor(49).Message)
		})

		Convey("And high scores start at the default threshold", func() {
			So(IsHighScore(90, DefaultHighScoreThreshold), ShouldBeTrue)
			So(IsHighScore(89, DefaultHighScoreThreshold), ShouldBeFalse)
		})
	})
}
