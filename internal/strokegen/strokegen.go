// Package strokegen produces deterministic synthetic strokes for tests,
// replays and benchmarks.
package strokegen

import (
	"math"
	"math/rand/v2"

	"github.com/okian/perfectcircle/internal/domain/model"
	"github.com/okian/perfectcircle/internal/domain/types"
)

// Kind names a stroke shape.
type Kind string

// Stroke shapes.
const (
	KindCircle Kind = "circle"
	KindNoisy  Kind = "noisy"
	KindSquare Kind = "square"
	KindArc    Kind = "arc"
	KindDot    Kind = "dot"
)

// Kinds lists every shape in generation order.
var Kinds = []Kind{KindCircle, KindNoisy, KindSquare, KindArc, KindDot} //nolint:gochecknoglobals // fixed set

const (
	defaultSurface  = 400.0
	defaultSegments = 72
	minRadius       = 40.0
	noiseFraction   = 0.08
	minArc          = 0.2
	maxArc          = 0.8
)

// Circle samples a closed circle with segs segments; the last sample
// repeats the first.
func Circle(center model.Point, r float64, segs int) model.Stroke {
	return arc(center, r, segs, 1, 0)
}

// Arc samples the given fraction of a circle starting at angle 0.
func Arc(center model.Point, r float64, segs int, fraction float64) model.Stroke {
	return arc(center, r, segs, fraction, 0)
}

func arc(center model.Point, r float64, segs int, fraction, phase float64) model.Stroke {
	if segs < 1 {
		segs = 1
	}
	s := make(model.Stroke, 0, segs+1)
	for i := 0; i <= segs; i++ {
		a := phase + 2*math.Pi*fraction*float64(i)/float64(segs)
		s = append(s, model.Pt(center.X+r*math.Cos(a), center.Y+r*math.Sin(a)))
	}
	return s
}

// Square samples the outline of an axis-aligned square, perSide samples per
// edge, without returning to the first corner.
func Square(origin model.Point, side float64, perSide int) model.Stroke {
	if perSide < 1 {
		perSide = 1
	}
	corners := []model.Point{
		origin,
		model.Pt(origin.X+side, origin.Y),
		model.Pt(origin.X+side, origin.Y+side),
		model.Pt(origin.X, origin.Y+side),
	}
	s := make(model.Stroke, 0, 4*perSide)
	for c := range corners {
		from, to := corners[c], corners[(c+1)%len(corners)]
		for i := 0; i < perSide; i++ {
			t := float64(i) / float64(perSide)
			s = append(s, model.Pt(from.X+(to.X-from.X)*t, from.Y+(to.Y-from.Y)*t))
		}
	}
	return s
}

// Dot is a single tap repeated n times.
func Dot(p model.Point, n int) model.Stroke {
	s := make(model.Stroke, n)
	for i := range s {
		s[i] = p
	}
	return s
}

// Sample is one generated stroke ready to submit.
type Sample struct {
	Kind    Kind
	Request types.StrokeRequest
}

// Generator draws strokes from a seeded source. It is not safe for
// concurrent use.
type Generator struct {
	rng     *rand.Rand
	surface model.Surface
}

// New returns a generator seeded with seed on a square surface.
func New(seed uint64) *Generator {
	return &Generator{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		surface: model.Surface{Width: defaultSurface, Height: defaultSurface},
	}
}

// Surface returns the drawing bounds used for every sample.
func (g *Generator) Surface() model.Surface { return g.surface }

func (g *Generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// placement picks a center and radius that keep the shape on the surface.
func (g *Generator) placement() (model.Point, float64) {
	maxR := math.Min(g.surface.Width, g.surface.Height)/2 - 10
	r := g.between(minRadius, maxR)
	c := model.Pt(
		g.between(r+5, g.surface.Width-r-5),
		g.between(r+5, g.surface.Height-r-5),
	)
	return c, r
}

// Stroke draws one stroke of kind.
func (g *Generator) Stroke(kind Kind) model.Stroke {
	c, r := g.placement()
	switch kind {
	case KindNoisy:
		s := arc(c, r, defaultSegments, 1, g.between(0, 2*math.Pi))
		for i := range s {
			s[i] = g.surface.Clamp(model.Pt(
				s[i].X+g.rng.NormFloat64()*r*noiseFraction,
				s[i].Y+g.rng.NormFloat64()*r*noiseFraction,
			))
		}
		return s
	case KindSquare:
		return Square(model.Pt(c.X-r, c.Y-r), 2*r, defaultSegments/4)
	case KindArc:
		return arc(c, r, defaultSegments, g.between(minArc, maxArc), g.between(0, 2*math.Pi))
	case KindDot:
		return Dot(c, 1+g.rng.IntN(4))
	default:
		return arc(c, r, defaultSegments, 1, g.between(0, 2*math.Pi))
	}
}

// Samples returns n samples cycling through Kinds.
func (g *Generator) Samples(n int) []Sample {
	out := make([]Sample, n)
	for i := range out {
		kind := Kinds[i%len(Kinds)]
		out[i] = Sample{
			Kind: kind,
			Request: types.StrokeRequest{
				Width:  g.surface.Width,
				Height: g.surface.Height,
				Points: g.Stroke(kind),
			},
		}
	}
	return out
}
