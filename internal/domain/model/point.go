// Package model contains domain models passed between layers.
package model

import "math"

// Point is a sample on the drawing surface.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Surface is the drawable rectangle [0, Width] x [0, Height].
type Surface struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive and finite.
func (s Surface) Valid() bool {
	return s.Width > 0 && s.Height > 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

// Clamp forces p into the surface, axis by axis. NaN coordinates collapse to 0.
func (s Surface) Clamp(p Point) Point {
	return Point{X: clamp(p.X, s.Width), Y: clamp(p.Y, s.Height)}
}

func clamp(v, limit float64) float64 {
	if math.IsNaN(v) || math.IsNaN(limit) {
		return 0
	}
	return math.Max(0, math.Min(v, limit))
}

// Circle is a center and a non-negative radius.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}
