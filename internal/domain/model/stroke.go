package model

import "slices"

// Stroke is the ordered sample sequence of one continuous gesture. Order is
// drawing order.
type Stroke []Point

// Len returns the number of samples.
func (s Stroke) Len() int { return len(s) }

// First returns the first sample, or the zero Point for an empty stroke.
func (s Stroke) First() Point {
	if len(s) == 0 {
		return Point{}
	}
	return s[0]
}

// Last returns the last sample, or the zero Point for an empty stroke.
func (s Stroke) Last() Point {
	if len(s) == 0 {
		return Point{}
	}
	return s[len(s)-1]
}

// Clone returns an independent copy safe to hand to another owner.
func (s Stroke) Clone() Stroke {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// PathLength sums the distances between consecutive samples. The segment
// from the last sample back to the first is not included.
func (s Stroke) PathLength() float64 {
	var total float64
	for i := 1; i < len(s); i++ {
		total += s[i].Distance(s[i-1])
	}
	return total
}

// ClosureGap is the distance between the first and last sample.
func (s Stroke) ClosureGap() float64 {
	if len(s) < 2 {
		return 0
	}
	return s.First().Distance(s.Last())
}
