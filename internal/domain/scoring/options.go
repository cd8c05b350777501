package scoring

// Option applies a configuration option to the CircleScorer.
type Option func(*CircleScorer)

// WithMinPoints sets the minimum stroke length. Values below 1 are ignored.
func WithMinPoints(n int) Option {
	return func(s *CircleScorer) {
		if n >= 1 {
			s.params.MinPoints = n
		}
	}
}

// WithLeniency sets the variance leniency factor. Non-positive values are ignored.
func WithLeniency(f float64) Option {
	return func(s *CircleScorer) {
		if f > 0 {
			s.params.Leniency = f
		}
	}
}

// WithWeights sets the sub-score weights. Negative weights or an all-zero
// set are ignored.
func WithWeights(w Weights) Option {
	return func(s *CircleScorer) {
		if w.Circularity < 0 || w.Perimeter < 0 || w.Closure < 0 {
			return
		}
		if w.Circularity+w.Perimeter+w.Closure == 0 {
			return
		}
		s.params.Weights = w
	}
}

// WithParams replaces all parameters, applying the same guards as the
// individual options.
func WithParams(p Params) Option {
	return func(s *CircleScorer) {
		WithMinPoints(p.MinPoints)(s)
		WithLeniency(p.Leniency)(s)
		WithWeights(p.Weights)(s)
	}
}
