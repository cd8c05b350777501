package capture

import "github.com/okian/perfectcircle/internal/domain/scoring"

// Option applies a configuration option to the Machine.
type Option func(*Machine)

// WithScorer sets the scorer invoked on End.
func WithScorer(s scoring.Scorer) Option {
	return func(m *Machine) {
		if s != nil {
			m.scorer = s
		}
	}
}

// WithMaxPoints bounds the stroke length.
func WithMaxPoints(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxPoints = n
		}
	}
}
