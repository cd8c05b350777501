package render

// Option applies a configuration option to the CardRenderer.
type Option func(*CardRenderer)

// WithMaxSide bounds the longest edge of encoded cards.
func WithMaxSide(n int) Option {
	return func(r *CardRenderer) {
		if n > 0 {
			r.maxSide = n
		}
	}
}
