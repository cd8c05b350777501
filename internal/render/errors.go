package render

import "errors"

var (
	// ErrInvalidSurface is returned for non-positive or non-finite dimensions.
	ErrInvalidSurface = errors.New("invalid surface")
	// ErrCanvasTooLarge is returned when a surface side exceeds MaxCanvasSide.
	ErrCanvasTooLarge = errors.New("canvas too large")
	// ErrEmptyStroke is returned when there is nothing to draw.
	ErrEmptyStroke = errors.New("empty stroke")
	// ErrNoHash is returned when comparing cards without perceptual hashes.
	ErrNoHash = errors.New("card has no hash")
)
