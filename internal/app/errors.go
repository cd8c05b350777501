package service

import "errors"

var (
	// ErrInsufficientSamples is returned when a stroke is too short to score.
	ErrInsufficientSamples = errors.New("insufficient samples")
	// ErrInvalidStroke wraps request validation failures.
	ErrInvalidStroke = errors.New("invalid stroke")
	// ErrInvalidSurface is returned for resizes to non-positive or non-finite dimensions.
	ErrInvalidSurface = errors.New("invalid surface")
)
