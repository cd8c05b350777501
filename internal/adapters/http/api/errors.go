package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest        = errors.New("bad request")
	ErrMethodNotAllowed  = errors.New("method not allowed")
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedImage  = errors.New("unsupported image format")
	ErrUnprocessable     = errors.New("unprocessable")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrInternal          = errors.New("internal error")
	ErrServe             = errors.New("serve failed")
	ErrSessionNotStarted = errors.New("session not started")
)

// Wrap annotates err with the failing operation.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// WrapKind annotates err with op and a sentinel kind so callers can match
// either with errors.Is.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind creates an error of kind for op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}
