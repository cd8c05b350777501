// Package types contains the request and response shapes shared by the HTTP
// and WebSocket adapters.
package types

import (
	"errors"
	"fmt"

	"github.com/okian/perfectcircle/internal/domain/model"
	"github.com/okian/perfectcircle/internal/domain/scoring"
	"github.com/okian/perfectcircle/internal/platform"
)

// Score statuses.
const (
	StatusScored       = "scored"
	StatusInsufficient = "insufficient"
)

var (
	// ErrInvalidSurface is returned for non-positive or non-finite dimensions.
	ErrInvalidSurface = errors.New("invalid surface")
	// ErrNoPoints is returned for a request without samples.
	ErrNoPoints = errors.New("no points")
	// ErrTooManyPoints is returned when a request exceeds the stroke bound.
	ErrTooManyPoints = errors.New("too many points")
)

// StrokeRequest is a complete stroke submitted in one request.
type StrokeRequest struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Points []model.Point `json:"points"`
}

// Surface returns the drawing bounds.
func (r StrokeRequest) Surface() model.Surface {
	return model.Surface{Width: r.Width, Height: r.Height}
}

// Validate checks the surface and the number of points. maxPoints <= 0 means
// no bound.
func (r StrokeRequest) Validate(maxPoints int) error {
	if !r.Surface().Valid() {
		return fmt.Errorf("%w: %vx%v", ErrInvalidSurface, r.Width, r.Height)
	}
	if len(r.Points) == 0 {
		return ErrNoPoints
	}
	if maxPoints > 0 && len(r.Points) > maxPoints {
		return fmt.Errorf("%w: %d > %d", ErrTooManyPoints, len(r.Points), maxPoints)
	}
	return nil
}

// ScoreResponse reports the outcome of a completed stroke.
type ScoreResponse struct {
	Status    string                 `json:"status"`
	Score     int                    `json:"score"`
	Points    int                    `json:"points"`
	HighScore bool                   `json:"high_score,omitempty"`
	Circle    *model.Circle          `json:"circle,omitempty"`
	Breakdown *scoring.Breakdown     `json:"breakdown,omitempty"`
	Feedback  *scoring.Feedback      `json:"feedback,omitempty"`
	Share     *platform.ShareMessage `json:"share,omitempty"`
	Challenge *platform.ShareMessage `json:"challenge,omitempty"`
	Hint      string                 `json:"hint,omitempty"`
}

// WebhookAck acknowledges a host platform callback.
type WebhookAck struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Duplicate bool   `json:"duplicate"`
}

// ShareRequest asks the service to share a score.
type ShareRequest struct {
	Score int                `json:"score"`
	Kind  platform.ShareKind `json:"kind"`
}

// Frame types exchanged on the live capture socket.
const (
	FrameBegin  = "begin"
	FrameMove   = "move"
	FrameEnd    = "end"
	FrameReset  = "reset"
	FrameResize = "resize"
	FrameShare  = "share"

	FrameState  = "state"
	FrameHaptic = "haptic"
	FrameResult = "result"
	FrameError  = "error"
)

// ClientFrame is a pointer or control event sent by the player.
type ClientFrame struct {
	Type   string             `json:"type"`
	X      float64            `json:"x,omitempty"`
	Y      float64            `json:"y,omitempty"`
	Width  float64            `json:"width,omitempty"`
	Height float64            `json:"height,omitempty"`
	Kind   platform.ShareKind `json:"kind,omitempty"`
}

// Point returns the frame's coordinates.
func (f ClientFrame) Point() model.Point { return model.Pt(f.X, f.Y) }

// ServerFrame is pushed to the player.
type ServerFrame struct {
	Type    string                 `json:"type"`
	Session string                 `json:"session,omitempty"`
	State   string                 `json:"state,omitempty"`
	Style   platform.Style         `json:"style,omitempty"`
	Result  *ScoreResponse         `json:"result,omitempty"`
	Share   *platform.ShareOutcome `json:"share,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
