package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/perfectcircle/internal/domain/capture"
	"github.com/okian/perfectcircle/internal/domain/model"
	"github.com/okian/perfectcircle/internal/domain/types"
	"github.com/okian/perfectcircle/internal/platform"
	"github.com/okian/perfectcircle/pkg/metrics"
)

// Session is one player's live capture machine. It is safe for concurrent
// use, though frames are expected from a single connection.
type Session struct {
	ID string

	mu      sync.Mutex
	machine capture.Machine
	svc     *Service
	haptics platform.Haptics
	closed  bool
}

// SessionOption applies a configuration option to a Session.
type SessionOption func(*Session)

// WithSessionHaptics routes impacts for this session to h.
func WithSessionHaptics(h platform.Haptics) SessionOption {
	return func(s *Session) {
		if h != nil {
			s.haptics = h
		}
	}
}

// NewSession opens a capture session on surface.
func (s *Service) NewSession(surface model.Surface, opts ...SessionOption) *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		machine: s.newMachine(surface),
		svc:     s,
		haptics: s.caps.Haptics,
	}
	for _, opt := range opts {
		opt(sess)
	}
	s.sessions.Add(1)
	metrics.SessionOpened()
	return sess
}

// Begin starts a stroke at p.
func (s *Session) Begin(ctx context.Context, p model.Point) capture.State {
	s.mu.Lock()
	s.machine = s.machine.Begin(p)
	st := s.machine.State()
	s.mu.Unlock()

	s.haptics.Impact(ctx, platform.Light)
	return st
}

// Move extends the stroke while drawing.
func (s *Session) Move(p model.Point) capture.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine = s.machine.Move(p)
	return s.machine.State()
}

// End finishes the stroke. ok is false when no stroke was in progress.
func (s *Session) End(ctx context.Context) (resp types.ScoreResponse, ok bool) {
	start := time.Now()
	s.mu.Lock()
	next, done, ok := s.machine.End()
	s.machine = next
	s.mu.Unlock()

	if !ok {
		return types.ScoreResponse{}, false
	}
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)

	resp = s.svc.Complete(ctx, done)
	s.haptics.Impact(ctx, platform.Medium)
	return resp, true
}

// Reset clears the surface.
func (s *Session) Reset(ctx context.Context) capture.State {
	s.mu.Lock()
	s.machine = s.machine.Reset()
	st := s.machine.State()
	s.mu.Unlock()

	s.haptics.Impact(ctx, platform.Light)
	return st
}

// Resize updates the clamping bounds for later samples. Invalid dimensions
// leave the surface unchanged and return ErrInvalidSurface.
func (s *Session) Resize(width, height float64) (capture.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !(model.Surface{Width: width, Height: height}).Valid() {
		return s.machine.State(), fmt.Errorf("%w: %vx%v", ErrInvalidSurface, width, height)
	}
	s.machine = s.machine.Resize(width, height)
	return s.machine.State(), nil
}

// State returns the current phase.
func (s *Session) State() capture.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// Score returns the last completed score, if any.
func (s *Session) Score() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.machine.Result(); r != nil {
		return r.Score, true
	}
	return 0, false
}

// Share shares the last score with this session's haptics.
func (s *Session) Share(ctx context.Context, kind platform.ShareKind) (platform.ShareOutcome, bool) {
	score, ok := s.Score()
	if !ok {
		return platform.ShareOutcome{}, false
	}
	return s.svc.ShareWith(ctx, platform.Capabilities{Haptics: s.haptics}, score, kind), true
}

// Close releases the session. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.svc.sessions.Add(-1)
	metrics.SessionClosed()
}
