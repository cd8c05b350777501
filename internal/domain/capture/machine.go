// Package capture implements the stroke capture state machine: it collects
// pointer samples while drawing and hands the finished stroke to a scorer.
package capture

import (
	"github.com/okian/perfectcircle/internal/domain/model"
	"github.com/okian/perfectcircle/internal/domain/scoring"
)

// DefaultMaxPoints bounds a single stroke.
const DefaultMaxPoints = 10000

// State is the capture phase.
type State int

// Capture states.
const (
	Idle State = iota
	Drawing
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Completion is produced when a stroke ends. Result is nil when the stroke
// was too short to score, in which case Hint is set.
type Completion struct {
	Result *scoring.Result `json:"result,omitempty"`
	Stroke model.Stroke    `json:"-"`
	Hint   bool            `json:"hint,omitempty"`
}

// Insufficient reports whether the stroke was rejected for length.
func (c Completion) Insufficient() bool { return c.Result == nil }

// Machine is a snapshot of a capture session. Transitions return the next
// snapshot, so a session is driven by reassigning a single value:
//
//	m = m.Begin(p)
//	m = m.Move(q)
//	m, done, ok := m.End()
//
// Snapshots taken mid-stroke share sample storage with their successors and
// must not be advanced independently. Strokes leaving the machine are copies.
type Machine struct {
	state     State
	surface   model.Surface
	stroke    model.Stroke
	result    *scoring.Result
	scorer    scoring.Scorer
	maxPoints int
}

// New returns an idle machine for surface.
func New(surface model.Surface, opts ...Option) Machine {
	m := Machine{
		state:     Idle,
		surface:   surface,
		maxPoints: DefaultMaxPoints,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.scorer == nil {
		m.scorer = scoring.NewCircleScorer()
	}
	return m
}

// Begin starts a new stroke at p from any state, discarding the previous
// stroke and result.
func (m Machine) Begin(p model.Point) Machine {
	m.state = Drawing
	m.result = nil
	m.stroke = model.Stroke{m.surface.Clamp(p)}
	return m
}

// Move appends p while drawing. Outside Drawing, or once the stroke holds
// maxPoints samples, it is a no-op.
func (m Machine) Move(p model.Point) Machine {
	if m.state != Drawing || len(m.stroke) >= m.maxPoints {
		return m
	}
	m.stroke = append(m.stroke, m.surface.Clamp(p))
	return m
}

// End finishes the stroke. Strokes with at least the scorer's minimum are
// scored and the machine moves to Completed; shorter strokes return to Idle
// with a hint. ok is false when the machine was not drawing.
func (m Machine) End() (next Machine, done Completion, ok bool) {
	if m.state != Drawing {
		return m, Completion{}, false
	}
	stroke := m.stroke.Clone()
	if len(stroke) < m.scorer.MinPoints() {
		m.state = Idle
		m.stroke = nil
		m.result = nil
		return m, Completion{Stroke: stroke, Hint: true}, true
	}
	res := m.scorer.Score(stroke)
	m.state = Completed
	m.result = &res
	return m, Completion{Result: &res, Stroke: stroke}, true
}

// Reset returns to Idle from any state.
func (m Machine) Reset() Machine {
	m.state = Idle
	m.stroke = nil
	m.result = nil
	return m
}

// Resize updates the surface used to clamp later samples. Points already
// captured are not rescaled or moved. Invalid dimensions keep the current
// surface.
func (m Machine) Resize(width, height float64) Machine {
	next := model.Surface{Width: width, Height: height}
	if !next.Valid() {
		return m
	}
	m.surface = next
	return m
}

// State returns the current phase.
func (m Machine) State() State { return m.state }

// Surface returns the clamping bounds.
func (m Machine) Surface() model.Surface { return m.surface }

// Stroke returns a copy of the samples captured so far.
func (m Machine) Stroke() model.Stroke { return m.stroke.Clone() }

// Result returns the last score, or nil unless Completed.
func (m Machine) Result() *scoring.Result { return m.result }

// MaxPoints returns the stroke bound.
func (m Machine) MaxPoints() int { return m.maxPoints }
