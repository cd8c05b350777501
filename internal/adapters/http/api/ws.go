package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	service "github.com/okian/perfectcircle/internal/app"
	"github.com/okian/perfectcircle/internal/domain/capture"
	"github.com/okian/perfectcircle/internal/domain/model"
	"github.com/okian/perfectcircle/internal/domain/types"
	"github.com/okian/perfectcircle/internal/platform"
	"github.com/okian/perfectcircle/pkg/logger"
	"github.com/okian/perfectcircle/pkg/metrics"
)

const (
	defaultFramesPerSecond = 240
	defaultSurfaceSide     = 400
	frameWindow            = time.Second
	frameWriteTimeout      = 5 * time.Second
)

// frameLimiter admits at most limit frames per sliding window.
type frameLimiter struct {
	limit      int
	window     time.Duration
	timestamps []time.Time
	now        func() time.Time
}

func newFrameLimiter(limit int, window time.Duration) *frameLimiter {
	return &frameLimiter{limit: limit, window: window, now: time.Now}
}

// allow records a frame and reports whether it fits in the window.
func (l *frameLimiter) allow() bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	valid := l.timestamps[:0]
	for _, t := range l.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	l.timestamps = valid

	if len(l.timestamps) >= l.limit {
		return false
	}
	l.timestamps = append(l.timestamps, now)
	return true
}

// liveConn pushes frames to one player. It doubles as the session's haptics
// so impacts reach the device that drew the stroke.
type liveConn struct {
	conn   *websocket.Conn
	logger logger.Logger
}

func (c *liveConn) send(ctx context.Context, f types.ServerFrame) {
	ctx, cancel := context.WithTimeout(ctx, frameWriteTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, c.conn, f); err != nil {
		c.logger.Debug(ctx, "frame write failed",
			logger.String("type", f.Type),
			logger.Error(err))
	}
}

// Impact implements platform.Haptics.
func (c *liveConn) Impact(ctx context.Context, style platform.Style) {
	c.send(ctx, types.ServerFrame{Type: types.FrameHaptic, Style: style})
}

// LiveHandler runs capture sessions over WebSocket.
type LiveHandler struct {
	deps    Dependencies
	surface model.Surface
	fps     int
	logger  logger.Logger
}

// NewLiveHandler creates a new live session handler.
func NewLiveHandler(deps Dependencies, surface model.Surface, fps int, l logger.Logger) *LiveHandler {
	return &LiveHandler{deps: deps, surface: surface, fps: fps, logger: l}
}

// initialSurface reads optional width and height query parameters.
func (h *LiveHandler) initialSurface(r *http.Request) model.Surface {
	q := r.URL.Query()
	w, errW := strconv.ParseFloat(q.Get("width"), 64)
	ht, errH := strconv.ParseFloat(q.Get("height"), 64)
	s := model.Surface{Width: w, Height: ht}
	if errW != nil || errH != nil || !s.Valid() {
		return h.surface
	}
	return s
}

// HandleLive handles GET /api/ws.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	// sessions outlive the server's per-request deadlines
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn(r.Context(), "websocket accept failed", logger.Error(err))
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	ctx := r.Context()
	lc := &liveConn{conn: conn, logger: h.logger}
	sess := h.deps.NewSession(h.initialSurface(r), service.WithSessionHaptics(lc))
	defer sess.Close()

	h.logger.Info(ctx, "live session opened",
		logger.String("session", sess.ID),
		logger.String("remote", r.RemoteAddr))

	lc.send(ctx, types.ServerFrame{Type: types.FrameState, Session: sess.ID, State: sess.State().String()})

	limiter := newFrameLimiter(h.fps, frameWindow)
	for {
		var f types.ClientFrame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				h.logger.Debug(ctx, "live session read ended", logger.Error(err))
			}
			return
		}

		if !limiter.allow() {
			metrics.RecordSessionFrameDropped()
			lc.send(ctx, types.ServerFrame{Type: types.FrameError, Error: ErrRateLimited.Error()})
			continue
		}
		metrics.RecordSessionFrame(f.Type)
		h.dispatch(ctx, lc, sess, f)
	}
}

// dispatch applies one frame. Moves are not acknowledged.
func (h *LiveHandler) dispatch(ctx context.Context, lc *liveConn, sess *service.Session, f types.ClientFrame) {
	state := func(s capture.State) {
		lc.send(ctx, types.ServerFrame{Type: types.FrameState, Session: sess.ID, State: s.String()})
	}

	switch f.Type {
	case types.FrameBegin:
		state(sess.Begin(ctx, f.Point()))
	case types.FrameMove:
		sess.Move(f.Point())
	case types.FrameEnd:
		resp, ok := sess.End(ctx)
		if ok {
			lc.send(ctx, types.ServerFrame{Type: types.FrameResult, Session: sess.ID, Result: &resp})
		}
		state(sess.State())
	case types.FrameReset:
		state(sess.Reset(ctx))
	case types.FrameResize:
		st, err := sess.Resize(f.Width, f.Height)
		if err != nil {
			lc.send(ctx, types.ServerFrame{Type: types.FrameError, Session: sess.ID, Error: err.Error()})
		}
		state(st)
	case types.FrameShare:
		kind := f.Kind
		if kind != platform.ShareChallenge {
			kind = platform.ShareScore
		}
		out, ok := sess.Share(ctx, kind)
		if !ok {
			lc.send(ctx, types.ServerFrame{Type: types.FrameError, Error: ErrSessionNotStarted.Error()})
			return
		}
		lc.send(ctx, types.ServerFrame{Type: types.FrameShare, Session: sess.ID, Share: &out})
	default:
		lc.send(ctx, types.ServerFrame{Type: types.FrameError, Error: NewKind("frame "+strconv.Quote(f.Type), ErrBadRequest).Error()})
	}
}
