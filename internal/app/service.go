// Package service composes the scorer, the notification pipeline, the card
// renderer and webhook dedupe into the operations used by the adapters.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/perfectcircle/internal/adapters/mq/queue"
	"github.com/okian/perfectcircle/internal/adapters/mq/worker"
	"github.com/okian/perfectcircle/internal/domain/capture"
	"github.com/okian/perfectcircle/internal/domain/dedupe"
	"github.com/okian/perfectcircle/internal/domain/model"
	"github.com/okian/perfectcircle/internal/domain/scoring"
	"github.com/okian/perfectcircle/internal/domain/types"
	"github.com/okian/perfectcircle/internal/platform"
	"github.com/okian/perfectcircle/internal/render"
	"github.com/okian/perfectcircle/pkg/logger"
	"github.com/okian/perfectcircle/pkg/metrics"
)

const (
	defaultAppURL      = "https://perfect-circle-nine.vercel.app"
	defaultQueueSize   = 1024
	defaultWorkerCount = 2
	defaultDedupeSize  = 4096
)

// Service implements the dependencies required by the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	scorer   *scoring.CircleScorer
	deduper  dedupe.Deduper
	renderer *render.CardRenderer
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	caps     platform.Capabilities

	// Configuration
	params             scoring.Params
	highScoreThreshold int
	maxPoints          int
	queueSize          int
	workerCount        int
	dedupeSize         int
	cardMaxSide        int
	appURL             string

	// Counters
	scored       atomic.Int64
	insufficient atomic.Int64
	highScores   atomic.Int64
	dropped      atomic.Int64
	webhooks     atomic.Int64
	duplicates   atomic.Int64
	sessions     atomic.Int64

	started bool

	logger logger.Logger
}

// New constructs a new Service. Scoring, rendering and dedupe are usable
// immediately; notifications are delivered only after Start.
func New(opts ...Option) *Service {
	s := &Service{
		params:             scoring.DefaultParams(),
		highScoreThreshold: scoring.DefaultHighScoreThreshold,
		maxPoints:          capture.DefaultMaxPoints,
		queueSize:          defaultQueueSize,
		workerCount:        defaultWorkerCount,
		dedupeSize:         defaultDedupeSize,
		cardMaxSide:        render.DefaultMaxSide,
		appURL:             defaultAppURL,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.caps = s.caps.WithDefaults()
	s.scorer = scoring.NewCircleScorer(scoring.WithParams(s.params))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.renderer = render.NewCardRenderer(render.WithMaxSide(s.cardMaxSide))
	return s
}

// Start creates the notification queue and starts its workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.caps.Notifier)
	// workers outlive the start request; Stop drains them
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "perfect circle service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("highScoreThreshold", s.highScoreThreshold),
	)
	return nil
}

// Stop drains pending notifications and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping perfect circle service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "perfect circle service stopped")
}

// Scorer returns the configured scorer.
func (s *Service) Scorer() scoring.Scorer { return s.scorer }

// AppURL returns the public link used in share texts.
func (s *Service) AppURL() string { return s.appURL }

// MaxStrokePoints returns the per-stroke sample bound.
func (s *Service) MaxStrokePoints() int { return s.maxPoints }

func (s *Service) newMachine(surface model.Surface) capture.Machine {
	return capture.New(surface, capture.WithScorer(s.scorer), capture.WithMaxPoints(s.maxPoints))
}

// Complete runs the side effects of a finished stroke and builds the
// response. Side effects never alter the score.
func (s *Service) Complete(ctx context.Context, c capture.Completion) types.ScoreResponse {
	points := c.Stroke.Len()
	if c.Insufficient() {
		s.insufficient.Add(1)
		metrics.RecordStrokeInsufficient(points)
		return types.ScoreResponse{
			Status: types.StatusInsufficient,
			Points: points,
			Hint:   scoring.HintMessage,
		}
	}

	res := *c.Result
	s.scored.Add(1)
	metrics.RecordStrokeScored(res.Score, res.Breakdown.Circularity, res.Breakdown.Perimeter, res.Breakdown.Closure, points)

	high := scoring.IsHighScore(res.Score, s.highScoreThreshold)
	if high {
		s.highScores.Add(1)
		metrics.RecordHighScore()
		s.notifyHighScore(ctx, res.Score)
	}

	feedback := scoring.FeedbackFor(res.Score)
	share := platform.ComposeShare(res.Score, platform.ShareScore, s.appURL)
	challenge := platform.ComposeShare(res.Score, platform.ShareChallenge, s.appURL)

	s.logger.Debug(ctx, "stroke scored",
		logger.Int("score", res.Score),
		logger.Int("points", points),
		logger.Float64("radius", res.Circle.Radius),
		logger.Bool("high", high),
	)

	return types.ScoreResponse{
		Status:    types.StatusScored,
		Score:     res.Score,
		Points:    points,
		HighScore: high,
		Circle:    &res.Circle,
		Breakdown: &res.Breakdown,
		Feedback:  &feedback,
		Share:     &share,
		Challenge: &challenge,
	}
}

// notifyHighScore hands a notification to the queue without waiting.
func (s *Service) notifyHighScore(ctx context.Context, score int) {
	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()

	n := platform.HighScoreNotification(score, s.appURL)
	if !started || q == nil || !q.Enqueue(ctx, n) {
		s.dropped.Add(1)
		metrics.RecordNotificationDropped()
		s.logger.Debug(ctx, "high score notification dropped", logger.Int("score", score))
		return
	}
	metrics.RecordNotificationEnqueued()
}

// score replays req through a fresh capture machine.
func (s *Service) score(req types.StrokeRequest) (capture.Completion, error) {
	if err := req.Validate(s.maxPoints); err != nil {
		return capture.Completion{}, fmt.Errorf("%w: %w", ErrInvalidStroke, err)
	}

	start := time.Now()
	m := s.newMachine(req.Surface()).Begin(req.Points[0])
	for _, p := range req.Points[1:] {
		m = m.Move(p)
	}
	_, done, _ := m.End()
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	return done, nil
}

// ScoreStroke scores a complete stroke submitted in one request.
func (s *Service) ScoreStroke(ctx context.Context, req types.StrokeRequest) (types.ScoreResponse, error) {
	done, err := s.score(req)
	if err != nil {
		return types.ScoreResponse{}, err
	}
	return s.Complete(ctx, done), nil
}

// RenderCard scores req and draws its share card.
func (s *Service) RenderCard(ctx context.Context, req types.StrokeRequest) (render.Card, error) {
	done, err := s.score(req)
	if err != nil {
		return render.Card{}, err
	}
	if done.Insufficient() {
		return render.Card{}, fmt.Errorf("%w: %d points", ErrInsufficientSamples, done.Stroke.Len())
	}

	card, err := s.renderer.Render(done.Stroke, req.Surface(), done.Result)
	if err != nil {
		s.logger.Error(ctx, "card render failed", logger.Error(err))
		return render.Card{}, fmt.Errorf("render card: %w", err)
	}
	return card, nil
}

// RecordWebhook remembers a webhook body and reports whether it was a retry.
func (s *Service) RecordWebhook(ctx context.Context, eventType string, body []byte) bool {
	s.webhooks.Add(1)
	metrics.RecordWebhookReceived(eventType)

	duplicate := s.deduper.SeenAndRecord(ctx, dedupe.Key(body))
	if duplicate {
		s.duplicates.Add(1)
		metrics.RecordWebhookDuplicate()
	}
	return duplicate
}

// Share composes the message for score and offers it to the host share sheet.
func (s *Service) Share(ctx context.Context, score int, kind platform.ShareKind) platform.ShareOutcome {
	return s.ShareWith(ctx, s.caps, score, kind)
}

// ShareWith is Share with caller-provided capabilities, used by live sessions
// whose haptics reach the player's device.
func (s *Service) ShareWith(ctx context.Context, caps platform.Capabilities, score int, kind platform.ShareKind) platform.ShareOutcome {
	if caps.Sharer == nil {
		caps.Sharer = s.caps.Sharer
	}
	return platform.Share(ctx, caps, platform.ComposeShare(score, kind, s.appURL))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":            s.started,
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"dedupeSize":         s.dedupeSize,
		"highScoreThreshold": s.highScoreThreshold,
		"strokesScored":      s.scored.Load(),
		"strokesShort":       s.insufficient.Load(),
		"highScores":         s.highScores.Load(),
		"notificationsDrop":  s.dropped.Load(),
		"webhooks":           s.webhooks.Load(),
		"webhookDuplicates":  s.duplicates.Load(),
		"activeSessions":     s.sessions.Load(),
		"dedupeEntries":      s.deduper.Size(),
	}

	if s.started {
		queueLen := s.queue.Len()
		delivered, failed := s.pool.Stats()
		stats["queueLength"] = queueLen
		stats["notificationsSent"] = delivered
		stats["notificationsFailed"] = failed
		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
