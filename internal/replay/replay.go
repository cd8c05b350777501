// Package replay posts synthetic strokes to a running server and checks that
// every returned score matches local scoring.
package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/perfectcircle/internal/domain/capture"
	"github.com/okian/perfectcircle/internal/domain/scoring"
	"github.com/okian/perfectcircle/internal/domain/types"
	"github.com/okian/perfectcircle/internal/strokegen"
	"github.com/okian/perfectcircle/pkg/logger"
)

// Defaults.
const (
	DefaultCount   = 100
	DefaultWorkers = 4
	DefaultTimeout = 10 * time.Second
)

var (
	// ErrUnhealthy is returned when the server health check fails.
	ErrUnhealthy = errors.New("server unhealthy")
	// ErrMismatch is returned when any server result disagrees with local scoring.
	ErrMismatch = errors.New("score mismatch")
)

// Config holds replay settings.
type Config struct {
	BaseURL string
	Count   int
	Seed    uint64
	Workers int
	Timeout time.Duration
	// Params must match the server's scoring configuration.
	Params scoring.Params
}

func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Count <= 0 {
		c.Count = DefaultCount
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Params.MinPoints == 0 {
		c.Params = scoring.DefaultParams()
	}
	return c
}

// Mismatch describes one disagreement.
type Mismatch struct {
	Index    int            `json:"index"`
	Kind     strokegen.Kind `json:"kind"`
	Status   string         `json:"status"`
	Expected int            `json:"expected"`
	Got      int            `json:"got"`
}

// Stats summarizes a run.
type Stats struct {
	Submitted    int
	Scored       int
	Insufficient int
	Failed       int
	Mismatches   []Mismatch
	Duration     time.Duration
}

// expectation is the local outcome for one sample.
type expectation struct {
	status string
	score  int
}

func expect(scorer scoring.Scorer, req types.StrokeRequest) expectation {
	m := capture.New(req.Surface(), capture.WithScorer(scorer)).Begin(req.Points[0])
	for _, p := range req.Points[1:] {
		m = m.Move(p)
	}
	_, done, _ := m.End()
	if done.Insufficient() {
		return expectation{status: types.StatusInsufficient}
	}
	return expectation{status: types.StatusScored, score: done.Result.Score}
}

// Run checks server health, submits cfg.Count samples concurrently and
// compares each response with local scoring.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	cfg = cfg.withDefaults()
	log := logger.Get().Named("replay")
	start := time.Now()
	client := &http.Client{Timeout: cfg.Timeout}

	log.Info(ctx, "starting replay",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed))

	if err := checkHealth(ctx, client, cfg.BaseURL); err != nil {
		return Stats{}, err
	}

	samples := strokegen.New(cfg.Seed).Samples(cfg.Count)
	scorer := scoring.NewCircleScorer(scoring.WithParams(cfg.Params))

	var (
		submitted, scored, insufficient, failed atomic.Int64
		mu                                      sync.Mutex
		mismatches                              []Mismatch
		wg                                      sync.WaitGroup
	)

	jobs := make(chan int, cfg.Workers*2)
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s := samples[i]
				submitted.Add(1)
				resp, err := submit(ctx, client, cfg.BaseURL, s.Request)
				if err != nil {
					failed.Add(1)
					log.Debug(ctx, "submit failed", logger.Int("index", i), logger.Error(err))
					continue
				}
				if resp.Status == types.StatusInsufficient {
					insufficient.Add(1)
				} else {
					scored.Add(1)
				}

				want := expect(scorer, s.Request)
				if want.status != resp.Status || want.score != resp.Score {
					mu.Lock()
					mismatches = append(mismatches, Mismatch{
						Index: i, Kind: s.Kind, Status: resp.Status, Expected: want.score, Got: resp.Score,
					})
					mu.Unlock()
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range samples {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	stats := Stats{
		Submitted:    int(submitted.Load()),
		Scored:       int(scored.Load()),
		Insufficient: int(insufficient.Load()),
		Failed:       int(failed.Load()),
		Mismatches:   mismatches,
		Duration:     time.Since(start),
	}

	log.Info(ctx, "replay finished",
		logger.Int("submitted", stats.Submitted),
		logger.Int("scored", stats.Scored),
		logger.Int("insufficient", stats.Insufficient),
		logger.Int("failed", stats.Failed),
		logger.Int("mismatches", len(stats.Mismatches)),
		logger.Duration("duration", stats.Duration))

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("replay interrupted: %w", err)
	}
	if len(stats.Mismatches) > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrMismatch, len(stats.Mismatches), stats.Submitted)
	}
	return stats, nil
}

func checkHealth(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func submit(ctx context.Context, client *http.Client, baseURL string, body types.StrokeRequest) (types.ScoreResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return types.ScoreResponse{}, fmt.Errorf("marshal stroke: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/score", bytes.NewReader(data))
	if err != nil {
		return types.ScoreResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return types.ScoreResponse{}, fmt.Errorf("post stroke: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.ScoreResponse{}, fmt.Errorf("post stroke: status %d", resp.StatusCode)
	}
	var out types.ScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return types.ScoreResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
