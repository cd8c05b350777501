// Command circlescore scores strokes offline and replays synthetic strokes
// against a running server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	app "github.com/okian/perfectcircle/internal/app"
	"github.com/okian/perfectcircle/internal/config"
	"github.com/okian/perfectcircle/internal/domain/types"
	"github.com/okian/perfectcircle/internal/replay"
	"github.com/okian/perfectcircle/pkg/logger"
)

const cardFilePermission = 0o600

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		os.Stderr.WriteString("circlescore: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cli := kingpin.New("circlescore", "Perfect circle scoring tools.")
	cli.Version("1.0.0")
	verbose := cli.Flag("verbose", "Log at debug level").Short('v').Bool()

	scoreCmd := cli.Command("score", "Score a JSON stroke file offline.")
	file := scoreCmd.Arg("file", "Stroke JSON: {width, height, points:[{x,y}...]}").Required().ExistingFile()
	cardOut := scoreCmd.Flag("card", "Also write the share card PNG here").Short('c').String()

	replayCmd := cli.Command("replay", "Post synthetic strokes to a server and verify the scores.")
	url := replayCmd.Flag("url", "Base URL of the server").Default("http://localhost:8080").Short('u').String()
	count := replayCmd.Flag("count", "Number of strokes").Default("100").Short('n').Int()
	seed := replayCmd.Flag("seed", "Generator seed").Default("1").Short('s').Uint64()
	workers := replayCmd.Flag("workers", "Concurrent submitters").Default("4").Short('w').Int()
	timeout := replayCmd.Flag("timeout", "Per-request timeout").Default("10s").Duration()

	cmd, err := cli.Parse(args)
	if err != nil {
		return fmt.Errorf("parse arguments: %w", err)
	}

	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	} else {
		_ = logger.SetLevelString("warn")
	}

	// scoring must agree with the server, so both read the same settings
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	switch cmd {
	case scoreCmd.FullCommand():
		return scoreFile(ctx, cfg, *file, *cardOut, stdout)
	case replayCmd.FullCommand():
		return runReplay(ctx, cfg, replay.Config{
			BaseURL: *url,
			Count:   *count,
			Seed:    *seed,
			Workers: *workers,
			Timeout: *timeout,
		}, stdout)
	}
	return nil
}

func scoreFile(ctx context.Context, cfg *config.Config, path, cardPath string, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read stroke: %w", err)
	}
	var req types.StrokeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode stroke: %w", err)
	}

	svc := app.New(
		app.WithScoringParams(cfg.ScoringParams()),
		app.WithHighScoreThreshold(cfg.HighScoreThreshold),
		app.WithMaxStrokePoints(cfg.MaxStrokePoints),
		app.WithCardMaxSide(cfg.CardMaxSide),
		app.WithAppURL(cfg.AppURL),
	)

	resp, err := svc.ScoreStroke(ctx, req)
	if err != nil {
		return err
	}

	if cardPath != "" && resp.Status == types.StatusScored {
		card, err := svc.RenderCard(ctx, req)
		if err != nil {
			return err
		}
		if err := os.WriteFile(cardPath, card.PNG, cardFilePermission); err != nil {
			return fmt.Errorf("write card: %w", err)
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

type replaySummary struct {
	Submitted    int               `json:"submitted"`
	Scored       int               `json:"scored"`
	Insufficient int               `json:"insufficient"`
	Failed       int               `json:"failed"`
	Mismatches   []replay.Mismatch `json:"mismatches,omitempty"`
	Duration     string            `json:"duration"`
}

func runReplay(ctx context.Context, cfg *config.Config, rc replay.Config, stdout io.Writer) error {
	rc.Params = cfg.ScoringParams()
	stats, runErr := replay.Run(ctx, rc)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(replaySummary{
		Submitted:    stats.Submitted,
		Scored:       stats.Scored,
		Insufficient: stats.Insufficient,
		Failed:       stats.Failed,
		Mismatches:   stats.Mismatches,
		Duration:     stats.Duration.Round(time.Millisecond).String(),
	}); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return runErr
}
