// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"

	"github.com/okian/perfectcircle/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// AppURL is the public URL used in share messages and the manifest.
	AppURL string `koanf:"app_url"`

	// PublicDir holds the images served by /api/images.
	PublicDir string `koanf:"public_dir"`

	// Scoring thresholds.
	MinPoints          int     `koanf:"min_points"`
	Leniency           float64 `koanf:"leniency"`
	WeightCircularity  float64 `koanf:"weight_circularity"`
	WeightPerimeter    float64 `koanf:"weight_perimeter"`
	WeightClosure      float64 `koanf:"weight_closure"`
	HighScoreThreshold int     `koanf:"high_score_threshold"`
	MaxStrokePoints    int     `koanf:"max_stroke_points"`

	// NotifyURL is the host notification endpoint. Empty disables delivery.
	NotifyURL       string `koanf:"notify_url"`
	NotifyTimeoutMS int    `koanf:"notify_timeout_ms"`
	NotifyQueueSize int    `koanf:"notify_queue_size"`
	NotifyWorkers   int    `koanf:"notify_workers"`

	// DedupeSize sets how many webhook bodies are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// CardMaxSide bounds the longest edge of rendered share cards.
	CardMaxSide int `koanf:"card_max_side"`

	// WSFramesPerSecond limits inbound frames per live session.
	WSFramesPerSecond int `koanf:"ws_frames_per_second"`

	// Manifest account association, signed by the host platform.
	AccountHeader    string `koanf:"account_header"`
	AccountPayload   string `koanf:"account_payload"`
	AccountSignature string `koanf:"account_signature"`

	// Manifest frame descriptor.
	AppName               string `koanf:"app_name"`
	IconURL               string `koanf:"icon_url"`
	ImageURL              string `koanf:"image_url"`
	SplashImageURL        string `koanf:"splash_image_url"`
	SplashBackgroundColor string `koanf:"splash_background_color"`
	Tagline               string `koanf:"tagline"`
	Description           string `koanf:"description"`
}

// New creates a Config with defaults.
func New() *Config {
	w := scoring.DefaultWeights()
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":8080",
		AppURL:                "https://perfect-circle-nine.vercel.app",
		PublicDir:             "public",
		MinPoints:             scoring.DefaultMinPoints,
		Leniency:              scoring.DefaultLeniency,
		WeightCircularity:     w.Circularity,
		WeightPerimeter:       w.Perimeter,
		WeightClosure:         w.Closure,
		HighScoreThreshold:    scoring.DefaultHighScoreThreshold,
		MaxStrokePoints:       10_000,
		NotifyTimeoutMS:       5_000,
		NotifyQueueSize:       1_024,
		NotifyWorkers:         2,
		DedupeSize:            4_096,
		CardMaxSide:           1_024,
		WSFramesPerSecond:     240,
		AppName:               "Perfect circle",
		IconURL:               "https://github.com/naina2728/perfect-circle/blob/main/public/icon.png",
		ImageURL:              "https://github.com/naina2728/perfect-circle/blob/main/header%20(1).png?raw=true",
		SplashImageURL:        "https://github.com/naina2728/perfect-circle/blob/main/splash%20(1).png?raw=true",
		SplashBackgroundColor: "#FFFFFF",
		Tagline:               "Draw the Impossible.",
		Description:           "Create a circle and share your score! ",
	}
}

// Weights returns the scoring weights.
func (c *Config) Weights() scoring.Weights {
	return scoring.Weights{
		Circularity: c.WeightCircularity,
		Perimeter:   c.WeightPerimeter,
		Closure:     c.WeightClosure,
	}
}

// ScoringParams returns the scorer parameters.
func (c *Config) ScoringParams() scoring.Params {
	return scoring.Params{
		MinPoints: c.MinPoints,
		Leniency:  c.Leniency,
		Weights:   c.Weights(),
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MinPoints < 1:
		return fmt.Errorf("%w: min_points must be at least 1", ErrInvalidConfig)
	case c.Leniency <= 0:
		return fmt.Errorf("%w: leniency must be positive", ErrInvalidConfig)
	case c.WeightCircularity < 0 || c.WeightPerimeter < 0 || c.WeightClosure < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidConfig)
	case c.WeightCircularity+c.WeightPerimeter+c.WeightClosure <= 0:
		return fmt.Errorf("%w: weights must not all be zero", ErrInvalidConfig)
	case c.HighScoreThreshold < 0 || c.HighScoreThreshold > scoring.MaxScore:
		return fmt.Errorf("%w: high_score_threshold must be within [0, 100]", ErrInvalidConfig)
	case c.MaxStrokePoints < c.MinPoints:
		return fmt.Errorf("%w: max_stroke_points must be at least min_points", ErrInvalidConfig)
	}
	return nil
}
