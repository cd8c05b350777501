package service

import (
	"github.com/okian/perfectcircle/internal/domain/scoring"
	"github.com/okian/perfectcircle/internal/platform"
	"github.com/okian/perfectcircle/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScoringParams sets the scorer thresholds.
func WithScoringParams(p scoring.Params) Option {
	return func(s *Service) {
		s.params = p
	}
}

// WithHighScoreThreshold sets the score from which a notification is sent.
func WithHighScoreThreshold(n int) Option {
	return func(s *Service) {
		if n >= 0 && n <= scoring.MaxScore {
			s.highScoreThreshold = n
		}
	}
}

// WithMaxStrokePoints bounds the samples kept per stroke.
func WithMaxStrokePoints(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPoints = n
		}
	}
}

// WithQueueSize sets the notification queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of notification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize sets how many webhook bodies are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithCardMaxSide bounds rendered share cards.
func WithCardMaxSide(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cardMaxSide = n
		}
	}
}

// WithAppURL sets the link used in share messages and notifications.
func WithAppURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.appURL = url
		}
	}
}

// WithCapabilities sets the host platform capabilities.
func WithCapabilities(c platform.Capabilities) Option {
	return func(s *Service) {
		s.caps = c
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
