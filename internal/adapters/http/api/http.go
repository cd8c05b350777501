// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/perfectcircle/internal/app"
	"github.com/okian/perfectcircle/internal/domain/model"
	"github.com/okian/perfectcircle/internal/domain/types"
	"github.com/okian/perfectcircle/internal/platform"
	"github.com/okian/perfectcircle/internal/render"
	"github.com/okian/perfectcircle/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// ScoreStroke scores a complete stroke.
	ScoreStroke(ctx context.Context, req types.StrokeRequest) (types.ScoreResponse, error)

	// RenderCard scores a stroke and draws its share card.
	RenderCard(ctx context.Context, req types.StrokeRequest) (render.Card, error)

	// RecordWebhook reports whether body was already received.
	RecordWebhook(ctx context.Context, eventType string, body []byte) bool

	// Share offers a score to the host share sheet.
	Share(ctx context.Context, score int, kind platform.ShareKind) platform.ShareOutcome

	// NewSession opens a live capture session.
	NewSession(surface model.Surface, opts ...service.SessionOption) *service.Session
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	manifestHandler *ManifestHandler
	imagesHandler   *ImagesHandler
	webhookHandler  *WebhookHandler
	scoreHandler    *ScoreHandler
	cardHandler     *CardHandler
	shareHandler    *ShareHandler
	liveHandler     *LiveHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	manifest       Manifest
	publicDir      string
	framesPerSec   int
	maxBodyBytes   int64
	sessionSurface model.Surface
	logger         logger.Logger
}

// WithManifest sets the host platform manifest.
func WithManifest(m Manifest) Option {
	return func(o *serverOptions) { o.manifest = m }
}

// WithPublicDir sets the directory served by /api/images.
func WithPublicDir(dir string) Option {
	return func(o *serverOptions) {
		if dir != "" {
			o.publicDir = dir
		}
	}
}

// WithFramesPerSecond limits inbound frames per live session.
func WithFramesPerSecond(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.framesPerSec = n
		}
	}
}

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{
		publicDir:      "public",
		framesPerSec:   defaultFramesPerSecond,
		maxBodyBytes:   defaultMaxBodyBytes,
		sessionSurface: model.Surface{Width: defaultSurfaceSide, Height: defaultSurfaceSide},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("api")
	}

	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		manifestHandler: NewManifestHandler(o.manifest),
		imagesHandler:   NewImagesHandler(o.publicDir),
		webhookHandler:  NewWebhookHandler(deps, o.maxBodyBytes, o.logger),
		scoreHandler:    NewScoreHandler(deps, o.maxBodyBytes),
		cardHandler:     NewCardHandler(deps, o.maxBodyBytes, o.logger),
		shareHandler:    NewShareHandler(deps),
		liveHandler:     NewLiveHandler(deps, o.sessionSurface, o.framesPerSec, o.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	get, post := http.MethodGet, http.MethodPost

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	manifest := CORSMiddleware(MetricsMiddleware(s.manifestHandler.HandleManifest, "manifest"), get)
	mux.HandleFunc("/api/farcaster", manifest)
	mux.HandleFunc("/.well-known/farcaster.json", manifest)

	mux.HandleFunc("/api/images", CORSMiddleware(MetricsMiddleware(s.imagesHandler.HandleImage, "images"), get))
	mux.HandleFunc("/api/webhook", CORSMiddleware(MetricsMiddleware(s.webhookHandler.HandleWebhook, "webhook"), post))
	mux.HandleFunc("/api/score", CORSMiddleware(MetricsMiddleware(s.scoreHandler.HandleScore, "score"), post))
	mux.HandleFunc("/api/card", CORSMiddleware(MetricsMiddleware(s.cardHandler.HandleCard, "card"), post))
	mux.HandleFunc("/api/share", CORSMiddleware(MetricsMiddleware(s.shareHandler.HandleShare, "share"), post))
	mux.HandleFunc("/api/ws", MetricsMiddleware(s.liveHandler.HandleLive, "ws"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
}
