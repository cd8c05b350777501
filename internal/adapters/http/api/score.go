package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/perfectcircle/internal/app"
	"github.com/okian/perfectcircle/internal/domain/scoring"
	"github.com/okian/perfectcircle/internal/domain/types"
	"github.com/okian/perfectcircle/internal/platform"
	"github.com/okian/perfectcircle/internal/render"
	"github.com/okian/perfectcircle/pkg/logger"
)

const (
	defaultMaxBodyBytes = 1 << 20
	cardCacheControl    = "no-cache"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	if err := dec.Decode(v); err != nil {
		return WrapKind("decode body", ErrBadRequest, err)
	}
	return nil
}

// ScoreHandler scores complete strokes.
type ScoreHandler struct {
	deps     Dependencies
	maxBytes int64
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies, maxBytes int64) *ScoreHandler {
	return &ScoreHandler{deps: deps, maxBytes: maxBytes}
}

// HandleScore handles POST /api/score.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req types.StrokeRequest
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}

	resp, err := h.deps.ScoreStroke(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStroke) {
			writeError(w, http.StatusBadRequest, "invalid_stroke", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind("score", ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// CardHandler renders share cards.
type CardHandler struct {
	deps     Dependencies
	maxBytes int64
	logger   logger.Logger
}

// NewCardHandler creates a new card handler.
func NewCardHandler(deps Dependencies, maxBytes int64, l logger.Logger) *CardHandler {
	return &CardHandler{deps: deps, maxBytes: maxBytes, logger: l}
}

// etagMatches reports whether an If-None-Match header names etag. Weak
// comparison applies, so the W/ prefix is ignored on both sides.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}

// HandleCard handles POST /api/card.
func (h *CardHandler) HandleCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req types.StrokeRequest
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}

	card, err := h.deps.RenderCard(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidStroke),
		errors.Is(err, render.ErrCanvasTooLarge),
		errors.Is(err, render.ErrInvalidSurface):
		writeError(w, http.StatusBadRequest, "invalid_stroke", err)
		return
	case errors.Is(err, service.ErrInsufficientSamples):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_samples",
			WrapKind(scoring.HintMessage, ErrUnprocessable, err))
		return
	default:
		h.logger.Error(r.Context(), "card failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind("card", ErrInternal, err))
		return
	}

	w.Header().Set("ETag", card.ETag)
	w.Header().Set("Cache-Control", cardCacheControl)
	if etagMatches(r.Header.Get("If-None-Match"), card.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(card.PNG)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(card.PNG)
}

// ShareHandler offers scores to the host share sheet.
type ShareHandler struct {
	deps Dependencies
}

// NewShareHandler creates a new share handler.
func NewShareHandler(deps Dependencies) *ShareHandler {
	return &ShareHandler{deps: deps}
}

// HandleShare handles POST /api/share.
func (h *ShareHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req types.ShareRequest
	if err := decodeJSON(w, r, defaultMaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if req.Score < 0 || req.Score > scoring.MaxScore {
		writeError(w, http.StatusBadRequest, "invalid_score",
			NewKind("score must be within 0..100", ErrBadRequest))
		return
	}
	if req.Kind != platform.ShareChallenge {
		req.Kind = platform.ShareScore
	}

	writeJSON(w, http.StatusOK, h.deps.Share(r.Context(), req.Score, req.Kind))
}
