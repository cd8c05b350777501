package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/okian/perfectcircle/internal/domain/types"
	"github.com/okian/perfectcircle/pkg/logger"
)

// WebhookHandler acknowledges host platform callbacks.
type WebhookHandler struct {
	deps     Dependencies
	maxBytes int64
	logger   logger.Logger
	now      func() time.Time
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(deps Dependencies, maxBytes int64, l logger.Logger) *WebhookHandler {
	return &WebhookHandler{deps: deps, maxBytes: maxBytes, logger: l, now: time.Now}
}

// eventType returns the "type" member of an object payload.
func eventType(payload any) string {
	if obj, ok := payload.(map[string]any); ok {
		if t, ok := obj["type"].(string); ok {
			return t
		}
	}
	return ""
}

// HandleWebhook handles POST /api/webhook.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind("read webhook", ErrBadRequest, err))
		return
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", WrapKind("decode webhook", ErrBadRequest, err))
		return
	}

	kind := eventType(payload)
	duplicate := h.deps.RecordWebhook(r.Context(), kind, body)
	h.logger.Info(r.Context(), "webhook received",
		logger.String("type", kind),
		logger.Bool("duplicate", duplicate),
	)

	writeJSON(w, http.StatusOK, types.WebhookAck{
		Success:   true,
		Message:   "Webhook received successfully",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Duplicate: duplicate,
	})
}
