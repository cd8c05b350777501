package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okian/perfectcircle/internal/domain/model"
)

const defaultNotifyTimeout = 5 * time.Second

// HighScoreNotification builds the notification sent after a high score.
func HighScoreNotification(score int, appURL string) model.Notification {
	return model.Notification{
		ID:    uuid.NewString(),
		Title: "🎯 Amazing Score!",
		Body:  fmt.Sprintf("You scored %d%% on Perfect Circle! Share your achievement with friends!", score),
		Data: map[string]any{
			"score": score,
			"url":   appURL,
		},
		CreatedAt: time.Now().UTC(),
	}
}

// WebhookNotifier posts notifications as JSON to the host's notification endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

var _ Notifier = (*WebhookNotifier)(nil)

// NotifierOption applies a configuration option to the WebhookNotifier.
type NotifierOption func(*WebhookNotifier)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) NotifierOption {
	return func(n *WebhookNotifier) {
		if d > 0 {
			n.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) NotifierOption {
	return func(n *WebhookNotifier) {
		if c != nil {
			n.client = c
		}
	}
}

// NewWebhookNotifier creates a notifier targeting url.
func NewWebhookNotifier(url string, opts ...NotifierOption) *WebhookNotifier {
	n := &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: defaultNotifyTimeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type notificationPayload struct {
	NotificationID string         `json:"notificationId"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	Data           map[string]any `json:"data,omitempty"`
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, note model.Notification) error {
	if n.url == "" {
		return ErrNotifyDisabled
	}
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	body, err := json.Marshal(notificationPayload{
		NotificationID: note.ID,
		Title:          note.Title,
		Body:           note.Body,
		Data:           note.Data,
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrNotifyRejected, resp.StatusCode)
	}
	return nil
}
