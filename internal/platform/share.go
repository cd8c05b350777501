package platform

import (
	"context"
	"fmt"

	"github.com/okian/perfectcircle/pkg/logger"
	"github.com/okian/perfectcircle/pkg/metrics"
)

// ShareKind selects the wording of a share message.
type ShareKind string

// Share kinds.
const (
	ShareScore     ShareKind = "score"
	ShareChallenge ShareKind = "challenge"
)

// ShareMessage is the payload for the host share sheet.
type ShareMessage struct {
	Kind  ShareKind `json:"kind"`
	Title string    `json:"title"`
	Text  string    `json:"text"`
	URL   string    `json:"url"`
}

// ComposeShare builds the message for score. Unknown kinds fall back to ShareScore.
func ComposeShare(score int, kind ShareKind, appURL string) ShareMessage {
	if kind == ShareChallenge {
		return ShareMessage{
			Kind:  ShareChallenge,
			Title: "Perfect Circle Challenge",
			Text:  fmt.Sprintf("🎯 I scored %d%% on Perfect Circle! Think you can do better? Challenge me: %s", score, appURL),
			URL:   appURL,
		}
	}
	return ShareMessage{
		Kind:  ShareScore,
		Title: "Perfect Circle Score",
		Text:  fmt.Sprintf("🎯 I scored %d%% on Perfect Circle! Can you beat my score? Play now: %s", score, appURL),
		URL:   appURL,
	}
}

// ShareOutcome tells the client what happened. When Shared is false the
// client should copy Fallback to the clipboard.
type ShareOutcome struct {
	Kind     ShareKind `json:"kind"`
	Shared   bool      `json:"shared"`
	Fallback string    `json:"fallback,omitempty"`
}

// Share offers msg to caps.Sharer, then fires the haptic that goes with the
// kind. A failing sharer degrades to the fallback text and is never an error.
func Share(ctx context.Context, caps Capabilities, msg ShareMessage) ShareOutcome {
	caps = caps.WithDefaults()
	out := ShareOutcome{Kind: msg.Kind, Shared: true}

	if err := caps.Sharer.Share(ctx, msg); err != nil {
		logger.Get().Named("platform").Info(ctx, "share failed, using fallback",
			logger.String("kind", string(msg.Kind)),
			logger.Error(err))
		out.Shared = false
		out.Fallback = msg.Text
		metrics.RecordShare(string(msg.Kind), "fallback")
	} else {
		metrics.RecordShare(string(msg.Kind), "shared")
	}

	style := Light
	if msg.Kind == ShareChallenge {
		style = Medium
	}
	caps.Haptics.Impact(ctx, style)
	return out
}
