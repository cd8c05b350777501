// Package platform abstracts the optional capabilities of the host social
// platform: haptics, notifications and native sharing. Each capability is an
// interface chosen once at startup; absent capabilities are no-ops.
package platform

import (
	"context"

	"github.com/okian/perfectcircle/internal/domain/model"
)

// Style is a haptic impact intensity.
type Style string

// Impact styles.
const (
	Light  Style = "light"
	Medium Style = "medium"
)

// Haptics triggers tactile feedback on the player's device.
type Haptics interface {
	Impact(ctx context.Context, style Style)
}

// Notifier delivers a push notification to the player.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// Sharer hands a message to the host's native share sheet.
type Sharer interface {
	Share(ctx context.Context, msg ShareMessage) error
}

// Capabilities is the set of host features available to the service.
type Capabilities struct {
	Haptics  Haptics
	Notifier Notifier
	Sharer   Sharer
}

// WithDefaults returns a copy with nil members replaced by no-ops.
func (c Capabilities) WithDefaults() Capabilities {
	if c.Haptics == nil {
		c.Haptics = NopHaptics{}
	}
	if c.Notifier == nil {
		c.Notifier = NopNotifier{}
	}
	if c.Sharer == nil {
		c.Sharer = NopSharer{}
	}
	return c
}

// NopHaptics ignores impacts.
type NopHaptics struct{}

// Impact implements Haptics.
func (NopHaptics) Impact(context.Context, Style) {}

// NopNotifier drops notifications.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, model.Notification) error { return nil }

// NopSharer reports that native sharing is unavailable, which sends callers
// down the fallback path.
type NopSharer struct{}

// Share implements Sharer.
func (NopSharer) Share(context.Context, ShareMessage) error { return ErrShareUnavailable }

// HapticsFunc adapts a function to Haptics.
type HapticsFunc func(ctx context.Context, style Style)

// Impact implements Haptics.
func (f HapticsFunc) Impact(ctx context.Context, style Style) { f(ctx, style) }
