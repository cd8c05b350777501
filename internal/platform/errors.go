package platform

import "errors"

var (
	// ErrShareUnavailable is returned when the host has no share sheet.
	ErrShareUnavailable = errors.New("share unavailable")
	// ErrNotifyRejected is returned when the notification endpoint answers with a non-2xx status.
	ErrNotifyRejected = errors.New("notification rejected")
	// ErrNotifyDisabled is returned when no notification URL is configured.
	ErrNotifyDisabled = errors.New("notifications disabled")
)
