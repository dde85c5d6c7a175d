// Package device abstracts the OS-level notification facility: permission
// requests, channel provisioning, scheduling and cancellation of local
// alerts, and the two event streams (received while foregrounded, and
// tapped/interacted-with) the app subscribes to.
package device

import (
	"context"
	"encoding/json"
	"time"
)

// Content is the displayable payload of a local notification. Data carries
// the routing payload verbatim; callers own its schema.
type Content struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Trigger describes when a scheduled notification fires. A nil *Trigger
// means immediate delivery.
type Trigger struct {
	At time.Time
}

// Presentation is the foreground presentation policy: whether an arriving
// notification shows an alert, plays a sound, and updates the badge.
type Presentation struct {
	Alert bool
	Sound bool
	Badge bool
}

// Scheduled describes a pending device-level notification.
type Scheduled struct {
	ID      string    `json:"id"`
	Content Content   `json:"content"`
	At      time.Time `json:"at"`
}

// Handler receives delivered or interacted-with notification content.
type Handler func(Content)

// Notifier is the device notification facility.
type Notifier interface {
	// SetPresentation installs the foreground presentation policy.
	// Safe to call multiple times.
	SetPresentation(Presentation)

	// RequestPermission asks the OS for notification permission. A false
	// result with nil error means the user denied the request.
	RequestPermission(ctx context.Context) (bool, error)

	// EnsureChannel provisions a notification channel (Android). A no-op
	// on platforms without channels.
	EnsureChannel(ctx context.Context, id, name string) error

	// Schedule registers a notification for delivery at the trigger time
	// (immediately when trigger is nil) and returns its id.
	Schedule(ctx context.Context, content Content, trigger *Trigger) (string, error)

	// Cancel removes a pending scheduled notification by id.
	Cancel(ctx context.Context, id string) error

	// CancelAll removes every pending scheduled notification.
	CancelAll(ctx context.Context) error

	// ListScheduled returns all pending scheduled notifications.
	ListScheduled(ctx context.Context) ([]Scheduled, error)

	// OnReceived subscribes to notifications delivered while the app is
	// foregrounded. The returned function detaches the subscription.
	OnReceived(Handler) (remove func())

	// OnResponse subscribes to user taps/interactions on notifications.
	// The returned function detaches the subscription.
	OnResponse(Handler) (remove func())
}
