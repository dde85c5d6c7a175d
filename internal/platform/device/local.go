package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalNotifier is an in-process Notifier implementation. Date-triggered
// notifications are delivered by timers; immediate notifications are
// delivered synchronously on the scheduling call. Delivery emits the
// received event stream, and Tap simulates a user interaction.
type LocalNotifier struct {
	logger zerolog.Logger

	mu           sync.Mutex
	granted      bool
	presentation Presentation
	channels     map[string]string
	pending      map[string]*pendingEntry
	received     map[int]Handler
	response     map[int]Handler
	nextSub      int
}

type pendingEntry struct {
	content Content
	at      time.Time
	timer   *time.Timer
}

// NewLocalNotifier creates a LocalNotifier with permission granted.
func NewLocalNotifier(logger zerolog.Logger) *LocalNotifier {
	return &LocalNotifier{
		logger:   logger,
		granted:  true,
		channels: make(map[string]string),
		pending:  make(map[string]*pendingEntry),
		received: make(map[int]Handler),
		response: make(map[int]Handler),
	}
}

// SetPermissionGranted controls the outcome of RequestPermission.
func (n *LocalNotifier) SetPermissionGranted(granted bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.granted = granted
}

// SetPresentation implements Notifier.
func (n *LocalNotifier) SetPresentation(p Presentation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.presentation = p
}

// RequestPermission implements Notifier.
func (n *LocalNotifier) RequestPermission(_ context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.granted, nil
}

// EnsureChannel implements Notifier.
func (n *LocalNotifier) EnsureChannel(_ context.Context, id, name string) error {
	if id == "" {
		return fmt.Errorf("channel id is required")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.channels[id] = name
	return nil
}

// Schedule implements Notifier.
func (n *LocalNotifier) Schedule(_ context.Context, content Content, trigger *Trigger) (string, error) {
	id := uuid.New().String()

	if trigger == nil || !trigger.At.After(time.Now()) {
		n.deliver(id, content)
		return id, nil
	}

	n.mu.Lock()
	entry := &pendingEntry{content: content, at: trigger.At}
	entry.timer = time.AfterFunc(time.Until(trigger.At), func() {
		n.mu.Lock()
		delete(n.pending, id)
		n.mu.Unlock()
		n.deliver(id, content)
	})
	n.pending[id] = entry
	n.mu.Unlock()

	return id, nil
}

// Cancel implements Notifier.
func (n *LocalNotifier) Cancel(_ context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	entry, ok := n.pending[id]
	if !ok {
		return nil
	}
	entry.timer.Stop()
	delete(n.pending, id)
	return nil
}

// CancelAll implements Notifier.
func (n *LocalNotifier) CancelAll(_ context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, entry := range n.pending {
		entry.timer.Stop()
		delete(n.pending, id)
	}
	return nil
}

// ListScheduled implements Notifier.
func (n *LocalNotifier) ListScheduled(_ context.Context) ([]Scheduled, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Scheduled, 0, len(n.pending))
	for id, entry := range n.pending {
		out = append(out, Scheduled{ID: id, Content: entry.content, At: entry.at})
	}
	return out, nil
}

// OnReceived implements Notifier.
func (n *LocalNotifier) OnReceived(h Handler) func() {
	return n.subscribe(n.received, h)
}

// OnResponse implements Notifier.
func (n *LocalNotifier) OnResponse(h Handler) func() {
	return n.subscribe(n.response, h)
}

func (n *LocalNotifier) subscribe(stream map[int]Handler, h Handler) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextSub
	n.nextSub++
	stream[id] = h
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(stream, id)
	}
}

// Tap simulates the user interacting with a delivered notification and
// emits the response event stream.
func (n *LocalNotifier) Tap(content Content) {
	n.emit(n.response, content)
}

func (n *LocalNotifier) deliver(id string, content Content) {
	n.logger.Debug().
		Str("notification_id", id).
		Str("title", content.Title).
		Msg("local notification delivered")
	n.emit(n.received, content)
}

func (n *LocalNotifier) emit(stream map[int]Handler, content Content) {
	n.mu.Lock()
	handlers := make([]Handler, 0, len(stream))
	for _, h := range stream {
		handlers = append(handlers, h)
	}
	n.mu.Unlock()

	for _, h := range handlers {
		h(content)
	}
}
