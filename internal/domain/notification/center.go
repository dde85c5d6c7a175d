package notification

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/docportal/docportal/internal/platform/device"
	"github.com/docportal/docportal/internal/platform/navigation"
	"github.com/docportal/docportal/internal/platform/session"
)

// Center holds the live notification state the UI reads: the current list,
// the unread count, and a loading flag. It listens to the device streams,
// records incoming notifications, and routes taps.
type Center struct {
	svc      *Service
	notifier device.Notifier
	router   navigation.Router
	session  *session.Store
	logger   zerolog.Logger

	mu            sync.Mutex
	notifications []Record
	unreadCount   int
	loading       bool

	removeReceived func()
	removeResponse func()
}

// NewCenter creates a Center. Start must be called before the device
// streams feed it.
func NewCenter(svc *Service, notifier device.Notifier, router navigation.Router, sess *session.Store, logger zerolog.Logger) *Center {
	return &Center{
		svc:      svc,
		notifier: notifier,
		router:   router,
		session:  sess,
		logger:   logger,
	}
}

// Start configures presentation, loads the stored list, attaches the device
// listeners, and registers for notifications when a session is already
// authenticated. It then follows session changes until ctx is cancelled,
// registering on login.
func (c *Center) Start(ctx context.Context) {
	c.svc.Configure()
	c.Refresh(ctx)

	c.removeReceived = c.notifier.OnReceived(func(content device.Content) {
		c.handleReceived(ctx, content)
	})
	c.removeResponse = c.notifier.OnResponse(func(content device.Content) {
		c.handleResponse(content)
	})

	if c.session.Authenticated() {
		c.register(ctx)
	}

	watch := c.session.Watch()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-watch:
				if c.session.Authenticated() {
					c.register(ctx)
				}
			}
		}
	}()
}

// Stop detaches the device listeners. Idempotent.
func (c *Center) Stop() {
	if c.removeReceived != nil {
		c.removeReceived()
		c.removeReceived = nil
	}
	if c.removeResponse != nil {
		c.removeResponse()
		c.removeResponse = nil
	}
}

func (c *Center) register(ctx context.Context) {
	outcome := c.svc.RegisterForPush(ctx)
	c.logger.Info().Str("outcome", string(outcome)).Msg("notification registration")
}

// Refresh reloads the list from storage and recomputes the unread count.
func (c *Center) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	records := c.svc.List(ctx)

	unread := 0
	for _, rec := range records {
		if !rec.IsRead {
			unread++
		}
	}

	c.mu.Lock()
	c.notifications = records
	c.unreadCount = unread
	c.loading = false
	c.mu.Unlock()
}

// Notifications returns a copy of the current list, newest first.
func (c *Center) Notifications() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.notifications))
	copy(out, c.notifications)
	return out
}

// UnreadCount returns the current unread count.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unreadCount
}

// Loading reports whether a refresh is in flight.
func (c *Center) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// MarkAsRead marks one notification read and refreshes. Storage failures are
// logged and swallowed; the refresh still runs so the view matches storage.
func (c *Center) MarkAsRead(ctx context.Context, id int64) {
	c.bestEffort("mark notification read", func() error {
		return c.svc.MarkRead(ctx, id)
	})
	c.Refresh(ctx)
}

// MarkAllAsRead marks every notification read and refreshes.
func (c *Center) MarkAllAsRead(ctx context.Context) {
	c.bestEffort("mark all notifications read", func() error {
		return c.svc.MarkAllRead(ctx)
	})
	c.Refresh(ctx)
}

// DeleteNotification removes one notification and refreshes.
func (c *Center) DeleteNotification(ctx context.Context, id int64) {
	c.bestEffort("delete notification", func() error {
		return c.svc.Delete(ctx, id)
	})
	c.Refresh(ctx)
}

// ClearAll wipes the list and refreshes.
func (c *Center) ClearAll(ctx context.Context) {
	c.bestEffort("clear notifications", func() error {
		return c.svc.Clear(ctx)
	})
	c.Refresh(ctx)
}

func (c *Center) bestEffort(op string, fn func() error) {
	if err := fn(); err != nil {
		c.logger.Warn().Err(err).Str("op", op).Msg("notification operation failed")
	}
}

// handleReceived records a notification delivered while the portal is in the
// foreground as an in-app record, then refreshes.
func (c *Center) handleReceived(ctx context.Context, content device.Content) {
	data := decodeData(content.Data)

	c.bestEffort("record received notification", func() error {
		_, err := c.svc.Add(ctx, Record{
			Title: content.Title,
			Body:  content.Body,
			Data:  data,
			Type:  classify(data.Type),
		})
		return err
	})
	c.Refresh(ctx)
}

// classify maps a fine-grained payload type onto the coarse display
// category. The cancellation check runs first so appointment_cancelled and
// appointment_missed land under cancelled, not appointment.
func classify(payloadType string) Category {
	switch {
	case strings.Contains(payloadType, "cancelled"):
		return CategoryCancelled
	case strings.HasPrefix(payloadType, "appointment"):
		return CategoryAppointment
	case strings.Contains(payloadType, "consultation"):
		return CategoryConsultation
	default:
		return CategorySystem
	}
}

// handleResponse routes a tapped notification. The rules are ordered; the
// first match wins and the list screen is the final fallback.
func (c *Center) handleResponse(content device.Content) {
	data := decodeData(content.Data)

	var route navigation.Route
	switch {
	case data.Type == TypeAppointmentReminder && data.AppointmentID > 0:
		route = navigation.AppointmentDetail(data.AppointmentID)
	case data.Type == TypeAppointment && data.AppointmentID > 0:
		route = navigation.AppointmentDetail(data.AppointmentID)
	case data.Type == TypeAppointmentCancelled && data.AppointmentID > 0:
		route = navigation.AppointmentDetail(data.AppointmentID)
	case strings.Contains(data.Type, "consultation") && data.ConsultationID > 0:
		route = navigation.Consultation(data.ConsultationID)
	case strings.Contains(data.Type, "consultation_completed") && data.AppointmentID > 0:
		route = navigation.AppointmentDetail(data.AppointmentID)
	case data.AppointmentID > 0:
		route = navigation.AppointmentDetail(data.AppointmentID)
	default:
		route = navigation.NotificationList()
	}

	c.logger.Debug().Str("type", data.Type).Str("route", route.Path()).Msg("routing notification tap")
	c.router.Navigate(route)
}

// decodeData tolerates missing or malformed payloads; routing then falls
// through to the list screen.
func decodeData(raw json.RawMessage) Data {
	var data Data
	if len(raw) == 0 {
		return data
	}
	_ = json.Unmarshal(raw, &data)
	return data
}
