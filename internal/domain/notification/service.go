package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/docportal/docportal/internal/platform/device"
)

// Registration is the tagged outcome of a push-registration attempt. The
// portal never performs a remote push round-trip: a granted permission
// yields a local-only registration, so callers cannot mistake it for a
// server-linked one.
type Registration string

const (
	RegistrationLocalOnly Registration = "local-only"
	RegistrationDenied    Registration = "denied"
)

// Service is the sole owner of the persisted notification list and of
// device-level local-notification scheduling.
type Service struct {
	repo     Repository
	notifier device.Notifier
	logger   zerolog.Logger
	channel  string
}

// NewService creates a notification Service. channel names the Android
// notification channel provisioned during push registration.
func NewService(repo Repository, notifier device.Notifier, logger zerolog.Logger, channel string) *Service {
	if channel == "" {
		channel = "default"
	}
	return &Service{repo: repo, notifier: notifier, logger: logger, channel: channel}
}

// Configure installs the foreground presentation policy: show the alert,
// play the sound, update the badge. Safe to call multiple times.
func (s *Service) Configure() {
	s.notifier.SetPresentation(device.Presentation{Alert: true, Sound: true, Badge: true})
}

// RegisterForPush requests notification permission and provisions the
// notification channel. Denial is not an error: scheduling-dependent
// features simply stay off. No backend registration happens here.
func (s *Service) RegisterForPush(ctx context.Context) Registration {
	granted, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("notification permission request failed")
		return RegistrationDenied
	}
	if !granted {
		s.logger.Info().Msg("notification permission denied; local reminders disabled")
		return RegistrationDenied
	}

	// Channel provisioning is best-effort; a failure must not block
	// registration.
	if err := s.notifier.EnsureChannel(ctx, s.channel, "Default"); err != nil {
		s.logger.Warn().Err(err).Str("channel", s.channel).Msg("notification channel setup failed")
	}

	return RegistrationLocalOnly
}

// ScheduleLocal schedules a device-level notification with an arbitrary
// trigger (nil means immediate) and returns its id.
func (s *Service) ScheduleLocal(ctx context.Context, title, body string, trigger *device.Trigger, data Data) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encoding notification data: %w", err)
	}

	id, err := s.notifier.Schedule(ctx, device.Content{Title: title, Body: body, Data: raw}, trigger)
	if err != nil {
		return "", fmt.Errorf("scheduling local notification: %w", err)
	}
	return id, nil
}

// SendImmediate schedules a device-level notification for immediate delivery.
func (s *Service) SendImmediate(ctx context.Context, title, body string, data Data) (string, error) {
	return s.ScheduleLocal(ctx, title, body, nil, data)
}

// CreateAppointmentReminder schedules a reminder minutesBefore minutes ahead
// of appointmentTime. Reminders are never scheduled for a time already past:
// the returned id is empty and nothing is scheduled.
func (s *Service) CreateAppointmentReminder(ctx context.Context, appointmentID int64, patientName string, appointmentTime time.Time, minutesBefore int) (string, error) {
	reminderTime := appointmentTime.Add(-time.Duration(minutesBefore) * time.Minute)
	if !reminderTime.After(time.Now()) {
		return "", nil
	}

	return s.ScheduleLocal(ctx,
		"Upcoming Appointment",
		fmt.Sprintf("You have an appointment with %s in %d minutes", patientName, minutesBefore),
		&device.Trigger{At: reminderTime},
		Data{Type: TypeAppointmentReminder, AppointmentID: appointmentID},
	)
}

// CreateAppointmentStatusNotification fires an immediate device-level
// notification for an appointment status change.
func (s *Service) CreateAppointmentStatusNotification(ctx context.Context, appointmentID int64, patientName, status, date, timeOfDay string) (string, error) {
	var title, body string
	switch status {
	case "cancelled":
		title = "Appointment Cancelled"
		body = fmt.Sprintf("The appointment with %s on %s at %s has been cancelled.", patientName, date, timeOfDay)
	case "completed":
		title = "Appointment Completed"
		body = fmt.Sprintf("The appointment with %s has been marked as completed.", patientName)
	case "missed":
		title = "Appointment Missed"
		body = fmt.Sprintf("The appointment with %s on %s at %s was missed.", patientName, date, timeOfDay)
	default:
		title = "Appointment Update"
		body = fmt.Sprintf("The status of your appointment with %s has been updated to %s.", patientName, status)
	}

	return s.SendImmediate(ctx, title, body, Data{
		Type:          "appointment_" + status,
		AppointmentID: appointmentID,
		Status:        status,
	})
}

// CancelScheduled cancels one pending device-level notification by id.
func (s *Service) CancelScheduled(ctx context.Context, id string) error {
	if err := s.notifier.Cancel(ctx, id); err != nil {
		return fmt.Errorf("cancelling notification %s: %w", id, err)
	}
	return nil
}

// CancelAllScheduled cancels every pending device-level notification.
func (s *Service) CancelAllScheduled(ctx context.Context) error {
	if err := s.notifier.CancelAll(ctx); err != nil {
		return fmt.Errorf("cancelling scheduled notifications: %w", err)
	}
	return nil
}

// List returns the persisted in-app notification list, newest first. Read
// failures degrade to an empty list; they are logged, never surfaced.
func (s *Service) List(ctx context.Context) []Record {
	records, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("reading in-app notifications failed")
		return []Record{}
	}
	return records
}

// SaveAll replaces the persisted list wholesale.
func (s *Service) SaveAll(ctx context.Context, records []Record) error {
	return s.repo.SaveAll(ctx, records)
}

// Add constructs a record from the given partial (title, body, data,
// display category), assigns a fresh unique id, the current timestamp, and
// unread state, and prepends it to the persisted list.
func (s *Service) Add(ctx context.Context, partial Record) (Record, error) {
	rec := partial
	rec.ID = newID()
	rec.Timestamp = time.Now().UTC().Format(time.RFC3339)
	rec.IsRead = false
	if rec.Type == "" {
		rec.Type = CategorySystem
	}

	err := s.repo.Update(ctx, func(records []Record) []Record {
		return append([]Record{rec}, records...)
	})
	if err != nil {
		return Record{}, fmt.Errorf("adding in-app notification: %w", err)
	}
	return rec, nil
}

// MarkRead sets isRead on the matching record. Marking an already-read
// record again is a no-op; marking an unknown id changes nothing.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	return s.repo.Update(ctx, func(records []Record) []Record {
		for i := range records {
			if records[i].ID == id {
				records[i].IsRead = true
			}
		}
		return records
	})
}

// MarkAllRead sets isRead on every record.
func (s *Service) MarkAllRead(ctx context.Context) error {
	return s.repo.Update(ctx, func(records []Record) []Record {
		for i := range records {
			records[i].IsRead = true
		}
		return records
	})
}

// Delete removes the matching record, preserving the order of the rest.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Update(ctx, func(records []Record) []Record {
		out := records[:0]
		for _, rec := range records {
			if rec.ID != id {
				out = append(out, rec)
			}
		}
		return out
	})
}

// Clear wipes the persisted list.
func (s *Service) Clear(ctx context.Context) error {
	return s.repo.SaveAll(ctx, []Record{})
}

// UnreadCount returns the number of unread records.
func (s *Service) UnreadCount(ctx context.Context) int {
	count := 0
	for _, rec := range s.List(ctx) {
		if !rec.IsRead {
			count++
		}
	}
	return count
}

// CreateTestNotification records a canned in-app notification of the given
// display category. Development helper, not part of the production flows.
func (s *Service) CreateTestNotification(ctx context.Context, category Category) (Record, error) {
	titles := map[Category]string{
		CategoryAppointment:  "Test Appointment",
		CategoryConsultation: "Test Consultation",
		CategoryCancelled:    "Test Cancellation",
		CategorySystem:       "Test Notification",
	}
	title, ok := titles[category]
	if !ok {
		category = CategorySystem
		title = titles[CategorySystem]
	}

	return s.Add(ctx, Record{
		Title: title,
		Body:  fmt.Sprintf("This is a test %s notification.", category),
		Data:  Data{Type: TypeTest},
		Type:  category,
	})
}
