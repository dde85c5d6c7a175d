package appointment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/docportal/docportal/internal/domain/notification"
)

// Reminder offsets, in minutes before the appointment start.
var reminderOffsets = []int{10, 60}

// Notifier wraps the notification service with the appointment lifecycle
// flows: booking reminders, cancellations, completions, and misses. Every
// flow is best-effort; a notification failure never fails the appointment
// operation that triggered it.
type Notifier struct {
	svc    *notification.Service
	logger zerolog.Logger
}

func NewNotifier(svc *notification.Service, logger zerolog.Logger) *Notifier {
	return &Notifier{svc: svc, logger: logger}
}

// ScheduleAppointmentNotifications schedules the booking reminders for an
// appointment and records a "new appointment" entry carrying the reminder
// ids so a later cancellation can find them. Reminders whose time already
// passed are skipped silently, and an unparseable start time is logged and
// skipped entirely.
func (n *Notifier) ScheduleAppointmentNotifications(ctx context.Context, appt Appointment) []string {
	start, err := appt.StartTime()
	if err != nil {
		n.logger.Warn().Err(err).Int64("appointment_id", appt.ID).
			Msg("unparseable appointment start time; skipping reminders")
		return nil
	}

	var reminderIDs []string
	for _, minutes := range reminderOffsets {
		id, err := n.svc.CreateAppointmentReminder(ctx, appt.ID, appt.PatientName, start, minutes)
		if err != nil {
			n.logger.Warn().Err(err).Int64("appointment_id", appt.ID).Int("minutes_before", minutes).
				Msg("scheduling appointment reminder failed")
			continue
		}
		if id != "" {
			reminderIDs = append(reminderIDs, id)
		}
	}

	_, err = n.svc.Add(ctx, notification.Record{
		Title: "New Appointment",
		Body:  fmt.Sprintf("You have a new appointment with %s on %s at %s.", appt.PatientName, appt.LocaleDate(), appt.Time),
		Data: notification.Data{
			Type:          notification.TypeAppointment,
			AppointmentID: appt.ID,
			ReminderIDs:   reminderIDs,
		},
		Type: notification.CategoryAppointment,
	})
	if err != nil {
		n.logger.Warn().Err(err).Int64("appointment_id", appt.ID).Msg("recording appointment notification failed")
	}

	return reminderIDs
}

// CancelAppointmentNotifications cancels the pending reminders for an
// appointment. When no reminder ids are passed, it finds them on the stored
// "new appointment" record; an appointment without one is a silent no-op.
func (n *Notifier) CancelAppointmentNotifications(ctx context.Context, appointmentID int64, reminderIDs ...string) {
	ids := reminderIDs
	if len(ids) == 0 {
		for _, rec := range n.svc.List(ctx) {
			if rec.Data.Type == notification.TypeAppointment && rec.Data.AppointmentID == appointmentID {
				ids = rec.Data.ReminderIDs
				break
			}
		}
	}

	for _, id := range ids {
		if err := n.svc.CancelScheduled(ctx, id); err != nil {
			n.logger.Warn().Err(err).Int64("appointment_id", appointmentID).Str("reminder_id", id).
				Msg("cancelling appointment reminder failed")
		}
	}
}

// HandleAppointmentCancellation cancels the pending reminders, records the
// in-app cancellation entry, and fires the device-level alert.
func (n *Notifier) HandleAppointmentCancellation(ctx context.Context, appt Appointment) {
	n.CancelAppointmentNotifications(ctx, appt.ID)

	_, err := n.svc.Add(ctx, notification.Record{
		Title: "Appointment Cancelled",
		Body:  fmt.Sprintf("The appointment with %s on %s has been cancelled.", appt.PatientName, appt.LocaleDate()),
		Data: notification.Data{
			Type:          notification.TypeAppointmentCancelled,
			AppointmentID: appt.ID,
		},
		Type: notification.CategoryCancelled,
	})
	if err != nil {
		n.logger.Warn().Err(err).Int64("appointment_id", appt.ID).Msg("recording cancellation notification failed")
	}

	if _, err := n.svc.CreateAppointmentStatusNotification(ctx, appt.ID, appt.PatientName, "cancelled", appt.LocaleDate(), appt.Time); err != nil {
		n.logger.Warn().Err(err).Int64("appointment_id", appt.ID).Msg("sending cancellation alert failed")
	}
}

// NotifyConsultationComplete records the in-app completion entry and fires
// the device-level alert once a consultation wraps up.
func (n *Notifier) NotifyConsultationComplete(ctx context.Context, appt Appointment, consultationID int64) {
	_, err := n.svc.Add(ctx, notification.Record{
		Title: "Consultation Completed",
		Body:  fmt.Sprintf("The consultation with %s has been completed.", appt.PatientName),
		Data: notification.Data{
			Type:           notification.TypeConsultationCompleted,
			AppointmentID:  appt.ID,
			ConsultationID: consultationID,
		},
		Type: notification.CategoryConsultation,
	})
	if err != nil {
		n.logger.Warn().Err(err).Int64("appointment_id", appt.ID).Msg("recording consultation notification failed")
	}

	if _, err := n.svc.CreateAppointmentStatusNotification(ctx, appt.ID, appt.PatientName, "completed", appt.LocaleDate(), appt.Time); err != nil {
		n.logger.Warn().Err(err).Int64("appointment_id", appt.ID).Msg("sending completion alert failed")
	}
}

// HandleMissedAppointment cancels any pending reminders, records the in-app
// missed entry, and fires the device-level alert.
func (n *Notifier) HandleMissedAppointment(ctx context.Context, appt Appointment) {
	n.CancelAppointmentNotifications(ctx, appt.ID)

	_, err := n.svc.Add(ctx, notification.Record{
		Title: "Appointment Missed",
		Body:  fmt.Sprintf("The appointment with %s on %s was missed.", appt.PatientName, appt.LocaleDate()),
		Data: notification.Data{
			Type:          notification.TypeAppointmentMissed,
			AppointmentID: appt.ID,
		},
		Type: notification.CategoryCancelled,
	})
	if err != nil {
		n.logger.Warn().Err(err).Int64("appointment_id", appt.ID).Msg("recording missed-appointment notification failed")
	}

	if _, err := n.svc.CreateAppointmentStatusNotification(ctx, appt.ID, appt.PatientName, "missed", appt.LocaleDate(), appt.Time); err != nil {
		n.logger.Warn().Err(err).Int64("appointment_id", appt.ID).Msg("sending missed-appointment alert failed")
	}
}
