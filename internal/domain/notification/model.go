package notification

import (
	"sync"
	"time"
)

// Category is the coarse display category used by the notification list UI
// for icon and styling selection only. Routing never looks at it; routing
// uses the fine-grained Data.Type discriminator.
type Category string

const (
	CategoryAppointment  Category = "appointment"
	CategoryConsultation Category = "consultation"
	CategorySystem       Category = "system"
	CategoryCancelled    Category = "cancelled"
)

// Fine-grained routing discriminators carried in Data.Type.
const (
	TypeAppointment           = "appointment"
	TypeAppointmentReminder   = "appointment_reminder"
	TypeAppointmentCancelled  = "appointment_cancelled"
	TypeAppointmentMissed     = "appointment_missed"
	TypeConsultation          = "consultation"
	TypeConsultationCompleted = "consultation_completed"
	TypeSystem                = "system"
	TypeTest                  = "test"
)

// Data is the open routing payload attached to a notification. Type is the
// routing discriminator; the ids point the router at the right screen.
// ReminderIDs carries the device-level reminder ids a "new appointment"
// record owns, so they can be cancelled later.
type Data struct {
	Type           string   `json:"type,omitempty"`
	AppointmentID  int64    `json:"appointmentId,omitempty"`
	ConsultationID int64    `json:"consultationId,omitempty"`
	Status         string   `json:"status,omitempty"`
	ReminderIDs    []string `json:"reminderIds,omitempty"`
}

// Record is a persisted in-app notification.
type Record struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Data      Data     `json:"data"`
	Timestamp string   `json:"timestamp"`
	IsRead    bool     `json:"isRead"`
	Type      Category `json:"type"`
}

// id generation: millisecond timestamps bumped under a lock so ids stay
// unique and strictly increasing even within the same millisecond.
var (
	idMu   sync.Mutex
	lastID int64
)

func newID() int64 {
	idMu.Lock()
	defer idMu.Unlock()
	id := time.Now().UnixMilli()
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return id
}
