package appointment

import (
	"fmt"
	"time"
)

// Appointment is the slice of the scheduling record the notification flows
// need: who the patient is and when the visit happens. Date uses the wire
// format "2006-01-02" and Time the clock format "3:04 PM".
type Appointment struct {
	ID          int64  `json:"id"`
	PatientName string `json:"patientName"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// StartTime combines Date and Time into a single local timestamp.
func (a Appointment) StartTime() (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 3:04 PM", a.Date+" "+a.Time, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing appointment %d start time: %w", a.ID, err)
	}
	return t, nil
}

// LocaleDate renders Date as M/D/YYYY without zero padding, the way the
// notification bodies present dates ("5/21/2025").
func (a Appointment) LocaleDate() string {
	t, err := time.Parse("2006-01-02", a.Date)
	if err != nil {
		return a.Date
	}
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}
