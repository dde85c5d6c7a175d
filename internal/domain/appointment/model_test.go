package appointment

import (
	"testing"
	"time"
)

func TestAppointment_StartTime(t *testing.T) {
	appt := Appointment{ID: 1, Date: "2025-05-21", Time: "2:30 PM"}

	start, err := appt.StartTime()
	if err != nil {
		t.Fatalf("StartTime: %v", err)
	}
	want := time.Date(2025, 5, 21, 14, 30, 0, 0, time.Local)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
}

func TestAppointment_StartTimeRejectsBadInput(t *testing.T) {
	appt := Appointment{ID: 1, Date: "21-05-2025", Time: "2:30 PM"}
	if _, err := appt.StartTime(); err == nil {
		t.Error("expected an error for a malformed date")
	}
}

func TestAppointment_LocaleDate(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-05-21", "5/21/2025"},
		{"2025-12-03", "12/3/2025"},
		{"2025-01-01", "1/1/2025"},
		{"not-a-date", "not-a-date"},
	}
	for _, tc := range cases {
		appt := Appointment{Date: tc.date}
		if got := appt.LocaleDate(); got != tc.want {
			t.Errorf("LocaleDate(%q) = %q, want %q", tc.date, got, tc.want)
		}
	}
}
