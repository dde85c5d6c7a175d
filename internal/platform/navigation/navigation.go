// Package navigation models the app router the notification subsystem
// issues commands to when a notification is tapped.
package navigation

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Route is a single navigation target.
type Route struct {
	Name           string `json:"name"`
	AppointmentID  int64  `json:"appointment_id,omitempty"`
	ConsultationID int64  `json:"consultation_id,omitempty"`
}

// AppointmentDetail builds the appointment detail route for an appointment id.
func AppointmentDetail(appointmentID int64) Route {
	return Route{Name: "appointment-detail", AppointmentID: appointmentID}
}

// Consultation builds the consultation route for a consultation id.
func Consultation(consultationID int64) Route {
	return Route{Name: "consultation", ConsultationID: consultationID}
}

// NotificationList builds the general notifications list route.
func NotificationList() Route {
	return Route{Name: "notifications"}
}

// Path returns the route's path form.
func (r Route) Path() string {
	switch r.Name {
	case "appointment-detail":
		return fmt.Sprintf("/appointments/%d", r.AppointmentID)
	case "consultation":
		return fmt.Sprintf("/consultations/%d", r.ConsultationID)
	default:
		return "/notifications"
	}
}

// Router receives navigation commands.
type Router interface {
	Navigate(Route)
}

// Recorder is a Router that records every command, for tests.
type Recorder struct {
	mu     sync.Mutex
	routes []Route
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Navigate implements Router.
func (r *Recorder) Navigate(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// Routes returns a copy of the recorded navigation commands.
func (r *Recorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Last returns the most recent command, or false if none was issued.
func (r *Recorder) Last() (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return Route{}, false
	}
	return r.routes[len(r.routes)-1], true
}

// LogRouter is a Router that logs each command; the server binary uses it
// since there is no UI process to drive.
type LogRouter struct {
	logger zerolog.Logger
}

// NewLogRouter creates a LogRouter.
func NewLogRouter(logger zerolog.Logger) *LogRouter {
	return &LogRouter{logger: logger}
}

// Navigate implements Router.
func (r *LogRouter) Navigate(route Route) {
	r.logger.Info().
		Str("route", route.Name).
		Str("path", route.Path()).
		Msg("navigation command")
}
