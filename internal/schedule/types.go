// Package schedule implements the front-desk appointment board: calendar view
// state, the department/doctor filter cascade, optimistic mutations with
// rollback, and the booking/detail modal sessions. All state is owned by a
// Session and mutated only on its event loop.
package schedule

import (
	"errors"
	"time"
)

// Status enumerates appointment lifecycle states shown on the board.
type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCanceled  Status = "Canceled"
	StatusNoShow    Status = "No Show"
)

// Statuses lists the states selectable from the detail modal, in display order.
func Statuses() []Status {
	return []Status{StatusScheduled, StatusCompleted, StatusCanceled, StatusNoShow}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCanceled, StatusNoShow:
		return true
	}
	return false
}

// Appointment is a calendar event as rendered on the board.
type Appointment struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	PatientID  string    `json:"patient_id"`
	DoctorID   string    `json:"doctor_id"`
	DoctorName string    `json:"doctor_name"`
	Status     Status    `json:"status"`
}

// Doctor is a bookable provider.
type Doctor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// Patient is a search candidate in the booking modal.
type Patient struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PatientNo string `json:"patient_no"`
}

// Option is a labelled choice in a filter dropdown. An empty Value is the
// "all" sentinel.
type Option struct {
	Label string
	Value string
}

// Range is the calendar's visible [Start, End) window.
type Range struct {
	Start time.Time
	End   time.Time
}

// Severity classifies a user-facing notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notifier is the fire-and-forget toast sink.
type Notifier interface {
	Notify(title, message string, severity Severity)
}

// Surface is the rendering side of the calendar widget. The surface owns the
// drawn event set; it pulls events by invoking Session.Events with its current
// visible range, and Refetch asks it to do so again. SetLoading drives the
// busy indicator.
type Surface interface {
	Refetch()
	SetLoading(loading bool)
}

// EventDrop is the command object for a drag-reschedule. The surface has
// already moved the event visually; Revert must restore exactly the captured
// prior position however many times it is called.
type EventDrop struct {
	Event     Appointment // carries the new start/end
	PrevStart time.Time
	PrevEnd   time.Time
	Revert    func()
}

// userMessenger is implemented by gateway errors that carry a displayable
// backend message.
type userMessenger interface {
	UserMessage() string
}

// userMessage extracts a displayable message from a gateway rejection,
// falling back when the backend supplied none.
func userMessage(err error, fallback string) string {
	var um userMessenger
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
