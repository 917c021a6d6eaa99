// Package checkin implements the front-desk arrival queue: a filtered list of
// the day's appointments with check-in/check-out row actions. The list is
// re-read from the backend after every successful mutation, so there is no
// optimistic state to reconcile.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brightwell-health/frontdesk/internal/schedule"
	"github.com/brightwell-health/frontdesk/pkg/logging"
)

// Filter selects the date window for the queue.
type Filter string

const (
	FilterToday       Filter = "TODAY"
	FilterCustomDate  Filter = "CUSTOM_DATE"
	FilterCustomRange Filter = "CUSTOM_RANGE"
)

// Row statuses the queue understands beyond the board's lifecycle.
const (
	StatusCheckedIn  = "Checked-In"
	StatusCheckedOut = "Checked-Out"
)

// Row actions.
const (
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
)

// Query is the list request sent to the backend.
type Query struct {
	Search string
	Filter Filter
	Start  time.Time // used by CUSTOM_DATE and CUSTOM_RANGE
	End    time.Time // used by CUSTOM_RANGE
}

// Row is one queue entry as listed by the backend.
type Row struct {
	AppointmentID  string    `json:"appointment_id"`
	PatientName    string    `json:"patient_name"`
	PatientContact string    `json:"patient_contact"`
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
	Start          time.Time `json:"start"`
	DoctorName     string    `json:"doctor_name"`
}

// Action returns the row action offered for the row's status: scheduled
// patients check in, everyone else checks out.
func (r Row) Action() string {
	if r.Status == string(schedule.StatusScheduled) {
		return ActionCheckIn
	}
	return ActionCheckOut
}

// Gateway is the backend surface the queue consumes.
type Gateway interface {
	ListCheckIns(ctx context.Context, q Query) ([]Row, error)
	CheckInPatient(ctx context.Context, appointmentID string, arrival time.Time) error
	CheckOutPatient(ctx context.Context, appointmentID string) error
}

// Queue owns the arrival list state. Methods are safe for concurrent use.
type Queue struct {
	gw       Gateway
	notifier schedule.Notifier
	logger   *logging.Logger

	mu    sync.Mutex
	query Query
	rows  []Row
}

// NewQueue builds an arrival queue defaulting to today's appointments.
func NewQueue(gw Gateway, notifier schedule.Notifier, logger *logging.Logger) *Queue {
	if gw == nil {
		panic("checkin: gateway required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Queue{
		gw:       gw,
		notifier: notifier,
		logger:   logger,
		query:    Query{Filter: FilterToday},
	}
}

// Rows returns the current list.
func (q *Queue) Rows() []Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Row(nil), q.rows...)
}

// Query returns the active list parameters.
func (q *Queue) Query() Query {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.query
}

// SetFilter switches the date window and reloads.
func (q *Queue) SetFilter(ctx context.Context, f Filter) error {
	q.mu.Lock()
	q.query.Filter = f
	q.mu.Unlock()
	return q.Refresh(ctx)
}

// SetDates sets the custom window bounds and reloads.
func (q *Queue) SetDates(ctx context.Context, start, end time.Time) error {
	q.mu.Lock()
	q.query.Start = start
	q.query.End = end
	q.mu.Unlock()
	return q.Refresh(ctx)
}

// SetSearch applies a settled search term and reloads. Debouncing keystrokes
// is the caller's concern; the queue only sees the final term.
func (q *Queue) SetSearch(ctx context.Context, term string) error {
	q.mu.Lock()
	q.query.Search = term
	q.mu.Unlock()
	return q.Refresh(ctx)
}

// Refresh re-reads the list for the active query. On failure the prior rows
// stay in place.
func (q *Queue) Refresh(ctx context.Context) error {
	q.mu.Lock()
	query := q.query
	q.mu.Unlock()

	rows, err := q.gw.ListCheckIns(ctx, query)
	if err != nil {
		q.logger.Error("check-in list load failed", "filter", query.Filter, "error", err)
		q.notify("Error Loading Data", "Could not fetch appointments.", schedule.SeverityError)
		return fmt.Errorf("checkin: list: %w", err)
	}
	q.mu.Lock()
	q.rows = rows
	q.mu.Unlock()
	return nil
}

// CheckIn records the patient's arrival and reloads the queue.
func (q *Queue) CheckIn(ctx context.Context, appointmentID, patientName string, arrival time.Time) error {
	if err := q.gw.CheckInPatient(ctx, appointmentID, arrival); err != nil {
		q.logger.Error("check-in rejected", "appointment_id", appointmentID, "error", err)
		q.notify("Check-In Failed", rejectionMessage(err, "Could not check the patient in."), schedule.SeverityError)
		return fmt.Errorf("checkin: check in: %w", err)
	}
	q.notify("Success", fmt.Sprintf("%s has been checked in.", patientName), schedule.SeveritySuccess)
	return q.Refresh(ctx)
}

// CheckOut completes the visit and reloads the queue.
func (q *Queue) CheckOut(ctx context.Context, appointmentID, patientName string) error {
	if err := q.gw.CheckOutPatient(ctx, appointmentID); err != nil {
		q.logger.Error("check-out rejected", "appointment_id", appointmentID, "error", err)
		q.notify("Check-Out Failed", rejectionMessage(err, "Could not check the patient out."), schedule.SeverityError)
		return fmt.Errorf("checkin: check out: %w", err)
	}
	q.notify("Success", fmt.Sprintf("%s has been checked out.", patientName), schedule.SeveritySuccess)
	return q.Refresh(ctx)
}

func (q *Queue) notify(title, message string, severity schedule.Severity) {
	if q.notifier != nil {
		q.notifier.Notify(title, message, severity)
	}
}

func rejectionMessage(err error, fallback string) string {
	var m interface{ UserMessage() string }
	if errors.As(err, &m) && m.UserMessage() != "" {
		return m.UserMessage()
	}
	return fallback
}
