// Package records is the clinic record service: Postgres-backed storage for
// doctors, patients, and appointments, with double-booking detection and the
// HTTP surface the front desk consumes.
package records

import "time"

// Appointment lifecycle statuses. The first four are the board statuses; the
// last two are reached through the check-in queue.
const (
	StatusScheduled  = "Scheduled"
	StatusCompleted  = "Completed"
	StatusCanceled   = "Canceled"
	StatusNoShow     = "No Show"
	StatusCheckedIn  = "Checked-In"
	StatusCheckedOut = "Checked-Out"
)

func validBoardStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCanceled, StatusNoShow:
		return true
	}
	return false
}

// Doctor is a bookable provider.
type Doctor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// Patient is a registered patient, abbreviated for search and roster
// responses.
type Patient struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PatientNo string `json:"patient_no"`
}

// Appointment is a calendar event row joined with its patient and doctor.
type Appointment struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	PatientID  string    `json:"patient_id"`
	DoctorID   string    `json:"doctor_id"`
	DoctorName string    `json:"doctor_name"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
}

// CheckInRow is one arrival-queue entry.
type CheckInRow struct {
	AppointmentID  string    `json:"appointment_id"`
	PatientName    string    `json:"patient_name"`
	PatientContact string    `json:"patient_contact"`
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
	Start          time.Time `json:"start"`
	DoctorName     string    `json:"doctor_name"`
}

// CreateAppointmentParams is a booking request.
type CreateAppointmentParams struct {
	PatientID string
	DoctorID  string
	Start     time.Time
	End       time.Time
	Reason    string
}

// CheckInFilter selects the arrival-queue window.
type CheckInFilter string

const (
	CheckInToday       CheckInFilter = "TODAY"
	CheckInCustomDate  CheckInFilter = "CUSTOM_DATE"
	CheckInCustomRange CheckInFilter = "CUSTOM_RANGE"
)

// CheckInQuery filters the arrival queue.
type CheckInQuery struct {
	Search string
	Filter CheckInFilter
	Start  time.Time
	End    time.Time
}

// RegistrationParams is the wizard payload persisted in one transaction.
type RegistrationParams struct {
	Name        string
	DateOfBirth time.Time
	Contact     string
	Email       string
	Address     string
	Gender      string

	Insurance *InsuranceParams
	History   *HistoryParams
}

// InsuranceParams is the optional insurance section.
type InsuranceParams struct {
	Provider     string
	PolicyNumber string
	ValidTill    *time.Time
	Active       bool
}

// HistoryParams is the optional medical history section.
type HistoryParams struct {
	Condition     string
	DiagnosedDate *time.Time
	Notes         string
}
