package schedule

import (
	"context"
	"time"
)

// CreateRequest carries a committed booking draft to the backend.
type CreateRequest struct {
	PatientID string
	DoctorID  string
	Start     time.Time
	End       time.Time
	Reason    string
}

// Gateway is the record backend's RPC surface as consumed by the board. Every
// call is issued at most once from this side; the session never re-issues a
// mutating call on failure. Rejections should carry a displayable message via
// UserMessage() where the backend provided one.
type Gateway interface {
	ListDepartments(ctx context.Context) ([]string, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)
	ListDoctorsByDepartment(ctx context.Context, department string) ([]Doctor, error)
	ListAppointments(ctx context.Context, doctorID string, start, end time.Time) ([]Appointment, error)
	SearchPatients(ctx context.Context, term string) ([]Patient, error)
	CreateAppointment(ctx context.Context, req CreateRequest) (string, error)
	RescheduleAppointment(ctx context.Context, id string, start, end time.Time) error
	SetAppointmentStatus(ctx context.Context, id string, status Status) error
	DeleteAppointment(ctx context.Context, id string) error
}
