package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/brightwell-health/frontdesk/pkg/logging"
)

var recordsTracer = otel.Tracer("frontdesk.internal.records")

// PgxPool is the slice of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the persistence surface the HTTP handlers consume.
type Store interface {
	ListDepartments(ctx context.Context) ([]string, error)
	ListDoctors(ctx context.Context, department string) ([]Doctor, error)
	ListAppointments(ctx context.Context, doctorID string, from, to time.Time) ([]Appointment, error)
	SearchPatients(ctx context.Context, term string) ([]Patient, error)
	ListPatients(ctx context.Context) ([]Patient, error)
	CreateAppointment(ctx context.Context, p CreateAppointmentParams) (string, error)
	RescheduleAppointment(ctx context.Context, id string, start, end time.Time) error
	SetAppointmentStatus(ctx context.Context, id, status string) error
	DeleteAppointment(ctx context.Context, id string) error
	ListCheckIns(ctx context.Context, q CheckInQuery) ([]CheckInRow, error)
	CheckInPatient(ctx context.Context, id string, arrival time.Time) error
	CheckOutPatient(ctx context.Context, id string) error
	RegisterPatient(ctx context.Context, p RegistrationParams) (Patient, error)
}

// PostgresStore implements Store on pgx.
type PostgresStore struct {
	pool   PgxPool
	logger *logging.Logger
	now    func() time.Time
}

// NewPostgresStore wraps a pgx pool.
func NewPostgresStore(pool PgxPool, logger *logging.Logger) *PostgresStore {
	if pool == nil {
		panic("records: pgx pool required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PostgresStore{pool: pool, logger: logger, now: time.Now}
}

// ListDepartments returns the distinct departments doctors belong to.
func (s *PostgresStore) ListDepartments(ctx context.Context) ([]string, error) {
	ctx, span := recordsTracer.Start(ctx, "records.list_departments")
	defer span.End()

	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT department FROM doctors ORDER BY department
	`)
	if err != nil {
		return nil, fmt.Errorf("records: list departments: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var dep string
		if err := rows.Scan(&dep); err != nil {
			return nil, fmt.Errorf("records: scan department: %w", err)
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

// ListDoctors returns doctors, optionally scoped to one department.
func (s *PostgresStore) ListDoctors(ctx context.Context, department string) ([]Doctor, error) {
	ctx, span := recordsTracer.Start(ctx, "records.list_doctors")
	defer span.End()
	span.SetAttributes(attribute.String("records.department", department))

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, department FROM doctors
		WHERE $1 = '' OR department = $1
		ORDER BY name
	`, department)
	if err != nil {
		return nil, fmt.Errorf("records: list doctors: %w", err)
	}
	defer rows.Close()

	var out []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Department); err != nil {
			return nil, fmt.Errorf("records: scan doctor: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

const listAppointmentsSQL = `
	SELECT a.id, p.name, a.start_time, a.end_time, a.patient_id,
	       a.doctor_id, d.name, a.status, a.reason
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN doctors d ON d.id = a.doctor_id
	WHERE a.start_time < $2 AND a.end_time > $1
	  AND ($3 = '' OR a.doctor_id::text = $3)
	ORDER BY a.start_time
`

// ListAppointments returns events overlapping [from, to), optionally scoped
// to one doctor.
func (s *PostgresStore) ListAppointments(ctx context.Context, doctorID string, from, to time.Time) ([]Appointment, error) {
	ctx, span := recordsTracer.Start(ctx, "records.list_appointments")
	defer span.End()
	span.SetAttributes(attribute.String("records.doctor_id", doctorID))

	rows, err := s.pool.Query(ctx, listAppointmentsSQL, from, to, doctorID)
	if err != nil {
		return nil, fmt.Errorf("records: list appointments: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		var patientName string
		if err := rows.Scan(&a.ID, &patientName, &a.Start, &a.End, &a.PatientID,
			&a.DoctorID, &a.DoctorName, &a.Status, &a.Reason); err != nil {
			return nil, fmt.Errorf("records: scan appointment: %w", err)
		}
		a.Title = patientName
		out = append(out, a)
	}
	return out, rows.Err()
}

// SearchPatients matches the term against patient names and record numbers,
// best match first.
func (s *PostgresStore) SearchPatients(ctx context.Context, term string) ([]Patient, error) {
	ctx, span := recordsTracer.Start(ctx, "records.search_patients")
	defer span.End()

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, patient_no FROM patients
		WHERE name ILIKE '%' || $1 || '%' OR patient_no ILIKE '%' || $1 || '%'
		ORDER BY position(lower($1) in lower(name)), name
		LIMIT 20
	`, term)
	if err != nil {
		return nil, fmt.Errorf("records: search patients: %w", err)
	}
	defer rows.Close()
	return scanPatients(rows)
}

// ListPatients returns the full roster.
func (s *PostgresStore) ListPatients(ctx context.Context) ([]Patient, error) {
	ctx, span := recordsTracer.Start(ctx, "records.list_patients")
	defer span.End()

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, patient_no FROM patients ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("records: list patients: %w", err)
	}
	defer rows.Close()
	return scanPatients(rows)
}

func scanPatients(rows pgx.Rows) ([]Patient, error) {
	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.PatientNo); err != nil {
			return nil, fmt.Errorf("records: scan patient: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Canceled and no-show appointments do not hold their slot.
const slotConflictSQL = `
	SELECT EXISTS (
		SELECT 1 FROM appointments
		WHERE doctor_id::text = $1 AND id::text <> $2
		  AND status NOT IN ('Canceled', 'No Show')
		  AND start_time < $4 AND end_time > $3
	)
`

// CreateAppointment books a slot after checking the doctor is free.
func (s *PostgresStore) CreateAppointment(ctx context.Context, p CreateAppointmentParams) (string, error) {
	ctx, span := recordsTracer.Start(ctx, "records.create_appointment")
	defer span.End()
	span.SetAttributes(attribute.String("records.doctor_id", p.DoctorID))

	if !p.End.After(p.Start) {
		return "", ErrBadTimeRange
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("records: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var conflict bool
	if err := tx.QueryRow(ctx, slotConflictSQL, p.DoctorID, "", p.Start, p.End).Scan(&conflict); err != nil {
		return "", fmt.Errorf("records: conflict check: %w", err)
	}
	if conflict {
		return "", ErrSlotConflict
	}

	id := uuid.New()
	if _, err := tx.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, start_time, end_time, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'Scheduled')
	`, id, p.PatientID, p.DoctorID, p.Start, p.End, p.Reason); err != nil {
		return "", fmt.Errorf("records: insert appointment: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("records: commit: %w", err)
	}

	s.logger.Info("appointment booked", "appointment_id", id, "doctor_id", p.DoctorID)
	return id.String(), nil
}

// RescheduleAppointment moves an appointment, re-checking the target slot.
func (s *PostgresStore) RescheduleAppointment(ctx context.Context, id string, start, end time.Time) error {
	ctx, span := recordsTracer.Start(ctx, "records.reschedule_appointment")
	defer span.End()
	span.SetAttributes(attribute.String("records.appointment_id", id))

	if !end.After(start) {
		return ErrBadTimeRange
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("records: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var doctorID string
	if err := tx.QueryRow(ctx, `
		SELECT doctor_id::text FROM appointments WHERE id::text = $1
	`, id).Scan(&doctorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("records: load appointment: %w", err)
	}

	var conflict bool
	if err := tx.QueryRow(ctx, slotConflictSQL, doctorID, id, start, end).Scan(&conflict); err != nil {
		return fmt.Errorf("records: conflict check: %w", err)
	}
	if conflict {
		return ErrSlotConflict
	}

	if _, err := tx.Exec(ctx, `
		UPDATE appointments SET start_time = $2, end_time = $3 WHERE id::text = $1
	`, id, start, end); err != nil {
		return fmt.Errorf("records: update schedule: %w", err)
	}
	return tx.Commit(ctx)
}

// SetAppointmentStatus updates the lifecycle status from the detail modal.
func (s *PostgresStore) SetAppointmentStatus(ctx context.Context, id, status string) error {
	ctx, span := recordsTracer.Start(ctx, "records.set_status")
	defer span.End()

	if !validBoardStatus(status) {
		return ErrBadStatus
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE appointments SET status = $2 WHERE id::text = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("records: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAppointment removes a row.
func (s *PostgresStore) DeleteAppointment(ctx context.Context, id string) error {
	ctx, span := recordsTracer.Start(ctx, "records.delete_appointment")
	defer span.End()

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM appointments WHERE id::text = $1
	`, id)
	if err != nil {
		return fmt.Errorf("records: delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// window resolves a check-in filter to a [from, to) interval.
func (s *PostgresStore) window(q CheckInQuery) (time.Time, time.Time) {
	day := 24 * time.Hour
	switch q.Filter {
	case CheckInCustomDate:
		start := q.Start.Truncate(day)
		return start, start.Add(day)
	case CheckInCustomRange:
		return q.Start.Truncate(day), q.End.Truncate(day).Add(day)
	default: // TODAY
		start := s.now().UTC().Truncate(day)
		return start, start.Add(day)
	}
}

const listCheckInsSQL = `
	SELECT a.id, p.name, p.contact_number, a.reason, a.status, a.start_time, d.name
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN doctors d ON d.id = a.doctor_id
	WHERE a.start_time >= $1 AND a.start_time < $2
	  AND ($3 = '' OR p.name ILIKE '%' || $3 || '%' OR p.contact_number ILIKE '%' || $3 || '%')
	ORDER BY a.start_time
`

// ListCheckIns returns the arrival queue for the query window.
func (s *PostgresStore) ListCheckIns(ctx context.Context, q CheckInQuery) ([]CheckInRow, error) {
	ctx, span := recordsTracer.Start(ctx, "records.list_checkins")
	defer span.End()
	span.SetAttributes(attribute.String("records.filter", string(q.Filter)))

	from, to := s.window(q)
	rows, err := s.pool.Query(ctx, listCheckInsSQL, from, to, q.Search)
	if err != nil {
		return nil, fmt.Errorf("records: list checkins: %w", err)
	}
	defer rows.Close()

	var out []CheckInRow
	for rows.Next() {
		var r CheckInRow
		if err := rows.Scan(&r.AppointmentID, &r.PatientName, &r.PatientContact,
			&r.Reason, &r.Status, &r.Start, &r.DoctorName); err != nil {
			return nil, fmt.Errorf("records: scan checkin row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CheckInPatient records the arrival; only scheduled appointments qualify.
func (s *PostgresStore) CheckInPatient(ctx context.Context, id string, arrival time.Time) error {
	ctx, span := recordsTracer.Start(ctx, "records.check_in")
	defer span.End()

	tag, err := s.pool.Exec(ctx, `
		UPDATE appointments SET status = 'Checked-In', arrival_time = $2
		WHERE id::text = $1 AND status = 'Scheduled'
	`, id, arrival)
	if err != nil {
		return fmt.Errorf("records: check in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotCheckable
	}
	return nil
}

// CheckOutPatient completes a checked-in visit.
func (s *PostgresStore) CheckOutPatient(ctx context.Context, id string) error {
	ctx, span := recordsTracer.Start(ctx, "records.check_out")
	defer span.End()

	tag, err := s.pool.Exec(ctx, `
		UPDATE appointments SET status = 'Checked-Out', checkout_time = $2
		WHERE id::text = $1 AND status = 'Checked-In'
	`, id, s.now().UTC())
	if err != nil {
		return fmt.Errorf("records: check out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotCheckedIn
	}
	return nil
}

// RegisterPatient persists the wizard payload in one transaction: the
// patient row plus optional insurance and history sections.
func (s *PostgresStore) RegisterPatient(ctx context.Context, p RegistrationParams) (Patient, error) {
	ctx, span := recordsTracer.Start(ctx, "records.register_patient")
	defer span.End()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Patient{}, fmt.Errorf("records: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := uuid.New()
	var patientNo string
	if err := tx.QueryRow(ctx, `
		INSERT INTO patients (id, name, date_of_birth, contact_number, email, address, gender)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING patient_no
	`, id, p.Name, p.DateOfBirth, p.Contact, p.Email, p.Address, p.Gender).Scan(&patientNo); err != nil {
		return Patient{}, fmt.Errorf("records: insert patient: %w", err)
	}

	if ins := p.Insurance; ins != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO patient_insurance (id, patient_id, provider, policy_number, valid_till, active)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New(), id, ins.Provider, ins.PolicyNumber, ins.ValidTill, ins.Active); err != nil {
			return Patient{}, fmt.Errorf("records: insert insurance: %w", err)
		}
	}
	if h := p.History; h != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO medical_history (id, patient_id, condition, diagnosed_date, notes)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), id, h.Condition, h.DiagnosedDate, h.Notes); err != nil {
			return Patient{}, fmt.Errorf("records: insert history: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Patient{}, fmt.Errorf("records: commit: %w", err)
	}

	s.logger.Info("patient registered", "patient_id", id, "patient_no", patientNo)
	return Patient{ID: id.String(), Name: p.Name, PatientNo: patientNo}, nil
}
