package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightwell-health/frontdesk/internal/checkin"
	"github.com/brightwell-health/frontdesk/internal/register"
	"github.com/brightwell-health/frontdesk/internal/schedule"
	"github.com/brightwell-health/frontdesk/pkg/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, 0, logging.Discard())
}

func TestListDoctorsByDepartment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/doctors", r.URL.Path)
		assert.Equal(t, "Cardiology", r.URL.Query().Get("department"))
		_ = json.NewEncoder(w).Encode([]schedule.Doctor{
			{ID: "d1", Name: "Dr. Hart", Department: "Cardiology"},
		})
	})

	docs, err := c.ListDoctorsByDepartment(context.Background(), "Cardiology")

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Dr. Hart", docs[0].Name)
}

func TestListAppointmentsEncodesScope(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "d1", q.Get("doctor_id"))
		assert.Equal(t, start.Format(time.RFC3339), q.Get("from"))
		assert.Equal(t, end.Format(time.RFC3339), q.Get("to"))
		_ = json.NewEncoder(w).Encode([]schedule.Appointment{
			{ID: "a1", Title: "Visit - Ann Ode", Start: start, End: start.Add(time.Hour)},
		})
	})

	events, err := c.ListAppointments(context.Background(), "d1", start, end)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a1", events[0].ID)
}

func TestListAppointmentsOmitsEmptyDoctorFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["doctor_id"]
		assert.False(t, present, "unscoped list must not send doctor_id")
		_ = json.NewEncoder(w).Encode([]schedule.Appointment{})
	})

	_, err := c.ListAppointments(context.Background(), "", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
}

func TestCreateAppointmentRoundTrip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "p1", body["patient_id"])
		assert.Equal(t, "d1", body["doctor_id"])
		assert.Equal(t, "Annual physical", body["reason"])
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "appt-9"})
	})

	id, err := c.CreateAppointment(context.Background(), schedule.CreateRequest{
		PatientID: "p1",
		DoctorID:  "d1",
		Start:     time.Now(),
		End:       time.Now().Add(30 * time.Minute),
		Reason:    "Annual physical",
	})

	require.NoError(t, err)
	assert.Equal(t, "appt-9", id)
}

func TestConflictCarriesBackendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "The selected time slot conflicts with an existing appointment.",
		})
	})

	err := c.RescheduleAppointment(context.Background(), "a1", time.Now(), time.Now().Add(time.Hour))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "The selected time slot conflicts with an existing appointment.", apiErr.UserMessage())
}

func TestErrorWithoutBodyStillTyped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.DeleteAppointment(context.Background(), "a1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Empty(t, apiErr.UserMessage())
}

func TestListCheckInsEncodesWindow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "CUSTOM_RANGE", q.Get("filter"))
		assert.Equal(t, "ode", q.Get("q"))
		assert.Equal(t, "2026-03-02", q.Get("start"))
		assert.Equal(t, "2026-03-09", q.Get("end"))
		_ = json.NewEncoder(w).Encode([]checkin.Row{
			{AppointmentID: "a1", PatientName: "Ann Ode", Status: "Scheduled"},
		})
	})

	rows, err := c.ListCheckIns(context.Background(), checkin.Query{
		Filter: checkin.FilterCustomRange,
		Search: "ode",
		Start:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, checkin.ActionCheckIn, rows[0].Action())
}

func TestCheckInPostsArrival(t *testing.T) {
	arrival := time.Date(2026, 3, 2, 9, 41, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/appointments/a1/checkin", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, arrival.Format(time.RFC3339), body["arrival_time"])
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.CheckInPatient(context.Background(), "a1", arrival))
}

func TestRegisterPatientReturnsID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/patients", r.URL.Path)
		var reg register.Registration
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		assert.Equal(t, "Ann Ode", reg.Patient.Name)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "PT-1042"})
	})

	id, err := c.RegisterPatient(context.Background(), register.Registration{
		Patient: register.PatientDetails{Name: "Ann Ode", Contact: "5550013344"},
	})

	require.NoError(t, err)
	assert.Equal(t, "PT-1042", id)
}

func TestClientHonorsConfiguredTimeout(t *testing.T) {
	c := NewClient("http://localhost:1", 5*time.Second, logging.Discard())
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
}

func TestClientTimeoutFallsBackToDefault(t *testing.T) {
	c := NewClient("http://localhost:1", 0, logging.Discard())
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}
