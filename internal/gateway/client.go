// Package gateway is the sole wire seam between the front desk and the
// records backend: a typed JSON/HTTP client for every query and mutation the
// board, the check-in queue, and the registration wizard issue. No call is
// ever retried from this side.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brightwell-health/frontdesk/internal/checkin"
	"github.com/brightwell-health/frontdesk/internal/register"
	"github.com/brightwell-health/frontdesk/internal/schedule"
	"github.com/brightwell-health/frontdesk/pkg/logging"
)

const (
	defaultTimeout = 20 * time.Second
	apiPrefix      = "/api/v1"
	dateLayout     = "2006-01-02"
)

// APIError is a backend rejection with its displayable message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: backend returned %d: %s", e.Status, e.Message)
}

// UserMessage satisfies the notification contract of the consuming packages.
func (e *APIError) UserMessage() string { return e.Message }

// Client talks to the records service. It implements schedule.Gateway,
// checkin.Gateway, and register.Gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a records client for the given base URL. A non-positive
// timeout falls back to the 20s default.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

var (
	_ schedule.Gateway = (*Client)(nil)
	_ checkin.Gateway  = (*Client)(nil)
	_ register.Gateway = (*Client)(nil)
)

// ListDepartments returns the department names doctors belong to.
func (c *Client) ListDepartments(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/departments", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDoctors returns every bookable doctor.
func (c *Client) ListDoctors(ctx context.Context) ([]schedule.Doctor, error) {
	var out []schedule.Doctor
	if err := c.do(ctx, http.MethodGet, "/doctors", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDoctorsByDepartment returns the doctors in one department.
func (c *Client) ListDoctorsByDepartment(ctx context.Context, department string) ([]schedule.Doctor, error) {
	q := url.Values{"department": {department}}
	var out []schedule.Doctor
	if err := c.do(ctx, http.MethodGet, "/doctors", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAppointments returns the events in [start, end), optionally scoped to
// one doctor.
func (c *Client) ListAppointments(ctx context.Context, doctorID string, start, end time.Time) ([]schedule.Appointment, error) {
	q := url.Values{
		"from": {start.UTC().Format(time.RFC3339)},
		"to":   {end.UTC().Format(time.RFC3339)},
	}
	if doctorID != "" {
		q.Set("doctor_id", doctorID)
	}
	var out []schedule.Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchPatients returns candidates for the booking modal, most relevant
// first.
func (c *Client) SearchPatients(ctx context.Context, term string) ([]schedule.Patient, error) {
	q := url.Values{"q": {term}}
	var out []schedule.Patient
	if err := c.do(ctx, http.MethodGet, "/patients/search", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAppointment books a new appointment and returns its id.
func (c *Client) CreateAppointment(ctx context.Context, req schedule.CreateRequest) (string, error) {
	body := map[string]any{
		"patient_id": req.PatientID,
		"doctor_id":  req.DoctorID,
		"start":      req.Start.UTC().Format(time.RFC3339),
		"end":        req.End.UTC().Format(time.RFC3339),
		"reason":     req.Reason,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/appointments", nil, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// RescheduleAppointment moves an appointment to a new window.
func (c *Client) RescheduleAppointment(ctx context.Context, id string, start, end time.Time) error {
	body := map[string]any{
		"start": start.UTC().Format(time.RFC3339),
		"end":   end.UTC().Format(time.RFC3339),
	}
	return c.do(ctx, http.MethodPatch, "/appointments/"+url.PathEscape(id)+"/schedule", nil, body, nil)
}

// SetAppointmentStatus updates the lifecycle status.
func (c *Client) SetAppointmentStatus(ctx context.Context, id string, status schedule.Status) error {
	body := map[string]any{"status": string(status)}
	return c.do(ctx, http.MethodPatch, "/appointments/"+url.PathEscape(id)+"/status", nil, body, nil)
}

// DeleteAppointment removes an appointment.
func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/appointments/"+url.PathEscape(id), nil, nil, nil)
}

// ListCheckIns returns the arrival queue for the query window.
func (c *Client) ListCheckIns(ctx context.Context, query checkin.Query) ([]checkin.Row, error) {
	q := url.Values{"filter": {string(query.Filter)}}
	if query.Search != "" {
		q.Set("q", query.Search)
	}
	if !query.Start.IsZero() {
		q.Set("start", query.Start.Format(dateLayout))
	}
	if !query.End.IsZero() {
		q.Set("end", query.End.Format(dateLayout))
	}
	var out []checkin.Row
	if err := c.do(ctx, http.MethodGet, "/checkins", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckInPatient records the arrival time.
func (c *Client) CheckInPatient(ctx context.Context, appointmentID string, arrival time.Time) error {
	body := map[string]any{"arrival_time": arrival.UTC().Format(time.RFC3339)}
	return c.do(ctx, http.MethodPost, "/appointments/"+url.PathEscape(appointmentID)+"/checkin", nil, body, nil)
}

// CheckOutPatient completes the visit.
func (c *Client) CheckOutPatient(ctx context.Context, appointmentID string) error {
	return c.do(ctx, http.MethodPost, "/appointments/"+url.PathEscape(appointmentID)+"/checkout", nil, nil, nil)
}

// RegisterPatient submits the wizard payload and returns the new patient id.
func (c *Client) RegisterPatient(ctx context.Context, reg register.Registration) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/patients", nil, reg, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ListPatients returns the full roster for the directory view.
func (c *Client) ListPatients(ctx context.Context) ([]schedule.Patient, error) {
	var out []schedule.Patient
	if err := c.do(ctx, http.MethodGet, "/patients", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Error == "" {
		c.logger.Warn("backend error without message", "status", resp.StatusCode)
		return &APIError{Status: resp.StatusCode}
	}
	return &APIError{Status: resp.StatusCode, Message: payload.Error}
}
