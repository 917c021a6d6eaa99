package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brightwell-health/frontdesk/internal/observability/metrics"
	"github.com/brightwell-health/frontdesk/pkg/logging"
)

const dateLayout = "2006-01-02"

// Handler exposes the record service over REST. All payloads are JSON;
// failures carry an {"error": "..."} body.
type Handler struct {
	store   Store
	metrics *metrics.RequestMetrics
	logger  *logging.Logger
}

// NewHandler builds the HTTP surface over store. Metrics may be nil.
func NewHandler(store Store, m *metrics.RequestMetrics, logger *logging.Logger) *Handler {
	if store == nil {
		panic("records: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, metrics: m, logger: logger}
}

// Routes returns the /api/v1 router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/departments", h.listDepartments)
	r.Get("/doctors", h.listDoctors)
	r.Get("/checkins", h.listCheckIns)

	r.Route("/patients", func(r chi.Router) {
		r.Get("/", h.listPatients)
		r.Get("/search", h.searchPatients)
		r.Post("/", h.registerPatient)
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", h.listAppointments)
		r.Post("/", h.createAppointment)
		r.Patch("/{id}/schedule", h.reschedule)
		r.Patch("/{id}/status", h.setStatus)
		r.Delete("/{id}", h.deleteAppointment)
		r.Post("/{id}/checkin", h.checkIn)
		r.Post("/{id}/checkout", h.checkOut)
	})
	return r
}

func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	deps, err := h.store.ListDepartments(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, deps)
}

func (h *Handler) listDoctors(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.ListDoctors(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, docs)
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := time.Parse(time.RFC3339, q.Get("from"))
	if err != nil {
		h.badRequest(w, "from must be an RFC 3339 timestamp")
		return
	}
	to, err := time.Parse(time.RFC3339, q.Get("to"))
	if err != nil {
		h.badRequest(w, "to must be an RFC 3339 timestamp")
		return
	}
	appts, err := h.store.ListAppointments(r.Context(), q.Get("doctor_id"), from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, appts)
}

func (h *Handler) searchPatients(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		h.badRequest(w, "q is required")
		return
	}
	patients, err := h.store.SearchPatients(r.Context(), term)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, patients)
}

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.store.ListPatients(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, patients)
}

type createAppointmentRequest struct {
	PatientID string    `json:"patient_id"`
	DoctorID  string    `json:"doctor_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Reason    string    `json:"reason"`
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if req.PatientID == "" || req.DoctorID == "" {
		h.badRequest(w, "patient_id and doctor_id are required")
		return
	}
	id, err := h.store.CreateAppointment(r.Context(), CreateAppointmentParams{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Start:     req.Start,
		End:       req.End,
		Reason:    req.Reason,
	})
	if err != nil {
		h.metrics.ObserveBooking(bookingOutcome(err))
		h.fail(w, r, err)
		return
	}
	h.metrics.ObserveBooking("success")
	h.respond(w, http.StatusCreated, map[string]string{"id": id})
}

func bookingOutcome(err error) string {
	if errors.Is(err, ErrSlotConflict) {
		return "conflict"
	}
	return "error"
}

type scheduleRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (h *Handler) reschedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if err := h.store.RescheduleAppointment(r.Context(), chi.URLParam(r, "id"), req.Start, req.End); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if err := h.store.SetAppointmentStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCheckIns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := CheckInQuery{
		Search: q.Get("q"),
		Filter: CheckInFilter(q.Get("filter")),
	}
	if query.Filter == "" {
		query.Filter = CheckInToday
	}
	switch query.Filter {
	case CheckInToday, CheckInCustomDate, CheckInCustomRange:
	default:
		h.badRequest(w, "unknown filter")
		return
	}
	if s := q.Get("start"); s != "" {
		start, err := time.Parse(dateLayout, s)
		if err != nil {
			h.badRequest(w, "start must be a YYYY-MM-DD date")
			return
		}
		query.Start = start
	}
	if s := q.Get("end"); s != "" {
		end, err := time.Parse(dateLayout, s)
		if err != nil {
			h.badRequest(w, "end must be a YYYY-MM-DD date")
			return
		}
		query.End = end
	}
	rows, err := h.store.ListCheckIns(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, rows)
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ArrivalTime time.Time `json:"arrival_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if req.ArrivalTime.IsZero() {
		req.ArrivalTime = time.Now().UTC()
	}
	if err := h.store.CheckInPatient(r.Context(), chi.URLParam(r, "id"), req.ArrivalTime); err != nil {
		h.metrics.ObserveCheckIn("check_in", "error")
		h.fail(w, r, err)
		return
	}
	h.metrics.ObserveCheckIn("check_in", "success")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	if err := h.store.CheckOutPatient(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.metrics.ObserveCheckIn("check_out", "error")
		h.fail(w, r, err)
		return
	}
	h.metrics.ObserveCheckIn("check_out", "success")
	w.WriteHeader(http.StatusNoContent)
}

// registrationRequest mirrors the wizard submission body. Insurance and
// medical history are present when their identifying field is non-empty.
type registrationRequest struct {
	Patient struct {
		Name        string     `json:"name"`
		DateOfBirth *time.Time `json:"date_of_birth"`
		Contact     string     `json:"contact"`
		Email       string     `json:"email"`
		Address     string     `json:"address"`
		Gender      string     `json:"gender"`
	} `json:"patient"`
	Insurance struct {
		Provider     string     `json:"provider"`
		PolicyNumber string     `json:"policy_number"`
		ValidTill    *time.Time `json:"valid_till"`
		Active       bool       `json:"active"`
	} `json:"insurance"`
	MedicalHistory struct {
		Condition     string     `json:"condition"`
		DiagnosedDate *time.Time `json:"diagnosed_date"`
		Notes         string     `json:"notes"`
	} `json:"medical_history"`
}

func (h *Handler) registerPatient(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	p := req.Patient
	if p.Name == "" || p.Contact == "" || p.Gender == "" || p.DateOfBirth == nil {
		h.badRequest(w, "name, date_of_birth, contact and gender are required")
		return
	}
	params := RegistrationParams{
		Name:        p.Name,
		DateOfBirth: *p.DateOfBirth,
		Contact:     p.Contact,
		Email:       p.Email,
		Address:     p.Address,
		Gender:      p.Gender,
	}
	if ins := req.Insurance; ins.Provider != "" {
		params.Insurance = &InsuranceParams{
			Provider:     ins.Provider,
			PolicyNumber: ins.PolicyNumber,
			ValidTill:    ins.ValidTill,
			Active:       ins.Active,
		}
	}
	if mh := req.MedicalHistory; mh.Condition != "" {
		params.History = &HistoryParams{
			Condition:     mh.Condition,
			DiagnosedDate: mh.DiagnosedDate,
			Notes:         mh.Notes,
		}
	}
	patient, err := h.store.RegisterPatient(r.Context(), params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, map[string]string{"id": patient.ID, "patient_no": patient.PatientNo})
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode response failed", "error", err)
	}
}

// fail maps domain errors to status codes; anything unrecognized is a 500
// with a generic body so internals never leak to the desk.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSlotConflict):
		h.errorBody(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		h.errorBody(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotCheckable), errors.Is(err, ErrNotCheckedIn),
		errors.Is(err, ErrBadStatus), errors.Is(err, ErrBadTimeRange):
		h.errorBody(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		h.errorBody(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.errorBody(w, http.StatusBadRequest, msg)
}

func (h *Handler) errorBody(w http.ResponseWriter, status int, msg string) {
	h.respond(w, status, map[string]string{"error": msg})
}
