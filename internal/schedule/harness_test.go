package schedule

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brightwell-health/frontdesk/pkg/logging"
)

// The tests drive the session single-threaded: gateway calls are parked in a
// manual executor instead of goroutines, and the loop queue is drained
// explicitly. That makes interleavings like "fetch A issued, fetch B issued,
// A resolves after B" a plain sequence of method calls.

type manualExec struct {
	pending []func()
}

func (m *manualExec) run(fn func()) {
	m.pending = append(m.pending, fn)
}

// resolve runs the i-th parked call, which posts its completion.
func (m *manualExec) resolve(t *testing.T, i int) {
	t.Helper()
	if i >= len(m.pending) {
		t.Fatalf("no pending call %d (have %d)", i, len(m.pending))
	}
	fn := m.pending[i]
	m.pending = append(m.pending[:i], m.pending[i+1:]...)
	fn()
}

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) factory(d time.Duration, fn func()) Timer {
	tm := &fakeTimer{d: d, fn: fn}
	c.timers = append(c.timers, tm)
	return tm
}

// fire triggers the i-th timer unless it was cancelled.
func (c *fakeClock) fire(t *testing.T, i int) {
	t.Helper()
	if i >= len(c.timers) {
		t.Fatalf("no timer %d (have %d)", i, len(c.timers))
	}
	tm := c.timers[i]
	if tm.stopped {
		t.Fatalf("timer %d was cancelled", i)
	}
	tm.fired = true
	tm.fn()
}

// live reports timers that are neither fired nor cancelled.
func (c *fakeClock) live() int {
	n := 0
	for _, tm := range c.timers {
		if !tm.fired && !tm.stopped {
			n++
		}
	}
	return n
}

type notice struct {
	Title    string
	Message  string
	Severity Severity
}

type fakeNotifier struct {
	notices []notice
}

func (n *fakeNotifier) Notify(title, message string, severity Severity) {
	n.notices = append(n.notices, notice{title, message, severity})
}

func (n *fakeNotifier) last() notice {
	if len(n.notices) == 0 {
		return notice{}
	}
	return n.notices[len(n.notices)-1]
}

// fakeSurface mirrors the calendar widget: it keeps the drawn event set and
// re-invokes the session's event source when asked to refetch.
type fakeSurface struct {
	sess      *Session
	rng       Range
	events    []Appointment
	loading   bool
	refetches int
	failures  int
}

func (f *fakeSurface) Refetch() {
	f.refetches++
	f.sess.Events(f.rng.Start, f.rng.End,
		func(evs []Appointment) { f.events = evs },
		func(error) { f.failures++ },
	)
}

func (f *fakeSurface) SetLoading(loading bool) { f.loading = loading }

// show navigates the fake widget to a range, invoking the event source the
// way the real calendar does.
func (f *fakeSurface) show(rng Range) {
	f.rng = rng
	f.sess.Events(rng.Start, rng.End,
		func(evs []Appointment) { f.events = evs },
		func(error) { f.failures++ },
	)
}

// rejection is a gateway error carrying a backend-supplied display message.
type rejection struct {
	msg string
}

func (r *rejection) Error() string       { return fmt.Sprintf("backend rejected: %s", r.msg) }
func (r *rejection) UserMessage() string { return r.msg }

type fakeGateway struct {
	departments  []string
	doctors      []Doctor
	byDepartment map[string][]Doctor
	byRange      map[time.Time][]Appointment
	patients     []Patient

	errs map[string]error // keyed by op name

	doctorCalls []string // department argument per list call
	fetchCalls  []string // doctor filter per appointment list call
	searchCalls []string
	creates     []CreateRequest
	reschedules []string
	statusCalls []string
	deleteCalls []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		byDepartment: map[string][]Doctor{},
		byRange:      map[time.Time][]Appointment{},
		errs:         map[string]error{},
	}
}

func (g *fakeGateway) ListDepartments(context.Context) ([]string, error) {
	return g.departments, g.errs["departments"]
}

func (g *fakeGateway) ListDoctors(context.Context) ([]Doctor, error) {
	g.doctorCalls = append(g.doctorCalls, "")
	return g.doctors, g.errs["doctors"]
}

func (g *fakeGateway) ListDoctorsByDepartment(_ context.Context, department string) ([]Doctor, error) {
	g.doctorCalls = append(g.doctorCalls, department)
	if err := g.errs["doctors:"+department]; err != nil {
		return nil, err
	}
	return g.byDepartment[department], nil
}

func (g *fakeGateway) ListAppointments(_ context.Context, doctorID string, start, _ time.Time) ([]Appointment, error) {
	g.fetchCalls = append(g.fetchCalls, doctorID)
	return g.byRange[start], g.errs["appointments"]
}

func (g *fakeGateway) SearchPatients(_ context.Context, term string) ([]Patient, error) {
	g.searchCalls = append(g.searchCalls, term)
	return g.patients, g.errs["search"]
}

func (g *fakeGateway) CreateAppointment(_ context.Context, req CreateRequest) (string, error) {
	g.creates = append(g.creates, req)
	if err := g.errs["create"]; err != nil {
		return "", err
	}
	return "appt-new", nil
}

func (g *fakeGateway) RescheduleAppointment(_ context.Context, id string, _, _ time.Time) error {
	g.reschedules = append(g.reschedules, id)
	return g.errs["reschedule"]
}

func (g *fakeGateway) SetAppointmentStatus(_ context.Context, id string, status Status) error {
	g.statusCalls = append(g.statusCalls, id+":"+string(status))
	return g.errs["status"]
}

func (g *fakeGateway) DeleteAppointment(_ context.Context, id string) error {
	g.deleteCalls = append(g.deleteCalls, id)
	return g.errs["delete"]
}

type harness struct {
	sess  *Session
	gw    *fakeGateway
	exec  *manualExec
	clock *fakeClock
	surf  *fakeSurface
	toast *fakeNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gw := newFakeGateway()
	exec := &manualExec{}
	clock := &fakeClock{}
	toast := &fakeNotifier{}
	surf := &fakeSurface{}
	sess := NewSession(Config{
		Gateway:  gw,
		Surface:  surf,
		Notifier: toast,
		Logger:   logging.Discard(),
		Timers:   clock.factory,
		exec:     exec.run,
	})
	surf.sess = sess
	return &harness{sess: sess, gw: gw, exec: exec, clock: clock, surf: surf, toast: toast}
}

// flush drains the loop queue without touching parked gateway calls.
func (h *harness) flush() { h.sess.drain() }

// settle drains the loop and resolves parked calls in issue order until
// everything is quiet.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	for {
		h.sess.drain()
		if len(h.exec.pending) == 0 {
			return
		}
		h.exec.resolve(t, 0)
	}
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 9, 0, 0, 0, time.UTC)
}

func appt(id string, start time.Time) Appointment {
	return Appointment{
		ID:     id,
		Title:  "Visit - " + id,
		Start:  start,
		End:    start.Add(30 * time.Minute),
		Status: StatusScheduled,
	}
}
