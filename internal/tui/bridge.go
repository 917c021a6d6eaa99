package tui

import (
	"sync"
	"time"

	"github.com/brightwell-health/frontdesk/internal/schedule"
)

// Messages delivered to the program from the scheduling session. The session
// runs on its own goroutine; the bridge forwards its callbacks as program
// messages so all model mutation stays on the bubbletea loop.

type ToastMsg struct {
	Title    string
	Message  string
	Severity schedule.Severity
}

type LoadingMsg struct {
	Loading bool
}

type EventsMsg struct {
	Events []schedule.Appointment
}

type RevertMsg struct {
	AppointmentID string
	Start, End    time.Time
}

type clearToastMsg struct{}

// Bridge implements schedule.Surface and schedule.Notifier over a program
// send function. It owns the visible range the board is currently showing.
//
// The session and the program are created after the bridge, so both are
// attached later; all three fields are guarded by mu because session
// callbacks arrive on the session goroutine while main is still wiring up.
type Bridge struct {
	mu   sync.Mutex
	send func(msg any)
	sess *schedule.Session
	rng  schedule.Range
}

func NewBridge() *Bridge {
	return &Bridge{}
}

// Bind attaches the session after construction; Surface and Session refer to
// each other.
func (b *Bridge) Bind(sess *schedule.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sess = sess
}

// SetSend attaches the program send function. Messages emitted before it is
// attached are dropped.
func (b *Bridge) SetSend(send func(msg any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) emit(msg any) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// Show sets the visible range and pulls events for it.
func (b *Bridge) Show(rng schedule.Range) {
	b.mu.Lock()
	b.rng = rng
	b.mu.Unlock()
	b.Refetch()
}

// Refetch pulls the current range from the session; results arrive as an
// EventsMsg. Failures keep the drawn events, the session raises the toast.
func (b *Bridge) Refetch() {
	b.mu.Lock()
	sess, rng := b.sess, b.rng
	b.mu.Unlock()
	if sess == nil || rng.Start.IsZero() {
		return
	}
	sess.Events(rng.Start, rng.End,
		func(events []schedule.Appointment) { b.emit(EventsMsg{Events: events}) },
		func(error) {},
	)
}

// SetLoading forwards the board busy indicator.
func (b *Bridge) SetLoading(loading bool) {
	b.emit(LoadingMsg{Loading: loading})
}

// Notify forwards a toast.
func (b *Bridge) Notify(title, message string, severity schedule.Severity) {
	b.emit(ToastMsg{Title: title, Message: message, Severity: severity})
}
