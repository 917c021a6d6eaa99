package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/brightwell-health/frontdesk/pkg/logging"
)

const (
	defaultSearchDebounce = 300 * time.Millisecond
	minSearchLen          = 2
)

// Config wires a Session to its collaborators.
type Config struct {
	Gateway  Gateway
	Surface  Surface
	Notifier Notifier
	Logger   *logging.Logger

	// SearchDebounce is the quiescence window for patient search input.
	// Zero means the 300ms default.
	SearchDebounce time.Duration

	// Timers overrides timer creation; nil means time.AfterFunc.
	Timers TimerFactory

	// exec runs gateway calls off the loop; overridden in tests.
	exec func(fn func())
}

// Session owns all front-desk board state. Its fields are touched only from
// the event loop: public methods enqueue work, gateway completions are
// enqueued by the goroutines that ran the calls, and Run drains the queue in
// order. This gives the single-threaded cooperative model the board relies
// on for its ordering guarantees.
type Session struct {
	gw       Gateway
	surface  Surface
	notifier Notifier
	logger   *logging.Logger
	timers   TimerFactory
	debounce time.Duration
	exec     func(fn func())

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}

	ctx context.Context

	// filter cascade
	departments []string
	doctorOpts  []Option
	department  string
	doctorID    string
	doctorSeq   uint64

	// calendar view
	visible  Range
	fetchSeq uint64
	loading  int

	// mutation coordinator
	busy       map[string]bool
	submitting bool

	// modal sessions
	booking *BookingDraft
	detail  *EventDetail

	searchTimer Timer
	searchSeq   uint64
}

// NewSession constructs a session. Gateway and Surface are required; a nil
// Notifier drops notifications and a nil Logger falls back to the default.
func NewSession(cfg Config) *Session {
	if cfg.Gateway == nil {
		panic("schedule: gateway required")
	}
	if cfg.Surface == nil {
		panic("schedule: surface required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	if cfg.SearchDebounce <= 0 {
		cfg.SearchDebounce = defaultSearchDebounce
	}
	if cfg.Timers == nil {
		cfg.Timers = afterFunc
	}
	if cfg.exec == nil {
		cfg.exec = func(fn func()) { go fn() }
	}
	return &Session{
		gw:       cfg.Gateway,
		surface:  cfg.Surface,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		timers:   cfg.Timers,
		debounce: cfg.SearchDebounce,
		exec:     cfg.exec,
		wake:     make(chan struct{}, 1),
		ctx:      context.Background(),
		busy:     make(map[string]bool),
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, Severity) {}

// post enqueues fn for the event loop. Safe from any goroutine, including
// loop callbacks themselves.
func (s *Session) post(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// drain runs queued work until the queue is empty.
func (s *Session) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		fn()
	}
}

// Run processes the event loop until ctx is cancelled. It must be running
// for the session's public methods to make progress.
func (s *Session) Run(ctx context.Context) {
	s.ctx = ctx
	s.post(s.loadInitial)
	for {
		s.drain()
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}
	}
}

// spawn runs a gateway call off the loop; the call posts its own completion.
func (s *Session) spawn(fn func()) {
	s.exec(fn)
}

// beginLoad and endLoad keep the surface's busy indicator in step with the
// number of outstanding calls. endLoad runs on every completion path,
// including discarded stale responses.
func (s *Session) beginLoad() {
	s.loading++
	if s.loading == 1 {
		s.surface.SetLoading(true)
	}
}

func (s *Session) endLoad() {
	s.loading--
	if s.loading == 0 {
		s.surface.SetLoading(false)
	}
}

func (s *Session) notify(title, message string, severity Severity) {
	s.notifier.Notify(title, message, severity)
}

// View is a copy of the session state a renderer needs. Events are not part
// of it; the surface owns the drawn event set.
type View struct {
	Departments   []string
	DoctorOptions []Option
	Department    string
	DoctorID      string
	Loading       bool
	Booking       *BookingDraft
	Detail        *EventDetail
}

// Snapshot returns a consistent copy of the view state, synchronised through
// the loop. Requires Run to be active.
func (s *Session) Snapshot() View {
	ch := make(chan View, 1)
	s.post(func() { ch <- s.view() })
	return <-ch
}

func (s *Session) view() View {
	v := View{
		Departments:   append([]string(nil), s.departments...),
		DoctorOptions: append([]Option(nil), s.doctorOpts...),
		Department:    s.department,
		DoctorID:      s.doctorID,
		Loading:       s.loading > 0,
	}
	if s.booking != nil {
		b := *s.booking
		b.Candidates = append([]Patient(nil), s.booking.Candidates...)
		v.Booking = &b
	}
	if s.detail != nil {
		d := *s.detail
		v.Detail = &d
	}
	return v
}
