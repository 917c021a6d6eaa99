// Package tui is the terminal front desk: an appointment board with filter
// cascade and booking/detail modals, the arrival queue, and the patient
// registration wizard, all rendered over the scheduling session.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brightwell-health/frontdesk/internal/checkin"
	"github.com/brightwell-health/frontdesk/internal/register"
	"github.com/brightwell-health/frontdesk/internal/schedule"
	"github.com/brightwell-health/frontdesk/pkg/logging"
)

type Tab int

const (
	TabBoard Tab = iota
	TabCheckIn
	TabRegister
	tabCount
)

// Config wires the model to the coordinators it fronts.
type Config struct {
	Session *schedule.Session
	Bridge  *Bridge
	Queue   *checkin.Queue
	Wizard  *register.Wizard
	Logger  *logging.Logger
	Now     func() time.Time
}

type Model struct {
	sess   *schedule.Session
	bridge *Bridge
	queue  *checkin.Queue
	wizard *register.Wizard
	logger *logging.Logger
	now    func() time.Time

	tab  Tab
	keys KeyMap
	help help.Model

	// board
	weekStart time.Time
	events    []schedule.Appointment
	cursor    int
	loading   bool
	view      schedule.View

	// booking modal
	search    textinput.Model
	reason    textinput.Model
	candidate int
	inReason  bool

	// arrival queue
	rows      []checkin.Row
	rowCursor int

	// registration wizard
	inputs  []textinput.Model
	labels  []string
	focused int

	toast    *ToastMsg
	width    int
	height   int
	quitting bool
}

func New(cfg Config) Model {
	if cfg.Session == nil || cfg.Bridge == nil {
		panic("tui: session and bridge required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	search := textinput.New()
	search.Placeholder = "patient name or number"
	search.CharLimit = 64
	reason := textinput.New()
	reason.Placeholder = "reason for visit"
	reason.CharLimit = 120

	m := Model{
		sess:      cfg.Session,
		bridge:    cfg.Bridge,
		queue:     cfg.Queue,
		wizard:    cfg.Wizard,
		logger:    cfg.Logger,
		now:       cfg.Now,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		search:    search,
		reason:    reason,
		weekStart: startOfWeek(cfg.Now()),
	}
	m.resetWizardInputs()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.showWeek(),
		m.snapshot(),
		m.loadQueue(),
		textinput.Blink,
	)
}

// startOfWeek returns the Monday midnight on or before t, in t's location.
func startOfWeek(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// showWeek points the surface at the current week and pulls its events.
func (m Model) showWeek() tea.Cmd {
	start, end := m.weekStart, m.weekStart.AddDate(0, 0, 7)
	return func() tea.Msg {
		m.bridge.Show(schedule.Range{Start: start, End: end})
		return nil
	}
}

// snapshot pulls the session view after a state-changing call.
func (m Model) snapshot() tea.Cmd {
	return func() tea.Msg {
		return viewMsg{view: m.sess.Snapshot()}
	}
}

type viewMsg struct {
	view schedule.View
}

type queueRowsMsg struct {
	rows []checkin.Row
}

type wizardStepMsg struct{}

func (m Model) loadQueue() tea.Cmd {
	if m.queue == nil {
		return nil
	}
	q := m.queue
	return func() tea.Msg {
		_ = q.Refresh(context.Background())
		return queueRowsMsg{rows: q.Rows()}
	}
}

func (m *Model) resetWizardInputs() {
	if m.wizard == nil {
		return
	}
	switch m.wizard.Step() {
	case register.StepPatient:
		m.labels = []string{"Name", "Date of Birth (YYYY-MM-DD)", "Contact Number", "Email", "Address", "Gender"}
	case register.StepInsurance:
		m.labels = []string{"Provider", "Policy Number", "Valid Till (YYYY-MM-DD)", "Active (y/n)"}
	case register.StepHistory:
		m.labels = []string{"Condition", "Diagnosed (YYYY-MM-DD)", "Notes"}
	}
	m.inputs = make([]textinput.Model, len(m.labels))
	for i, label := range m.labels {
		in := textinput.New()
		in.Placeholder = label
		in.CharLimit = 120
		m.inputs[i] = in
	}
	m.focused = 0
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

func (m *Model) wizardValue(i int) string {
	if i < len(m.inputs) {
		return m.inputs[i].Value()
	}
	return ""
}
