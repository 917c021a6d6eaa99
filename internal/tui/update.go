package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brightwell-health/frontdesk/internal/checkin"
	"github.com/brightwell-health/frontdesk/internal/register"
	"github.com/brightwell-health/frontdesk/internal/schedule"
)

const toastDuration = 4 * time.Second

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case ToastMsg:
		toast := msg
		m.toast = &toast
		return m, tea.Tick(toastDuration, func(time.Time) tea.Msg { return clearToastMsg{} })

	case clearToastMsg:
		m.toast = nil
		return m, nil

	case LoadingMsg:
		m.loading = msg.Loading
		return m, nil

	case EventsMsg:
		m.events = msg.Events
		if m.cursor >= len(m.events) {
			m.cursor = max(0, len(m.events)-1)
		}
		return m, nil

	case RevertMsg:
		for i := range m.events {
			if m.events[i].ID == msg.AppointmentID {
				m.events[i].Start = msg.Start
				m.events[i].End = msg.End
			}
		}
		return m, nil

	case viewMsg:
		opened := m.view.Booking == nil && msg.view.Booking != nil
		m.view = msg.view
		if opened {
			m.search.Reset()
			m.reason.Reset()
			m.candidate = 0
			m.inReason = false
			m.search.Focus()
		}
		return m, nil

	case queueRowsMsg:
		m.rows = msg.rows
		if m.rowCursor >= len(m.rows) {
			m.rowCursor = max(0, len(m.rows)-1)
		}
		return m, nil

	case wizardStepMsg:
		m.resetWizardInputs()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.tab != TabRegister && m.view.Booking == nil {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	// Modals capture input before tab navigation.
	if m.tab == TabBoard {
		if m.view.Booking != nil {
			return m.handleBookingKey(msg)
		}
		if m.view.Detail != nil {
			return m.handleDetailKey(msg)
		}
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		m.tab = (m.tab + 1) % tabCount
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.tab = (m.tab - 1 + tabCount) % tabCount
		return m, nil
	}

	switch m.tab {
	case TabBoard:
		return m.handleBoardKey(msg)
	case TabCheckIn:
		return m.handleQueueKey(msg)
	case TabRegister:
		return m.handleWizardKey(msg)
	}
	return m, nil
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.events)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.PrevWeek):
		m.weekStart = m.weekStart.AddDate(0, 0, -7)
		return m, m.showWeek()
	case key.Matches(msg, m.keys.NextWeek):
		m.weekStart = m.weekStart.AddDate(0, 0, 7)
		return m, m.showWeek()
	case key.Matches(msg, m.keys.Refresh):
		bridge := m.bridge
		return m, func() tea.Msg { bridge.Refetch(); return nil }
	case key.Matches(msg, m.keys.Dept):
		return m.cycleDepartment()
	case key.Matches(msg, m.keys.Doctor):
		return m.cycleDoctor()
	case key.Matches(msg, m.keys.Enter):
		if ev, ok := m.selectedEvent(); ok {
			sess := m.sess
			return m, tea.Sequence(
				func() tea.Msg { sess.EventClicked(ev); return nil },
				m.snapshot(),
			)
		}
	case key.Matches(msg, m.keys.Book):
		start := m.bookingSlot()
		sess := m.sess
		return m, tea.Sequence(
			func() tea.Msg { sess.SlotSelected(start, start.Add(30*time.Minute)); return nil },
			m.snapshot(),
		)
	case key.Matches(msg, m.keys.Earlier):
		return m.nudgeSelected(-30 * time.Minute)
	case key.Matches(msg, m.keys.Later):
		return m.nudgeSelected(30 * time.Minute)
	}
	return m, nil
}

func (m Model) selectedEvent() (schedule.Appointment, bool) {
	if m.cursor < 0 || m.cursor >= len(m.events) {
		return schedule.Appointment{}, false
	}
	return m.events[m.cursor], true
}

// bookingSlot picks the slot a new booking targets: the selected event's day
// at 09:00, or the start of the visible week.
func (m Model) bookingSlot() time.Time {
	day := m.weekStart
	if ev, ok := m.selectedEvent(); ok {
		day = time.Date(ev.Start.Year(), ev.Start.Month(), ev.Start.Day(), 0, 0, 0, 0, ev.Start.Location())
	}
	return day.Add(9 * time.Hour)
}

// nudgeSelected is the keyboard stand-in for a drag: the board moves the
// event immediately and hands the session a drop command that can put it
// back.
func (m Model) nudgeSelected(delta time.Duration) (tea.Model, tea.Cmd) {
	ev, ok := m.selectedEvent()
	if !ok {
		return m, nil
	}
	prevStart, prevEnd := ev.Start, ev.End
	moved := ev
	moved.Start = ev.Start.Add(delta)
	moved.End = ev.End.Add(delta)
	m.events[m.cursor] = moved

	bridge := m.bridge
	drop := schedule.EventDrop{
		Event:     moved,
		PrevStart: prevStart,
		PrevEnd:   prevEnd,
		Revert: func() {
			bridge.emit(RevertMsg{AppointmentID: ev.ID, Start: prevStart, End: prevEnd})
		},
	}
	sess := m.sess
	return m, func() tea.Msg { sess.EventDropped(drop); return nil }
}

func (m Model) cycleDepartment() (tea.Model, tea.Cmd) {
	if len(m.view.Departments) == 0 {
		return m, nil
	}
	// Cycle through "" (all) then each department.
	options := append([]string{""}, m.view.Departments...)
	next := 0
	for i, dep := range options {
		if dep == m.view.Department {
			next = (i + 1) % len(options)
			break
		}
	}
	dep := options[next]
	sess := m.sess
	return m, tea.Sequence(
		func() tea.Msg { sess.SetDepartment(dep); return nil },
		m.snapshot(),
	)
}

func (m Model) cycleDoctor() (tea.Model, tea.Cmd) {
	if len(m.view.DoctorOptions) == 0 {
		return m, nil
	}
	next := 0
	for i, opt := range m.view.DoctorOptions {
		if opt.Value == m.view.DoctorID {
			next = (i + 1) % len(m.view.DoctorOptions)
			break
		}
	}
	id := m.view.DoctorOptions[next].Value
	sess := m.sess
	return m, tea.Sequence(
		func() tea.Msg { sess.SetDoctor(id); return nil },
		m.snapshot(),
	)
}

func (m Model) handleBookingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sess := m.sess
	switch {
	case key.Matches(msg, m.keys.Close):
		return m, tea.Sequence(
			func() tea.Msg { sess.CloseBooking(); return nil },
			m.snapshot(),
		)
	case key.Matches(msg, m.keys.Up):
		if !m.inReason && m.candidate > 0 {
			m.candidate--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if !m.inReason && m.view.Booking != nil && m.candidate < len(m.view.Booking.Candidates)-1 {
			m.candidate++
		}
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		if !m.inReason {
			if m.view.Booking == nil || m.candidate >= len(m.view.Booking.Candidates) {
				return m, nil
			}
			id := m.view.Booking.Candidates[m.candidate].ID
			m.inReason = true
			m.search.Blur()
			m.reason.Focus()
			return m, tea.Sequence(
				func() tea.Msg { sess.SelectPatient(id); return nil },
				m.snapshot(),
			)
		}
		reason := m.reason.Value()
		return m, tea.Sequence(
			func() tea.Msg { sess.SetReason(reason); return nil },
			func() tea.Msg { sess.SubmitBooking(); return nil },
			m.snapshot(),
		)
	}

	var cmd tea.Cmd
	if m.inReason {
		m.reason, cmd = m.reason.Update(msg)
		return m, cmd
	}
	m.search, cmd = m.search.Update(msg)
	term := m.search.Value()
	return m, tea.Batch(cmd, tea.Sequence(
		func() tea.Msg { sess.SetSearchTerm(term); return nil },
		m.snapshot(),
	))
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sess := m.sess
	switch {
	case key.Matches(msg, m.keys.Close):
		if m.view.Detail != nil && m.view.Detail.PendingDelete {
			return m, tea.Sequence(
				func() tea.Msg { sess.CancelDelete(); return nil },
				m.snapshot(),
			)
		}
		return m, tea.Sequence(
			func() tea.Msg { sess.CloseDetail(); return nil },
			m.snapshot(),
		)
	case key.Matches(msg, m.keys.Status):
		next := nextStatus(m.view.Detail.Status)
		return m, tea.Sequence(
			func() tea.Msg { sess.SetDetailStatus(next); return nil },
			m.snapshot(),
		)
	case key.Matches(msg, m.keys.Enter):
		return m, tea.Sequence(
			func() tea.Msg { sess.SaveDetail(); return nil },
			m.snapshot(),
		)
	case key.Matches(msg, m.keys.Delete):
		return m, tea.Sequence(
			func() tea.Msg { sess.RequestDelete(); return nil },
			m.snapshot(),
		)
	case key.Matches(msg, m.keys.Confirm):
		if m.view.Detail != nil && m.view.Detail.PendingDelete {
			return m, tea.Sequence(
				func() tea.Msg { sess.ConfirmDelete(); return nil },
				m.snapshot(),
			)
		}
	}
	return m, nil
}

func nextStatus(current schedule.Status) schedule.Status {
	all := schedule.Statuses()
	for i, s := range all {
		if s == current {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

func (m Model) handleQueueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.queue == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.rowCursor > 0 {
			m.rowCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.rowCursor < len(m.rows)-1 {
			m.rowCursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadQueue()
	case key.Matches(msg, m.keys.Filter):
		return m, m.cycleQueueFilter()
	case key.Matches(msg, m.keys.Enter):
		if m.rowCursor >= len(m.rows) {
			return m, nil
		}
		row := m.rows[m.rowCursor]
		q, now := m.queue, m.now
		return m, func() tea.Msg {
			ctx := context.Background()
			if row.Action() == checkin.ActionCheckIn {
				_ = q.CheckIn(ctx, row.AppointmentID, row.PatientName, now())
			} else {
				_ = q.CheckOut(ctx, row.AppointmentID, row.PatientName)
			}
			return queueRowsMsg{rows: q.Rows()}
		}
	}
	return m, nil
}

func (m Model) cycleQueueFilter() tea.Cmd {
	q, now := m.queue, m.now
	current := q.Query().Filter
	return func() tea.Msg {
		ctx := context.Background()
		today := time.Date(now().Year(), now().Month(), now().Day(), 0, 0, 0, 0, time.UTC)
		switch current {
		case checkin.FilterToday:
			_ = q.SetFilter(ctx, checkin.FilterCustomDate)
			_ = q.SetDates(ctx, today, today)
		case checkin.FilterCustomDate:
			_ = q.SetFilter(ctx, checkin.FilterCustomRange)
			_ = q.SetDates(ctx, today.AddDate(0, 0, -7), today)
		default:
			_ = q.SetFilter(ctx, checkin.FilterToday)
		}
		return queueRowsMsg{rows: q.Rows()}
	}
}

func (m Model) handleWizardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.wizard == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		return m.focusWizardInput(m.focused - 1), nil
	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Enter):
		return m.focusWizardInput(m.focused + 1), nil
	case key.Matches(msg, m.keys.Next):
		if err := m.applyWizardStep(); err != nil {
			return m, toastError(err)
		}
		if err := m.wizard.Next(); err != nil {
			return m, toastError(err)
		}
		return m, func() tea.Msg { return wizardStepMsg{} }
	case key.Matches(msg, m.keys.Back):
		m.wizard.Back()
		return m, func() tea.Msg { return wizardStepMsg{} }
	case key.Matches(msg, m.keys.Submit):
		if err := m.applyWizardStep(); err != nil {
			return m, toastError(err)
		}
		w := m.wizard
		return m, func() tea.Msg {
			id, err := w.Submit(context.Background())
			if err != nil {
				return ToastMsg{Title: "Error", Message: err.Error(), Severity: schedule.SeverityError}
			}
			return ToastMsg{
				Title:    "Success",
				Message:  "Patient registered with ID " + id + ".",
				Severity: schedule.SeveritySuccess,
			}
		}
	}

	var cmd tea.Cmd
	if m.focused < len(m.inputs) {
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	}
	return m, cmd
}

func (m Model) focusWizardInput(i int) Model {
	if len(m.inputs) == 0 {
		return m
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.inputs) {
		i = len(m.inputs) - 1
	}
	m.inputs[m.focused].Blur()
	m.focused = i
	m.inputs[m.focused].Focus()
	return m
}

// applyWizardStep copies the visible inputs into the wizard draft.
func (m Model) applyWizardStep() error {
	switch m.wizard.Step() {
	case register.StepPatient:
		dob, err := parseOptionalDate(m.wizardValue(1))
		if err != nil {
			return err
		}
		m.wizard.SetPatient(register.PatientDetails{
			Name:        m.wizardValue(0),
			DateOfBirth: dob,
			Contact:     m.wizardValue(2),
			Email:       m.wizardValue(3),
			Address:     m.wizardValue(4),
			Gender:      m.wizardValue(5),
		})
	case register.StepInsurance:
		till, err := parseOptionalDate(m.wizardValue(2))
		if err != nil {
			return err
		}
		m.wizard.SetInsurance(register.Insurance{
			Provider:     m.wizardValue(0),
			PolicyNumber: m.wizardValue(1),
			ValidTill:    till,
			Active:       m.wizardValue(3) == "y",
		})
	case register.StepHistory:
		diagnosed, err := parseOptionalDate(m.wizardValue(1))
		if err != nil {
			return err
		}
		m.wizard.SetHistory(register.MedicalHistory{
			Condition:     m.wizardValue(0),
			DiagnosedDate: diagnosed,
			Notes:         m.wizardValue(2),
		})
	}
	return nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, errBadDate
	}
	return &t, nil
}

var errBadDate = badDateError{}

type badDateError struct{}

func (badDateError) Error() string { return "Dates must be entered as YYYY-MM-DD." }

func toastError(err error) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Title: "Error", Message: err.Error(), Severity: schedule.SeverityError}
	}
}
