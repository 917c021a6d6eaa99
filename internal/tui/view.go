package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brightwell-health/frontdesk/internal/checkin"
	"github.com/brightwell-health/frontdesk/internal/register"
	"github.com/brightwell-health/frontdesk/internal/schedule"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.tab {
	case TabBoard:
		if m.view.Booking != nil {
			b.WriteString(m.renderBooking())
		} else if m.view.Detail != nil {
			b.WriteString(m.renderDetail())
		} else {
			b.WriteString(m.renderBoard())
		}
	case TabCheckIn:
		b.WriteString(m.renderQueue())
	case TabRegister:
		b.WriteString(m.renderWizard())
	}

	b.WriteString("\n")
	if m.toast != nil {
		b.WriteString(renderToast(*m.toast))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderTabs() string {
	names := []string{"Appointments", "Check-In", "Register"}
	parts := make([]string, len(names))
	for i, name := range names {
		if Tab(i) == m.tab {
			parts[i] = activeTabStyle.Render(name)
		} else {
			parts[i] = inactiveTabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderBoard() string {
	var b strings.Builder

	week := fmt.Sprintf("Week of %s", m.weekStart.Format("Mon 02 Jan 2006"))
	if m.loading {
		week += "  " + faintStyle.Render("loading…")
	}
	b.WriteString(dayHeaderStyle.Render(week))
	b.WriteString("\n")
	b.WriteString(m.renderFilters())
	b.WriteString("\n\n")

	if len(m.events) == 0 {
		b.WriteString(faintStyle.Render("No appointments in this window."))
		b.WriteString("\n")
		return b.String()
	}

	var lastDay string
	for i, ev := range m.events {
		day := ev.Start.Format("Monday 02 Jan")
		if day != lastDay {
			b.WriteString(dayHeaderStyle.Render(day))
			b.WriteString("\n")
			lastDay = day
		}
		line := fmt.Sprintf("  %s–%s  %-24s %-18s %s",
			ev.Start.Format("15:04"), ev.End.Format("15:04"),
			ev.Title, ev.DoctorName,
			statusStyle(string(ev.Status)).Render(string(ev.Status)),
		)
		if i == m.cursor {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFilters() string {
	dep := m.view.Department
	if dep == "" {
		dep = "All Departments"
	}
	doctor := "All Doctors"
	for _, opt := range m.view.DoctorOptions {
		if opt.Value == m.view.DoctorID && opt.Value != "" {
			doctor = opt.Label
		}
	}
	return faintStyle.Render(fmt.Sprintf("%s · %s", dep, doctor))
}

func (m Model) renderBooking() string {
	draft := m.view.Booking
	var b strings.Builder
	b.WriteString(dayHeaderStyle.Render("New Appointment"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s–%s\n\n",
		draft.SlotStart.Format("Mon 02 Jan"),
		draft.SlotStart.Format("15:04"), draft.SlotEnd.Format("15:04")))

	b.WriteString("Patient: ")
	b.WriteString(m.search.View())
	b.WriteString("\n")
	for i, cand := range draft.Candidates {
		line := fmt.Sprintf("  %s (%s)", cand.Name, cand.PatientNo)
		if i == m.candidate && !m.inReason {
			line = selectedRowStyle.Render(line)
		}
		if cand.ID == draft.PatientID {
			line += " ✓"
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\nReason:  ")
	b.WriteString(m.reason.View())
	b.WriteString("\n\n")
	b.WriteString(faintStyle.Render("enter select/submit · esc cancel"))
	return modalStyle.Render(b.String())
}

func (m Model) renderDetail() string {
	detail := m.view.Detail
	ev := detail.Appointment
	var b strings.Builder
	b.WriteString(dayHeaderStyle.Render("Appointment Details"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Patient:  %s\n", ev.Title))
	b.WriteString(fmt.Sprintf("Doctor:   %s\n", ev.DoctorName))
	b.WriteString(fmt.Sprintf("When:     %s %s–%s\n",
		ev.Start.Format("Mon 02 Jan"), ev.Start.Format("15:04"), ev.End.Format("15:04")))
	b.WriteString("Status:   ")
	b.WriteString(statusStyle(string(detail.Status)).Render(string(detail.Status)))
	b.WriteString("\n\n")
	if detail.PendingDelete {
		b.WriteString(toastErrorStyle.Render("Delete this appointment? Press y to confirm, esc to cancel."))
	} else {
		b.WriteString(faintStyle.Render("ctrl+s cycle status · enter save · ctrl+d delete · esc close"))
	}
	return modalStyle.Render(b.String())
}

func (m Model) renderQueue() string {
	var b strings.Builder
	query := checkin.Query{}
	if m.queue != nil {
		query = m.queue.Query()
	}
	b.WriteString(dayHeaderStyle.Render(fmt.Sprintf("Arrivals · %s", query.Filter)))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(faintStyle.Render("No appointments in this window."))
		b.WriteString("\n")
		return b.String()
	}

	for i, row := range m.rows {
		action := "check in"
		if row.Action() == checkin.ActionCheckOut {
			action = "check out"
		}
		line := fmt.Sprintf("  %s  %-22s %-16s %-12s [%s]",
			row.Start.Format("15:04"), row.PatientName, row.DoctorName,
			statusStyle(row.Status).Render(row.Status), action)
		if i == m.rowCursor {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderWizard() string {
	if m.wizard == nil {
		return faintStyle.Render("Registration is not available.")
	}
	var b strings.Builder
	b.WriteString(dayHeaderStyle.Render("Register Patient · " + stepTitle(m.wizard.Step())))
	b.WriteString("\n\n")
	for i, input := range m.inputs {
		label := fmt.Sprintf("%-28s", m.labels[i])
		if i == m.focused {
			label = selectedRowStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString(" ")
		b.WriteString(input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("ctrl+j next step · ctrl+b back · ctrl+o submit"))
	b.WriteString("\n")
	return b.String()
}

func stepTitle(s register.Step) string {
	switch s {
	case register.StepPatient:
		return "Patient Details"
	case register.StepInsurance:
		return "Insurance"
	case register.StepHistory:
		return "Medical History"
	}
	return ""
}

func renderToast(t ToastMsg) string {
	text := fmt.Sprintf("%s: %s", t.Title, t.Message)
	switch t.Severity {
	case schedule.SeveritySuccess:
		return toastSuccessStyle.Render(text)
	case schedule.SeverityError:
		return toastErrorStyle.Render(text)
	default:
		return toastInfoStyle.Render(text)
	}
}
