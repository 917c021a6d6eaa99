package tui

import "github.com/charmbracelet/lipgloss"

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 1)

	dayHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	toastInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42"))

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	faintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusStyles = map[string]lipgloss.Style{
		"Scheduled":   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		"Completed":   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"Canceled":    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		"No Show":     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"Checked-In":  lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
		"Checked-Out": lipgloss.NewStyle().Foreground(lipgloss.Color("77")),
	}
)

func statusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return faintStyle
}
