package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	PrevWeek key.Binding
	NextWeek key.Binding
	Enter    key.Binding
	Help     key.Binding
	Refresh  key.Binding
	Book     key.Binding
	Earlier  key.Binding
	Later    key.Binding
	Delete   key.Binding
	Confirm  key.Binding
	Status   key.Binding
	Filter   key.Binding
	Dept     key.Binding
	Doctor   key.Binding
	Back     key.Binding
	Next     key.Binding
	Submit   key.Binding
	Close    key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Refresh, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Up, k.Down, k.PrevWeek, k.NextWeek},
		{k.Enter, k.Book, k.Earlier, k.Later, k.Delete, k.Status},
		{k.Dept, k.Doctor, k.Filter, k.Refresh, k.Back, k.Next, k.Submit, k.Quit},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		PrevWeek: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "prev week"),
		),
		NextWeek: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next week"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open/select"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Book: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "book slot"),
		),
		Earlier: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "move 30m earlier"),
		),
		Later: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "move 30m later"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Status: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "cycle status"),
		),
		Filter: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "cycle filter"),
		),
		Dept: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "cycle department"),
		),
		Doctor: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "cycle doctor"),
		),
		Back: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "previous step"),
		),
		Next: key.NewBinding(
			key.WithKeys("ctrl+j"),
			key.WithHelp("ctrl+j", "next step"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "submit"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}
