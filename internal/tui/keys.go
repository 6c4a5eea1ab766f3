package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the settings editor.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Editing
	Increase     key.Binding
	Decrease     key.Binding
	IncreaseMore key.Binding
	DecreaseMore key.Binding
	Edit         key.Binding
	EditColor    key.Binding
	Reset        key.Binding

	// Session
	Accept key.Binding
	Reject key.Binding

	// Global
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Reject, k.Help}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Increase, k.Decrease, k.IncreaseMore, k.DecreaseMore},
		{k.Edit, k.EditColor, k.Reset},
		{k.Accept, k.Reject, k.Help},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "shift+tab"),
			key.WithHelp("↑/k", "previous field"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "tab"),
			key.WithHelp("↓/j", "next field"),
		),
		Increase: key.NewBinding(
			key.WithKeys("right", "l", "+"),
			key.WithHelp("→/l", "increase"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("left", "h", "-"),
			key.WithHelp("←/h", "decrease"),
		),
		IncreaseMore: key.NewBinding(
			key.WithKeys("shift+right", "L", "pgup"),
			key.WithHelp("L", "increase by 10"),
		),
		DecreaseMore: key.NewBinding(
			key.WithKeys("shift+left", "H", "pgdown"),
			key.WithHelp("H", "decrease by 10"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter", "type a value"),
		),
		EditColor: key.NewBinding(
			key.WithKeys("#", "c"),
			key.WithHelp("#", "type a hex color"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset to original"),
		),
		Accept: key.NewBinding(
			key.WithKeys("ctrl+s", "a"),
			key.WithHelp("a", "accept"),
		),
		Reject: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
