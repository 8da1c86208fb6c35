package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	HalfUp   key.Binding
	HalfDown key.Binding
	Home     key.Binding
	End      key.Binding
	NextPane key.Binding

	// Session
	Select   key.Binding
	Chat     key.Binding
	Collapse key.Binding

	// Actions
	Quit      key.Binding
	Help      key.Binding
	Escape    key.Binding
	Filter    key.Binding
	Refresh   key.Binding
	Play      key.Binding
	PlayAll   key.Binding
	OpenVideo key.Binding
	OpenChat  key.Binding
	Reauth    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "right"),
		),
		HalfUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("C-u", "half page up"),
		),
		HalfDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "half page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("C-w", "switch pane"),
		),

		// Session
		Select: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle in grid"),
		),
		Chat: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "toggle chat"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "collapse sidebar"),
		),

		// Actions
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Play: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "play"),
		),
		PlayAll: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "play grid"),
		),
		OpenVideo: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open video embed"),
		),
		OpenChat: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "open chat embed"),
		),
		Reauth: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "re-authenticate"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
