package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit           key.Binding
	Send           key.Binding
	NewChat        key.Binding
	ToggleSessions key.Binding
	Up             key.Binding
	Down           key.Binding
	Select         key.Binding
	Delete         key.Binding
	Confirm        key.Binding
	Cancel         key.Binding
	Search         key.Binding
	Refresh        key.Binding
	PageUp         key.Binding
	PageDown       key.Binding
}

var keys = keyMap{
	Quit:           key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Send:           key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	NewChat:        key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
	ToggleSessions: key.NewBinding(key.WithKeys("ctrl+s", "tab"), key.WithHelp("ctrl+s", "chats")),
	Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Delete:         key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Confirm:        key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
	Cancel:         key.NewBinding(key.WithKeys("esc", "n", "N"), key.WithHelp("esc", "cancel")),
	Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Refresh:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	PageUp:         key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	PageDown:       key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
}

func helpLine(bindings ...key.Binding) string {
	s := ""
	for i, b := range bindings {
		if i > 0 {
			s += " • "
		}
		h := b.Help()
		s += h.Key + " " + h.Desc
	}
	return s
}
