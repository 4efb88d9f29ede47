package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the history view key bindings.
type KeyMap struct {
	LineUp   key.Binding
	LineDown key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Cancel   key.Binding
	Copy     key.Binding
	Delete   key.Binding
	Choose   key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		LineUp:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		LineDown: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "f", " "), key.WithHelp("pgdn", "page down")),
		Home:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "oldest")),
		End:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "newest")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Copy:     key.NewBinding(key.WithKeys("y", "ctrl+c"), key.WithHelp("y", "copy")),
		Delete:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Choose:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "choose")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PageUp, k.PageDown, k.Cancel, k.Copy, k.Delete, k.Choose, k.Quit}
}

// FullHelp groups every binding.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.LineUp, k.LineDown, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Cancel, k.Copy, k.Delete, k.Choose, k.Quit},
	}
}
