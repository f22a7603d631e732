package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the pager key bindings. Line and page scrolling are handled
// by the viewport's own key map.
type KeyMap struct {
	Quit        key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Filter      key.Binding
	ClearFilter key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f", "tab"),
			key.WithHelp("f", "next sender"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("esc", "a"),
			key.WithHelp("esc", "all senders"),
		),
	}
}

// ShortHelp lists the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Filter, k.ClearFilter, k.Top, k.Bottom}
}
