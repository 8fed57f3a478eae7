package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	ForceQ   key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Submit   key.Binding
	Enter    key.Binding
	Example  key.Binding
	Escape   key.Binding
	Share    key.Binding
	New      key.Binding
	History  key.Binding
	HistoryH key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	ForceQ:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next input")),
	PrevTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev input")),
	Submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "analyze")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Example:  key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "example")),
	Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Share:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "copy summary")),
	New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new analysis")),
	History:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "history")),
	HistoryH: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
}
