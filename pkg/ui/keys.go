package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Top          key.Binding
	Bottom       key.Binding
	Toggle       key.Binding
	Expand       key.Binding
	Collapse     key.Binding
	ToggleExpand key.Binding
	ExpandAll    key.Binding
	CollapseAll  key.Binding
	SelectAll    key.Binding
	Filter       key.Binding
	ClearFilter  key.Binding
	PivotMode    key.Binding
	MoveUp       key.Binding
	MoveDown     key.Binding
	CopyID       key.Binding
	Help         key.Binding
	Quit         key.Binding
}

var panelKeys = keyMap{
	Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Top:          key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:       key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Toggle:       key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
	Expand:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
	Collapse:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
	ToggleExpand: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "open/close group")),
	ExpandAll:    key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expand all")),
	CollapseAll:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "collapse all")),
	SelectAll:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
	Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	ClearFilter:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
	PivotMode:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pivot mode")),
	MoveUp:       key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move column left")),
	MoveDown:     key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move column right")),
	CopyID:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
	Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// footerBindings are the hints shown in the status bar.
func (k keyMap) footerBindings() []key.Binding {
	return []key.Binding{k.Toggle, k.Expand, k.Collapse, k.Filter, k.SelectAll, k.PivotMode, k.Help, k.Quit}
}
