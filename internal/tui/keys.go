package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	SortRank  key.Binding
	SortMonth key.Binding
	SortYear  key.Binding
	Prev      key.Binding
	Next      key.Binding
	GoTo      key.Binding
	Commit    key.Binding
	Cancel    key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		SortRank:  key.NewBinding(key.WithKeys("r", "1"), key.WithHelp("r", "sort by rank")),
		SortMonth: key.NewBinding(key.WithKeys("m", "2"), key.WithHelp("m", "sort by month change")),
		SortYear:  key.NewBinding(key.WithKeys("y", "3"), key.WithHelp("y", "sort by year change")),
		Prev:      key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "previous page")),
		Next:      key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next page")),
		GoTo:      key.NewBinding(key.WithKeys("g", ":"), key.WithHelp("g", "go to page")),
		Commit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Refresh:   key.NewBinding(key.WithKeys("R", "ctrl+r"), key.WithHelp("R", "refresh")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SortRank, k.SortMonth, k.SortYear, k.Prev, k.Next, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SortRank, k.SortMonth, k.SortYear},
		{k.Prev, k.Next, k.GoTo, k.Commit, k.Cancel},
		{k.Refresh, k.Help, k.Quit},
	}
}
