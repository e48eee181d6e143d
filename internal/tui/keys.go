package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Exercise  key.Binding
	Rest      key.Binding
	GetFreeze key.Binding
	UseFreeze key.Binding
	Refresh   key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Up        key.Binding
	Down      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Exercise: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "exercised"),
		),
		Rest: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "rest day"),
		),
		GetFreeze: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "get freeze"),
		),
		UseFreeze: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "use freeze"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("→/tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("←", "prev tab"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Exercise, k.Rest, k.UseFreeze, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Exercise, k.Rest, k.Refresh},
		{k.GetFreeze, k.UseFreeze},
		{k.NextTab, k.PrevTab, k.Up, k.Down},
		{k.Help, k.Quit},
	}
}
