package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	OctaveUp   key.Binding
	OctaveDown key.Binding
	Notation   key.Binding
	Output     key.Binding
	AllOff     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		OctaveUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "octave up"),
		),
		OctaveDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "octave down"),
		),
		Notation: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "camelot/musical labels"),
		),
		Output: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "next output"),
		),
		AllOff: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "all notes off"),
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

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.OctaveUp, k.OctaveDown, k.Output, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.OctaveUp, k.OctaveDown, k.Notation},
		{k.Output, k.AllOff},
		{k.Help, k.Quit},
	}
}
