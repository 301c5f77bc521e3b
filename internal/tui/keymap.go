package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the simulator's own bindings. Every key not bound here goes to
// the simulated keypad.
type keyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Click       key.Binding
	DoubleClick key.Binding
	TripleClick key.Binding
	LongPress   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f10"),
			key.WithHelp("f10", "toggle help"),
		),
		Click: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "click"),
		),
		DoubleClick: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "double click"),
		),
		TripleClick: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("f3", "triple click"),
		),
		LongPress: key.NewBinding(
			key.WithKeys("f4"),
			key.WithHelp("f4", "long press"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Click, k.DoubleClick, k.TripleClick, k.LongPress, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Click, k.DoubleClick, k.TripleClick, k.LongPress},
		{k.Help, k.Quit},
	}
}
