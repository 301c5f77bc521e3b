package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/meshcore-dev/companion-ui/internal/keys"
)

const (
	byteEsc       = 0x1B
	byteBackspace = 0x08
)

func (m Model) gestureFor(msg tea.KeyMsg) (keys.Gesture, bool) {
	switch {
	case key.Matches(msg, m.keys.Click):
		return keys.GestureClick, true
	case key.Matches(msg, m.keys.DoubleClick):
		return keys.GestureDoubleClick, true
	case key.Matches(msg, m.keys.TripleClick):
		return keys.GestureTripleClick, true
	case key.Matches(msg, m.keys.LongPress):
		return keys.GestureLongPress, true
	}
	return keys.GestureNone, false
}

// press queues g on the simulated button; a long press keeps it held for a while.
func (m *Model) press(g keys.Gesture) {
	m.dev.Button.Press(g)
	if g == keys.GestureLongPress {
		m.releaseAt = m.dev.Clock.Millis() + longPressHoldMS
	}
}

// keypadBytes returns what an ASCII keypad would send for msg. Arrows become
// ESC [ A..D sequences; runes outside printable ASCII are dropped.
func keypadBytes(msg tea.KeyMsg) []byte {
	switch msg.Type {
	case tea.KeyUp:
		return []byte{byteEsc, '[', 'A'}
	case tea.KeyDown:
		return []byte{byteEsc, '[', 'B'}
	case tea.KeyRight:
		return []byte{byteEsc, '[', 'C'}
	case tea.KeyLeft:
		return []byte{byteEsc, '[', 'D'}
	case tea.KeyEnter:
		return []byte{'\r'}
	case tea.KeyTab:
		return []byte{'\t'}
	case tea.KeyBackspace:
		return []byte{byteBackspace}
	case tea.KeyEsc:
		return []byte{byteEsc}
	case tea.KeySpace:
		return []byte{' '}
	case tea.KeyRunes:
		out := make([]byte, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			if r >= ' ' && r <= '~' {
				out = append(out, byte(r))
			}
		}
		return out
	}
	return nil
}
