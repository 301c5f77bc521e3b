package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { // nolint:ireturn
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = x.Width, x.Height
		m.help.Width = x.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(x)

	case tickMsg:
		m.step()
		if m.dev.Off() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tick()
	}

	return m, nil
}

// step runs one iteration of the device and lets go of a held button when due.
func (m *Model) step() {
	m.dev.Tick()
	if m.releaseAt > 0 && m.dev.Clock.Millis() >= m.releaseAt {
		m.dev.Button.Release()
		m.releaseAt = 0
	}
}

// handleKey routes simulator bindings first and sends everything else to the keypad.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) { // nolint:ireturn
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.fullHelp = !m.fullHelp
		return m, nil
	}

	if g, ok := m.gestureFor(msg); ok {
		m.press(g)
		return m, nil
	}
	if b := keypadBytes(msg); len(b) > 0 {
		m.dev.Keypad.Type(b...)
	}
	return m, nil
}
