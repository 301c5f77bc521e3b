package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/meshcore-dev/companion-ui/internal/scenario"
)

// Model is the root Bubble Tea model. It owns the simulated device and is the
// only goroutine that touches it.
type Model struct {
	dev      *scenario.Device
	title    string
	keys     keyMap
	help     help.Model
	fullHelp bool

	// releaseAt is the simulated time a held button is let go; 0 when not held.
	releaseAt int64

	width    int
	height   int
	quitting bool
}

// NewModel wraps dev for the terminal.
func NewModel(dev *scenario.Device, title string) Model {
	return Model{
		dev:   dev,
		title: title,
		keys:  newKeyMap(),
		help:  help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

// tick schedules the next controller iteration.
func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}
