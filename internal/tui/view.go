package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/meshcore-dev/companion-ui/internal/display"
	"github.com/meshcore-dev/companion-ui/internal/ui"
)

//nolint:gochecknoglobals // immutable styles shared by the view.
var (
	frameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, framePadX)
	offStyle    = lipgloss.NewStyle().Faint(true)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	ledOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)

	cellColors = map[display.Color]lipgloss.Color{
		display.Light:  lipgloss.Color("252"),
		display.Red:    lipgloss.Color("196"),
		display.Green:  lipgloss.Color("46"),
		display.Blue:   lipgloss.Color("33"),
		display.Yellow: lipgloss.Color("226"),
		display.Orange: lipgloss.Color("208"),
	}
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(frameStyle.Render(renderCanvas(m.dev.Canvas)))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status()))
	b.WriteString("\n\n")
	if m.fullHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return b.String()
}

// renderCanvas draws the published frame, one styled run per colour change.
func renderCanvas(c *display.Canvas) string {
	lines := c.Lines()
	if !c.IsOn() {
		blank := strings.Repeat(" ", c.Cols())
		out := make([]string, len(lines))
		for i := range out {
			out[i] = offStyle.Render(blank)
		}
		return strings.Join(out, "\n")
	}

	out := make([]string, 0, len(lines))
	for _, row := range lines {
		var line strings.Builder
		var run []rune
		runColor := display.Light
		flush := func() {
			if len(run) > 0 {
				line.WriteString(lipgloss.NewStyle().Foreground(cellColors[runColor]).Render(string(run)))
				run = run[:0]
			}
		}
		for _, cell := range row {
			if cell.Color != runColor {
				flush()
				runColor = cell.Color
			}
			run = append(run, cell.Ch)
		}
		flush()
		out = append(out, line.String())
	}
	return strings.Join(out, "\n")
}

func (m Model) status() string {
	c := m.dev.Controller
	screen := c.Current().String()
	if c.Current() == ui.ScreenHome {
		screen += "/" + c.HomePage().String()
	}
	led := "○"
	if m.dev.Board.LED() {
		led = ledOnStyle.Render("●")
	}
	quiet := ""
	if m.dev.Buzzer.IsQuiet() {
		quiet = "  quiet"
	}
	lines := []string{
		fmt.Sprintf("t=%6.2fs  screen: %s  unread: %d  led: %s%s",
			float64(m.dev.Clock.Millis())/1000, screen, c.MsgCount(), led, quiet),
		fmt.Sprintf("battery: %dmV  sent: %d  melodies: %d  vibrations: %d",
			m.dev.Board.BattMilliVolts(), len(m.dev.Node.Sent()), len(m.dev.Buzzer.Played()), m.dev.Vibrator.Pulses()),
	}
	if text, ok := c.Alert(); ok {
		lines = append(lines, "alert: "+text)
	}
	for len(lines) < statusLines {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
