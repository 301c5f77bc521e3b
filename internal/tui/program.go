package tui

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/meshcore-dev/companion-ui/internal/scenario"
)

// Run drives dev in the terminal until the user quits, ctx is canceled or the
// device powers off.
func Run(ctx context.Context, dev *scenario.Device, title string) error {
	p := tea.NewProgram(NewModel(dev, title), tea.WithAltScreen(), tea.WithContext(ctx))

	// Logs would corrupt the view; callers that want them set a file output first.
	prevOut := logrus.StandardLogger().Out
	if prevOut == os.Stderr || prevOut == os.Stdout {
		logrus.SetOutput(io.Discard)
		defer logrus.SetOutput(prevOut)
	}

	_, err := p.Run()
	return err
}
