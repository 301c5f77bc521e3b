package ui

import (
	"github.com/meshcore-dev/companion-ui/internal/display"
	"github.com/meshcore-dev/companion-ui/internal/keys"
	"github.com/meshcore-dev/companion-ui/internal/version"
)

type splashScreen struct {
	h            host
	version      string
	buildDate    string
	dismissAfter int64
}

func newSplash(h host, opts Options, startedAt int64) *splashScreen {
	return &splashScreen{
		h:            h,
		version:      version.Short(opts.Version),
		buildDate:    opts.BuildDate,
		dismissAfter: startedAt + opts.BootScreenMS,
	}
}

func (s *splashScreen) isScreen() {}

func (s *splashScreen) Render(d display.Driver, _ int64) int {
	d.SetColor(display.Blue)
	d.DrawBitmap((d.Width()-iconLogo.Width)/2, 3, iconLogo)

	d.SetColor(display.Light)
	d.SetTextSize(2)
	d.DrawTextCentered(d.Width()/2, 22, s.version)

	d.SetTextSize(1)
	d.DrawTextCentered(d.Width()/2, 42, s.buildDate)
	return 1000
}

func (s *splashScreen) HandleInput(keys.Key) bool { return false }

func (s *splashScreen) Poll(now int64) {
	if now >= s.dismissAfter {
		s.h.gotoScreen(ScreenHome)
	}
}
