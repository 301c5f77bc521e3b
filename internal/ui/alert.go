package ui

import "github.com/meshcore-dev/companion-ui/internal/display"

const maxAlertLen = 79

// Alert durations in ms.
const (
	alertShortMS  = 500
	alertMS       = 800
	alertLongMS   = 1000
	alertKeypadMS = 1200
)

type alert struct {
	text   string
	expiry int64
}

func (a alert) active(now int64) bool { return now < a.expiry }

// drawPopup draws a boxed message across the middle third of the display.
func drawPopup(d display.Driver, text string) {
	d.SetTextSize(1)
	y := d.Height() / 3
	p := d.Height() / 32
	d.SetColor(display.Dark)
	d.FillRect(p, y, d.Width()-p*2, y)
	d.SetColor(display.Light)
	d.DrawRect(p, y, d.Width()-p*2, y)
	d.DrawTextCentered(d.Width()/2, y+p*3, text)
}
