package ui

import (
	"github.com/meshcore-dev/companion-ui/internal/display"
	"github.com/meshcore-dev/companion-ui/internal/feedback"
	"github.com/meshcore-dev/companion-ui/internal/keys"
)

// ScreenID names one of the fixed set of screens.
type ScreenID uint8

const (
	ScreenSplash ScreenID = iota
	ScreenHome
	ScreenPreview
	ScreenCompose
)

func (id ScreenID) String() string {
	switch id {
	case ScreenSplash:
		return "splash"
	case ScreenHome:
		return "home"
	case ScreenPreview:
		return "preview"
	case ScreenCompose:
		return "compose"
	default:
		return "unknown"
	}
}

// Screen is implemented by the screens in this package only.
type Screen interface {
	// Render draws the full screen and returns how many ms until it wants
	// to be drawn again.
	Render(d display.Driver, now int64) int
	// HandleInput reports whether k meant anything to the screen.
	HandleInput(k keys.Key) bool
	// Poll runs every tick, rendered or not.
	Poll(now int64)

	isScreen()
}

// host is what screens may ask of the controller.
type host interface {
	now() int64
	gotoScreen(id ScreenID)
	showAlert(text string, durationMS int64)
	notify(e feedback.Event)
	msgCount() int
	buttonPressed() bool
	battMilliVolts() uint16
	toggleGPS()
	shutdown(restart bool)
}
