package ui

import (
	"github.com/meshcore-dev/companion-ui/internal/display"
	"github.com/meshcore-dev/companion-ui/internal/feedback"
	"github.com/meshcore-dev/companion-ui/internal/keys"
	"github.com/meshcore-dev/companion-ui/internal/mesh"
	"github.com/meshcore-dev/companion-ui/internal/prefs"
	"github.com/meshcore-dev/companion-ui/internal/sensors"
)

// Clock is the monotonic millisecond tick source.
type Clock interface {
	Millis() int64
}

// RTC is wall-clock time in epoch seconds, used for message ages.
type RTC interface {
	CurrentTime() uint32
}

// Board is the power and status-LED side of the hardware.
type Board interface {
	BattMilliVolts() uint16
	NoiseFloor() int
	SetStatusLED(on bool)
	Reboot()
	PowerOff()
}

// Button is the user button. Check returns the gesture completed since the
// last call, if any.
type Button interface {
	Check() keys.Gesture
	IsPressed() bool
}

// Deps are the collaborators a Controller drives. Display, Backend, Clock and
// RTC are required; the rest may be nil when the hardware is absent.
type Deps struct {
	Display  display.Driver
	Backend  mesh.Backend
	Clock    Clock
	RTC      RTC
	Prefs    *prefs.NodePrefs
	Board    Board
	Button   Button
	Keypad   keys.Source
	Sensors  sensors.Manager
	Buzzer   feedback.Buzzer
	Vibrator feedback.Vibrator
}

// Options tune timing and optional features.
type Options struct {
	// AutoOffMS powers the display down after inactivity; 0 keeps it on
	// and selects the slow e-ink refresh hints.
	AutoOffMS      int64
	BootScreenMS   int64
	RescueWindowMS int64
	RecentListSize int
	SensorsPage    bool
	EInk           bool

	KeypadEnabled bool
	KeypadPollMS  int

	AutoShutdownMillivolts int
	BatteryCheckMS         int64
	ShutdownDrainMS        int64

	LED bool

	Version   string
	BuildDate string
}

// DefaultOptions mirrors the stock firmware build.
func DefaultOptions() Options {
	return Options{
		AutoOffMS:       15000,
		BootScreenMS:    3000,
		RescueWindowMS:  8000,
		RecentListSize:  4,
		SensorsPage:     true,
		KeypadEnabled:   true,
		KeypadPollMS:    keys.DefaultPollIntervalMS,
		BatteryCheckMS:  8000,
		ShutdownDrainMS: 2500,
		LED:             true,
		Version:         "dev",
		BuildDate:       "unknown",
	}
}

func (o Options) slowRefresh() bool { return o.EInk || o.AutoOffMS == 0 }
