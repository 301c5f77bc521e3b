//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshcore-dev/companion-ui/internal/display"
	"github.com/meshcore-dev/companion-ui/internal/feedback"
	"github.com/meshcore-dev/companion-ui/internal/keys"
	"github.com/meshcore-dev/companion-ui/internal/mesh"
	"github.com/meshcore-dev/companion-ui/internal/prefs"
	"github.com/meshcore-dev/companion-ui/internal/sensors"
	"github.com/meshcore-dev/companion-ui/internal/telemetry"
)

const (
	testPSK  = "izOH6cXN6mrJ5e26oRXNcg=="
	tickMS   = 10
	bootSecs = 1_700_000_000
)

// fakeClock returns ms and then moves it forward by step.
type fakeClock struct {
	ms   int64
	step int64
}

func (c *fakeClock) Millis() int64 {
	now := c.ms
	c.ms += c.step
	return now
}

type fakeRTC struct{ secs uint32 }

func (r *fakeRTC) CurrentTime() uint32 { return r.secs }

type fakeBoard struct {
	mv         uint16
	noise      int
	led        []bool
	rebooted   bool
	poweredOff bool
}

func (b *fakeBoard) BattMilliVolts() uint16 { return b.mv }
func (b *fakeBoard) NoiseFloor() int { return b.noise }
func (b *fakeBoard) SetStatusLED(on bool) { b.led = append(b.led, on) }
func (b *fakeBoard) Reboot() { b.rebooted = true }
func (b *fakeBoard) PowerOff() { b.poweredOff = true }

type fakeButton struct {
	queue   []keys.Gesture
	pressed bool
}

func (b *fakeButton) Check() keys.Gesture {
	if len(b.queue) == 0 {
		return keys.GestureNone
	}
	g := b.queue[0]
	b.queue = b.queue[1:]
	return g
}

func (b *fakeButton) IsPressed() bool { return b.pressed }

type fakeKeypad struct {
	present bool
	pending []byte
}

func (k *fakeKeypad) Present() bool { return k.present }

func (k *fakeKeypad) ReadByte() byte {
	if len(k.pending) == 0 {
		return 0
	}
	b := k.pending[0]
	k.pending = k.pending[1:]
	return b
}

// fakeBuzzer plays every melody for a fixed number of steps.
type fakeBuzzer struct {
	stepsPerMelody int
	remaining      int
	steps          int
	quiet          bool
	shutdown       bool
	played         []string
}

func (b *fakeBuzzer) Play(melody string) {
	if b.quiet || b.shutdown {
		return
	}
	b.played = append(b.played, melody)
	b.remaining = b.stepsPerMelody
}

func (b *fakeBuzzer) IsPlaying() bool { return b.remaining > 0 }

func (b *fakeBuzzer) Step(int64) {
	b.steps++
	if b.remaining > 0 {
		b.remaining--
	}
}

func (b *fakeBuzzer) Quiet(on bool) { b.quiet = on }
func (b *fakeBuzzer) IsQuiet() bool { return b.quiet }
func (b *fakeBuzzer) Shutdown() { b.shutdown = true }

// rig wires a Controller to simulated collaborators.
type rig struct {
	t       *testing.T
	clock   *fakeClock
	rtc     *fakeRTC
	board   *fakeBoard
	button  *fakeButton
	keypad  *fakeKeypad
	node    *mesh.SimNode
	canvas  *display.Canvas
	buzzer  *fakeBuzzer
	vib     *feedback.SimVibrator
	sensors *sensors.SimManager
	prefs   *prefs.NodePrefs
	c       *Controller
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Version = "v1.9.0-abcdef"
	opts.BuildDate = "1 Jan 2026"
	opts.LED = false
	return opts
}

// newRig builds the collaborators, lets setup adjust them, then creates the
// controller.
func newRig(t *testing.T, opts Options, setup ...func(*rig)) *rig {
	t.Helper()
	p := prefs.Default()
	p.NodeName = "alpha"
	sm := sensors.NewSimManager([]sensors.Reading{
		{Channel: 2, Type: telemetry.TypeTemperature, Value: 21.5},
	}, &sensors.Location{Lat: 51.5, Lon: -0.12, Alt: 11})
	r := &rig{
		t:       t,
		clock:   &fakeClock{},
		rtc:     &fakeRTC{secs: bootSecs},
		board:   &fakeBoard{mv: 4000, noise: -110},
		button:  &fakeButton{},
		keypad:  &fakeKeypad{present: true},
		node:    mesh.NewSimNode("alpha"),
		canvas:  display.NewCanvas(128, 64),
		buzzer:  &fakeBuzzer{stepsPerMelody: 3},
		vib:     feedback.NewSimVibrator(),
		sensors: sm,
		prefs:   &p,
	}
	for _, f := range setup {
		f(r)
	}
	r.c = New(Deps{
		Display:  r.canvas,
		Backend:  r.node,
		Clock:    r.clock,
		RTC:      r.rtc,
		Prefs:    r.prefs,
		Board:    r.board,
		Button:   r.button,
		Keypad:   r.keypad,
		Sensors:  r.sensors,
		Buzzer:   r.buzzer,
		Vibrator: r.vib,
	}, opts)
	return r
}

// advance runs ticks of tickMS until ms have elapsed.
func (r *rig) advance(ms int64) {
	for end := r.clock.ms + ms; r.clock.ms < end; {
		r.clock.ms += tickMS
		r.c.Loop()
	}
}

// toHome waits out the splash screen.
func (r *rig) toHome() {
	r.t.Helper()
	r.advance(r.c.opts.BootScreenMS + tickMS)
	require.Equal(r.t, ScreenHome, r.c.Current())
}

func (r *rig) press(g keys.Gesture) {
	r.button.queue = append(r.button.queue, g)
	r.advance(tickMS)
}

// typeKeys feeds keypad bytes, one per tick.
func (r *rig) typeKeys(s string) {
	r.keypad.pending = append(r.keypad.pending, s...)
	r.advance(int64(len(s)) * tickMS)
}

func (r *rig) alertText() string {
	text, _ := r.c.Alert()
	return text
}
