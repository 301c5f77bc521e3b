package scenario

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/meshcore-dev/companion-ui/internal/config"
	"github.com/meshcore-dev/companion-ui/internal/display"
	"github.com/meshcore-dev/companion-ui/internal/feedback"
	"github.com/meshcore-dev/companion-ui/internal/keys"
	"github.com/meshcore-dev/companion-ui/internal/mesh"
	"github.com/meshcore-dev/companion-ui/internal/prefs"
	"github.com/meshcore-dev/companion-ui/internal/sensors"
	"github.com/meshcore-dev/companion-ui/internal/telemetry"
	"github.com/meshcore-dev/companion-ui/internal/ui"
)

const (
	// TickMS is the simulated time between controller loop iterations.
	TickMS = 10
	// Epoch is the wall-clock time, in seconds, a simulated device boots at.
	Epoch uint32 = 1_700_000_000

	tailMS           = 2000
	defaultBatteryMV = 4000
	defaultNoise     = -112
)

// Clock is a manual millisecond clock.
type Clock struct{ ms int64 }

func (c *Clock) Millis() int64 { return c.ms }
func (c *Clock) Advance(ms int64) { c.ms += ms }

// RTC derives wall-clock seconds from a Clock.
type RTC struct {
	clock *Clock
	epoch uint32
}

func (r RTC) CurrentTime() uint32 { return r.epoch + uint32(r.clock.ms/1000) }

// Board is a simulated battery, status LED and power switch.
type Board struct {
	MilliVolts uint16
	Noise      int

	led        bool
	ledChanges int
	rebooted   bool
	poweredOff bool
}

func (b *Board) BattMilliVolts() uint16 { return b.MilliVolts }
func (b *Board) NoiseFloor() int { return b.Noise }
func (b *Board) Reboot() { b.rebooted = true }
func (b *Board) PowerOff() { b.poweredOff = true }

func (b *Board) SetStatusLED(on bool) {
	if on != b.led {
		b.ledChanges++
	}
	b.led = on
}

func (b *Board) LED() bool { return b.led }
func (b *Board) LEDChanges() int { return b.ledChanges }
func (b *Board) Rebooted() bool { return b.rebooted }
func (b *Board) PoweredOff() bool { return b.poweredOff }

// Button queues gestures for the controller. A long press leaves the button
// held until Release.
type Button struct {
	queue   []keys.Gesture
	pressed bool
}

func (b *Button) Press(g keys.Gesture) {
	b.queue = append(b.queue, g)
	if g == keys.GestureLongPress {
		b.pressed = true
	}
}

func (b *Button) Release() { b.pressed = false }

func (b *Button) Check() keys.Gesture {
	if len(b.queue) == 0 {
		return keys.GestureNone
	}
	g := b.queue[0]
	b.queue = b.queue[1:]
	return g
}

func (b *Button) IsPressed() bool { return b.pressed }

// Keypad is a byte queue standing in for the I2C keyboard.
type Keypad struct {
	pending []byte
}

func (k *Keypad) Present() bool { return true }

func (k *Keypad) Type(b ...byte) { k.pending = append(k.pending, b...) }

func (k *Keypad) ReadByte() byte {
	if len(k.pending) == 0 {
		return 0
	}
	b := k.pending[0]
	k.pending = k.pending[1:]
	return b
}

// Device is a controller wired to simulated hardware.
type Device struct {
	Clock    *Clock
	Board    *Board
	Button   *Button
	Keypad   *Keypad
	Node     *mesh.SimNode
	Canvas   *display.Canvas
	Buzzer   *feedback.SimBuzzer
	Vibrator *feedback.SimVibrator
	Sensors  *sensors.SimManager
	Prefs    *prefs.NodePrefs

	Controller *ui.Controller
}

// NewDevice seeds a simulated node from sc and starts a controller on it.
// The scenario's config section is applied over cfg.
func NewDevice(sc Scenario, cfg config.Config, p prefs.NodePrefs, version, buildDate string) (*Device, error) {
	cfg, err := sc.Apply(cfg)
	if err != nil {
		return nil, err
	}
	if sc.Node.Name != "" {
		p.NodeName = sc.Node.Name
	}

	d := &Device{
		Clock:    &Clock{},
		Board:    &Board{MilliVolts: defaultBatteryMV, Noise: defaultNoise},
		Button:   &Button{},
		Keypad:   &Keypad{},
		Node:     mesh.NewSimNode(p.NodeName),
		Canvas:   display.NewCanvas(cfg.Display.Width, cfg.Display.Height),
		Buzzer:   feedback.NewSimBuzzer(),
		Vibrator: feedback.NewSimVibrator(),
		Prefs:    &p,
	}
	if sc.Node.BatteryMV > 0 {
		d.Board.MilliVolts = sc.Node.BatteryMV
	}
	if err := d.seed(sc.Node); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	deps := ui.Deps{
		Display:  d.Canvas,
		Backend:  d.Node,
		Clock:    d.Clock,
		RTC:      RTC{clock: d.Clock, epoch: Epoch},
		Prefs:    d.Prefs,
		Board:    d.Board,
		Button:   d.Button,
		Sensors:  d.Sensors,
		Buzzer:   d.Buzzer,
		Vibrator: d.Vibrator,
	}
	if cfg.Keypad.Enabled {
		deps.Keypad = d.Keypad
	}
	d.Controller = ui.New(deps, cfg.UIOptions(version, buildDate))
	logrus.Debugf("scenario: device %q ready (%d contacts)", p.NodeName, d.Node.NumContacts())
	return d, nil
}

func (d *Device) seed(n Node) error {
	d.Node.SetBLEPin(n.BLEPin)
	d.Node.SetConnected(n.Connected)
	for _, c := range n.Contacts {
		info := mesh.ContactInfo{Name: c.Name, LastAdvert: Epoch}
		if c.Flood {
			info.OutPathLen = mesh.OutPathUnknown
		}
		if err := d.Node.AddContact(info); err != nil {
			return fmt.Errorf("contact %s: %w", c.Name, err)
		}
	}
	for _, ch := range n.Channels {
		if err := d.Node.AddChannel(ch.Name, ch.PSK); err != nil {
			return fmt.Errorf("channel %s: %w", ch.Name, err)
		}
	}
	// Hear the oldest first so the heard list ends up newest first.
	adverts := slices.Clone(n.Adverts)
	slices.SortStableFunc(adverts, func(a, b Advert) int { return cmp.Compare(b.AgeSecs, a.AgeSecs) })
	for _, a := range adverts {
		d.Node.HearNode(a.Name, a.Hops, Epoch-a.AgeSecs)
	}

	readings := make([]sensors.Reading, 0, len(n.Sensors))
	for _, r := range n.Sensors {
		t, _ := telemetry.ParseType(r.Type)
		readings = append(readings, sensors.Reading{Channel: r.Channel, Type: t, Value: r.Value})
	}
	var loc *sensors.Location
	if n.GPS != nil {
		loc = &sensors.Location{Lat: n.GPS.Lat, Lon: n.GPS.Lon, Alt: n.GPS.Alt}
	}
	d.Sensors = sensors.NewSimManager(readings, loc)
	return nil
}

// Tick advances simulated time by TickMS and runs one controller iteration.
func (d *Device) Tick() {
	d.Clock.Advance(TickMS)
	d.Controller.Loop()
}

// Deliver hands an inbound message to the controller the way the mesh stack
// would: unread count bumped, preview queued, then the cue.
func (d *Device) Deliver(m Message) {
	pathLen := m.Hops
	if m.Direct {
		pathLen = ui.PathDirect
	}
	d.Controller.NewMessage(pathLen, m.From, m.Text, d.Controller.MsgCount()+1)
	d.Controller.Notify(feedback.EventContactMessage)
}

// Off reports whether the device has shut down or rebooted.
func (d *Device) Off() bool {
	return d.Board.PoweredOff() || d.Board.Rebooted() || d.Controller.Halted()
}
