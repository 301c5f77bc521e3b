package scenario

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/meshcore-dev/companion-ui/internal/config"
	"github.com/meshcore-dev/companion-ui/internal/keys"
	"github.com/meshcore-dev/companion-ui/internal/prefs"
	"github.com/meshcore-dev/companion-ui/internal/ui"
	"github.com/meshcore-dev/companion-ui/internal/version"
)

// AlertEvent is an alert that appeared during a replay.
type AlertEvent struct {
	At   int64  `json:"at"`
	Text string `json:"text"`
}

// SentEvent is an outbound send recorded by the simulated node.
type SentEvent struct {
	To     string `json:"to"`
	Text   string `json:"text"`
	Result string `json:"result"`
}

// Result is the state of the device when a replay ends.
type Result struct {
	Scenario   string       `json:"scenario"`
	EndedAt    int64        `json:"ended_at"`
	Screen     string       `json:"screen"`
	HomePage   string       `json:"home_page,omitempty"`
	DisplayOn  bool         `json:"display_on"`
	Frame      string       `json:"frame"`
	Alerts     []AlertEvent `json:"alerts"`
	Sent       []SentEvent  `json:"sent"`
	Melodies   []string     `json:"melodies"`
	Vibrations int          `json:"vibrations"`
	Unread     int          `json:"unread"`
	Halted     bool         `json:"halted"`
}

// Apply feeds one step's input to the device.
func (d *Device) Apply(st Step) {
	if st.BatteryMV > 0 {
		d.Board.MilliVolts = st.BatteryMV
	}
	if g, ok := keys.ParseGesture(st.Button); ok {
		d.Button.Press(g)
	}
	d.Keypad.Type([]byte(st.Type)...)
	for _, b := range st.Bytes {
		d.Keypad.Type(byte(b))
	}
	if st.Message != nil {
		d.Deliver(*st.Message)
	}
	if st.Release {
		d.Button.Release()
	}
}

// Replay runs sc headless from boot until sc.End() or until the device
// powers off, and reports what happened.
func Replay(ctx context.Context, sc Scenario, cfg config.Config, p prefs.NodePrefs) (Result, error) {
	dev, err := NewDevice(sc, cfg, p, version.BuildVersion, version.BuildDate)
	if err != nil {
		return Result{}, err
	}

	res := Result{Scenario: sc.Name}
	var (
		next      int
		lastText  string
		lastShown bool
	)
	end := sc.End()
	for dev.Clock.Millis() < end && !dev.Off() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		for next < len(sc.Steps) && sc.Steps[next].At <= dev.Clock.Millis() {
			dev.Apply(sc.Steps[next])
			next++
		}
		dev.Tick()

		text, shown := dev.Controller.Alert()
		if shown && (!lastShown || text != lastText) {
			res.Alerts = append(res.Alerts, AlertEvent{At: dev.Clock.Millis(), Text: text})
		}
		lastText, lastShown = text, shown
	}
	logrus.Debugf("scenario: %s replayed to %dms", sc.Name, dev.Clock.Millis())
	return dev.result(res), nil
}

func (d *Device) result(res Result) Result {
	c := d.Controller
	res.EndedAt = d.Clock.Millis()
	res.Screen = c.Current().String()
	if c.Current() == ui.ScreenHome {
		res.HomePage = c.HomePage().String()
	}
	res.DisplayOn = d.Canvas.IsOn()
	res.Frame = d.Canvas.String()
	for _, m := range d.Node.Sent() {
		res.Sent = append(res.Sent, SentEvent{To: m.To, Text: m.Text, Result: m.Result.String()})
	}
	res.Melodies = d.Buzzer.Played()
	res.Vibrations = d.Vibrator.Pulses()
	res.Unread = c.MsgCount()
	res.Halted = c.Halted()
	return res
}
