// Package ui is the on-device user interface: a fixed set of screens, the
// controller that multiplexes them on one display, and the input, alert and
// redraw scheduling that drives them. Everything runs on the caller's
// goroutine, one Tick at a time.
package ui

import (
	"github.com/sirupsen/logrus"

	"github.com/meshcore-dev/companion-ui/internal/display"
	"github.com/meshcore-dev/companion-ui/internal/feedback"
	"github.com/meshcore-dev/companion-ui/internal/keys"
	"github.com/meshcore-dev/companion-ui/internal/mesh"
	"github.com/meshcore-dev/companion-ui/internal/sensors"
)

// Status LED heartbeat timing in ms.
const (
	ledOnMS    = 20
	ledOnMsgMS = 200
	ledCycleMS = 4000
)

// Controller owns the current screen, the alert overlay and every timer.
type Controller struct {
	display  display.Driver
	backend  mesh.Backend
	clock    Clock
	rtc      RTC
	board    Board
	button   Button
	keypad   *keys.Keypad
	sensors  sensors.Manager
	buzzer   feedback.Buzzer
	vibrator feedback.Vibrator
	opts     Options

	book    *recipientBook
	splash  *splashScreen
	home    *homeScreen
	preview *previewScreen
	compose *composeScreen
	current ScreenID

	tickNow     int64
	startedAt   int64
	nextRefresh int64
	autoOff     int64
	alert       alert
	msgcount    int

	ledOn         bool
	ledIncrement  int64
	nextLEDChange int64
	nextBattCheck int64

	halted bool
}

// New builds the controller, turns the display on and starts on the splash
// screen.
func New(deps Deps, opts Options) *Controller {
	now := deps.Clock.Millis()
	c := &Controller{
		display:   deps.Display,
		backend:   deps.Backend,
		clock:     deps.Clock,
		rtc:       deps.RTC,
		board:     deps.Board,
		button:    deps.Button,
		sensors:   deps.Sensors,
		buzzer:    deps.Buzzer,
		vibrator:  deps.Vibrator,
		opts:      opts,
		tickNow:   now,
		startedAt: now,
		autoOff:   now + opts.AutoOffMS,
		current:   ScreenSplash,
	}

	c.book = newRecipientBook(opts.RecentListSize)
	c.splash = newSplash(c, opts, now)
	c.home = newHome(c, deps, opts)
	c.preview = newPreview(c, deps.RTC, opts)
	c.compose = newCompose(c, deps.Backend, deps.RTC, c.book, opts)

	c.display.TurnOn()

	var src keys.Source
	if opts.KeypadEnabled {
		src = deps.Keypad
	}
	c.keypad = keys.NewKeypad(src, opts.KeypadPollMS)
	if opts.KeypadEnabled {
		if c.keypad.Present() {
			c.showAlert("Keypad: OK", alertMS)
		} else {
			c.showAlert("Keypad: NOT FOUND", alertKeypadMS)
		}
	}

	logrus.Debugf("ui: started at %d ms, keypad present=%t", now, c.keypad.Present())
	return c
}

func (c *Controller) screen(id ScreenID) Screen {
	switch id {
	case ScreenHome:
		return c.home
	case ScreenPreview:
		return c.preview
	case ScreenCompose:
		return c.compose
	default:
		return c.splash
	}
}

// Loop runs one tick against the current clock reading.
func (c *Controller) Loop() { c.Tick(c.clock.Millis()) }

// Tick advances the UI to now: input, screen poll, render when due, then the
// auto-off, haptic and battery timers.
func (c *Controller) Tick(now int64) {
	if c.halted {
		return
	}
	c.tickNow = now

	if k := c.readInput(now); !k.IsNone() {
		c.screen(c.current).HandleInput(k)
		c.autoOff = now + c.opts.AutoOffMS
		c.nextRefresh = 0
	}

	c.stepLED(now)
	if c.buzzer != nil && c.buzzer.IsPlaying() {
		c.buzzer.Step(now)
	}

	c.screen(c.current).Poll(now)
	if c.halted {
		return
	}

	if c.display.IsOn() {
		if now >= c.nextRefresh {
			c.render(now)
		}
		if c.opts.AutoOffMS > 0 && now > c.autoOff {
			logrus.Debugf("ui: display auto-off at %d ms", now)
			c.display.TurnOff()
		}
	}

	if c.vibrator != nil {
		c.vibrator.Step(now)
	}
	c.checkBattery(now)
}

// readInput takes a button gesture first and falls back to the keypad.
func (c *Controller) readInput(now int64) keys.Key {
	k := keys.KeyNone
	if c.button != nil {
		if g := c.button.Check(); g != keys.GestureNone {
			k = c.gestureKey(g, now)
		}
	}
	if k.IsNone() {
		if kp := c.keypad.Poll(now); !kp.IsNone() {
			k = c.wake(kp, now)
		}
	}
	return k
}

func (c *Controller) gestureKey(g keys.Gesture, now int64) keys.Key {
	switch g {
	case keys.GestureLongPress:
		if now-c.startedAt < c.opts.RescueWindowMS {
			logrus.Debugf("ui: long press %d ms after boot, entering CLI rescue", now-c.startedAt)
			c.backend.EnterCLIRescue()
			return keys.KeyNone
		}
	case keys.GestureTripleClick:
		k := c.wake(keys.FromGesture(g), now)
		c.toggleBuzzer()
		return k
	}
	return c.wake(keys.FromGesture(g), now)
}

// wake extends auto-off and, when the display is dark, turns it on and
// swallows the key.
func (c *Controller) wake(k keys.Key, now int64) keys.Key {
	c.autoOff = now + c.opts.AutoOffMS
	c.nextRefresh = 0
	if !c.display.IsOn() {
		c.display.TurnOn()
		return keys.KeyNone
	}
	return k
}

func (c *Controller) render(now int64) {
	d := c.display
	d.StartFrame()
	hint := c.screen(c.current).Render(d, now)
	if c.alert.active(now) {
		drawPopup(d, c.alert.text)
		c.nextRefresh = c.alert.expiry
	} else {
		c.nextRefresh = now + int64(hint)
	}
	d.EndFrame()
}

func (c *Controller) stepLED(now int64) {
	if !c.opts.LED || c.board == nil || now < c.nextLEDChange {
		return
	}
	if c.ledOn {
		c.ledOn = false
		c.nextLEDChange = now + ledCycleMS - c.ledIncrement
	} else {
		c.ledOn = true
		c.ledIncrement = ledOnMS
		if c.msgcount > 0 {
			c.ledIncrement = ledOnMsgMS
		}
		c.nextLEDChange = now + c.ledIncrement
	}
	c.board.SetStatusLED(c.ledOn)
}

func (c *Controller) checkBattery(now int64) {
	if c.opts.AutoShutdownMillivolts <= 0 || now < c.nextBattCheck {
		return
	}
	c.nextBattCheck = now + c.opts.BatteryCheckMS

	mv := c.battMilliVolts()
	if mv == 0 || int(mv) >= c.opts.AutoShutdownMillivolts {
		return
	}
	logrus.Warnf("ui: battery at %d mV, below %d mV, shutting down", mv, c.opts.AutoShutdownMillivolts)
	if c.opts.EInk {
		// e-ink keeps the last frame after power loss
		d := c.display
		d.StartFrame()
		d.SetTextSize(2)
		d.SetColor(display.Red)
		d.DrawTextCentered(d.Width()/2, 20, "Low Battery.")
		d.DrawTextCentered(d.Width()/2, 40, "Shutting Down!")
		d.EndFrame()
	}
	c.Shutdown(false)
}

// syncClock is used by entry points called between ticks.
func (c *Controller) syncClock() { c.tickNow = c.clock.Millis() }

// ShowAlert overlays text on the current screen for durationMS. A newer alert
// replaces the previous one.
func (c *Controller) ShowAlert(text string, durationMS int64) {
	c.syncClock()
	c.showAlert(text, durationMS)
}

// Alert returns the active alert text, if any.
func (c *Controller) Alert() (string, bool) {
	if !c.alert.active(c.tickNow) {
		return "", false
	}
	return c.alert.text, true
}

// Current is the screen on display.
func (c *Controller) Current() ScreenID { return c.current }

// HomePage is the page the Home screen is on.
func (c *Controller) HomePage() HomePage { return c.home.Page() }

// NewMessage queues a preview, remembers the sender for compose, switches to
// the preview screen and wakes the display.
func (c *Controller) NewMessage(pathLen uint8, from, text string, count int) {
	c.syncClock()
	c.msgcount = count
	c.preview.add(pathLen, from, text)
	c.book.addSender(c.backend, from, c.rtc.CurrentTime())
	c.gotoScreen(ScreenPreview)

	if !c.display.IsOn() {
		c.display.TurnOn()
	}
	c.autoOff = c.tickNow + c.opts.AutoOffMS
	c.nextRefresh = 0
}

// MsgRead records the backend's unread count; at zero the UI returns Home.
func (c *Controller) MsgRead(count int) {
	c.msgcount = count
	if count == 0 {
		c.gotoScreen(ScreenHome)
	}
}

// MsgCount is the unread count last reported by the backend.
func (c *Controller) MsgCount() int { return c.msgcount }

// Notify plays the melody for e and pulses the vibrator.
func (c *Controller) Notify(e feedback.Event) { c.notify(e) }

// SendText sends to the first recent contact, or to channel 0 when there is none.
// It resolves against a private copy of the recipient caches so an open
// Compose screen keeps pointing at the recipient the user picked.
func (c *Controller) SendText(text string) SendOutcome {
	c.syncClock()
	book := c.book.clone()
	book.refresh(c.backend, c.rtc.CurrentTime())
	r := Recipient{Kind: RecipientChannel}
	if book.total() > 0 {
		r = Recipient{Kind: RecipientContact}
	}
	disp := &dispatcher{backend: c.backend, rtc: c.rtc, book: book}
	out := disp.send(text, r)
	c.showAlert(out.Alert, alertMS)
	if out.OK() {
		c.notify(feedback.EventAck)
	}
	return out
}

// Shutdown lets pending audio finish, bounded by ShutdownDrainMS, then reboots
// or powers off. The controller ignores further ticks.
func (c *Controller) Shutdown(restart bool) {
	logrus.Debugf("ui: shutdown (restart=%t)", restart)
	if c.buzzer != nil {
		c.buzzer.Shutdown()
		// A clock that does not move while we spin still gets at most one
		// step per millisecond of drain budget.
		start := c.clock.Millis()
		for steps := int64(0); c.buzzer.IsPlaying(); steps++ {
			now := c.clock.Millis()
			if now-start >= c.opts.ShutdownDrainMS || steps >= c.opts.ShutdownDrainMS {
				logrus.Debugf("ui: buzzer still playing after %d ms, shutting down anyway", now-start)
				break
			}
			c.buzzer.Step(now)
		}
	}

	c.halted = true
	if restart {
		if c.board != nil {
			c.board.Reboot()
		}
		return
	}
	c.display.TurnOff()
	if c.board != nil {
		c.board.PowerOff()
	}
}

// Halted reports whether Shutdown has run.
func (c *Controller) Halted() bool { return c.halted }

func (c *Controller) now() int64 { return c.tickNow }

func (c *Controller) gotoScreen(id ScreenID) {
	if id == ScreenCompose {
		c.compose.enter()
	}
	if id != c.current {
		logrus.Debugf("ui: screen %s -> %s", c.current, id)
	}
	c.current = id
	c.nextRefresh = 0
}

func (c *Controller) showAlert(text string, durationMS int64) {
	text = clip(text, maxAlertLen)
	logrus.Debugf("ui: alert %q for %d ms", text, durationMS)
	c.alert = alert{text: text, expiry: c.tickNow + durationMS}
	c.nextRefresh = 0
}

func (c *Controller) notify(e feedback.Event) {
	if c.buzzer != nil {
		if melody, ok := feedback.MelodyFor(e); ok {
			c.buzzer.Play(melody)
		}
	}
	if c.vibrator != nil && e != feedback.EventNone {
		c.vibrator.Trigger()
	}
}

func (c *Controller) msgCount() int { return c.msgcount }

func (c *Controller) buttonPressed() bool {
	return c.button != nil && c.button.IsPressed()
}

func (c *Controller) battMilliVolts() uint16 {
	if c.board == nil {
		return 0
	}
	return c.board.BattMilliVolts()
}

func (c *Controller) shutdown(restart bool) { c.Shutdown(restart) }

func (c *Controller) toggleBuzzer() {
	if c.buzzer == nil {
		return
	}
	if c.buzzer.IsQuiet() {
		c.buzzer.Quiet(false)
		c.notify(feedback.EventAck)
		c.showAlert("Buzzer: ON", alertMS)
	} else {
		c.buzzer.Quiet(true)
		c.showAlert("Buzzer: OFF", alertMS)
	}
}

// toggleGPS flips the sensor manager's gps setting, if it has one.
func (c *Controller) toggleGPS() {
	if c.sensors == nil {
		return
	}
	for i := range c.sensors.NumSettings() {
		if c.sensors.SettingName(i) != sensors.SettingGPS {
			continue
		}
		if c.sensors.SettingValue(i) == "1" {
			c.sensors.SetSettingValue(sensors.SettingGPS, "0")
			c.notify(feedback.EventAck)
			c.showAlert("GPS: Disabled", alertMS)
		} else {
			c.sensors.SetSettingValue(sensors.SettingGPS, "1")
			c.notify(feedback.EventAck)
			c.showAlert("GPS: Enabled", alertMS)
		}
		return
	}
}
