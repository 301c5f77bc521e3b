// Package feedback covers the audio and haptic cues the UI emits: the contracts
// the controller drives, the event to melody mapping, and simulated devices.
package feedback

import (
	"github.com/sirupsen/logrus"
)

// Event is a UI occurrence that may produce a cue.
type Event uint8

const (
	EventNone Event = iota
	EventContactMessage
	EventChannelMessage
	EventRoomMessage
	EventNewContactMessage
	EventAck
)

func (e Event) String() string {
	switch e {
	case EventContactMessage:
		return "contact_message"
	case EventChannelMessage:
		return "channel_message"
	case EventRoomMessage:
		return "room_message"
	case EventNewContactMessage:
		return "new_contact_message"
	case EventAck:
		return "ack"
	default:
		return "none"
	}
}

const (
	MelodyContactMessage = "MsgRcv3:d=4,o=6,b=200:32e,32g,32b,16c7"
	MelodyChannelMessage = "kerplop:d=16,o=6,b=120:32g#,32c#"
	MelodyAck            = "ack:d=32,o=8,b=120:c"
)

// MelodyFor returns the ring-tone played for e, if any.
func MelodyFor(e Event) (string, bool) {
	switch e {
	case EventContactMessage:
		return MelodyContactMessage, true
	case EventChannelMessage:
		return MelodyChannelMessage, true
	case EventAck:
		return MelodyAck, true
	default:
		return "", false
	}
}

// Buzzer plays RTTTL melodies. Step advances playback and must be called
// while IsPlaying reports true.
type Buzzer interface {
	Play(melody string)
	IsPlaying() bool
	Step(now int64)
	Quiet(on bool)
	IsQuiet() bool
	// Shutdown stops accepting new melodies; the current one may still finish.
	Shutdown()
}

// Vibrator pulses a haptic motor.
type Vibrator interface {
	Trigger()
	Step(now int64)
}

// SimBuzzer times melodies without producing sound. Playback starts on the
// first Step after Play.
type SimBuzzer struct {
	quiet    bool
	shutdown bool
	current  Melody
	pending  bool
	endsAt   int64
	played   []string
}

func NewSimBuzzer() *SimBuzzer { return &SimBuzzer{} }

func (b *SimBuzzer) Play(melody string) {
	if b.quiet || b.shutdown {
		return
	}
	m, err := ParseRTTTL(melody)
	if err != nil {
		logrus.Debugf("buzzer: %v", err)
		return
	}
	logrus.Debugf("buzzer: playing %s (%dms)", m.Name, m.TotalMS())
	b.current = m
	b.pending = true
	b.endsAt = 0
	b.played = append(b.played, m.Name)
}

func (b *SimBuzzer) IsPlaying() bool { return b.pending || b.endsAt > 0 }

func (b *SimBuzzer) Step(now int64) {
	switch {
	case b.pending:
		b.pending = false
		b.endsAt = now + b.current.TotalMS()
	case b.endsAt > 0 && now >= b.endsAt:
		b.endsAt = 0
	}
}

func (b *SimBuzzer) Quiet(on bool) { b.quiet = on }
func (b *SimBuzzer) IsQuiet() bool { return b.quiet }

// Shutdown also cuts the current melody short; a simulated buzzer has nothing to drain.
func (b *SimBuzzer) Shutdown() {
	b.shutdown = true
	b.pending = false
	b.endsAt = 0
}

// Played lists the names of melodies started so far.
func (b *SimBuzzer) Played() []string { return append([]string(nil), b.played...) }

// DefaultPulseMS is how long a simulated vibration lasts.
const DefaultPulseMS = 200

// SimVibrator records pulses.
type SimVibrator struct {
	pulseMS  int64
	pending  bool
	activeTo int64
	pulses   int
}

func NewSimVibrator() *SimVibrator { return &SimVibrator{pulseMS: DefaultPulseMS} }

func (v *SimVibrator) Trigger() {
	v.pending = true
	v.pulses++
}

func (v *SimVibrator) Step(now int64) {
	if v.pending {
		v.pending = false
		v.activeTo = now + v.pulseMS
		return
	}
	if v.activeTo > 0 && now >= v.activeTo {
		v.activeTo = 0
	}
}

// Active reports whether the motor is currently running.
func (v *SimVibrator) Active() bool { return v.pending || v.activeTo > 0 }

// Pulses counts triggers so far.
func (v *SimVibrator) Pulses() int { return v.pulses }
