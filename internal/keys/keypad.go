package keys

const (
	byteEsc       = 0x1B
	byteBackspace = 0x08

	// Vendor shorthand bytes some I2C keypads send for the arrow cluster.
	vendorUp    = 0xB5
	vendorDown  = 0xB6
	vendorRight = 0xB7
	vendorLeft  = 0xB4

	// DefaultPollIntervalMS throttles reads from the peripheral.
	DefaultPollIntervalMS = 5
)

// State is the escape-sequence decoder state.
type State uint8

const (
	Idle State = iota
	SawEscape
	SawBracket
)

// Step advances the decoder by one byte. It never blocks and has no side effects.
func Step(s State, b byte) (State, Key) {
	switch s {
	case Idle:
		if b == byteEsc {
			return SawEscape, KeyNone
		}
	case SawEscape:
		if b == '[' {
			return SawBracket, KeyNone
		}
		// not an arrow sequence: fall through to plain translation
	case SawBracket:
		switch b {
		case 'A':
			return Idle, KeyPrev
		case 'B':
			return Idle, KeyNext
		case 'C':
			return Idle, KeyRight
		case 'D':
			return Idle, KeyLeft
		default:
			return Idle, KeyNone
		}
	}
	return Idle, Translate(b)
}

// Translate maps a single keypad byte outside of an escape sequence.
func Translate(b byte) Key {
	switch {
	case b >= 32 && b <= 126:
		return CharKey(b)
	case b == '\r' || b == '\n':
		return KeyEnter
	case b == byteBackspace:
		return KeyBackspace
	case b == '\t':
		return KeySelect
	case b == byteEsc:
		return KeyPrev
	}
	switch b {
	case vendorUp:
		return KeyPrev
	case vendorDown:
		return KeyNext
	case vendorRight:
		return KeyRight
	case vendorLeft:
		return KeyLeft
	}
	return KeyNone
}

// Source is the raw keypad peripheral. ReadByte returns 0 when no key is waiting.
type Source interface {
	Present() bool
	ReadByte() byte
}

// Keypad polls a Source at a bounded rate and decodes its byte stream.
type Keypad struct {
	src      Source
	present  bool
	interval int64
	nextPoll int64
	state    State
}

// NewKeypad probes src once; a nil or absent source disables the keypad for good.
func NewKeypad(src Source, pollIntervalMS int) *Keypad {
	if pollIntervalMS <= 0 {
		pollIntervalMS = DefaultPollIntervalMS
	}
	return &Keypad{
		src:      src,
		present:  src != nil && src.Present(),
		interval: int64(pollIntervalMS),
	}
}

// Present reports whether the peripheral answered the startup probe.
func (k *Keypad) Present() bool { return k != nil && k.present }

// State exposes the decoder state, mostly for tests.
func (k *Keypad) State() State { return k.state }

// Poll reads at most one byte if the throttle allows and returns the decoded key.
func (k *Keypad) Poll(now int64) Key {
	if !k.Present() {
		return KeyNone
	}
	if now < k.nextPoll {
		return KeyNone
	}
	k.nextPoll = now + k.interval

	b := k.src.ReadByte()
	if b == 0 {
		return KeyNone
	}
	var key Key
	k.state, key = Step(k.state, b)
	return key
}
