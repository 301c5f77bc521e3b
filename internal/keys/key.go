package keys

import "fmt"

// Kind enumerates the logical keys screens understand.
type Kind uint8

const (
	None Kind = iota
	Enter
	Left
	Right
	Next
	Prev
	Select
	Backspace
	Char
)

// Key is a normalized input symbol. Char is only meaningful when Kind is Char.
type Key struct {
	Kind Kind
	Char byte
}

// Convenience values for the non-character kinds.
//
//nolint:gochecknoglobals // immutable key values shared by decoders and screens.
var (
	KeyNone      = Key{}
	KeyEnter     = Key{Kind: Enter}
	KeyLeft      = Key{Kind: Left}
	KeyRight     = Key{Kind: Right}
	KeyNext      = Key{Kind: Next}
	KeyPrev      = Key{Kind: Prev}
	KeySelect    = Key{Kind: Select}
	KeyBackspace = Key{Kind: Backspace}
)

// CharKey wraps a printable byte.
func CharKey(b byte) Key { return Key{Kind: Char, Char: b} }

// IsNone reports whether k carries no input.
func (k Key) IsNone() bool { return k.Kind == None }

func (k Key) String() string {
	switch k.Kind {
	case None:
		return "none"
	case Enter:
		return "enter"
	case Left:
		return "left"
	case Right:
		return "right"
	case Next:
		return "next"
	case Prev:
		return "prev"
	case Select:
		return "select"
	case Backspace:
		return "backspace"
	case Char:
		return fmt.Sprintf("char(%q)", k.Char)
	default:
		return fmt.Sprintf("kind(%d)", k.Kind)
	}
}
