package keys

// Gesture is a pre-classified physical button event.
type Gesture uint8

const (
	GestureNone Gesture = iota
	GestureClick
	GestureDoubleClick
	GestureTripleClick
	GestureLongPress
)

func (g Gesture) String() string {
	switch g {
	case GestureClick:
		return "click"
	case GestureDoubleClick:
		return "double"
	case GestureTripleClick:
		return "triple"
	case GestureLongPress:
		return "long"
	default:
		return "none"
	}
}

// ParseGesture maps the names used by scenarios and the simulator back to gestures.
func ParseGesture(s string) (Gesture, bool) {
	switch s {
	case "click":
		return GestureClick, true
	case "double", "double-click":
		return GestureDoubleClick, true
	case "triple", "triple-click":
		return GestureTripleClick, true
	case "long", "long-press":
		return GestureLongPress, true
	}
	return GestureNone, false
}

// FromGesture returns the logical key a gesture stands for. The side effects
// (rescue mode, quiet-mode toggle, display wake) belong to the controller.
func FromGesture(g Gesture) Key {
	switch g {
	case GestureClick:
		return KeyNext
	case GestureLongPress:
		return KeyEnter
	case GestureDoubleClick:
		return KeyPrev
	case GestureTripleClick:
		return KeySelect
	default:
		return KeyNone
	}
}
