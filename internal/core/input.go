package core

// EventType identifies the kind of a discrete input event.
type EventType int

const (
	EventKeyDown EventType = iota
	EventKeyUp
	EventClick
	EventPointerDown
	EventPointerMove
	EventPointerUp
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventKeyDown:
		return "KeyDown"
	case EventKeyUp:
		return "KeyUp"
	case EventClick:
		return "Click"
	case EventPointerDown:
		return "PointerDown"
	case EventPointerMove:
		return "PointerMove"
	case EventPointerUp:
		return "PointerUp"
	default:
		return "Unknown"
	}
}

// Stable key identifiers. Printable keys use their own character
// ("w", "a", " "), named keys use these constants.
const (
	KeyUp     = "up"
	KeyDown   = "down"
	KeyLeft   = "left"
	KeyRight  = "right"
	KeyEnter  = "enter"
	KeyEscape = "esc"
	KeySpace  = " "
)

// Event is a discrete input event delivered by the host.
// Key is set for key events; X and Y (in screen cells) for pointer events.
type Event struct {
	Type EventType
	Key  string
	X, Y int
}

// PressKey builds a key press event.
func PressKey(key string) Event {
	return Event{Type: EventKeyDown, Key: key}
}

// ReleaseKey builds a key release event.
func ReleaseKey(key string) Event {
	return Event{Type: EventKeyUp, Key: key}
}

// Pointer builds a pointer event at the given cell.
func Pointer(t EventType, x, y int) Event {
	return Event{Type: t, X: x, Y: y}
}

// IsKey reports whether the event is a key event for any of the given keys.
func (e Event) IsKey(t EventType, keys ...string) bool {
	if e.Type != t {
		return false
	}
	for _, k := range keys {
		if e.Key == k {
			return true
		}
	}
	return false
}

// GamepadState is a polled snapshot of one gamepad.
// Axes are in [-1, 1]; Buttons holds the pressed state per button index.
type GamepadState struct {
	Connected bool
	LeftX     float64
	LeftY     float64
	Buttons   []bool
}

// Pressed reports whether button i is held.
func (g GamepadState) Pressed(i int) bool {
	return i >= 0 && i < len(g.Buttons) && g.Buttons[i]
}
