// Package input defines the viewer's input events and the per-frame key
// state built from them. The window package produces the events.
package input

// EventType identifies an input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventDropFile
	EventFocusLost
)

// Key is a physical key the viewer reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyF
	KeyO
	KeyP
	KeyR
	KeyB
	KeyTab
	KeyEscape
	KeyF12
	keyCount
)

var keyNames = [...]string{
	KeyUnknown: "unknown",
	KeyW:       "W",
	KeyA:       "A",
	KeyS:       "S",
	KeyD:       "D",
	KeyQ:       "Q",
	KeyE:       "E",
	KeyF:       "F",
	KeyO:       "O",
	KeyP:       "P",
	KeyR:       "R",
	KeyB:       "B",
	KeyTab:     "Tab",
	KeyEscape:  "Escape",
	KeyF12:     "F12",
}

// String returns the key name.
func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return "unknown"
	}
	return keyNames[k]
}

// Button is a mouse button, numbered as SDL numbers them.
type Button uint8

const (
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Repeat bool // key auto-repeat
	Width  int
	Height int
	MouseX int
	MouseY int
	DeltaX int // relative motion for EventMouseMove
	DeltaY int
	Button Button
	Path   string // dropped file for EventDropFile
}

// KeyState tracks which keys and buttons are held between frames.
type KeyState struct {
	keys    [keyCount]bool
	buttons [8]bool
}

// Apply updates the state from one event.
func (s *KeyState) Apply(e Event) {
	switch e.Type {
	case EventKeyDown, EventKeyUp:
		if e.Key > KeyUnknown && e.Key < keyCount {
			s.keys[e.Key] = e.Type == EventKeyDown
		}
	case EventMouseDown, EventMouseUp:
		if int(e.Button) < len(s.buttons) {
			s.buttons[e.Button] = e.Type == EventMouseDown
		}
	}
}

// Down reports whether k is held.
func (s *KeyState) Down(k Key) bool {
	if k <= KeyUnknown || k >= keyCount {
		return false
	}
	return s.keys[k]
}

// ButtonDown reports whether b is held.
func (s *KeyState) ButtonDown(b Button) bool {
	return int(b) < len(s.buttons) && s.buttons[b]
}

// Reset releases everything. Key-up events never arrive for keys that
// were held when the window lost focus.
func (s *KeyState) Reset() {
	*s = KeyState{}
}
