package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyState(t *testing.T) {
	var s KeyState

	s.Apply(Event{Type: EventKeyDown, Key: KeyW})
	s.Apply(Event{Type: EventKeyDown, Key: KeyA})
	assert.True(t, s.Down(KeyW))
	assert.True(t, s.Down(KeyA))
	assert.False(t, s.Down(KeyS))

	s.Apply(Event{Type: EventKeyUp, Key: KeyW})
	assert.False(t, s.Down(KeyW))
	assert.True(t, s.Down(KeyA))

	s.Apply(Event{Type: EventKeyDown, Key: KeyUnknown})
	assert.False(t, s.Down(KeyUnknown))
	assert.False(t, s.Down(Key(99)))
}

func TestButtonState(t *testing.T) {
	var s KeyState

	s.Apply(Event{Type: EventMouseDown, Button: ButtonLeft})
	assert.True(t, s.ButtonDown(ButtonLeft))
	assert.False(t, s.ButtonDown(ButtonRight))

	s.Apply(Event{Type: EventMouseUp, Button: ButtonLeft})
	assert.False(t, s.ButtonDown(ButtonLeft))

	s.Apply(Event{Type: EventMouseDown, Button: Button(200)})
	assert.False(t, s.ButtonDown(Button(200)))
}

func TestReset(t *testing.T) {
	var s KeyState
	s.Apply(Event{Type: EventKeyDown, Key: KeyQ})
	s.Apply(Event{Type: EventMouseDown, Button: ButtonLeft})

	s.Reset()
	assert.False(t, s.Down(KeyQ))
	assert.False(t, s.ButtonDown(ButtonLeft))
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "F12", KeyF12.String())
	assert.Equal(t, "Escape", KeyEscape.String())
	assert.Equal(t, "unknown", Key(-1).String())
	assert.Equal(t, "unknown", keyCount.String())
}
