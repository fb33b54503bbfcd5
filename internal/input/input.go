// Package input defines the low-level interaction events a UI publishes on a
// diagram's bus. Behaviours subscribe to them and turn them into model edits.
package input

import "github.com/zjrosen/diagramkit/internal/model"

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Modifiers is the set of held modifier keys.
type Modifiers struct {
	Ctrl  bool
	Shift bool
	Alt   bool
}

// PointerDown is published when a button is pressed. Target is the entity
// under the pointer, nil for the empty canvas.
type PointerDown struct {
	Target model.Entity
	Client model.Point
	Button Button
	Modifiers
}

// PointerMove is published on pointer motion.
type PointerMove struct {
	Target model.Entity
	Client model.Point
	Modifiers
}

// PointerUp is published when a button is released.
type PointerUp struct {
	Target model.Entity
	Client model.Point
	Button Button
	Modifiers
}

// Wheel is published on scroll. Negative DeltaY scrolls up.
type Wheel struct {
	Client model.Point
	DeltaY float64
	Modifiers
}

// KeyDown is published on key press. Key uses lower-case names such as "a",
// "delete", "backspace", "esc".
type KeyDown struct {
	Key string
	Modifiers
}

// Chord renders the key with its modifiers, for example "ctrl+a".
func (k KeyDown) Chord() string {
	s := k.Key
	if k.Shift {
		s = "shift+" + s
	}
	if k.Alt {
		s = "alt+" + s
	}
	if k.Ctrl {
		s = "ctrl+" + s
	}
	return s
}
