package behaviour

import (
	"github.com/zjrosen/diagramkit/internal/input"
	"github.com/zjrosen/diagramkit/internal/model"
)

// SelectionOptions configures Selection.
type SelectionOptions struct {
	BaseOptions
}

func NewSelectionOptions(enabled bool) *SelectionOptions {
	return &SelectionOptions{BaseOptions: NewBaseOptions(enabled)}
}

// Selection selects what the pointer presses. Ctrl toggles, pressing the
// canvas clears, ctrl+a selects the current layer and esc clears.
type Selection struct {
	Base
}

func NewSelection(host Host, opts *SelectionOptions) *Selection {
	s := &Selection{}
	s.Init(host, opts, func() {
		On(&s.Base, s.onPointerDown)
		On(&s.Base, s.onKeyDown)
	})
	return s
}

func (s *Selection) onPointerDown(e input.PointerDown) {
	d := s.Host().Diagram()
	target, ok := e.Target.(model.Selectable)
	if !ok {
		d.UnselectAll()
		return
	}
	if e.Ctrl {
		target.SetSelected(!target.Selected())
		return
	}
	if target.Selected() {
		return
	}
	d.UnselectAll()
	target.SetSelected(true)
}

func (s *Selection) onKeyDown(e input.KeyDown) {
	d := s.Host().Diagram()
	switch e.Chord() {
	case "ctrl+a":
		d.CurrentLayer().SelectAll()
	case "esc":
		d.UnselectAll()
	}
}
