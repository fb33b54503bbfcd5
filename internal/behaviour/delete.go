package behaviour

import (
	"slices"

	"github.com/zjrosen/diagramkit/internal/input"
	"github.com/zjrosen/diagramkit/internal/model"
)

// DeleteOptions configures Delete. Keys are matched against KeyDown.Chord.
type DeleteOptions struct {
	BaseOptions
	Keys []string
}

func NewDeleteOptions(enabled bool, keys ...string) *DeleteOptions {
	if len(keys) == 0 {
		keys = []string{"delete"}
	}
	return &DeleteOptions{BaseOptions: NewBaseOptions(enabled), Keys: keys}
}

// Delete removes the selection when one of the configured keys is pressed.
type Delete struct {
	Base
	options *DeleteOptions
}

func NewDelete(host Host, opts *DeleteOptions) *Delete {
	d := &Delete{options: opts}
	d.Init(host, opts, func() {
		OnWhere(&d.Base, func(e input.KeyDown) bool {
			return slices.Contains(d.options.Keys, e.Chord())
		}, d.onDelete)
	})
	return d
}

func (d *Delete) onDelete(input.KeyDown) {
	host := d.Host()
	selected := host.Diagram().Selected()

	for _, s := range selected {
		if l, ok := s.(*model.Link); ok && !l.Disposed() {
			host.RemoveLink(l)
		}
	}
	for _, s := range selected {
		switch v := s.(type) {
		case *model.Group:
			if !v.Disposed() {
				host.RemoveGroup(v)
			}
		case *model.Node:
			if !v.Disposed() {
				host.RemoveNode(v)
			}
		}
	}
}
