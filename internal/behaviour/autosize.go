package behaviour

import "github.com/zjrosen/diagramkit/internal/model"

type GroupAutoSizeOptions struct {
	BaseOptions
}

func NewGroupAutoSizeOptions(enabled bool) *GroupAutoSizeOptions {
	return &GroupAutoSizeOptions{BaseOptions: NewBaseOptions(enabled)}
}

// GroupAutoSize keeps every group fitted around its children. Fitting a
// group publishes its own position and size changes, which in turn refit the
// enclosing group.
type GroupAutoSize struct {
	Base
}

func NewGroupAutoSize(host Host, opts *GroupAutoSizeOptions) *GroupAutoSize {
	a := &GroupAutoSize{}
	a.Init(host, opts, func() {
		On(&a.Base, func(e model.PositionChanged) { a.fitParentOf(e.Entity) })
		On(&a.Base, func(e model.SizeChanged) { a.fitParentOf(e.Entity) })
		On(&a.Base, func(e model.NodeAdded) { fit(e.Group) })
		On(&a.Base, func(e model.NodeRemoved) { fit(e.Group) })
		On(&a.Base, func(e model.GroupAdded) { fit(e.Parent) })
		On(&a.Base, func(e model.GroupRemoved) { fit(e.Parent) })
		On(&a.Base, func(e model.GroupPaddingChanged) { fit(e.Group) })
	})
	return a
}

func (a *GroupAutoSize) fitParentOf(e model.Entity) {
	if c, ok := e.(model.PortContainer); ok {
		fit(c.ParentGroup())
	}
}

func fit(g *model.Group) {
	if g != nil && !g.Disposed() {
		g.FitToChildren()
	}
}
