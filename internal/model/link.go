package model

import (
	"slices"

	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/log"
)

// Link connects a source port to an optional target port. While the target is
// unresolved the link ends at TargetPosition.
type Link struct {
	flags
	id             string
	bus            *events.Aggregator
	source         *Port
	target         *Port
	targetPosition Point
	vertices       []Point
	disposed       bool
}

// NewLink creates an unattached link. It becomes part of the graph once a
// source port is assigned.
func NewLink(bus *events.Aggregator, opts ...Option) *Link {
	o := buildOptions(opts)
	return &Link{
		flags:          flags{visible: !o.hidden},
		id:             o.id,
		bus:            bus,
		targetPosition: o.position,
	}
}

func (l *Link) ID() string            { return l.id }
func (l *Link) Source() *Port         { return l.source }
func (l *Link) Target() *Port         { return l.target }
func (l *Link) TargetPosition() Point { return l.targetPosition }
func (l *Link) Selected() bool        { return l.selected }
func (l *Link) Visible() bool         { return l.visible }
func (l *Link) Disposed() bool        { return l.disposed }
func (l *Link) SetSelected(v bool)    { l.setSelected(l.bus, l, v) }
func (l *Link) SetVisible(v bool)     { l.setVisible(l.bus, l, v) }

// Vertices returns a copy of the bend points.
func (l *Link) Vertices() []Point { return slices.Clone(l.vertices) }

// IsAttached reports whether the link has a source port.
func (l *Link) IsAttached() bool { return l.source != nil }

func (l *Link) IsConnected() bool { return l.source != nil && l.target != nil }

// TargetIsPosition is true while the link ends at a free point, as during a drag.
func (l *Link) TargetIsPosition() bool { return l.source != nil && l.target == nil }

// SetSourcePort moves the link to p's outgoing collection. A nil port or a
// disposed link is rejected before any state changes.
func (l *Link) SetSourcePort(p *Port) error {
	if p == nil {
		return ErrNilSourcePort
	}
	if l.disposed {
		return ErrLinkDisposed
	}
	if l.source == p {
		return nil
	}
	old := l.source
	l.source = p
	if old != nil {
		old.outgoing.Remove(l)
	}
	p.outgoing.Add(l)

	events.Publish(l.bus, LinkSourceChanged{Link: l, Old: old, New: p})
	if old == nil {
		events.Publish(l.bus, LinkAdded{Link: l})
	}
	return nil
}

// SetTargetPort connects the link to p, or leaves it dangling when p is nil.
// The link is registered in p's incoming and the source's outgoing collection.
// It does nothing once the link is disposed.
func (l *Link) SetTargetPort(p *Port) {
	if l.disposed || l.target == p {
		return
	}
	old := l.target
	l.target = p
	if old != nil {
		old.incoming.Remove(l)
	}
	if p != nil {
		p.incoming.Add(l)
		l.targetPosition = p.Anchor()
	}
	if l.source != nil {
		l.source.outgoing.Add(l)
	}
	events.Publish(l.bus, LinkTargetChanged{Link: l, Old: old, New: p})
}

// SetTargetPosition moves the free end of the link.
func (l *Link) SetTargetPosition(v Point) {
	if l.targetPosition == v {
		return
	}
	old := l.targetPosition
	l.targetPosition = v
	events.Publish(l.bus, LinkTargetPositionChanged{Link: l, Old: old, New: v})
}

func (l *Link) SetTargetPositionInternal(v Point) { l.targetPosition = v }

// SetPortsInternal attaches a fresh link to source and, when not nil, target
// without publishing. It is the decoding path; a link that already has a
// source, a nil source or a disposed link is refused.
func (l *Link) SetPortsInternal(source, target *Port) error {
	switch {
	case source == nil:
		return ErrNilSourcePort
	case l.disposed:
		return ErrLinkDisposed
	case l.source != nil:
		return ErrLinkAttached
	}
	l.source = source
	source.outgoing.AddInternal(l)
	if target != nil {
		l.target = target
		target.incoming.AddInternal(l)
	}
	return nil
}

// SetVerticesInternal replaces the bend points without publishing.
func (l *Link) SetVerticesInternal(vs []Point) { l.vertices = slices.Clone(vs) }

// SetVertices replaces the bend points of the link.
func (l *Link) SetVertices(vs []Point) {
	if slices.Equal(l.vertices, vs) {
		return
	}
	l.vertices = slices.Clone(vs)
	events.Publish(l.bus, LinkVerticesChanged{Link: l})
}

// Endpoints returns the points the link is drawn between.
func (l *Link) Endpoints() (from, to Point) {
	if l.source != nil {
		from = l.source.Anchor()
	}
	if l.target != nil {
		return from, l.target.Anchor()
	}
	return from, l.targetPosition
}

// Dispose detaches the link from both of its ports.
func (l *Link) Dispose() {
	if l.disposed {
		return
	}
	l.disposed = true
	source, target := l.source, l.target
	if source != nil {
		source.outgoing.Remove(l)
	}
	if target != nil {
		target.incoming.Remove(l)
	}
	log.Debug(log.CatModel, "link disposed", "link", l.id)
	if source != nil {
		events.Publish(l.bus, LinkRemoved{Link: l, Source: source, Target: target})
	}
}
