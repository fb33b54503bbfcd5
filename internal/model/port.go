package model

import (
	"github.com/zjrosen/diagramkit/internal/collection"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/log"
)

// Alignment is the side of its container a port sits on.
type Alignment string

const (
	AlignTop    Alignment = "top"
	AlignRight  Alignment = "right"
	AlignBottom Alignment = "bottom"
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
)

// Port is a connection point owned by a Node or Group.
type Port struct {
	flags
	id        string
	bus       *events.Aggregator
	parent    PortContainer
	position  Point
	size      Size
	alignment Alignment
	outgoing  *collection.Collection[*Link]
	incoming  *collection.Collection[*Link]
	disposed  bool
}

// NewPort creates a detached port. It gets its parent when added to a container.
func NewPort(bus *events.Aggregator, alignment Alignment, opts ...Option) *Port {
	o := buildOptions(opts)
	if alignment == "" {
		alignment = AlignCenter
	}
	return &Port{
		flags:     flags{visible: !o.hidden},
		id:        o.id,
		bus:       bus,
		position:  o.position,
		size:      o.size,
		alignment: alignment,
		outgoing:  collection.New[*Link](),
		incoming:  collection.New[*Link](),
	}
}

func (p *Port) ID() string { return p.id }

// Parent returns the owning container, nil while detached.
func (p *Port) Parent() PortContainer { return p.parent }

// Position is the top-left corner in diagram coordinates.
func (p *Port) Position() Point { return p.position }

func (p *Port) Size() Size           { return p.size }
func (p *Port) Alignment() Alignment { return p.alignment }
func (p *Port) Selected() bool       { return p.selected }
func (p *Port) Visible() bool        { return p.visible }
func (p *Port) Disposed() bool       { return p.disposed }

// Outgoing links originate at this port.
func (p *Port) Outgoing() *collection.Collection[*Link] { return p.outgoing }

// Incoming links terminate at this port.
func (p *Port) Incoming() *collection.Collection[*Link] { return p.incoming }

// Links returns outgoing then incoming links, each link once.
func (p *Port) Links() []*Link {
	out := p.outgoing.Items()
	for _, l := range p.incoming.Items() {
		if !p.outgoing.Contains(l.ID()) {
			out = append(out, l)
		}
	}
	return out
}

// Anchor is where links attach: the middle of the port when it has a size,
// otherwise the point on the parent's edge given by the alignment.
func (p *Port) Anchor() Point {
	if p.size.Width > 0 || p.size.Height > 0 {
		return RectOf(p.position, p.size).Center()
	}
	if p.parent == nil {
		return p.position
	}
	b := p.parent.Bounds()
	c := b.Center()
	switch p.alignment {
	case AlignTop:
		return Point{X: c.X, Y: b.Top}
	case AlignBottom:
		return Point{X: c.X, Y: b.Bottom}
	case AlignLeft:
		return Point{X: b.Left, Y: c.Y}
	case AlignRight:
		return Point{X: b.Right, Y: c.Y}
	}
	return c
}

func (p *Port) SetPosition(v Point) {
	if p.position == v {
		return
	}
	old := p.position
	p.position = v
	events.Publish(p.bus, PositionChanged{Entity: p, Old: old, New: v})
}

func (p *Port) SetPositionInternal(v Point) { p.position = v }

func (p *Port) SetSize(v Size) {
	if p.size == v {
		return
	}
	old := p.size
	p.size = v
	events.Publish(p.bus, SizeChanged{Entity: p, Old: old, New: v})
}

func (p *Port) SetSizeInternal(v Size) { p.size = v }

func (p *Port) SetAlignment(v Alignment) {
	if p.alignment == v {
		return
	}
	old := p.alignment
	p.alignment = v
	events.Publish(p.bus, PortAlignmentChanged{Port: p, Old: old, New: v})
}

func (p *Port) SetSelected(v bool) { p.setSelected(p.bus, p, v) }
func (p *Port) SetVisible(v bool)  { p.setVisible(p.bus, p, v) }

// Dispose disposes every link touching the port. The port stays owned by
// whoever holds it but can no longer be attached.
func (p *Port) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	for _, l := range p.Links() {
		l.Dispose()
	}
	log.Debug(log.CatModel, "port disposed", "port", p.id)
}
