package model

import (
	"github.com/zjrosen/diagramkit/internal/collection"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/log"
)

// Node is a positioned, sized port container.
type Node struct {
	flags
	id        string
	bus       *events.Aggregator
	self      PortContainer
	title     string
	position  Point
	size      Size
	ports     *collection.Collection[*Port]
	group     *Group
	layer     *Layer
	extension any
	subs      []*events.Subscription
	disposed  bool
}

// NewNode creates a detached node.
func NewNode(bus *events.Aggregator, opts ...Option) *Node {
	n := &Node{}
	n.init(bus, n, buildOptions(opts))
	return n
}

func (n *Node) init(bus *events.Aggregator, self PortContainer, o options) {
	n.flags = flags{visible: !o.hidden}
	n.id = o.id
	n.bus = bus
	n.self = self
	n.title = o.title
	n.position = o.position
	n.size = o.size
	n.ports = collection.New[*Port]()
	n.subs = append(n.subs,
		n.ports.OnAdded(func(p *Port) {
			p.parent = n.self
			events.Publish(n.bus, PortAdded{Container: n.self, Port: p})
		}),
		n.ports.OnRemoved(func(p *Port) {
			p.Dispose()
			p.parent = nil
			events.Publish(n.bus, PortRemoved{Container: n.self, Port: p})
		}),
	)
}

func (n *Node) ID() string                           { return n.id }
func (n *Node) Title() string                        { return n.title }
func (n *Node) Position() Point                      { return n.position }
func (n *Node) Size() Size                           { return n.size }
func (n *Node) Bounds() Rect                         { return RectOf(n.position, n.size) }
func (n *Node) Selected() bool                       { return n.selected }
func (n *Node) Visible() bool                        { return n.visible }
func (n *Node) Disposed() bool                       { return n.disposed }
func (n *Node) Ports() *collection.Collection[*Port] { return n.ports }
func (n *Node) ParentGroup() *Group                  { return n.group }

// Layer returns the layer the node lives in, through any enclosing groups.
func (n *Node) Layer() *Layer {
	if n.group != nil {
		return n.group.Layer()
	}
	return n.layer
}

// ownedElsewhere reports whether n sits in a layer or group other than the
// given owner.
func (n *Node) ownedElsewhere(layer *Layer, group *Group) bool {
	return (n.layer != nil && n.layer != layer) || (n.group != nil && n.group != group)
}

// Extension is an optional value a wrapper type attaches to the node.
func (n *Node) Extension() any { return n.extension }

// SetExtension attaches a wrapper. It is not an observable property.
func (n *Node) SetExtension(v any) { n.extension = v }

func (n *Node) SetSelected(v bool) { n.setSelected(n.bus, n.self, v) }
func (n *Node) SetVisible(v bool)  { n.setVisible(n.bus, n.self, v) }

func (n *Node) SetTitle(v string) {
	if n.title == v {
		return
	}
	old := n.title
	n.title = v
	events.Publish(n.bus, TitleChanged{Entity: n.self, Old: old, New: v})
}

// SetPosition moves the node and its ports, then publishes one PositionChanged.
func (n *Node) SetPosition(v Point) {
	if n.position == v {
		return
	}
	old := n.position
	n.translate(v.Sub(old))
	events.Publish(n.bus, PositionChanged{Entity: n.self, Old: old, New: v})
}

// SetPositionInternal moves the node and its ports without publishing.
func (n *Node) SetPositionInternal(v Point) {
	n.translate(v.Sub(n.position))
}

func (n *Node) translate(delta Point) {
	n.position = n.position.Add(delta)
	for _, p := range n.ports.Items() {
		p.SetPositionInternal(p.position.Add(delta))
	}
}

func (n *Node) SetSize(v Size) {
	if n.size == v {
		return
	}
	old := n.size
	n.size = v
	events.Publish(n.bus, SizeChanged{Entity: n.self, Old: old, New: v})
}

func (n *Node) SetSizeInternal(v Size) { n.size = v }

// AddPort attaches p through the public path. A port owned by another
// container, or a disposed one, is refused.
func (n *Node) AddPort(p *Port) bool {
	if p == nil || p.disposed || (p.parent != nil && p.parent != n.self) {
		return false
	}
	return n.ports.Add(p)
}

// AddPortInternal attaches p and sets its parent without publishing PortAdded.
func (n *Node) AddPortInternal(p *Port) bool {
	if p == nil || p.disposed || (p.parent != nil && p.parent != n.self) {
		return false
	}
	if !n.ports.AddInternal(p) {
		return false
	}
	p.parent = n.self
	return true
}

// RemovePort detaches and disposes p.
func (n *Node) RemovePort(p *Port) bool {
	if p == nil {
		return false
	}
	return n.ports.Remove(p)
}

// Links returns every link touching one of the node's ports, each once.
func (n *Node) Links() []*Link {
	seen := make(map[string]bool)
	var out []*Link
	for _, p := range n.ports.Items() {
		for _, l := range p.Links() {
			if !seen[l.id] {
				seen[l.id] = true
				out = append(out, l)
			}
		}
	}
	return out
}

// Dispose disposes and clears the node's ports.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.disposed = true
	for _, p := range n.ports.ClearInternal() {
		p.Dispose()
		p.parent = nil
	}
	for _, s := range n.subs {
		s.Unsubscribe()
	}
	n.subs = nil
	log.Debug(log.CatModel, "node disposed", "node", n.id)
}
