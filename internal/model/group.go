package model

import (
	"github.com/zjrosen/diagramkit/internal/collection"
	"github.com/zjrosen/diagramkit/internal/events"
)

// DefaultGroupPadding is the margin a group keeps around its children.
const DefaultGroupPadding = 30

// Group is a node that contains further nodes and groups. It embeds Node for
// the port container behaviour and overrides what has to reach its children.
type Group struct {
	Node
	padding  float64
	children *collection.Collection[*Node]
	groups   *collection.Collection[*Group]
}

// NewGroup creates a detached, empty group.
func NewGroup(bus *events.Aggregator, opts ...Option) *Group {
	g := &Group{
		padding:  DefaultGroupPadding,
		children: collection.New[*Node](),
		groups:   collection.New[*Group](),
	}
	g.Node.init(bus, g, buildOptions(opts))
	g.subs = append(g.subs,
		g.children.OnAdded(func(n *Node) {
			n.group = g
			n.layer = nil
			events.Publish(g.bus, NodeAdded{Node: n, Layer: g.Layer(), Group: g})
		}),
		g.children.OnRemoved(func(n *Node) {
			layer := g.Layer()
			n.Dispose()
			n.group = nil
			events.Publish(g.bus, NodeRemoved{Node: n, Layer: layer, Group: g})
		}),
		g.groups.OnAdded(func(c *Group) {
			c.group = g
			c.layer = nil
			events.Publish(g.bus, GroupAdded{Group: c, Layer: g.Layer(), Parent: g})
		}),
		g.groups.OnRemoved(func(c *Group) {
			layer := g.Layer()
			c.Dispose()
			c.group = nil
			events.Publish(g.bus, GroupRemoved{Group: c, Layer: layer, Parent: g})
		}),
	)
	return g
}

func (g *Group) Padding() float64                        { return g.padding }
func (g *Group) Children() *collection.Collection[*Node] { return g.children }
func (g *Group) Groups() *collection.Collection[*Group]  { return g.groups }

func (g *Group) SetPadding(v float64) {
	if g.padding == v {
		return
	}
	old := g.padding
	g.padding = v
	events.Publish(g.bus, GroupPaddingChanged{Group: g, Old: old, New: v})
}

func (g *Group) SetPaddingInternal(v float64) { g.padding = v }

// AddChild nests n inside the group. A node owned by another layer or group
// is refused.
func (g *Group) AddChild(n *Node) bool {
	if n == nil || n.disposed || n.ownedElsewhere(nil, g) {
		return false
	}
	return g.children.Add(n)
}

// AddChildInternal nests n without publishing NodeAdded.
func (g *Group) AddChildInternal(n *Node) bool {
	if n == nil || n.ownedElsewhere(nil, g) || !g.children.AddInternal(n) {
		return false
	}
	n.group = g
	n.layer = nil
	return true
}

// RemoveChild removes and disposes n.
func (g *Group) RemoveChild(n *Node) bool {
	return n != nil && g.children.Remove(n)
}

// AddGroup nests c inside the group. A group cannot contain itself or one of
// its ancestors, and a group owned elsewhere is refused.
func (g *Group) AddGroup(c *Group) bool {
	if c == nil || c.disposed || c.ownedElsewhere(nil, g) || c.isAncestorOf(g) {
		return false
	}
	return g.groups.Add(c)
}

// AddGroupInternal nests c without publishing GroupAdded.
func (g *Group) AddGroupInternal(c *Group) bool {
	if c == nil || c.ownedElsewhere(nil, g) || c.isAncestorOf(g) || !g.groups.AddInternal(c) {
		return false
	}
	c.group = g
	c.layer = nil
	return true
}

// RemoveGroup removes and disposes c.
func (g *Group) RemoveGroup(c *Group) bool {
	return c != nil && g.groups.Remove(c)
}

func (g *Group) isAncestorOf(o *Group) bool {
	for cur := o; cur != nil; cur = cur.group {
		if cur == g {
			return true
		}
	}
	return false
}

// detach takes a direct child out of the group without disposing it.
func (g *Group) detach(e Entity) bool {
	switch v := e.(type) {
	case *Node:
		if g.children.RemoveInternal(v) {
			v.group = nil
			return true
		}
	case *Group:
		if g.groups.RemoveInternal(v) {
			v.group = nil
			return true
		}
	}
	return false
}

// SetPosition moves the group together with everything nested in it.
func (g *Group) SetPosition(v Point) {
	if g.position == v {
		return
	}
	g.translateChildren(v.Sub(g.position))
	g.Node.SetPosition(v)
}

// SetPositionInternal moves the group and its content without publishing.
func (g *Group) SetPositionInternal(v Point) {
	g.translateChildren(v.Sub(g.position))
	g.Node.SetPositionInternal(v)
}

func (g *Group) translateChildren(delta Point) {
	for _, n := range g.children.Items() {
		n.SetPositionInternal(n.position.Add(delta))
	}
	for _, c := range g.groups.Items() {
		c.SetPositionInternal(c.position.Add(delta))
	}
}

// ContentBounds covers every direct child. ok is false for an empty group.
func (g *Group) ContentBounds() (r Rect, ok bool) {
	for _, n := range g.children.Items() {
		r, ok = unionBounds(r, ok, n.Bounds())
	}
	for _, c := range g.groups.Items() {
		r, ok = unionBounds(r, ok, c.Bounds())
	}
	return r, ok
}

func unionBounds(acc Rect, ok bool, b Rect) (Rect, bool) {
	if !ok {
		return b, true
	}
	return acc.Union(b), true
}

// FitToChildren resizes the group around its children plus padding without
// moving the children. It reports whether anything changed.
func (g *Group) FitToChildren() bool {
	r, ok := g.ContentBounds()
	if !ok {
		return false
	}
	pos := Point{X: r.Left - g.padding, Y: r.Top - g.padding}
	size := Size{Width: r.Width() + 2*g.padding, Height: r.Height() + 2*g.padding}
	if pos == g.position && size == g.size {
		return false
	}
	g.Node.SetPosition(pos)
	g.SetSize(size)
	return true
}

// AllNodes returns every node nested at any depth.
func (g *Group) AllNodes() []*Node {
	out := g.children.Items()
	for _, c := range g.groups.Items() {
		out = append(out, c.AllNodes()...)
	}
	return out
}

// AllGroups returns every group nested at any depth, not including g.
func (g *Group) AllGroups() []*Group {
	var out []*Group
	for _, c := range g.groups.Items() {
		out = append(out, c)
		out = append(out, c.AllGroups()...)
	}
	return out
}

// Dispose disposes the nested content, then the group's own ports.
func (g *Group) Dispose() {
	if g.disposed {
		return
	}
	for _, n := range g.children.ClearInternal() {
		n.Dispose()
		n.group = nil
	}
	for _, c := range g.groups.ClearInternal() {
		c.Dispose()
		c.group = nil
	}
	g.Node.Dispose()
}
