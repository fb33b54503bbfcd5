package model

import (
	"github.com/zjrosen/diagramkit/internal/collection"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/log"
)

// Layer holds the top-level nodes and groups of one plane of a diagram.
type Layer struct {
	id       string
	bus      *events.Aggregator
	name     string
	diagram  *Diagram
	nodes    *collection.Collection[*Node]
	groups   *collection.Collection[*Group]
	subs     []*events.Subscription
	disposed bool
}

// NewLayer creates a detached layer. WithTitle names it.
func NewLayer(bus *events.Aggregator, opts ...Option) *Layer {
	o := buildOptions(opts)
	l := &Layer{
		id:     o.id,
		bus:    bus,
		name:   o.title,
		nodes:  collection.New[*Node](),
		groups: collection.New[*Group](),
	}
	l.subs = []*events.Subscription{
		l.nodes.OnAdded(func(n *Node) {
			n.layer = l
			n.group = nil
			events.Publish(l.bus, NodeAdded{Node: n, Layer: l})
		}),
		l.nodes.OnRemoved(func(n *Node) {
			n.Dispose()
			n.layer = nil
			events.Publish(l.bus, NodeRemoved{Node: n, Layer: l})
		}),
		l.groups.OnAdded(func(g *Group) {
			g.layer = l
			g.group = nil
			events.Publish(l.bus, GroupAdded{Group: g, Layer: l})
		}),
		l.groups.OnRemoved(func(g *Group) {
			g.Dispose()
			g.layer = nil
			events.Publish(l.bus, GroupRemoved{Group: g, Layer: l})
		}),
	}
	return l
}

func (l *Layer) ID() string                             { return l.id }
func (l *Layer) Name() string                           { return l.name }
func (l *Layer) Diagram() *Diagram                      { return l.diagram }
func (l *Layer) Nodes() *collection.Collection[*Node]   { return l.nodes }
func (l *Layer) Groups() *collection.Collection[*Group] { return l.groups }
func (l *Layer) Disposed() bool                         { return l.disposed }

// AddNode places n at the top level of the layer. A node owned by another
// layer or by a group is refused; Detach it first.
func (l *Layer) AddNode(n *Node) bool {
	if n == nil || n.disposed || n.ownedElsewhere(l, nil) {
		return false
	}
	return l.nodes.Add(n)
}

// AddNodeInternal places n without publishing NodeAdded.
func (l *Layer) AddNodeInternal(n *Node) bool {
	if n == nil || n.ownedElsewhere(l, nil) || !l.nodes.AddInternal(n) {
		return false
	}
	n.layer = l
	n.group = nil
	return true
}

// RemoveNode removes and disposes a top-level node.
func (l *Layer) RemoveNode(n *Node) bool {
	return n != nil && l.nodes.Remove(n)
}

// AddGroup places g at the top level of the layer. The same ownership rule
// as AddNode applies.
func (l *Layer) AddGroup(g *Group) bool {
	if g == nil || g.disposed || g.ownedElsewhere(l, nil) {
		return false
	}
	return l.groups.Add(g)
}

// AddGroupInternal places g without publishing GroupAdded.
func (l *Layer) AddGroupInternal(g *Group) bool {
	if g == nil || g.ownedElsewhere(l, nil) || !l.groups.AddInternal(g) {
		return false
	}
	g.layer = l
	g.group = nil
	return true
}

// RemoveGroup removes and disposes a top-level group.
func (l *Layer) RemoveGroup(g *Group) bool {
	return g != nil && l.groups.Remove(g)
}

// Detach takes a node or group out of wherever it sits in the layer without
// disposing it, so it can be re-parented.
func (l *Layer) Detach(e PortContainer) bool {
	if parent := e.ParentGroup(); parent != nil {
		return parent.detach(e)
	}
	switch v := e.(type) {
	case *Node:
		if l.nodes.RemoveInternal(v) {
			v.layer = nil
			return true
		}
	case *Group:
		if l.groups.RemoveInternal(v) {
			v.layer = nil
			return true
		}
	}
	return false
}

// AllNodes flattens the layer: top-level nodes first, then group contents
// depth first.
func (l *Layer) AllNodes() []*Node {
	seen := make(map[string]bool)
	var out []*Node
	add := func(ns []*Node) {
		for _, n := range ns {
			if !seen[n.id] {
				seen[n.id] = true
				out = append(out, n)
			}
		}
	}
	add(l.nodes.Items())
	for _, g := range l.groups.Items() {
		add(g.AllNodes())
	}
	return out
}

// AllGroups returns every group in the layer at any depth.
func (l *Layer) AllGroups() []*Group {
	seen := make(map[string]bool)
	var out []*Group
	for _, g := range l.groups.Items() {
		for _, c := range append([]*Group{g}, g.AllGroups()...) {
			if !seen[c.id] {
				seen[c.id] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// AllContainers returns AllNodes followed by AllGroups.
func (l *Layer) AllContainers() []PortContainer {
	var out []PortContainer
	for _, n := range l.AllNodes() {
		out = append(out, n)
	}
	for _, g := range l.AllGroups() {
		out = append(out, g)
	}
	return out
}

// AllPorts returns the ports of every node and group in the layer.
func (l *Layer) AllPorts() []*Port {
	var out []*Port
	for _, c := range l.AllContainers() {
		out = append(out, c.Ports().Items()...)
	}
	return out
}

// AllLinks returns every link with at least one endpoint in the layer, each
// link once even when both of its ports live here.
func (l *Layer) AllLinks() []*Link {
	seen := make(map[string]bool)
	var out []*Link
	for _, p := range l.AllPorts() {
		for _, lk := range p.Links() {
			if !seen[lk.id] {
				seen[lk.id] = true
				out = append(out, lk)
			}
		}
	}
	return out
}

// SelectAll selects every node, group, port and link reachable in the layer.
func (l *Layer) SelectAll() { l.setSelection(true) }

// UnselectAll clears the selection of everything reachable in the layer.
func (l *Layer) UnselectAll() { l.setSelection(false) }

func (l *Layer) setSelection(v bool) {
	for _, c := range l.AllContainers() {
		c.SetSelected(v)
	}
	for _, p := range l.AllPorts() {
		p.SetSelected(v)
	}
	for _, lk := range l.AllLinks() {
		lk.SetSelected(v)
	}
}

// Dispose disposes the layer's nodes and groups.
func (l *Layer) Dispose() {
	if l.disposed {
		return
	}
	l.disposed = true
	for _, n := range l.nodes.ClearInternal() {
		n.Dispose()
		n.layer = nil
	}
	for _, g := range l.groups.ClearInternal() {
		g.Dispose()
		g.layer = nil
	}
	for _, s := range l.subs {
		s.Unsubscribe()
	}
	log.Debug(log.CatModel, "layer disposed", "layer", l.id)
}
