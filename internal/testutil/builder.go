// Package testutil builds diagrams for tests.
package testutil

import (
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/model"
)

// TB is the part of testing.TB the builder needs. Both *testing.T and
// *rapid.T satisfy it.
type TB interface {
	require.TestingT
	Helper()
}

// Builder accumulates entities and creates them in dependency order:
// groups, then nodes with their ports, then links.
type Builder struct {
	t      TB
	bus    *events.Aggregator
	size   model.Size
	groups []groupData
	nodes  []nodeData
	links  []linkData
}

// NewBuilder creates a builder whose diagram publishes on a fresh bus.
func NewBuilder(t TB) *Builder {
	t.Helper()
	return &Builder{t: t, bus: events.NewAggregator()}
}

// WithBus makes the built diagram publish on bus.
func (b *Builder) WithBus(bus *events.Aggregator) *Builder {
	b.bus = bus
	return b
}

// WithSize sets the diagram viewport size.
func (b *Builder) WithSize(w, h float64) *Builder {
	b.size = model.Size{Width: w, Height: h}
	return b
}

// WithNode adds a node with optional configuration.
func (b *Builder) WithNode(title string, opts ...NodeOption) *Builder {
	n := defaultNode(title)
	for _, opt := range opts {
		opt(&n)
	}
	b.nodes = append(b.nodes, n)
	return b
}

// WithGroup adds a group. Parents must be added before their children.
func (b *Builder) WithGroup(title string, opts ...GroupOption) *Builder {
	g := groupData{title: title}
	for _, opt := range opts {
		opt(&g)
	}
	b.groups = append(b.groups, g)
	return b
}

// WithLink connects the source port on one side of a node to the target
// port on a side of another node. Both ports must have been declared.
func (b *Builder) WithLink(source string, sourceAlign model.Alignment, target string, targetAlign model.Alignment, opts ...LinkOption) *Builder {
	l := linkData{source: source, sourceAlign: sourceAlign, target: target, targetAlign: targetAlign}
	for _, opt := range opts {
		opt(&l)
	}
	b.links = append(b.links, l)
	return b
}

// WithDanglingLink adds a link from a node port that ends at a free point.
func (b *Builder) WithDanglingLink(source string, sourceAlign model.Alignment, x, y float64) *Builder {
	b.links = append(b.links, linkData{
		source:      source,
		sourceAlign: sourceAlign,
		loose:       model.Point{X: x, Y: y},
	})
	return b
}

// Build creates the diagram and fails the test on any inconsistency.
func (b *Builder) Build() *model.Diagram {
	b.t.Helper()

	d := model.NewDiagram(b.bus)
	if b.size != (model.Size{}) {
		d.SetSize(b.size)
	}
	layer := d.CurrentLayer()

	groups := make(map[string]*model.Group, len(b.groups))
	for _, gd := range b.groups {
		require.NotContains(b.t, groups, gd.title, "duplicate group %q", gd.title)
		g := model.NewGroup(b.bus, model.WithTitle(gd.title), model.WithPosition(gd.position))
		if gd.parent == "" {
			require.True(b.t, layer.AddGroup(g))
		} else {
			parent, ok := groups[gd.parent]
			require.True(b.t, ok, "group %q declared before its parent %q", gd.title, gd.parent)
			require.True(b.t, parent.AddGroup(g))
		}
		groups[gd.title] = g
	}

	for _, nd := range b.nodes {
		opts := []model.Option{model.WithTitle(nd.title), model.WithPosition(nd.position), model.WithSize(nd.size)}
		if nd.hidden {
			opts = append(opts, model.Hidden())
		}
		n := model.NewNode(b.bus, opts...)
		bounds := n.Bounds()
		for _, a := range nd.ports {
			require.True(b.t, n.AddPort(model.NewPort(b.bus, a, model.WithPosition(sidePoint(bounds, a)))))
		}
		if nd.group == "" {
			require.True(b.t, layer.AddNode(n))
		} else {
			g, ok := groups[nd.group]
			require.True(b.t, ok, "node %q references unknown group %q", nd.title, nd.group)
			require.True(b.t, g.AddChild(n))
		}
		if nd.selected {
			n.SetSelected(true)
		}
	}

	for _, ld := range b.links {
		l := model.NewLink(b.bus)
		require.NoError(b.t, l.SetSourcePort(PortOf(b.t, d, ld.source, ld.sourceAlign)))
		if ld.target == "" {
			l.SetTargetPosition(ld.loose)
		} else {
			l.SetTargetPort(PortOf(b.t, d, ld.target, ld.targetAlign))
		}
		if len(ld.vertices) > 0 {
			l.SetVertices(ld.vertices)
		}
	}
	return d
}

func sidePoint(r model.Rect, a model.Alignment) model.Point {
	c := r.Center()
	switch a {
	case model.AlignTop:
		return model.Point{X: c.X, Y: r.Top}
	case model.AlignBottom:
		return model.Point{X: c.X, Y: r.Bottom}
	case model.AlignLeft:
		return model.Point{X: r.Left, Y: c.Y}
	case model.AlignRight:
		return model.Point{X: r.Right, Y: c.Y}
	default:
		return c
	}
}

// NodeTitled returns the first node in d with the given title.
func NodeTitled(t TB, d *model.Diagram, title string) *model.Node {
	t.Helper()
	for _, n := range d.AllNodes() {
		if n.Title() == title {
			return n
		}
	}
	require.Failf(t, "node not found", "no node titled %q", title)
	return nil
}

// GroupTitled returns the first group in d with the given title.
func GroupTitled(t TB, d *model.Diagram, title string) *model.Group {
	t.Helper()
	for _, g := range d.AllGroups() {
		if g.Title() == title {
			return g
		}
	}
	require.Failf(t, "group not found", "no group titled %q", title)
	return nil
}

// PortOf returns the port on side a of the node titled title.
func PortOf(t TB, d *model.Diagram, title string, a model.Alignment) *model.Port {
	t.Helper()
	for _, p := range NodeTitled(t, d, title).Ports().Items() {
		if p.Alignment() == a {
			return p
		}
	}
	require.Failf(t, "port not found", "node %q has no %s port", title, a)
	return nil
}
