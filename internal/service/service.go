// Package service provides DiagramService, the single mutation entry point
// for views and behaviours.
package service

import (
	"errors"
	"fmt"

	"github.com/zjrosen/diagramkit/internal/behaviour"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/log"
	"github.com/zjrosen/diagramkit/internal/model"
	"github.com/zjrosen/diagramkit/internal/registry"
)

// Service errors
var (
	ErrNilEntity   = errors.New("entity cannot be nil")
	ErrNotAttached = errors.New("entity is not part of the diagram")
	ErrPortInUse   = errors.New("port belongs to another container or is disposed")
	ErrSameParent  = errors.New("group cannot contain itself or an ancestor")
)

// DiagramService wraps a diagram with its bus, behaviours and component table.
type DiagramService struct {
	diagram    *model.Diagram
	behaviours *behaviour.Container
	components registry.Provider
	named      map[string]behaviour.Options
}

// Compile-time check that DiagramService can host behaviours.
var _ behaviour.Host = (*DiagramService)(nil)

// New creates a service over d. Behaviours are registered separately, see
// RegisterDefaults.
func New(d *model.Diagram, components registry.Provider) *DiagramService {
	if d == nil {
		d = model.NewDiagram(events.NewAggregator())
	}
	return &DiagramService{
		diagram:    d,
		behaviours: behaviour.NewContainer(),
		components: components,
		named:      make(map[string]behaviour.Options),
	}
}

func (s *DiagramService) Diagram() *model.Diagram          { return s.diagram }
func (s *DiagramService) Bus() *events.Aggregator          { return s.diagram.Bus() }
func (s *DiagramService) Behaviours() *behaviour.Container { return s.behaviours }
func (s *DiagramService) Components() registry.Provider    { return s.components }

// AddNode places n at the top level of the current layer, moving it out of
// wherever it was before.
func (s *DiagramService) AddNode(n *model.Node) error {
	if n == nil {
		return ErrNilEntity
	}
	s.detach(n)
	if !s.diagram.CurrentLayer().AddNode(n) {
		return fmt.Errorf("%w: node %s", ErrPortInUse, n.ID())
	}
	log.Debug(log.CatModel, "node added", "node", n.ID(), "layer", s.diagram.CurrentLayer().ID())
	return nil
}

// AddGroup places g at the top level of the current layer.
func (s *DiagramService) AddGroup(g *model.Group) error {
	if g == nil {
		return ErrNilEntity
	}
	s.detach(g)
	if !s.diagram.CurrentLayer().AddGroup(g) {
		return fmt.Errorf("%w: group %s", ErrPortInUse, g.ID())
	}
	log.Debug(log.CatModel, "group added", "group", g.ID())
	return nil
}

// AddNodeTo nests n inside g. The group must already be part of the diagram.
func (s *DiagramService) AddNodeTo(g *model.Group, n *model.Node) error {
	if g == nil || n == nil {
		return ErrNilEntity
	}
	if g.Layer() == nil {
		return fmt.Errorf("%w: group %s", ErrNotAttached, g.ID())
	}
	s.detach(n)
	if !g.AddChild(n) {
		return fmt.Errorf("%w: node %s", ErrPortInUse, n.ID())
	}
	return nil
}

// AddGroupTo nests child inside parent.
func (s *DiagramService) AddGroupTo(parent, child *model.Group) error {
	if parent == nil || child == nil {
		return ErrNilEntity
	}
	if parent.Layer() == nil {
		return fmt.Errorf("%w: group %s", ErrNotAttached, parent.ID())
	}
	for g := parent; g != nil; g = g.ParentGroup() {
		if g == child {
			return ErrSameParent
		}
	}
	s.detach(child)
	if !parent.AddGroup(child) {
		return fmt.Errorf("%w: group %s", ErrPortInUse, child.ID())
	}
	return nil
}

// detach takes a container out of its current layer or group without disposing it.
func (s *DiagramService) detach(c model.PortContainer) {
	if l := c.Layer(); l != nil {
		l.Detach(c)
	}
}

// AddPortTo attaches p to c.
func (s *DiagramService) AddPortTo(c model.PortContainer, p *model.Port) error {
	if c == nil || p == nil {
		return ErrNilEntity
	}
	if !c.AddPort(p) {
		return fmt.Errorf("%w: port %s", ErrPortInUse, p.ID())
	}
	return nil
}

// AddLinkTo connects link from source to target. A nil target leaves the
// link dangling at its target position.
func (s *DiagramService) AddLinkTo(source, target *model.Port, link *model.Link) error {
	if link == nil {
		return ErrNilEntity
	}
	if source == nil {
		return model.ErrNilSourcePort
	}
	if source.Parent() == nil {
		return fmt.Errorf("%w: source port %s", ErrNotAttached, source.ID())
	}
	if target != nil && target.Parent() == nil {
		return fmt.Errorf("%w: target port %s", ErrNotAttached, target.ID())
	}
	if err := link.SetSourcePort(source); err != nil {
		return err
	}
	if target != nil {
		link.SetTargetPort(target)
	}
	log.Debug(log.CatModel, "link added", "link", link.ID(), "connected", link.IsConnected())
	return nil
}

// ConnectLink sets the target port of an existing link.
func (s *DiagramService) ConnectLink(link *model.Link, target *model.Port) error {
	if link == nil || target == nil {
		return ErrNilEntity
	}
	if !link.IsAttached() || link.Disposed() {
		return fmt.Errorf("%w: link %s", ErrNotAttached, link.ID())
	}
	if target.Parent() == nil {
		return fmt.Errorf("%w: target port %s", ErrNotAttached, target.ID())
	}
	link.SetTargetPort(target)
	return nil
}

// RemoveNode removes and disposes n, wherever it sits.
func (s *DiagramService) RemoveNode(n *model.Node) bool {
	if n == nil {
		return false
	}
	if g := n.ParentGroup(); g != nil {
		return g.RemoveChild(n)
	}
	if l := n.Layer(); l != nil {
		return l.RemoveNode(n)
	}
	return false
}

// RemoveGroup removes and disposes g with everything nested in it.
func (s *DiagramService) RemoveGroup(g *model.Group) bool {
	if g == nil {
		return false
	}
	if p := g.ParentGroup(); p != nil {
		return p.RemoveGroup(g)
	}
	if l := g.Layer(); l != nil {
		return l.RemoveGroup(g)
	}
	return false
}

// RemovePortFrom removes and disposes p.
func (s *DiagramService) RemovePortFrom(c model.PortContainer, p *model.Port) bool {
	if c == nil || p == nil {
		return false
	}
	return c.RemovePort(p)
}

// RemoveLink disposes l. It reports whether l was part of the graph.
func (s *DiagramService) RemoveLink(l *model.Link) bool {
	if l == nil || l.Disposed() {
		return false
	}
	attached := l.IsAttached()
	l.Dispose()
	return attached
}

// Dispose disposes the behaviours, then the diagram.
func (s *DiagramService) Dispose() {
	s.behaviours.Dispose()
	s.diagram.Dispose()
}
