package behaviour

import (
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/model"
)

// Host is the mutation surface behaviours are allowed to use.
type Host interface {
	Diagram() *model.Diagram
	Bus() *events.Aggregator
	AddLinkTo(source, target *model.Port, link *model.Link) error
	ConnectLink(link *model.Link, target *model.Port) error
	RemoveNode(n *model.Node) bool
	RemoveGroup(g *model.Group) bool
	RemoveLink(l *model.Link) bool
}
