package testutil

import "github.com/zjrosen/diagramkit/internal/model"

// defaultNodeSize matches what the service gives new nodes.
var defaultNodeSize = model.Size{Width: 120, Height: 60}

// nodeData holds a node to be created by Build.
type nodeData struct {
	title    string
	position model.Point
	size     model.Size
	ports    []model.Alignment
	group    string
	hidden   bool
	selected bool
}

func defaultNode(title string) nodeData {
	return nodeData{title: title, size: defaultNodeSize}
}

// NodeOption configures a node during builder setup.
type NodeOption func(*nodeData)

// At sets the node position.
func At(x, y float64) NodeOption {
	return func(n *nodeData) { n.position = model.Point{X: x, Y: y} }
}

// Sized sets the node size.
func Sized(w, h float64) NodeOption {
	return func(n *nodeData) { n.size = model.Size{Width: w, Height: h} }
}

// Ports adds one port per alignment, placed on that side of the node.
func Ports(alignments ...model.Alignment) NodeOption {
	return func(n *nodeData) { n.ports = append(n.ports, alignments...) }
}

// InGroup places the node inside the group with the given title.
func InGroup(title string) NodeOption {
	return func(n *nodeData) { n.group = title }
}

// HiddenNode creates the node invisible.
func HiddenNode() NodeOption {
	return func(n *nodeData) { n.hidden = true }
}

// SelectedNode selects the node once the diagram is built.
func SelectedNode() NodeOption {
	return func(n *nodeData) { n.selected = true }
}

// groupData holds a group to be created by Build.
type groupData struct {
	title    string
	position model.Point
	parent   string
}

// GroupOption configures a group during builder setup.
type GroupOption func(*groupData)

// GroupAt sets the group position.
func GroupAt(x, y float64) GroupOption {
	return func(g *groupData) { g.position = model.Point{X: x, Y: y} }
}

// Nested places the group inside the parent group with the given title.
func Nested(parent string) GroupOption {
	return func(g *groupData) { g.parent = parent }
}

// linkData holds a link between two node ports, or a dangling link when
// target is empty.
type linkData struct {
	source      string
	sourceAlign model.Alignment
	target      string
	targetAlign model.Alignment
	vertices    []model.Point
	loose       model.Point
}

// LinkOption configures a link during builder setup.
type LinkOption func(*linkData)

// Via sets the link bend points.
func Via(points ...model.Point) LinkOption {
	return func(l *linkData) { l.vertices = append(l.vertices, points...) }
}
