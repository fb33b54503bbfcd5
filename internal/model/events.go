package model

// Property change events. Each carries the entity and, where meaningful, the
// old and new values.

type PositionChanged struct {
	Entity   Entity
	Old, New Point
}

type SizeChanged struct {
	Entity   Entity
	Old, New Size
}

type SelectionChanged struct {
	Entity   Selectable
	Selected bool
}

type VisibilityChanged struct {
	Entity  Entity
	Visible bool
}

type TitleChanged struct {
	Entity   Entity
	Old, New string
}

type PortAlignmentChanged struct {
	Port     *Port
	Old, New Alignment
}

type GroupPaddingChanged struct {
	Group    *Group
	Old, New float64
}

type PanChanged struct {
	Diagram  *Diagram
	Old, New Point
}

type ZoomChanged struct {
	Diagram  *Diagram
	Old, New float64
}

type CurrentLayerChanged struct {
	Diagram  *Diagram
	Old, New *Layer
}

// Structural events.

type PortAdded struct {
	Container PortContainer
	Port      *Port
}

type PortRemoved struct {
	Container PortContainer
	Port      *Port
}

// NodeAdded is published when a node joins a layer (Group nil) or a group.
type NodeAdded struct {
	Node  *Node
	Layer *Layer
	Group *Group
}

type NodeRemoved struct {
	Node  *Node
	Layer *Layer
	Group *Group
}

// GroupAdded is published when a group joins a layer (Parent nil) or another group.
type GroupAdded struct {
	Group  *Group
	Layer  *Layer
	Parent *Group
}

type GroupRemoved struct {
	Group  *Group
	Layer  *Layer
	Parent *Group
}

type LayerAdded struct {
	Diagram *Diagram
	Layer   *Layer
}

type LayerRemoved struct {
	Diagram *Diagram
	Layer   *Layer
}

// LinkAdded is published the first time a link gets a source port.
type LinkAdded struct {
	Link *Link
}

// LinkRemoved is published when an attached link is disposed.
type LinkRemoved struct {
	Link   *Link
	Source *Port
	Target *Port
}

type LinkSourceChanged struct {
	Link     *Link
	Old, New *Port
}

type LinkTargetChanged struct {
	Link     *Link
	Old, New *Port
}

type LinkTargetPositionChanged struct {
	Link     *Link
	Old, New Point
}

type LinkVerticesChanged struct {
	Link *Link
}
