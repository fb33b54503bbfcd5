package codec

import (
	"errors"
	"fmt"

	"github.com/zjrosen/diagramkit/internal/calc"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/model"
)

// DocumentVersion is the schema version written by FromDiagram.
const DocumentVersion = 1

// Node kinds
const (
	KindNode     = "node"
	KindNumber   = "number"
	KindOperator = "operator"
)

// Document errors
var (
	ErrUnsupportedVersion = errors.New("unsupported document version")
	ErrUnknownKind        = errors.New("unknown node kind")
	ErrUnknownPort        = errors.New("link references unknown port")
	ErrDuplicateID        = errors.New("duplicate id in document")
	ErrEmptyDocument      = errors.New("document has no layers")
)

// Document is the serialized form of a diagram. Derived views such as
// AllLinks or selection are not stored.
type Document struct {
	Version      int         `json:"version" yaml:"version" msgpack:"version"`
	ID           string      `json:"id" yaml:"id" msgpack:"id"`
	Pan          model.Point `json:"pan" yaml:"pan" msgpack:"pan"`
	Zoom         float64     `json:"zoom" yaml:"zoom" msgpack:"zoom"`
	Size         model.Size  `json:"size" yaml:"size" msgpack:"size"`
	CurrentLayer string      `json:"current_layer" yaml:"current_layer" msgpack:"current_layer"`
	Layers       []LayerDoc  `json:"layers" yaml:"layers" msgpack:"layers"`
	Links        []LinkDoc   `json:"links,omitempty" yaml:"links,omitempty" msgpack:"links,omitempty"`
}

type LayerDoc struct {
	ID     string     `json:"id" yaml:"id" msgpack:"id"`
	Name   string     `json:"name" yaml:"name" msgpack:"name"`
	Nodes  []NodeDoc  `json:"nodes,omitempty" yaml:"nodes,omitempty" msgpack:"nodes,omitempty"`
	Groups []GroupDoc `json:"groups,omitempty" yaml:"groups,omitempty" msgpack:"groups,omitempty"`
}

type NodeDoc struct {
	ID        string      `json:"id" yaml:"id" msgpack:"id"`
	Kind      string      `json:"kind" yaml:"kind" msgpack:"kind"`
	Title     string      `json:"title,omitempty" yaml:"title,omitempty" msgpack:"title,omitempty"`
	Position  model.Point `json:"position" yaml:"position" msgpack:"position"`
	Size      model.Size  `json:"size" yaml:"size" msgpack:"size"`
	Hidden    bool        `json:"hidden,omitempty" yaml:"hidden,omitempty" msgpack:"hidden,omitempty"`
	Ports     []PortDoc   `json:"ports,omitempty" yaml:"ports,omitempty" msgpack:"ports,omitempty"`
	Value     *float64    `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`
	Operation string      `json:"operation,omitempty" yaml:"operation,omitempty" msgpack:"operation,omitempty"`
}

type GroupDoc struct {
	ID       string      `json:"id" yaml:"id" msgpack:"id"`
	Title    string      `json:"title,omitempty" yaml:"title,omitempty" msgpack:"title,omitempty"`
	Position model.Point `json:"position" yaml:"position" msgpack:"position"`
	Size     model.Size  `json:"size" yaml:"size" msgpack:"size"`
	Hidden   bool        `json:"hidden,omitempty" yaml:"hidden,omitempty" msgpack:"hidden,omitempty"`
	Padding  float64     `json:"padding" yaml:"padding" msgpack:"padding"`
	Ports    []PortDoc   `json:"ports,omitempty" yaml:"ports,omitempty" msgpack:"ports,omitempty"`
	Nodes    []NodeDoc   `json:"nodes,omitempty" yaml:"nodes,omitempty" msgpack:"nodes,omitempty"`
	Groups   []GroupDoc  `json:"groups,omitempty" yaml:"groups,omitempty" msgpack:"groups,omitempty"`
}

type PortDoc struct {
	ID        string          `json:"id" yaml:"id" msgpack:"id"`
	Alignment model.Alignment `json:"alignment" yaml:"alignment" msgpack:"alignment"`
	Position  model.Point     `json:"position" yaml:"position" msgpack:"position"`
	Size      model.Size      `json:"size" yaml:"size" msgpack:"size"`
	Hidden    bool            `json:"hidden,omitempty" yaml:"hidden,omitempty" msgpack:"hidden,omitempty"`
}

// LinkDoc references its ports by id. An empty Target means the link ends
// at TargetPosition.
type LinkDoc struct {
	ID             string        `json:"id" yaml:"id" msgpack:"id"`
	Source         string        `json:"source" yaml:"source" msgpack:"source"`
	Target         string        `json:"target,omitempty" yaml:"target,omitempty" msgpack:"target,omitempty"`
	TargetPosition model.Point   `json:"target_position" yaml:"target_position" msgpack:"target_position"`
	Vertices       []model.Point `json:"vertices,omitempty" yaml:"vertices,omitempty" msgpack:"vertices,omitempty"`
	Hidden         bool          `json:"hidden,omitempty" yaml:"hidden,omitempty" msgpack:"hidden,omitempty"`
}

// FromDiagram snapshots d. Links are listed per source port in outgoing
// order, which Decode reproduces exactly.
func FromDiagram(d *model.Diagram) *Document {
	doc := &Document{
		Version: DocumentVersion,
		ID:      d.ID(),
		Pan:     d.Pan(),
		Zoom:    d.Zoom(),
		Size:    d.Size(),
	}
	if cur := d.CurrentLayer(); cur != nil {
		doc.CurrentLayer = cur.ID()
	}
	for _, l := range d.Layers().Items() {
		ld := LayerDoc{ID: l.ID(), Name: l.Name()}
		for _, n := range l.Nodes().Items() {
			ld.Nodes = append(ld.Nodes, nodeDoc(n))
		}
		for _, g := range l.Groups().Items() {
			ld.Groups = append(ld.Groups, groupDoc(g))
		}
		doc.Layers = append(doc.Layers, ld)
	}
	for _, p := range d.AllPorts() {
		for _, link := range p.Outgoing().Items() {
			doc.Links = append(doc.Links, linkDoc(link))
		}
	}
	return doc
}

func nodeDoc(n *model.Node) NodeDoc {
	nd := NodeDoc{
		ID:       n.ID(),
		Kind:     KindNode,
		Title:    n.Title(),
		Position: n.Position(),
		Size:     n.Size(),
		Hidden:   !n.Visible(),
		Ports:    portDocs(n.Ports().Items()),
	}
	switch ext := n.Extension().(type) {
	case *calc.Number:
		v := ext.Value()
		nd.Kind = KindNumber
		nd.Value = &v
	case *calc.Operator:
		nd.Kind = KindOperator
		nd.Operation = string(ext.Operation())
	}
	return nd
}

func groupDoc(g *model.Group) GroupDoc {
	gd := GroupDoc{
		ID:       g.ID(),
		Title:    g.Title(),
		Position: g.Position(),
		Size:     g.Size(),
		Hidden:   !g.Visible(),
		Padding:  g.Padding(),
		Ports:    portDocs(g.Ports().Items()),
	}
	for _, n := range g.Children().Items() {
		gd.Nodes = append(gd.Nodes, nodeDoc(n))
	}
	for _, c := range g.Groups().Items() {
		gd.Groups = append(gd.Groups, groupDoc(c))
	}
	return gd
}

func portDocs(ports []*model.Port) []PortDoc {
	var out []PortDoc
	for _, p := range ports {
		out = append(out, PortDoc{
			ID:        p.ID(),
			Alignment: p.Alignment(),
			Position:  p.Position(),
			Size:      p.Size(),
			Hidden:    !p.Visible(),
		})
	}
	return out
}

func linkDoc(l *model.Link) LinkDoc {
	ld := LinkDoc{
		ID:             l.ID(),
		Source:         l.Source().ID(),
		TargetPosition: l.TargetPosition(),
		Vertices:       l.Vertices(),
		Hidden:         !l.Visible(),
	}
	if t := l.Target(); t != nil {
		ld.Target = t.ID()
	}
	if len(ld.Vertices) == 0 {
		ld.Vertices = nil
	}
	return ld
}

// restorer rebuilds a diagram on a fresh bus, attaching children through
// the internal paths so no structural events fire for the parent links.
type restorer struct {
	bus   *events.Aggregator
	ports map[string]*model.Port
	ids   map[string]bool
}

func (r *restorer) claim(id string) error {
	if id == "" {
		return nil
	}
	if r.ids[id] {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	r.ids[id] = true
	return nil
}

// ToDiagram builds a diagram from doc on bus.
func (doc *Document) ToDiagram(bus *events.Aggregator) (*model.Diagram, error) {
	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	if len(doc.Layers) == 0 {
		return nil, ErrEmptyDocument
	}
	r := &restorer{bus: bus, ports: make(map[string]*model.Port), ids: make(map[string]bool)}

	var opts []model.Option
	if doc.ID != "" {
		opts = append(opts, model.WithID(doc.ID))
	}
	d := model.NewDiagram(bus, opts...)

	layers := make([]*model.Layer, 0, len(doc.Layers))
	var current *model.Layer
	for _, ld := range doc.Layers {
		l, err := r.layer(ld)
		if err != nil {
			d.Dispose()
			return nil, err
		}
		layers = append(layers, l)
		if l.ID() == doc.CurrentLayer {
			current = l
		}
	}
	d.RestoreLayers(layers...)
	if current != nil {
		d.SetCurrentLayerInternal(current)
	}
	d.SetPanInternal(doc.Pan)
	if doc.Zoom > 0 {
		d.SetZoomInternal(doc.Zoom)
	}
	d.SetSizeInternal(doc.Size)

	for _, ld := range doc.Links {
		if err := r.link(ld); err != nil {
			d.Dispose()
			return nil, err
		}
	}
	return d, nil
}

func (r *restorer) layer(ld LayerDoc) (*model.Layer, error) {
	if err := r.claim(ld.ID); err != nil {
		return nil, err
	}
	l := model.NewLayer(r.bus, model.WithID(ld.ID), model.WithTitle(ld.Name))
	for _, nd := range ld.Nodes {
		n, err := r.node(nd)
		if err != nil {
			return nil, err
		}
		l.AddNodeInternal(n)
	}
	for _, gd := range ld.Groups {
		g, err := r.group(gd)
		if err != nil {
			return nil, err
		}
		l.AddGroupInternal(g)
	}
	return l, nil
}

func entityOptions(id, title string, pos model.Point, size model.Size, hidden bool) []model.Option {
	opts := []model.Option{model.WithTitle(title), model.WithPosition(pos), model.WithSize(size)}
	if id != "" {
		opts = append(opts, model.WithID(id))
	}
	if hidden {
		opts = append(opts, model.Hidden())
	}
	return opts
}

func (r *restorer) node(nd NodeDoc) (*model.Node, error) {
	if err := r.claim(nd.ID); err != nil {
		return nil, err
	}
	n := model.NewNode(r.bus, entityOptions(nd.ID, nd.Title, nd.Position, nd.Size, nd.Hidden)...)
	if err := r.attachPorts(n, nd.Ports); err != nil {
		return nil, err
	}
	switch nd.Kind {
	case KindNode, "":
	case KindNumber:
		var v float64
		if nd.Value != nil {
			v = *nd.Value
		}
		if _, err := calc.RestoreNumber(n, r.bus, v); err != nil {
			return nil, fmt.Errorf("node %s: %w", nd.ID, err)
		}
	case KindOperator:
		op, err := calc.ParseOperation(nd.Operation)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nd.ID, err)
		}
		if _, err := calc.RestoreOperator(n, r.bus, op); err != nil {
			return nil, fmt.Errorf("node %s: %w", nd.ID, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, nd.Kind)
	}
	return n, nil
}

func (r *restorer) group(gd GroupDoc) (*model.Group, error) {
	if err := r.claim(gd.ID); err != nil {
		return nil, err
	}
	g := model.NewGroup(r.bus, entityOptions(gd.ID, gd.Title, gd.Position, gd.Size, gd.Hidden)...)
	g.SetPaddingInternal(gd.Padding)
	if err := r.attachPorts(g, gd.Ports); err != nil {
		return nil, err
	}
	for _, nd := range gd.Nodes {
		n, err := r.node(nd)
		if err != nil {
			return nil, err
		}
		g.AddChildInternal(n)
	}
	for _, cd := range gd.Groups {
		c, err := r.group(cd)
		if err != nil {
			return nil, err
		}
		g.AddGroupInternal(c)
	}
	return g, nil
}

type internalPortAdder interface {
	AddPortInternal(p *model.Port) bool
}

func (r *restorer) attachPorts(c internalPortAdder, docs []PortDoc) error {
	for _, pd := range docs {
		if err := r.claim(pd.ID); err != nil {
			return err
		}
		opts := []model.Option{model.WithPosition(pd.Position), model.WithSize(pd.Size)}
		if pd.ID != "" {
			opts = append(opts, model.WithID(pd.ID))
		}
		if pd.Hidden {
			opts = append(opts, model.Hidden())
		}
		p := model.NewPort(r.bus, pd.Alignment, opts...)
		c.AddPortInternal(p)
		r.ports[p.ID()] = p
	}
	return nil
}

func (r *restorer) link(ld LinkDoc) error {
	if err := r.claim(ld.ID); err != nil {
		return err
	}
	source, ok := r.ports[ld.Source]
	if !ok {
		return fmt.Errorf("%w: link %s source %q", ErrUnknownPort, ld.ID, ld.Source)
	}
	var target *model.Port
	if ld.Target != "" {
		if target, ok = r.ports[ld.Target]; !ok {
			return fmt.Errorf("%w: link %s target %q", ErrUnknownPort, ld.ID, ld.Target)
		}
	}

	var opts []model.Option
	if ld.ID != "" {
		opts = append(opts, model.WithID(ld.ID))
	}
	if ld.Hidden {
		opts = append(opts, model.Hidden())
	}
	l := model.NewLink(r.bus, append(opts, model.WithPosition(ld.TargetPosition))...)
	if len(ld.Vertices) > 0 {
		l.SetVerticesInternal(ld.Vertices)
	}
	return l.SetPortsInternal(source, target)
}
