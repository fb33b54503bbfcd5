package model

import (
	"fmt"
	"math"

	"github.com/zjrosen/diagramkit/internal/collection"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/log"
)

// ZoomEpsilon is the smallest zoom change that counts as a change.
const ZoomEpsilon = 1e-6

// DefaultLayerName names the layer a diagram synthesizes for itself.
const DefaultLayerName = "default"

// Diagram is the aggregate root. It always has at least one layer and a
// current layer that belongs to it.
type Diagram struct {
	id       string
	bus      *events.Aggregator
	layers   *collection.Collection[*Layer]
	current  *Layer
	pan      Point
	zoom     float64
	size     Size
	subs     []*events.Subscription
	disposed bool
}

// NewDiagram creates a diagram with one default layer, zoom 1 and no pan.
func NewDiagram(bus *events.Aggregator, opts ...Option) *Diagram {
	o := buildOptions(opts)
	d := &Diagram{
		id:     o.id,
		bus:    bus,
		layers: collection.New[*Layer](),
		zoom:   1,
		pan:    o.position,
		size:   o.size,
	}
	d.subs = []*events.Subscription{
		d.layers.OnAdded(func(l *Layer) {
			l.diagram = d
			events.Publish(d.bus, LayerAdded{Diagram: d, Layer: l})
		}),
		d.layers.OnRemoved(d.layerRemoved),
	}

	def := NewLayer(bus, WithTitle(DefaultLayerName))
	d.layers.AddInternal(def)
	def.diagram = d
	d.current = def
	return d
}

func (d *Diagram) layerRemoved(l *Layer) {
	l.Dispose()
	l.diagram = nil
	events.Publish(d.bus, LayerRemoved{Diagram: d, Layer: l})

	if d.layers.Len() == 0 {
		d.layers.Add(NewLayer(d.bus, WithTitle(DefaultLayerName)))
	}
	if d.current == l || !d.layers.Contains(d.current.id) {
		first, _ := d.layers.At(0)
		d.SetCurrentLayer(first)
	}
}

func (d *Diagram) ID() string                             { return d.id }
func (d *Diagram) Bus() *events.Aggregator                { return d.bus }
func (d *Diagram) Layers() *collection.Collection[*Layer] { return d.layers }
func (d *Diagram) CurrentLayer() *Layer                   { return d.current }

// Pan is the screen offset of the diagram origin.
func (d *Diagram) Pan() Point { return d.pan }

// Zoom is the screen scale factor, 1 at rest.
func (d *Diagram) Zoom() float64 { return d.zoom }

// Size is the viewport size in screen units.
func (d *Diagram) Size() Size { return d.size }

// AddLayer appends l.
func (d *Diagram) AddLayer(l *Layer) bool {
	if l == nil || l.disposed {
		return false
	}
	return d.layers.Add(l)
}

// RemoveLayer removes and disposes l. Removing the last layer leaves a fresh
// default layer in its place.
func (d *Diagram) RemoveLayer(l *Layer) bool {
	return l != nil && d.layers.Remove(l)
}

// RestoreLayers replaces the layer set wholesale without publishing, making
// the first one current. Decoders use it to rebuild a saved diagram.
func (d *Diagram) RestoreLayers(layers ...*Layer) {
	if len(layers) == 0 {
		return
	}
	for _, l := range d.layers.ClearInternal() {
		l.Dispose()
		l.diagram = nil
	}
	for _, l := range layers {
		if d.layers.AddInternal(l) {
			l.diagram = d
		}
	}
	d.current = layers[0]
}

// SetCurrentLayer makes l current, adding it to the diagram first if needed.
func (d *Diagram) SetCurrentLayer(l *Layer) {
	if l == nil || l == d.current {
		return
	}
	if !d.layers.Contains(l.id) {
		d.layers.Add(l)
	}
	old := d.current
	d.current = l
	events.Publish(d.bus, CurrentLayerChanged{Diagram: d, Old: old, New: l})
}

// SetCurrentLayerInternal switches the current layer without publishing.
func (d *Diagram) SetCurrentLayerInternal(l *Layer) {
	if l != nil && d.layers.Contains(l.id) {
		d.current = l
	}
}

func (d *Diagram) SetPan(v Point) {
	if d.pan == v {
		return
	}
	old := d.pan
	d.pan = v
	events.Publish(d.bus, PanChanged{Diagram: d, Old: old, New: v})
}

func (d *Diagram) SetPanInternal(v Point) { d.pan = v }

// SetZoom changes the zoom factor. Changes smaller than ZoomEpsilon are ignored.
func (d *Diagram) SetZoom(v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, v)
	}
	if math.Abs(d.zoom-v) < ZoomEpsilon {
		return nil
	}
	old := d.zoom
	d.zoom = v
	events.Publish(d.bus, ZoomChanged{Diagram: d, Old: old, New: v})
	return nil
}

func (d *Diagram) SetZoomInternal(v float64) {
	if v > 0 && !math.IsInf(v, 0) {
		d.zoom = v
	}
}

func (d *Diagram) SetSize(v Size) {
	if d.size == v {
		return
	}
	old := d.size
	d.size = v
	events.Publish(d.bus, SizeChanged{Entity: d, Old: old, New: v})
}

func (d *Diagram) SetSizeInternal(v Size) { d.size = v }

// ToModel converts a client point into model coordinates.
func (d *Diagram) ToModel(client Point) Point {
	return client.Sub(d.pan).Scale(1 / d.zoom)
}

// ToClient converts a model point into client coordinates.
func (d *Diagram) ToClient(p Point) Point {
	return p.Scale(d.zoom).Add(d.pan)
}

// Bounds covers every node and group. ok is false for an empty diagram.
func (d *Diagram) Bounds() (r Rect, ok bool) {
	for _, c := range d.AllContainers() {
		r, ok = unionBounds(r, ok, c.Bounds())
	}
	return r, ok
}

// AllNodes walks every layer, including nodes nested in groups.
func (d *Diagram) AllNodes() []*Node {
	var out []*Node
	for _, l := range d.layers.Items() {
		out = append(out, l.AllNodes()...)
	}
	return out
}

func (d *Diagram) AllGroups() []*Group {
	var out []*Group
	for _, l := range d.layers.Items() {
		out = append(out, l.AllGroups()...)
	}
	return out
}

// AllContainers lists nodes and groups together, in layer order.
func (d *Diagram) AllContainers() []PortContainer {
	var out []PortContainer
	for _, l := range d.layers.Items() {
		out = append(out, l.AllContainers()...)
	}
	return out
}

func (d *Diagram) AllPorts() []*Port {
	var out []*Port
	for _, l := range d.layers.Items() {
		out = append(out, l.AllPorts()...)
	}
	return out
}

// AllLinks returns every link once, even when it crosses layers.
func (d *Diagram) AllLinks() []*Link {
	seen := make(map[string]bool)
	var out []*Link
	for _, l := range d.layers.Items() {
		for _, lk := range l.AllLinks() {
			if !seen[lk.id] {
				seen[lk.id] = true
				out = append(out, lk)
			}
		}
	}
	return out
}

// Find looks up any entity in the diagram by id.
func (d *Diagram) Find(id string) Entity {
	if id == d.id {
		return d
	}
	for _, l := range d.layers.Items() {
		if l.id == id {
			return l
		}
	}
	for _, c := range d.AllContainers() {
		if c.ID() == id {
			return c
		}
	}
	for _, p := range d.AllPorts() {
		if p.id == id {
			return p
		}
	}
	for _, lk := range d.AllLinks() {
		if lk.id == id {
			return lk
		}
	}
	return nil
}

// Selected returns every selected entity in the diagram.
func (d *Diagram) Selected() []Selectable {
	var out []Selectable
	for _, c := range d.AllContainers() {
		if c.Selected() {
			out = append(out, c)
		}
	}
	for _, p := range d.AllPorts() {
		if p.selected {
			out = append(out, p)
		}
	}
	for _, lk := range d.AllLinks() {
		if lk.selected {
			out = append(out, lk)
		}
	}
	return out
}

// SelectAll selects everything on every layer.
func (d *Diagram) SelectAll() {
	for _, l := range d.layers.Items() {
		l.SelectAll()
	}
}

// UnselectAll clears the selection on every layer.
func (d *Diagram) UnselectAll() {
	for _, l := range d.layers.Items() {
		l.UnselectAll()
	}
}

// Dispose disposes every layer.
func (d *Diagram) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	for _, l := range d.layers.ClearInternal() {
		l.Dispose()
	}
	for _, s := range d.subs {
		s.Unsubscribe()
	}
	log.Debug(log.CatModel, "diagram disposed", "diagram", d.id)
}
