package behaviour

import (
	"math"

	"github.com/zjrosen/diagramkit/internal/input"
	"github.com/zjrosen/diagramkit/internal/model"
)

// DragOptions configures Drag. GridSize > 0 snaps moved positions to the grid.
type DragOptions struct {
	BaseOptions
	GridSize float64
}

func NewDragOptions(enabled bool, gridSize float64) *DragOptions {
	return &DragOptions{BaseOptions: NewBaseOptions(enabled), GridSize: gridSize}
}

// Drag moves the selected nodes and groups with the pointer.
type Drag struct {
	Base
	options *DragOptions
	start   model.Point
	initial map[model.PortContainer]model.Point
}

func NewDrag(host Host, opts *DragOptions) *Drag {
	d := &Drag{options: opts}
	d.Init(host, opts, func() {
		On(&d.Base, d.onPointerDown)
		On(&d.Base, d.onPointerMove)
		On(&d.Base, d.onPointerUp)
	})
	d.OnDetach(func() { d.initial = nil })
	return d
}

// Dragging reports whether a drag is in progress.
func (d *Drag) Dragging() bool { return d.initial != nil }

func (d *Drag) onPointerDown(e input.PointerDown) {
	target, ok := e.Target.(model.PortContainer)
	if !ok || e.Button != input.ButtonLeft {
		return
	}
	d.start = e.Client
	d.initial = make(map[model.PortContainer]model.Point)
	if !target.Selected() {
		d.initial[target] = target.Position()
		return
	}
	for _, c := range d.Host().Diagram().AllContainers() {
		if c.Selected() && !ancestorSelected(c) {
			d.initial[c] = c.Position()
		}
	}
}

// ancestorSelected reports whether a group enclosing c is selected, in which
// case c moves with it.
func ancestorSelected(c model.PortContainer) bool {
	for g := c.ParentGroup(); g != nil; g = g.ParentGroup() {
		if g.Selected() {
			return true
		}
	}
	return false
}

func (d *Drag) onPointerMove(e input.PointerMove) {
	if d.initial == nil {
		return
	}
	zoom := d.Host().Diagram().Zoom()
	delta := e.Client.Sub(d.start).Scale(1 / zoom)
	for c, origin := range d.initial {
		c.SetPosition(d.snap(origin.Add(delta)))
	}
}

func (d *Drag) snap(p model.Point) model.Point {
	g := d.options.GridSize
	if g <= 0 {
		return p
	}
	return model.Point{X: math.Round(p.X/g) * g, Y: math.Round(p.Y/g) * g}
}

func (d *Drag) onPointerUp(input.PointerUp) {
	d.initial = nil
}
