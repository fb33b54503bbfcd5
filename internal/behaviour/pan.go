package behaviour

import (
	"github.com/zjrosen/diagramkit/internal/input"
	"github.com/zjrosen/diagramkit/internal/model"
)

type PanOptions struct {
	BaseOptions
}

func NewPanOptions(enabled bool) *PanOptions {
	return &PanOptions{BaseOptions: NewBaseOptions(enabled)}
}

// Pan drags the whole canvas when the pointer is pressed on empty space.
type Pan struct {
	Base
	panning  bool
	start    model.Point
	startPan model.Point
}

func NewPan(host Host, opts *PanOptions) *Pan {
	p := &Pan{}
	p.Init(host, opts, func() {
		On(&p.Base, p.onPointerDown)
		On(&p.Base, p.onPointerMove)
		On(&p.Base, p.onPointerUp)
	})
	p.OnDetach(func() { p.panning = false })
	return p
}

func (p *Pan) onPointerDown(e input.PointerDown) {
	if e.Target != nil {
		return
	}
	p.panning = true
	p.start = e.Client
	p.startPan = p.Host().Diagram().Pan()
}

func (p *Pan) onPointerMove(e input.PointerMove) {
	if !p.panning {
		return
	}
	p.Host().Diagram().SetPan(p.startPan.Add(e.Client.Sub(p.start)))
}

func (p *Pan) onPointerUp(input.PointerUp) {
	p.panning = false
}
