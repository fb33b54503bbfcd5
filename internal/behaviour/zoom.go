package behaviour

import (
	"math"

	"github.com/zjrosen/diagramkit/internal/input"
	"github.com/zjrosen/diagramkit/internal/log"
)

// ZoomOptions configures Zoom. Each wheel notch multiplies or divides the
// zoom by Step, clamped to [Min, Max].
type ZoomOptions struct {
	BaseOptions
	Min  float64
	Max  float64
	Step float64
}

func NewZoomOptions(enabled bool, minZoom, maxZoom, step float64) *ZoomOptions {
	return &ZoomOptions{BaseOptions: NewBaseOptions(enabled), Min: minZoom, Max: maxZoom, Step: step}
}

// Zoom scales the diagram around the pointer.
type Zoom struct {
	Base
	options *ZoomOptions
}

func NewZoom(host Host, opts *ZoomOptions) *Zoom {
	z := &Zoom{options: opts}
	z.Init(host, opts, func() {
		On(&z.Base, z.onWheel)
	})
	return z
}

func (z *Zoom) onWheel(e input.Wheel) {
	if e.DeltaY == 0 || z.options.Step <= 1 {
		return
	}
	d := z.Host().Diagram()
	old := d.Zoom()
	next := old * z.options.Step
	if e.DeltaY > 0 {
		next = old / z.options.Step
	}
	next = math.Max(z.options.Min, math.Min(z.options.Max, next))
	if next == old {
		return
	}

	anchor := d.ToModel(e.Client)
	if err := d.SetZoom(next); err != nil {
		log.ErrorErr(log.CatBehaviour, "zoom rejected", err, "zoom", next)
		return
	}
	d.SetPan(e.Client.Sub(anchor.Scale(next)))
}
