package calc

import (
	"github.com/zjrosen/diagramkit/internal/behaviour"
	"github.com/zjrosen/diagramkit/internal/log"
	"github.com/zjrosen/diagramkit/internal/model"
)

// EngineOptions configures Engine.
type EngineOptions struct {
	behaviour.BaseOptions
}

func NewEngineOptions(enabled bool) *EngineOptions {
	return &EngineOptions{BaseOptions: behaviour.NewBaseOptions(enabled)}
}

// Engine recalculates operators downstream of every value or wiring change.
//
// Recalculation recurses through ValueChanged events. An operator already
// being recalculated further up the current cascade is skipped, so cycles in
// the link graph terminate while diamonds still see every input update.
type Engine struct {
	behaviour.Base
	active map[string]bool
	skips  int
}

func NewEngine(host behaviour.Host, opts *EngineOptions) *Engine {
	e := &Engine{active: make(map[string]bool)}
	e.Init(host, opts, func() {
		behaviour.On(&e.Base, func(ev ValueChanged) { e.propagate(ev.Source) })
		behaviour.On(&e.Base, func(ev OperationChanged) { e.recalculate(ev.Operator) })
		behaviour.On(&e.Base, func(ev model.LinkTargetChanged) {
			e.recalculatePort(ev.Old)
			e.recalculatePort(ev.New)
		})
		behaviour.On(&e.Base, func(ev model.LinkRemoved) { e.recalculatePort(ev.Target) })
	})
	return e
}

// Skipped returns how many recalculations the cycle guard has suppressed.
func (e *Engine) Skipped() int { return e.skips }

// RecalculateAll recomputes every operator in the diagram once, in order.
func (e *Engine) RecalculateAll() {
	for _, n := range e.Host().Diagram().AllNodes() {
		if op, ok := n.Extension().(*Operator); ok {
			e.recalculate(op)
		}
	}
}

func (e *Engine) propagate(src Calculator) {
	for _, l := range src.Output().Outgoing().Items() {
		e.recalculatePort(l.Target())
	}
}

func (e *Engine) recalculatePort(p *model.Port) {
	if p == nil {
		return
	}
	n, ok := p.Parent().(*model.Node)
	if !ok {
		return
	}
	if op, ok := n.Extension().(*Operator); ok && op.IsInput(p) {
		e.recalculate(op)
	}
}

func (e *Engine) recalculate(op *Operator) {
	id := op.ID()
	if e.active[id] {
		e.skips++
		log.Warn(log.CatBehaviour, "calc cycle detected", "operator", id)
		return
	}
	e.active[id] = true
	defer delete(e.active, id)
	op.Recalculate()
}
