package calc

import (
	"fmt"

	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/model"
)

// Operator combines the results wired into its two inputs.
type Operator struct {
	*model.Node
	bus         *events.Aggregator
	op          Operation
	left, right *model.Port
	out         *model.Port
	result      Result
}

// NewOperator creates a node with two input ports and one output port.
func NewOperator(bus *events.Aggregator, op Operation, opts ...model.Option) *Operator {
	n := model.NewNode(bus, opts...)
	left := model.NewPort(bus, model.AlignLeft)
	right := model.NewPort(bus, model.AlignLeft)
	out := model.NewPort(bus, model.AlignRight)
	n.AddPortInternal(left)
	n.AddPortInternal(right)
	n.AddPortInternal(out)
	return wrapOperator(n, bus, op, left, right, out)
}

// RestoreOperator wraps an existing node whose ports are, in order, the left
// input, the right input and the output.
func RestoreOperator(n *model.Node, bus *events.Aggregator, op Operation) (*Operator, error) {
	ports := n.Ports().Items()
	if len(ports) < 3 {
		return nil, fmt.Errorf("%w: operator needs 3, has %d", ErrMissingPorts, len(ports))
	}
	return wrapOperator(n, bus, op, ports[0], ports[1], ports[2]), nil
}

func wrapOperator(n *model.Node, bus *events.Aggregator, op Operation, left, right, out *model.Port) *Operator {
	o := &Operator{Node: n, bus: bus, op: op, left: left, right: right, out: out}
	n.SetExtension(o)
	return o
}

func (o *Operator) Model() *model.Node         { return o.Node }
func (o *Operator) Output() *model.Port        { return o.out }
func (o *Operator) Left() *model.Port          { return o.left }
func (o *Operator) Right() *model.Port         { return o.right }
func (o *Operator) Operation() Operation       { return o.op }
func (o *Operator) Result() Result             { return o.result }
func (o *Operator) IsInput(p *model.Port) bool { return p == o.left || p == o.right }

// SetOperation switches the operation and publishes OperationChanged.
func (o *Operator) SetOperation(op Operation) {
	if o.op == op {
		return
	}
	old := o.op
	o.op = op
	events.Publish(o.bus, OperationChanged{Operator: o, Old: old, New: op})
}

// Recalculate recomputes the result from the inputs and publishes
// ValueChanged when it differs. It reports whether the result changed.
func (o *Operator) Recalculate() bool {
	next := None
	a, okA := upstream(o.left)
	b, okB := upstream(o.right)
	if okA && okB {
		ra, rb := a.Result(), b.Result()
		if ra.Valid && rb.Valid {
			next = o.op.Apply(ra.Value, rb.Value)
		}
	}
	if next.Equal(o.result) {
		return false
	}
	old := o.result
	o.result = next
	publishValue(o.bus, o, old, next)
	return true
}
