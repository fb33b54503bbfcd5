package calc

import (
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/model"
)

// Number is a constant source value.
type Number struct {
	*model.Node
	bus   *events.Aggregator
	value float64
	out   *model.Port
}

// NewNumber creates a node with one output port holding value.
func NewNumber(bus *events.Aggregator, value float64, opts ...model.Option) *Number {
	n := model.NewNode(bus, opts...)
	out := model.NewPort(bus, model.AlignRight)
	n.AddPortInternal(out)
	return wrapNumber(n, bus, value, out)
}

// RestoreNumber wraps an existing node whose first port is the output.
func RestoreNumber(n *model.Node, bus *events.Aggregator, value float64) (*Number, error) {
	out, err := n.Ports().At(0)
	if err != nil {
		return nil, ErrMissingPorts
	}
	return wrapNumber(n, bus, value, out), nil
}

func wrapNumber(n *model.Node, bus *events.Aggregator, value float64, out *model.Port) *Number {
	num := &Number{Node: n, bus: bus, value: value, out: out}
	n.SetExtension(num)
	return num
}

func (n *Number) Model() *model.Node  { return n.Node }
func (n *Number) Output() *model.Port { return n.out }
func (n *Number) Value() float64      { return n.value }
func (n *Number) Result() Result      { return Some(n.value) }

// SetValue changes the value and publishes ValueChanged.
func (n *Number) SetValue(v float64) {
	if n.value == v {
		return
	}
	old := n.value
	n.value = v
	publishValue(n.bus, n, Some(old), Some(v))
}
