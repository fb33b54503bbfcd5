// Package calc implements calculation nodes on top of the diagram model.
// Number nodes hold a value; Operator nodes combine the results feeding their
// two input ports. Both attach to a plain model.Node as its extension.
package calc

import (
	"errors"
	"fmt"
	"math"

	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/model"
)

var (
	ErrUnknownOperation = errors.New("unknown calc operation")
	ErrMissingPorts     = errors.New("node does not have the ports a calc node needs")
)

// Result is a computed value. Valid is false when there is no result.
type Result struct {
	Value float64
	Valid bool
}

// Some wraps v as a valid result.
func Some(v float64) Result { return Result{Value: v, Valid: true} }

// None is the empty result.
var None = Result{}

// Equal compares two results; all invalid results are equal.
func (r Result) Equal(o Result) bool {
	if !r.Valid || !o.Valid {
		return r.Valid == o.Valid
	}
	return r.Value == o.Value
}

func (r Result) String() string {
	if !r.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%g", r.Value)
}

// Calculator is a node that exposes a result on an output port.
type Calculator interface {
	ID() string
	Model() *model.Node
	Output() *model.Port
	Result() Result
}

// ValueChanged is published whenever a calculator's result changes.
type ValueChanged struct {
	Source   Calculator
	Old, New Result
}

// OperationChanged is published when an operator switches operation.
type OperationChanged struct {
	Operator *Operator
	Old, New Operation
}

// Operation is a binary arithmetic operation.
type Operation string

const (
	Add      Operation = "+"
	Subtract Operation = "-"
	Multiply Operation = "*"
	Divide   Operation = "/"
)

// ParseOperation validates s.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case Add, Subtract, Multiply, Divide:
		return op, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

// Apply computes a op b. Division by zero, or any non-finite outcome, has
// no result.
func (op Operation) Apply(a, b float64) Result {
	var v float64
	switch op {
	case Add:
		v = a + b
	case Subtract:
		v = a - b
	case Multiply:
		v = a * b
	case Divide:
		if b == 0 {
			return None
		}
		v = a / b
	default:
		return None
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return None
	}
	return Some(v)
}

// CalculatorOf returns the calculator attached to n, if any.
func CalculatorOf(n *model.Node) (Calculator, bool) {
	if n == nil {
		return nil, false
	}
	c, ok := n.Extension().(Calculator)
	return c, ok
}

// upstream returns the calculator feeding port p through its first connected
// incoming link.
func upstream(p *model.Port) (Calculator, bool) {
	for _, l := range p.Incoming().Items() {
		src := l.Source()
		if src == nil || l.Disposed() {
			continue
		}
		if n, ok := src.Parent().(*model.Node); ok {
			if c, ok := CalculatorOf(n); ok {
				return c, true
			}
		}
	}
	return nil, false
}

func publishValue(bus *events.Aggregator, c Calculator, old, next Result) {
	events.Publish(bus, ValueChanged{Source: c, Old: old, New: next})
}
