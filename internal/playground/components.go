package playground

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/diagramkit/internal/calc"
	"github.com/zjrosen/diagramkit/internal/model"
	"github.com/zjrosen/diagramkit/internal/registry"
)

// DefaultComponents maps the built-in model types to their terminal components.
func DefaultComponents() (*registry.Registry, error) {
	b := registry.NewBuilder()
	registry.MapType[model.Node, *NodeBox](b)
	registry.MapType[model.Group, *GroupBox](b)
	registry.MapType[calc.Number, *NumberBox](b)
	registry.MapType[calc.Operator, *OperatorBox](b)
	return b.Build()
}

// box draws a bordered area with up to two text lines. Areas too small for
// a border collapse to the first line.
func box(border lipgloss.Border, width, height int, lines ...string) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if width < 3 || height < 3 {
		first := ""
		if len(lines) > 0 {
			first = lines[0]
		}
		return runewidth.FillRight(runewidth.Truncate(first, width, ""), width)
	}
	inner := width - 2
	var body []string
	for _, l := range lines {
		if len(body) == height-2 {
			break
		}
		body = append(body, runewidth.Truncate(l, inner, "…"))
	}
	return lipgloss.NewStyle().
		Border(border).
		Width(inner).
		Height(height - 2).
		Render(strings.Join(body, "\n"))
}

// NodeBox renders a plain node.
type NodeBox struct {
	node *model.Node
}

func (c *NodeBox) Bind(m any) error {
	n, ok := m.(*model.Node)
	if !ok {
		return fmt.Errorf("NodeBox cannot render %T", m)
	}
	c.node = n
	return nil
}

func (c *NodeBox) Render(width, height int) string {
	return box(lipgloss.RoundedBorder(), width, height, c.node.Title())
}

// GroupBox renders a group frame. Children are drawn separately on top.
type GroupBox struct {
	group *model.Group
}

func (c *GroupBox) Bind(m any) error {
	g, ok := m.(*model.Group)
	if !ok {
		return fmt.Errorf("GroupBox cannot render %T", m)
	}
	c.group = g
	return nil
}

func (c *GroupBox) Render(width, height int) string {
	return box(lipgloss.NormalBorder(), width, height, c.group.Title())
}

// NumberBox renders a number node with its value.
type NumberBox struct {
	number *calc.Number
}

func (c *NumberBox) Bind(m any) error {
	n, ok := m.(*calc.Number)
	if !ok {
		return fmt.Errorf("NumberBox cannot render %T", m)
	}
	c.number = n
	return nil
}

func (c *NumberBox) Render(width, height int) string {
	return box(lipgloss.RoundedBorder(), width, height, c.number.Title(), calc.Some(c.number.Value()).String())
}

// OperatorBox renders an operator with its operation and result.
type OperatorBox struct {
	op *calc.Operator
}

func (c *OperatorBox) Bind(m any) error {
	o, ok := m.(*calc.Operator)
	if !ok {
		return fmt.Errorf("OperatorBox cannot render %T", m)
	}
	c.op = o
	return nil
}

func (c *OperatorBox) Render(width, height int) string {
	return box(lipgloss.DoubleBorder(), width, height,
		c.op.Title(),
		fmt.Sprintf("%s = %s", c.op.Operation(), c.op.Result()))
}
