package service

import (
	"github.com/zjrosen/diagramkit/internal/behaviour"
	"github.com/zjrosen/diagramkit/internal/calc"
	"github.com/zjrosen/diagramkit/internal/model"
)

// PopulateSample fills the current layer with a small calculator graph:
// two numbers feeding an operator inside a group, plus a free node.
func (s *DiagramService) PopulateSample() error {
	bus := s.Bus()
	size := model.Size{Width: 120, Height: 60}

	x := calc.NewNumber(bus, 6, model.WithTitle("x"), model.WithPosition(model.Point{X: 20, Y: 40}), model.WithSize(size))
	y := calc.NewNumber(bus, 7, model.WithTitle("y"), model.WithPosition(model.Point{X: 20, Y: 160}), model.WithSize(size))
	product := calc.NewOperator(bus, calc.Multiply, model.WithTitle("x * y"), model.WithPosition(model.Point{X: 260, Y: 100}), model.WithSize(size))
	note := model.NewNode(bus, model.WithTitle("note"), model.WithPosition(model.Point{X: 520, Y: 100}), model.WithSize(size))
	noteIn := model.NewPort(bus, model.AlignLeft)
	group := model.NewGroup(bus, model.WithTitle("calc"))

	for _, n := range []*model.Node{x.Model(), y.Model(), note} {
		if err := s.AddNode(n); err != nil {
			return err
		}
	}
	if err := s.AddPortTo(note, noteIn); err != nil {
		return err
	}
	if err := s.AddGroup(group); err != nil {
		return err
	}
	if err := s.AddNodeTo(group, product.Model()); err != nil {
		return err
	}
	group.FitToChildren()

	links := [][2]*model.Port{
		{x.Output(), product.Left()},
		{y.Output(), product.Right()},
		{product.Output(), noteIn},
	}
	for _, l := range links {
		if err := s.AddLinkTo(l[0], l[1], model.NewLink(bus)); err != nil {
			return err
		}
	}
	s.Recalculate()
	return nil
}

// Recalculate refreshes every operator result when the calc engine is registered.
func (s *DiagramService) Recalculate() {
	if e, ok := behaviour.Get[*calc.Engine](s.behaviours); ok {
		e.RecalculateAll()
	}
}
