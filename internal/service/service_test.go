package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/diagramkit/internal/behaviour"
	"github.com/zjrosen/diagramkit/internal/calc"
	"github.com/zjrosen/diagramkit/internal/config"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/flags"
	"github.com/zjrosen/diagramkit/internal/input"
	"github.com/zjrosen/diagramkit/internal/model"
)

func newService(t *testing.T) *DiagramService {
	t.Helper()
	s := New(nil, nil)
	t.Cleanup(s.Dispose)
	return s
}

func nodeWithPort(t *testing.T, s *DiagramService, title string) (*model.Node, *model.Port) {
	t.Helper()
	n := model.NewNode(s.Bus(), model.WithTitle(title), model.WithSize(model.Size{Width: 40, Height: 20}))
	p := model.NewPort(s.Bus(), model.AlignRight)
	require.NoError(t, s.AddNode(n))
	require.NoError(t, s.AddPortTo(n, p))
	return n, p
}

func TestDiagramService_AddLinkTo(t *testing.T) {
	s := newService(t)
	_, a := nodeWithPort(t, s, "a")
	_, b := nodeWithPort(t, s, "b")

	var added []model.LinkAdded
	events.SubscribeTo(s.Bus(), func(e model.LinkAdded) { added = append(added, e) })

	l := model.NewLink(s.Bus())
	require.NoError(t, s.AddLinkTo(a, b, l))

	require.Same(t, a, l.Source())
	require.Same(t, b, l.Target())
	require.True(t, a.Outgoing().Contains(l.ID()))
	require.True(t, b.Incoming().Contains(l.ID()))
	require.Len(t, added, 1)
	require.Same(t, l, added[0].Link)
	require.Equal(t, []*model.Link{l}, s.Diagram().AllLinks())
}

func TestDiagramService_AddLinkToErrors(t *testing.T) {
	s := newService(t)
	_, a := nodeWithPort(t, s, "a")
	loose := model.NewPort(s.Bus(), model.AlignLeft)

	require.ErrorIs(t, s.AddLinkTo(nil, a, model.NewLink(s.Bus())), model.ErrNilSourcePort)
	require.ErrorIs(t, s.AddLinkTo(a, nil, nil), ErrNilEntity)
	require.ErrorIs(t, s.AddLinkTo(loose, nil, model.NewLink(s.Bus())), ErrNotAttached)
	require.ErrorIs(t, s.AddLinkTo(a, loose, model.NewLink(s.Bus())), ErrNotAttached)
	require.Empty(t, a.Outgoing().Items())
}

func TestDiagramService_DanglingThenConnect(t *testing.T) {
	s := newService(t)
	_, a := nodeWithPort(t, s, "a")
	_, b := nodeWithPort(t, s, "b")

	l := model.NewLink(s.Bus())
	require.NoError(t, s.AddLinkTo(a, nil, l))
	require.True(t, l.TargetIsPosition())

	require.NoError(t, s.ConnectLink(l, b))
	require.True(t, l.IsConnected())
	require.True(t, b.Incoming().Contains(l.ID()))

	require.True(t, s.RemoveLink(l))
	require.False(t, s.RemoveLink(l))
	require.Empty(t, s.Diagram().AllLinks())
}

func TestDiagramService_AddNodeToMovesNode(t *testing.T) {
	s := newService(t)
	layer := s.Diagram().CurrentLayer()
	n, _ := nodeWithPort(t, s, "a")
	g := model.NewGroup(s.Bus())
	require.NoError(t, s.AddGroup(g))

	require.NoError(t, s.AddNodeTo(g, n))
	require.False(t, layer.Nodes().Contains(n.ID()))
	require.True(t, g.Children().Contains(n.ID()))
	require.Same(t, g, n.ParentGroup())
	require.Same(t, layer, n.Layer())
	require.False(t, n.Disposed())

	require.NoError(t, s.AddNode(n))
	require.True(t, layer.Nodes().Contains(n.ID()))
	require.Equal(t, 0, g.Children().Len())
}

func TestDiagramService_AddGroupToRejectsCycle(t *testing.T) {
	s := newService(t)
	outer := model.NewGroup(s.Bus())
	inner := model.NewGroup(s.Bus())
	require.NoError(t, s.AddGroup(outer))
	require.NoError(t, s.AddGroupTo(outer, inner))

	require.ErrorIs(t, s.AddGroupTo(inner, outer), ErrSameParent)
	require.ErrorIs(t, s.AddGroupTo(outer, outer), ErrSameParent)
	require.ErrorIs(t, s.AddNodeTo(model.NewGroup(s.Bus()), model.NewNode(s.Bus())), ErrNotAttached)
}

func TestDiagramService_RemoveNestedNode(t *testing.T) {
	s := newService(t)
	g := model.NewGroup(s.Bus())
	require.NoError(t, s.AddGroup(g))
	n, a := nodeWithPort(t, s, "a")
	_, b := nodeWithPort(t, s, "b")
	require.NoError(t, s.AddNodeTo(g, n))
	l := model.NewLink(s.Bus())
	require.NoError(t, s.AddLinkTo(a, b, l))

	require.True(t, s.RemoveNode(n))
	require.True(t, n.Disposed())
	require.True(t, l.Disposed())
	require.False(t, b.Incoming().Contains(l.ID()))
	require.False(t, s.RemoveNode(n))
}

func TestDiagramService_RegisterDefaults(t *testing.T) {
	s := newService(t)
	require.NoError(t, s.RegisterDefaults(config.Defaults().Behaviours, nil))
	require.Len(t, s.Behaviours().Behaviours(), len(BehaviourNames))

	for _, name := range BehaviourNames {
		_, ok := s.BehaviourOptions(name)
		require.True(t, ok, name)
	}
	_, err := behaviour.GetOptions[*calc.EngineOptions](s.Behaviours())
	require.NoError(t, err)
}

func TestDiagramService_FlagsSkipOptionalBehaviours(t *testing.T) {
	s := newService(t)
	ff := flags.New(map[string]bool{flags.FlagCalcEngine: false, flags.FlagGroupAutoSize: false})
	require.NoError(t, s.RegisterDefaults(config.Defaults().Behaviours, ff))

	_, ok := s.BehaviourOptions("calc")
	require.False(t, ok)
	_, ok = s.BehaviourOptions("group_autosize")
	require.False(t, ok)
	require.ErrorIs(t, s.SetBehaviourEnabled("calc", true), behaviour.ErrOptionsNotFound)
}

func TestDiagramService_ToggleSelection(t *testing.T) {
	s := newService(t)
	require.NoError(t, s.RegisterDefaults(config.Defaults().Behaviours, nil))
	n, _ := nodeWithPort(t, s, "a")

	require.NoError(t, s.SetBehaviourEnabled("selection", false))
	events.Publish(s.Bus(), input.PointerDown{Target: n})
	require.False(t, n.Selected())

	require.NoError(t, s.SetBehaviourEnabled("selection", true))
	events.Publish(s.Bus(), input.PointerDown{Target: n})
	require.True(t, n.Selected())
}

func TestDiagramService_CalcThroughService(t *testing.T) {
	s := newService(t)
	require.NoError(t, s.RegisterDefaults(config.Defaults().Behaviours, nil))

	x := calc.NewNumber(s.Bus(), 2)
	y := calc.NewNumber(s.Bus(), 3)
	sum := calc.NewOperator(s.Bus(), calc.Add)
	for _, n := range []*model.Node{x.Model(), y.Model(), sum.Model()} {
		require.NoError(t, s.AddNode(n))
	}
	require.NoError(t, s.AddLinkTo(x.Output(), sum.Left(), model.NewLink(s.Bus())))
	require.NoError(t, s.AddLinkTo(y.Output(), sum.Right(), model.NewLink(s.Bus())))
	require.Equal(t, calc.Some(5), sum.Result())

	x.SetValue(10)
	require.Equal(t, calc.Some(13), sum.Result())
}

func TestDiagramService_PopulateSample(t *testing.T) {
	s := newService(t)
	require.NoError(t, s.RegisterDefaults(config.Defaults().Behaviours, nil))
	require.NoError(t, s.PopulateSample())

	require.Len(t, s.Diagram().AllNodes(), 4)
	require.Len(t, s.Diagram().AllGroups(), 1)
	require.Len(t, s.Diagram().AllLinks(), 3)

	var product *calc.Operator
	for _, n := range s.Diagram().AllNodes() {
		if op, ok := n.Extension().(*calc.Operator); ok {
			product = op
		}
	}
	require.NotNil(t, product)
	require.Equal(t, calc.Some(42), product.Result())
	require.NotNil(t, product.Model().ParentGroup())
}
