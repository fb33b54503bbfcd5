package behaviour

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/diagramkit/internal/input"
	"github.com/zjrosen/diagramkit/internal/model"
)

func TestSelection_PointerDown(t *testing.T) {
	host := newFakeHost()
	NewSelection(host, NewSelectionOptions(true))
	a, _ := host.addNode(0, 0)
	b, _ := host.addNode(50, 0)

	publish(host, input.PointerDown{Target: a})
	require.True(t, a.Selected())

	publish(host, input.PointerDown{Target: b})
	require.False(t, a.Selected())
	require.True(t, b.Selected())

	publish(host, input.PointerDown{Target: a, Modifiers: input.Modifiers{Ctrl: true}})
	require.True(t, a.Selected())
	require.True(t, b.Selected())

	publish(host, input.PointerDown{Target: nil})
	require.Empty(t, host.Diagram().Selected())
}

func TestSelection_Keys(t *testing.T) {
	host := newFakeHost()
	NewSelection(host, NewSelectionOptions(true))
	a, p := host.addNode(0, 0)

	publish(host, input.KeyDown{Key: "a", Modifiers: input.Modifiers{Ctrl: true}})
	require.True(t, a.Selected())
	require.True(t, p.Selected())

	publish(host, input.KeyDown{Key: "esc"})
	require.Empty(t, host.Diagram().Selected())
}

func TestDrag_MovesSelectionWithGrid(t *testing.T) {
	host := newFakeHost()
	NewSelection(host, NewSelectionOptions(true))
	drag := NewDrag(host, NewDragOptions(true, 10))
	a, _ := host.addNode(0, 0)
	b, _ := host.addNode(100, 0)
	a.SetSelected(true)
	b.SetSelected(true)

	publish(host, input.PointerDown{Target: a, Client: model.Point{X: 5, Y: 5}})
	require.True(t, drag.Dragging())
	publish(host, input.PointerMove{Client: model.Point{X: 27, Y: 18}})
	publish(host, input.PointerUp{Client: model.Point{X: 27, Y: 18}})
	require.False(t, drag.Dragging())

	require.Equal(t, model.Point{X: 20, Y: 10}, a.Position())
	require.Equal(t, model.Point{X: 120, Y: 10}, b.Position())
}

func TestDrag_DividesByZoom(t *testing.T) {
	host := newFakeHost()
	NewDrag(host, NewDragOptions(true, 0))
	a, _ := host.addNode(0, 0)
	require.NoError(t, host.Diagram().SetZoom(2))

	publish(host, input.PointerDown{Target: a})
	publish(host, input.PointerMove{Client: model.Point{X: 40, Y: 20}})

	require.Equal(t, model.Point{X: 20, Y: 10}, a.Position())
}

func TestPan_OnlyFromCanvas(t *testing.T) {
	host := newFakeHost()
	NewPan(host, NewPanOptions(true))
	a, _ := host.addNode(0, 0)

	publish(host, input.PointerDown{Target: a})
	publish(host, input.PointerMove{Client: model.Point{X: 10, Y: 10}})
	require.Equal(t, model.Point{}, host.Diagram().Pan())

	publish(host, input.PointerUp{})
	publish(host, input.PointerDown{Client: model.Point{X: 1, Y: 1}})
	publish(host, input.PointerMove{Client: model.Point{X: 11, Y: -4}})
	require.Equal(t, model.Point{X: 10, Y: -5}, host.Diagram().Pan())
}

func TestZoom_KeepsPointerFixedAndClamps(t *testing.T) {
	host := newFakeHost()
	NewZoom(host, NewZoomOptions(true, 0.5, 2, 2))
	d := host.Diagram()
	pointer := model.Point{X: 40, Y: 30}
	before := d.ToModel(pointer)

	publish(host, input.Wheel{Client: pointer, DeltaY: -1})
	require.Equal(t, 2.0, d.Zoom())
	require.Equal(t, before, d.ToModel(pointer))

	publish(host, input.Wheel{Client: pointer, DeltaY: -1})
	require.Equal(t, 2.0, d.Zoom(), "clamped at max")

	publish(host, input.Wheel{Client: pointer, DeltaY: 1})
	publish(host, input.Wheel{Client: pointer, DeltaY: 1})
	publish(host, input.Wheel{Client: pointer, DeltaY: 1})
	require.Equal(t, 0.5, d.Zoom(), "clamped at min")
}

func TestDelete_RemovesSelection(t *testing.T) {
	host := newFakeHost()
	NewDelete(host, NewDeleteOptions(true, "delete", "backspace"))
	a, pa := host.addNode(0, 0)
	b, pb := host.addNode(50, 0)
	l := model.NewLink(host.Bus())
	require.NoError(t, host.AddLinkTo(pa, pb, l))

	a.SetSelected(true)
	publish(host, input.KeyDown{Key: "x"})
	require.False(t, a.Disposed())

	publish(host, input.KeyDown{Key: "backspace"})
	require.True(t, a.Disposed())
	require.True(t, l.Disposed())
	require.False(t, b.Disposed())
	require.Equal(t, 0, pb.Incoming().Len())
	require.Equal(t, []*model.Node{b}, host.Diagram().AllNodes())
}

func TestDrawLink_ConnectsOnPort(t *testing.T) {
	host := newFakeHost()
	dl := NewDrawLink(host, NewDrawLinkOptions(true))
	_, pa := host.addNode(0, 0)
	_, pb := host.addNode(50, 0)

	publish(host, input.PointerDown{Target: pa, Client: model.Point{X: 10, Y: 5}})
	link := dl.Ongoing()
	require.NotNil(t, link)
	require.Equal(t, 1, pa.Outgoing().Len())

	publish(host, input.PointerMove{Client: model.Point{X: 30, Y: 7}})
	require.Equal(t, model.Point{X: 30, Y: 7}, link.TargetPosition())

	publish(host, input.PointerUp{Target: pb})
	require.Nil(t, dl.Ongoing())
	require.True(t, link.IsConnected())
	require.Equal(t, 1, pb.Incoming().Len())
}

func TestDrawLink_DropsOnCanvas(t *testing.T) {
	host := newFakeHost()
	dl := NewDrawLink(host, NewDrawLinkOptions(true))
	_, pa := host.addNode(0, 0)

	publish(host, input.PointerDown{Target: pa})
	link := dl.Ongoing()
	publish(host, input.PointerUp{})

	require.True(t, link.Disposed())
	require.Equal(t, 0, pa.Outgoing().Len())
}

func TestGroupAutoSize_FitsOnChildMove(t *testing.T) {
	host := newFakeHost()
	NewGroupAutoSize(host, NewGroupAutoSizeOptions(true))
	bus := host.Bus()

	outer := model.NewGroup(bus)
	inner := model.NewGroup(bus)
	outer.SetPadding(5)
	inner.SetPadding(5)
	host.Diagram().CurrentLayer().AddGroup(outer)
	outer.AddGroup(inner)

	n := model.NewNode(bus, model.WithPosition(model.Point{X: 100, Y: 100}), model.WithSize(model.Size{Width: 10, Height: 10}))
	inner.AddChild(n)
	require.Equal(t, model.Point{X: 95, Y: 95}, inner.Position())
	require.Equal(t, model.Point{X: 90, Y: 90}, outer.Position())

	n.SetPosition(model.Point{X: 200, Y: 100})
	require.Equal(t, model.Size{Width: 20, Height: 20}, inner.Size())
	require.Equal(t, model.Point{X: 195, Y: 95}, inner.Position())
	require.Equal(t, model.Point{X: 190, Y: 90}, outer.Position())
	require.Equal(t, model.Size{Width: 30, Height: 30}, outer.Size())
}

func TestDrag_DisableMidGestureForgetsIt(t *testing.T) {
	host := newFakeHost()
	opts := NewDragOptions(true, 0)
	drag := NewDrag(host, opts)
	a, _ := host.addNode(0, 0)

	publish(host, input.PointerDown{Target: a})
	require.True(t, drag.Dragging())

	opts.SetEnabled(false)
	require.False(t, drag.Dragging())

	opts.SetEnabled(true)
	publish(host, input.PointerMove{Client: model.Point{X: 40, Y: 40}})
	require.Equal(t, model.Point{}, a.Position())
}

func TestPan_DisableMidGestureForgetsIt(t *testing.T) {
	host := newFakeHost()
	opts := NewPanOptions(true)
	NewPan(host, opts)

	publish(host, input.PointerDown{Client: model.Point{X: 1, Y: 1}})
	opts.SetEnabled(false)
	opts.SetEnabled(true)
	publish(host, input.PointerMove{Client: model.Point{X: 30, Y: 30}})

	require.Equal(t, model.Point{}, host.Diagram().Pan())
}

func TestDrawLink_DisableMidGestureRemovesLink(t *testing.T) {
	host := newFakeHost()
	opts := NewDrawLinkOptions(true)
	dl := NewDrawLink(host, opts)
	_, pa := host.addNode(0, 0)

	publish(host, input.PointerDown{Target: pa})
	link := dl.Ongoing()
	require.NotNil(t, link)

	opts.SetEnabled(false)
	require.Nil(t, dl.Ongoing())
	require.True(t, link.Disposed())
	require.Equal(t, 0, pa.Outgoing().Len())

	opts.SetEnabled(true)
	publish(host, input.PointerUp{})
	require.Empty(t, host.Diagram().AllLinks())
}
