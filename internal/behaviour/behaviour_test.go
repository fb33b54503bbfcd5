package behaviour

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/input"
	"github.com/zjrosen/diagramkit/internal/model"
)

// fakeHost is a minimal Host over a real diagram.
type fakeHost struct {
	diagram *model.Diagram
}

func newFakeHost() *fakeHost {
	return &fakeHost{diagram: model.NewDiagram(events.NewAggregator())}
}

func (h *fakeHost) Diagram() *model.Diagram { return h.diagram }
func (h *fakeHost) Bus() *events.Aggregator { return h.diagram.Bus() }

func (h *fakeHost) AddLinkTo(source, target *model.Port, link *model.Link) error {
	if err := link.SetSourcePort(source); err != nil {
		return err
	}
	if target != nil {
		link.SetTargetPort(target)
	}
	return nil
}

func (h *fakeHost) ConnectLink(link *model.Link, target *model.Port) error {
	link.SetTargetPort(target)
	return nil
}

func (h *fakeHost) RemoveNode(n *model.Node) bool {
	if g := n.ParentGroup(); g != nil {
		return g.RemoveChild(n)
	}
	return n.Layer() != nil && n.Layer().RemoveNode(n)
}

func (h *fakeHost) RemoveGroup(g *model.Group) bool {
	if p := g.ParentGroup(); p != nil {
		return p.RemoveGroup(g)
	}
	return g.Layer() != nil && g.Layer().RemoveGroup(g)
}

func (h *fakeHost) RemoveLink(l *model.Link) bool {
	attached := l.IsAttached() && !l.Disposed()
	l.Dispose()
	return attached
}

func (h *fakeHost) addNode(x, y float64) (*model.Node, *model.Port) {
	n := model.NewNode(h.Bus(), model.WithPosition(model.Point{X: x, Y: y}), model.WithSize(model.Size{Width: 10, Height: 10}))
	p := model.NewPort(h.Bus(), model.AlignRight)
	n.AddPort(p)
	h.diagram.CurrentLayer().AddNode(n)
	return n, p
}

func publish[E any](h *fakeHost, e E) { events.Publish(h.Bus(), e) }

// keyCounter counts KeyDown deliveries.
type keyCounterOptions struct{ BaseOptions }

type keyCounter struct {
	Base
	hits int
}

func newKeyCounter(host Host, opts *keyCounterOptions) *keyCounter {
	p := &keyCounter{}
	p.Init(host, opts, func() {
		On(&p.Base, func(input.KeyDown) { p.hits++ })
	})
	return p
}

func TestBase_DisableReleasesAndEnableResubscribesOnce(t *testing.T) {
	host := newFakeHost()
	opts := &keyCounterOptions{BaseOptions: NewBaseOptions(true)}
	p := newKeyCounter(host, opts)

	publish(host, input.KeyDown{Key: "x"})
	require.Equal(t, 1, p.hits)

	opts.SetEnabled(false)
	require.False(t, p.Attached())
	require.Equal(t, 0, events.SubscriberCount[input.KeyDown](host.Bus()))
	publish(host, input.KeyDown{Key: "x"})
	require.Equal(t, 1, p.hits)

	opts.SetEnabled(true)
	opts.SetEnabled(true)
	p.Attach()
	publish(host, input.KeyDown{Key: "x"})
	require.Equal(t, 2, p.hits, "exactly one handler after re-enabling")
	require.Equal(t, 1, p.Subscriptions())
}

func TestBase_StartsDetachedWhenDisabled(t *testing.T) {
	host := newFakeHost()
	p := newKeyCounter(host, &keyCounterOptions{})

	publish(host, input.KeyDown{Key: "x"})
	require.Equal(t, 0, p.hits)
	require.False(t, p.Attached())
}

func TestBase_DisposeStopsFollowingOptions(t *testing.T) {
	host := newFakeHost()
	opts := &keyCounterOptions{BaseOptions: NewBaseOptions(true)}
	p := newKeyCounter(host, opts)

	p.Dispose()
	opts.SetEnabled(false)
	opts.SetEnabled(true)
	publish(host, input.KeyDown{Key: "x"})

	require.Equal(t, 0, p.hits)
	require.Equal(t, 0, opts.EnabledChanged().Len())
}

func TestContainer_RejectsDuplicates(t *testing.T) {
	host := newFakeHost()
	c := NewContainer()

	opts := NewSelectionOptions(true)
	require.NoError(t, c.RegisterOptions(opts))
	require.ErrorIs(t, c.RegisterOptions(NewSelectionOptions(false)), ErrDuplicateOptions)
	require.NoError(t, c.RegisterOptions(NewPanOptions(true)))

	require.NoError(t, c.Register(NewSelection(host, opts)))
	require.ErrorIs(t, c.Register(NewSelection(host, opts)), ErrDuplicateBehaviour)
	require.ErrorIs(t, c.Register(nil), ErrNilBehaviour)
}

func TestContainer_GetOptions(t *testing.T) {
	c := NewContainer()
	zoom := NewZoomOptions(true, 0.5, 2, 1.1)
	require.NoError(t, c.RegisterOptions(zoom))

	got, err := GetOptions[*ZoomOptions](c)
	require.NoError(t, err)
	require.Same(t, zoom, got)

	_, err = GetOptions[*DragOptions](c)
	require.ErrorIs(t, err, ErrOptionsNotFound)
}

func TestContainer_DisposeReleasesEverything(t *testing.T) {
	host := newFakeHost()
	c := NewContainer()
	sel := NewSelectionOptions(true)
	drag := NewDragOptions(true, 0)
	require.NoError(t, c.Register(NewSelection(host, sel)))
	require.NoError(t, c.Register(NewDrag(host, drag)))

	_, ok := Get[*Drag](c)
	require.True(t, ok)
	require.Positive(t, events.SubscriberCount[input.PointerDown](host.Bus()))

	c.Dispose()
	require.Equal(t, 0, events.SubscriberCount[input.PointerDown](host.Bus()))
	require.Equal(t, 0, events.SubscriberCount[input.KeyDown](host.Bus()))
	require.Empty(t, c.Behaviours())
}

func TestContainer_Unregister(t *testing.T) {
	host := newFakeHost()
	c := NewContainer()
	pan := NewPan(host, NewPanOptions(true))
	require.NoError(t, c.Register(pan))

	require.True(t, c.Unregister(pan))
	require.False(t, c.Unregister(pan))
	require.False(t, pan.Attached())
}
