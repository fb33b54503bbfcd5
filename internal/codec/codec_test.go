package codec

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/diagramkit/internal/calc"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/model"
	"github.com/zjrosen/diagramkit/internal/testutil"
)

// sampleDiagram builds two layers with a nested group, calc nodes, a
// connected link with bend points and a dangling link.
func sampleDiagram(t *testing.T) *model.Diagram {
	t.Helper()
	bus := events.NewAggregator()
	d := model.NewDiagram(bus)
	require.NoError(t, d.SetZoom(1.5))
	d.SetPan(model.Point{X: 10, Y: -4})
	d.SetSize(model.Size{Width: 800, Height: 600})

	x := calc.NewNumber(bus, 4, model.WithTitle("x"), model.WithPosition(model.Point{X: 0, Y: 0}))
	y := calc.NewNumber(bus, 0.5, model.WithTitle("y"), model.WithPosition(model.Point{X: 0, Y: 80}))
	op := calc.NewOperator(bus, calc.Multiply, model.WithTitle("product"), model.WithPosition(model.Point{X: 200, Y: 40}))

	outer := model.NewGroup(bus, model.WithTitle("outer"), model.WithPosition(model.Point{X: 400, Y: 0}))
	inner := model.NewGroup(bus, model.WithTitle("inner"))
	plain := model.NewNode(bus, model.WithTitle("note"), model.WithSize(model.Size{Width: 60, Height: 30}))
	in := model.NewPort(bus, model.AlignLeft, model.WithPosition(model.Point{X: 400, Y: 10}))
	require.True(t, plain.AddPort(in))
	plain.SetVisible(false)

	layer := d.CurrentLayer()
	layer.AddNode(x.Model())
	layer.AddNode(y.Model())
	layer.AddNode(op.Model())
	layer.AddGroup(outer)
	outer.AddGroup(inner)
	inner.AddChild(plain)

	link := func(from, to *model.Port) *model.Link {
		l := model.NewLink(bus)
		require.NoError(t, l.SetSourcePort(from))
		if to != nil {
			l.SetTargetPort(to)
		}
		return l
	}
	link(x.Output(), op.Left())
	link(y.Output(), op.Right())
	bent := link(op.Output(), in)
	bent.SetVertices([]model.Point{{X: 300, Y: 40}, {X: 300, Y: 10}})
	dangling := link(op.Output(), nil)
	dangling.SetTargetPosition(model.Point{X: 250, Y: 200})

	notes := model.NewLayer(bus, model.WithTitle("notes"))
	require.True(t, d.AddLayer(notes))
	d.SetCurrentLayer(notes)
	return d
}

func allCodecs() []Codec {
	return []Codec{NewJSONCodec(), NewYAMLCodec(), NewMsgpackCodec()}
}

func TestCodec_RoundTripIsByteIdentical(t *testing.T) {
	d := sampleDiagram(t)
	for _, c := range allCodecs() {
		t.Run(c.Format(), func(t *testing.T) {
			var first bytes.Buffer
			require.NoError(t, c.Encode(d, &first))

			decoded, err := c.Decode(bytes.NewReader(first.Bytes()), events.NewAggregator())
			require.NoError(t, err)

			var second bytes.Buffer
			require.NoError(t, c.Encode(decoded, &second))
			require.Equal(t, first.Bytes(), second.Bytes())
		})
	}
}

func TestCodec_DecodeRestoresStructure(t *testing.T) {
	d := sampleDiagram(t)
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Encode(d, &buf))

	got, err := NewJSONCodec().Decode(&buf, events.NewAggregator())
	require.NoError(t, err)

	require.Equal(t, d.ID(), got.ID())
	require.Equal(t, 2, got.Layers().Len())
	require.Equal(t, "notes", got.CurrentLayer().Name())
	require.InDelta(t, 1.5, got.Zoom(), 1e-9)
	require.Equal(t, model.Point{X: 10, Y: -4}, got.Pan())
	require.Len(t, got.AllNodes(), 4)
	require.Len(t, got.AllGroups(), 2)
	require.Len(t, got.AllLinks(), 4)

	var connected, dangling int
	for _, l := range got.AllLinks() {
		if l.IsConnected() {
			connected++
			require.True(t, l.Target().Incoming().Contains(l.ID()))
		} else {
			dangling++
			require.Equal(t, model.Point{X: 250, Y: 200}, l.TargetPosition())
		}
		require.True(t, l.Source().Outgoing().Contains(l.ID()))
	}
	require.Equal(t, 3, connected)
	require.Equal(t, 1, dangling)

	note, ok := got.Find(findByTitle(t, d, "note")).(*model.Node)
	require.True(t, ok)
	require.False(t, note.Visible())
	require.Equal(t, "inner", note.ParentGroup().Title())
	require.Equal(t, "outer", note.ParentGroup().ParentGroup().Title())

	product, ok := got.Find(findByTitle(t, d, "product")).(*model.Node)
	require.True(t, ok)
	op, ok := product.Extension().(*calc.Operator)
	require.True(t, ok)
	require.Equal(t, calc.Multiply, op.Operation())
	require.True(t, op.Recalculate())
	require.Equal(t, calc.Some(2), op.Result())
}

func findByTitle(t *testing.T, d *model.Diagram, title string) string {
	t.Helper()
	for _, n := range d.AllNodes() {
		if n.Title() == title {
			return n.ID()
		}
	}
	t.Fatalf("no node titled %q", title)
	return ""
}

func TestDocument_ToDiagramErrors(t *testing.T) {
	base := func() *Document { return FromDiagram(sampleDiagram(t)) }

	tests := []struct {
		name   string
		mutate func(*Document)
		want   error
	}{
		{"version", func(d *Document) { d.Version = 99 }, ErrUnsupportedVersion},
		{"no layers", func(d *Document) { d.Layers = nil }, ErrEmptyDocument},
		{"unknown source", func(d *Document) { d.Links[0].Source = "missing" }, ErrUnknownPort},
		{"unknown target", func(d *Document) { d.Links[0].Target = "missing" }, ErrUnknownPort},
		{"duplicate id", func(d *Document) { d.Layers[1].ID = d.Layers[0].ID }, ErrDuplicateID},
		{"unknown kind", func(d *Document) { d.Layers[0].Nodes[0].Kind = "widget" }, ErrUnknownKind},
		{"bad operation", func(d *Document) { d.Layers[0].Nodes[2].Operation = "%" }, calc.ErrUnknownOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := base()
			tt.mutate(doc)
			_, err := doc.ToDiagram(events.NewAggregator())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDocument_LinksFollowSourcePorts(t *testing.T) {
	doc := FromDiagram(sampleDiagram(t))
	require.Len(t, doc.Links, 4)
	for _, l := range doc.Links {
		require.NotEmpty(t, l.Source)
	}
	require.Empty(t, doc.Links[3].Target)
	require.Len(t, doc.Links[2].Vertices, 2)
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.json", FormatJSON},
		{"b.YAML", FormatYAML},
		{"c.yml", FormatYAML},
		{"dir/d.msgpack", FormatMsgpack},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		require.NoError(t, err, tt.path)
		require.Equal(t, tt.want, got)
	}

	_, err := FormatFromPath("diagram.txt")
	require.ErrorIs(t, err, ErrUnknownFormat)
	_, err = ForFormat("")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDrawioExporter_Export(t *testing.T) {
	d := sampleDiagram(t)
	var buf bytes.Buffer
	require.NoError(t, NewDrawioExporter().Export(d, &buf))
	require.True(t, strings.HasPrefix(buf.String(), xml.Header))

	var m mxGraphModel
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &m))

	var vertices, edges int
	cells := make(map[string]mxCell)
	for _, c := range m.Root.Cells {
		cells[c.ID] = c
		if c.Vertex == "1" {
			vertices++
		}
		if c.Edge == "1" {
			edges++
			require.Contains(t, cells, c.Source)
		}
	}
	require.Equal(t, 6, vertices)
	require.Equal(t, 4, edges)

	noteID := findByTitle(t, d, "note")
	note := cells[noteID]
	require.Equal(t, "0", note.Visible)
	parent := cells[note.Parent]
	require.Equal(t, "inner", parent.Value)
}

func TestDiff(t *testing.T) {
	lines := Diff("a\nb\nc\n", "a\nB\nc\n")
	require.Equal(t, []DiffLine{
		{Op: LineEqual, Text: "a"},
		{Op: LineDelete, Text: "b"},
		{Op: LineInsert, Text: "B"},
		{Op: LineEqual, Text: "c"},
	}, lines)
	require.True(t, Changed(lines))
	require.False(t, Changed(Diff("same\n", "same\n")))
}

func TestDiffDiagrams_TitleChange(t *testing.T) {
	d := sampleDiagram(t)
	var buf bytes.Buffer
	require.NoError(t, NewYAMLCodec().Encode(d, &buf))
	other, err := NewYAMLCodec().Decode(&buf, events.NewAggregator())
	require.NoError(t, err)

	same, err := DiffDiagrams(NewYAMLCodec(), d, other)
	require.NoError(t, err)
	require.False(t, Changed(same))

	other.AllNodes()[0].SetTitle("renamed")
	lines, err := DiffDiagrams(NewYAMLCodec(), d, other)
	require.NoError(t, err)
	var inserted []string
	for _, l := range lines {
		if l.Op == LineInsert {
			inserted = append(inserted, strings.TrimSpace(l.Text))
		}
	}
	require.Equal(t, []string{"title: renamed"}, inserted)
}

func TestCodec_KeepsGroupNesting(t *testing.T) {
	d := testutil.NestedGroups(t)
	for _, c := range allCodecs() {
		t.Run(c.Format(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, c.Encode(d, &buf))

			got, err := c.Decode(&buf, events.NewAggregator())
			require.NoError(t, err)

			outer := testutil.GroupTitled(t, got, "outer")
			inner := testutil.GroupTitled(t, got, "inner")
			require.Same(t, outer, inner.ParentGroup())
			require.Same(t, inner, testutil.NodeTitled(t, got, "child").ParentGroup())

			links := got.AllLinks()
			require.Len(t, links, 1)
			require.Same(t, testutil.PortOf(t, got, "child", model.AlignLeft), links[0].Target())
			require.Equal(t, []model.Point{{X: 200, Y: 30}}, links[0].Vertices())
		})
	}
}

// genDiagram draws a layer of nodes with left and right ports, some of them
// hidden, and links between them.
func genDiagram(rt *rapid.T) *model.Diagram {
	b := testutil.NewBuilder(rt)
	count := rapid.IntRange(1, 6).Draw(rt, "nodes")
	for i := range count {
		opts := []testutil.NodeOption{
			testutil.At(float64(rapid.IntRange(-500, 500).Draw(rt, "x")), float64(rapid.IntRange(-500, 500).Draw(rt, "y"))),
			testutil.Ports(model.AlignLeft, model.AlignRight),
		}
		if rapid.Bool().Draw(rt, "hidden") {
			opts = append(opts, testutil.HiddenNode())
		}
		b.WithNode(fmt.Sprintf("n%d", i), opts...)
	}
	links := rapid.IntRange(0, 5).Draw(rt, "links")
	for range links {
		from := rapid.IntRange(0, count-1).Draw(rt, "from")
		if rapid.Bool().Draw(rt, "dangling") {
			b.WithDanglingLink(fmt.Sprintf("n%d", from), model.AlignRight, 10, 20)
			continue
		}
		to := rapid.IntRange(0, count-1).Draw(rt, "to")
		b.WithLink(fmt.Sprintf("n%d", from), model.AlignRight, fmt.Sprintf("n%d", to), model.AlignLeft)
	}
	d := b.Build()
	require.NoError(rt, d.SetZoom(float64(rapid.IntRange(1, 8).Draw(rt, "zoom"))/2))
	return d
}

func TestCodec_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genDiagram(rt)
		c := rapid.SampledFrom(allCodecs()).Draw(rt, "codec")

		var first bytes.Buffer
		require.NoError(rt, c.Encode(d, &first))
		got, err := c.Decode(bytes.NewReader(first.Bytes()), events.NewAggregator())
		require.NoError(rt, err)

		var second bytes.Buffer
		require.NoError(rt, c.Encode(got, &second))
		require.Equal(rt, first.Bytes(), second.Bytes())

		require.Equal(rt, d.Zoom(), got.Zoom())
		require.Len(rt, got.AllNodes(), len(d.AllNodes()))
		require.Len(rt, got.AllLinks(), len(d.AllLinks()))
		for _, n := range d.AllNodes() {
			restored, ok := got.Find(n.ID()).(*model.Node)
			require.True(rt, ok)
			require.Equal(rt, n.Position(), restored.Position())
			require.Equal(rt, n.Visible(), restored.Visible())
		}
		for _, l := range got.AllLinks() {
			require.Contains(rt, l.Source().Outgoing().Items(), l)
			if l.Target() != nil {
				require.Contains(rt, l.Target().Incoming().Items(), l)
			}
		}
	})
}

func TestCodec_DecodePublishesNothing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Encode(sampleDiagram(t), &buf))

	bus := events.NewAggregator()
	published := 0
	count := func(any) { published++ }
	subs := []*events.Subscription{
		events.SubscribeTo(bus, func(e model.NodeAdded) { count(e) }),
		events.SubscribeTo(bus, func(e model.GroupAdded) { count(e) }),
		events.SubscribeTo(bus, func(e model.PortAdded) { count(e) }),
		events.SubscribeTo(bus, func(e model.LinkAdded) { count(e) }),
		events.SubscribeTo(bus, func(e model.LinkSourceChanged) { count(e) }),
		events.SubscribeTo(bus, func(e model.LinkTargetChanged) { count(e) }),
		events.SubscribeTo(bus, func(e model.LinkVerticesChanged) { count(e) }),
		events.SubscribeTo(bus, func(e model.GroupPaddingChanged) { count(e) }),
	}
	defer func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
	}()

	d, err := NewJSONCodec().Decode(&buf, bus)
	require.NoError(t, err)
	require.Zero(t, published)
	require.Len(t, d.AllLinks(), 4)
}
