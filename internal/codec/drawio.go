package codec

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/zjrosen/diagramkit/internal/model"
)

type mxGraphModel struct {
	XMLName xml.Name `xml:"mxGraphModel"`
	Grid    int      `xml:"grid,attr"`
	Arrows  int      `xml:"arrows,attr"`
	Connect int      `xml:"connect,attr"`
	Root    mxRoot   `xml:"root"`
}

type mxRoot struct {
	Cells []mxCell `xml:"mxCell"`
}

type mxCell struct {
	ID       string      `xml:"id,attr"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Value    string      `xml:"value,attr,omitempty"`
	Style    string      `xml:"style,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"`
	Edge     string      `xml:"edge,attr,omitempty"`
	Source   string      `xml:"source,attr,omitempty"`
	Target   string      `xml:"target,attr,omitempty"`
	Visible  string      `xml:"visible,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry,omitempty"`
}

type mxGeometry struct {
	X        float64     `xml:"x,attr,omitempty"`
	Y        float64     `xml:"y,attr,omitempty"`
	Width    float64     `xml:"width,attr,omitempty"`
	Height   float64     `xml:"height,attr,omitempty"`
	Relative string      `xml:"relative,attr,omitempty"`
	As       string      `xml:"as,attr"`
	Points   *mxPointSet `xml:"Array,omitempty"`
	Target   *mxPoint    `xml:"mxPoint,omitempty"`
}

type mxPointSet struct {
	As     string    `xml:"as,attr"`
	Points []mxPoint `xml:"mxPoint"`
}

type mxPoint struct {
	X  float64 `xml:"x,attr"`
	Y  float64 `xml:"y,attr"`
	As string  `xml:"as,attr,omitempty"`
}

// Cell styles
const (
	styleNode  = "rounded=1;whiteSpace=wrap;html=1;"
	styleGroup = "swimlane;startSize=20;html=1;"
	styleEdge  = "edgeStyle=orthogonalEdgeStyle;rounded=0;html=1;"
)

// DrawioExporter writes a diagram as an uncompressed draw.io mxGraph model.
// Layers become top-level cells, nodes and groups become vertices and links
// whose ends sit on containers become edges. Ports are not exported.
type DrawioExporter struct {
	// Grid toggles the editor grid.
	Grid bool
}

func NewDrawioExporter() *DrawioExporter {
	return &DrawioExporter{Grid: true}
}

func (e *DrawioExporter) Format() string { return "drawio" }

// Export writes d to w.
func (e *DrawioExporter) Export(d *model.Diagram, w io.Writer) error {
	m := mxGraphModel{Arrows: 1, Connect: 1}
	if e.Grid {
		m.Grid = 1
	}
	m.Root.Cells = append(m.Root.Cells, mxCell{ID: "0"})

	for _, l := range d.Layers().Items() {
		m.Root.Cells = append(m.Root.Cells, mxCell{ID: l.ID(), Parent: "0", Value: l.Name()})
		for _, n := range l.Nodes().Items() {
			m.Root.Cells = append(m.Root.Cells, vertex(n, l.ID(), model.Point{}, styleNode))
		}
		for _, g := range l.Groups().Items() {
			m.Root.Cells = appendGroup(m.Root.Cells, g, l.ID(), model.Point{})
		}
	}

	for _, link := range d.AllLinks() {
		m.Root.Cells = append(m.Root.Cells, edge(link))
	}

	out, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling XML: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// appendGroup emits g and its content. draw.io stores child geometry
// relative to the parent cell, so origin is subtracted.
func appendGroup(cells []mxCell, g *model.Group, parent string, origin model.Point) []mxCell {
	cells = append(cells, vertex(g, parent, origin, styleGroup))
	for _, n := range g.Children().Items() {
		cells = append(cells, vertex(n, g.ID(), g.Position(), styleNode))
	}
	for _, c := range g.Groups().Items() {
		cells = appendGroup(cells, c, g.ID(), g.Position())
	}
	return cells
}

func vertex(c model.PortContainer, parent string, origin model.Point, style string) mxCell {
	pos := c.Position().Sub(origin)
	size := c.Size()
	cell := mxCell{
		ID:     c.ID(),
		Parent: parent,
		Value:  c.Title(),
		Style:  style,
		Vertex: "1",
		Geometry: &mxGeometry{
			X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height, As: "geometry",
		},
	}
	if !c.Visible() {
		cell.Visible = "0"
	}
	return cell
}

func edge(l *model.Link) mxCell {
	cell := mxCell{
		ID:       l.ID(),
		Parent:   layerOf(l),
		Style:    styleEdge,
		Edge:     "1",
		Source:   l.Source().Parent().ID(),
		Geometry: &mxGeometry{Relative: "1", As: "geometry"},
	}
	if t := l.Target(); t != nil && t.Parent() != nil {
		cell.Target = t.Parent().ID()
	} else {
		p := l.TargetPosition()
		cell.Geometry.Target = &mxPoint{X: p.X, Y: p.Y, As: "targetPoint"}
	}
	if vs := l.Vertices(); len(vs) > 0 {
		set := &mxPointSet{As: "points"}
		for _, v := range vs {
			set.Points = append(set.Points, mxPoint{X: v.X, Y: v.Y})
		}
		cell.Geometry.Points = set
	}
	if !l.Visible() {
		cell.Visible = "0"
	}
	return cell
}

func layerOf(l *model.Link) string {
	if c := l.Source().Parent(); c != nil && c.Layer() != nil {
		return c.Layer().ID()
	}
	return "0"
}
