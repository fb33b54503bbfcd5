package playground

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/diagramkit/internal/log"
	"github.com/zjrosen/diagramkit/internal/model"
	"github.com/zjrosen/diagramkit/internal/registry"
)

type cellStyle uint8

const (
	stylePlain cellStyle = iota
	styleGroup
	styleNode
	styleSelected
	styleLink
	stylePort
	styleCursor
)

var cellStyles = map[cellStyle]lipgloss.Style{
	stylePlain:    lipgloss.NewStyle(),
	styleGroup:    lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")),
	styleNode:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
	styleSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("#F2C94C")).Bold(true),
	styleLink:     lipgloss.NewStyle().Foreground(lipgloss.Color("#4FB3BF")),
	stylePort:     lipgloss.NewStyle().Foreground(lipgloss.Color("#EB5757")),
	styleCursor:   lipgloss.NewStyle().Reverse(true),
}

// cell is one terminal column. r == 0 marks the second half of a wide rune.
type cell struct {
	r     rune
	style cellStyle
}

// canvas is a fixed-size character grid drawn back to front.
type canvas struct {
	width, height int
	cells         [][]cell
}

func newCanvas(width, height int) *canvas {
	width, height = max(width, 0), max(height, 0)
	cells := make([][]cell, height)
	for y := range cells {
		row := make([]cell, width)
		for x := range row {
			row[x] = cell{r: ' '}
		}
		cells[y] = row
	}
	return &canvas{width: width, height: height, cells: cells}
}

func (c *canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

func (c *canvas) set(x, y int, r rune, s cellStyle) {
	if !c.inside(x, y) {
		return
	}
	c.cells[y][x] = cell{r: r, style: s}
	if runewidth.RuneWidth(r) == 2 && c.inside(x+1, y) {
		c.cells[y][x+1] = cell{style: s}
	}
}

func (c *canvas) at(x, y int) cell {
	if !c.inside(x, y) {
		return cell{}
	}
	return c.cells[y][x]
}

// blit copies a rendered block onto the grid. Styling in the block is
// dropped; the whole block takes style s.
func (c *canvas) blit(x, y int, block string, s cellStyle) {
	for dy, line := range strings.Split(ansi.Strip(block), "\n") {
		col := x
		for _, r := range line {
			c.set(col, y+dy, r, s)
			col += max(runewidth.RuneWidth(r), 1)
		}
	}
}

// line draws a straight segment between two cells.
func (c *canvas) line(x0, y0, x1, y1 int, s cellStyle) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	var glyph rune
	switch {
	case dy == 0:
		glyph = '─'
	case dx == 0:
		glyph = '│'
	case sx == sy:
		glyph = '╲'
	default:
		glyph = '╱'
	}
	e := dx + dy
	for {
		c.set(x0, y0, glyph, s)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		current := stylePlain
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if current == stylePlain {
				b.WriteString(run.String())
			} else {
				b.WriteString(cellStyles[current].Render(run.String()))
			}
			run.Reset()
		}
		for _, cl := range row {
			if cl.r == 0 {
				continue
			}
			if cl.style != current {
				flush()
				current = cl.style
			}
			run.WriteRune(cl.r)
		}
		flush()
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// projection maps between terminal cells and the diagram's client space. One
// cell covers cellW x cellH client units.
type projection struct {
	diagram      *model.Diagram
	cellW, cellH float64
}

func (v projection) toCell(p model.Point) (int, int) {
	c := v.diagram.ToClient(p)
	return int(math.Floor(c.X / v.cellW)), int(math.Floor(c.Y / v.cellH))
}

// cellRect returns the cell area a model rectangle covers, at least 1x1.
func (v projection) cellRect(r model.Rect) (x, y, w, h int) {
	x, y = v.toCell(model.Point{X: r.Left, Y: r.Top})
	x1, y1 := v.toCell(model.Point{X: r.Right, Y: r.Bottom})
	return x, y, max(x1-x, 1), max(y1-y, 1)
}

// clientAt returns the client point at the centre of a cell.
func (v projection) clientAt(col, row int) model.Point {
	return model.Point{X: (float64(col) + 0.5) * v.cellW, Y: (float64(row) + 0.5) * v.cellH}
}

// cellTolerance is half a cell expressed in model units.
func (v projection) cellTolerance() model.Size {
	z := v.diagram.Zoom()
	return model.Size{Width: v.cellW / 2 / z, Height: v.cellH / 2 / z}
}

// renderDiagram draws groups, then links, then nodes and ports on top.
func renderDiagram(vp projection, components registry.Provider, width, height int) *canvas {
	c := newCanvas(width, height)
	d := vp.diagram

	for _, g := range d.AllGroups() {
		if g.Visible() {
			drawContainer(c, vp, components, g, styleGroup)
		}
	}
	for _, l := range d.AllLinks() {
		if !l.Visible() || !l.IsAttached() {
			continue
		}
		from, to := l.Endpoints()
		points := append([]model.Point{from}, l.Vertices()...)
		points = append(points, to)
		s := styleLink
		if l.Selected() {
			s = styleSelected
		}
		for i := 1; i < len(points); i++ {
			x0, y0 := vp.toCell(points[i-1])
			x1, y1 := vp.toCell(points[i])
			c.line(x0, y0, x1, y1, s)
		}
	}
	for _, n := range d.AllNodes() {
		if n.Visible() {
			drawContainer(c, vp, components, n, styleNode)
		}
	}
	for _, p := range d.AllPorts() {
		if !p.Visible() {
			continue
		}
		s := stylePort
		if p.Selected() {
			s = styleSelected
		}
		x, y := vp.toCell(p.Anchor())
		c.set(x, y, '●', s)
	}
	return c
}

func drawContainer(c *canvas, vp projection, components registry.Provider, e model.PortContainer, s cellStyle) {
	x, y, w, h := vp.cellRect(e.Bounds())
	if e.Selected() {
		s = styleSelected
	}
	var block string
	comp, err := components.Instantiate(e)
	if err != nil {
		log.Debug(log.CatUI, "no component, drawing title", "id", e.ID(), "error", err.Error())
		block = box(lipgloss.NormalBorder(), w, h, e.Title())
	} else {
		block = comp.Render(w, h)
	}
	c.blit(x, y, block, s)
}
