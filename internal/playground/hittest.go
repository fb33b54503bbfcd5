package playground

import (
	"math"

	"github.com/zjrosen/diagramkit/internal/model"
)

// hitTest returns the entity under a model point: a port within tol of its
// anchor first, then the topmost node, then the innermost group. Nil means
// the empty canvas.
func hitTest(d *model.Diagram, p model.Point, tol model.Size) model.Entity {
	ports := d.AllPorts()
	for i := len(ports) - 1; i >= 0; i-- {
		port := ports[i]
		if !port.Visible() {
			continue
		}
		a := port.Anchor()
		if math.Abs(p.X-a.X) <= tol.Width && math.Abs(p.Y-a.Y) <= tol.Height {
			return port
		}
	}
	nodes := d.AllNodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if n := nodes[i]; n.Visible() && n.Bounds().Contains(p) {
			return n
		}
	}
	groups := d.AllGroups()
	for i := len(groups) - 1; i >= 0; i-- {
		if g := groups[i]; g.Visible() && g.Bounds().Contains(p) {
			return g
		}
	}
	return nil
}
