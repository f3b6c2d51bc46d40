// Package edge classifies points against the macro perimeter.
package edge

import (
	"fmt"
	"math"

	"github.com/matzehuels/macroroute/pkg/geom"
)

// Edge is one side of the macro bounding box.
type Edge int

const (
	Left Edge = iota
	Bottom
	Right
	Top
)

// All lists the edges in classifier scan order.
var All = []Edge{Left, Bottom, Right, Top}

// Vertical reports whether the edge runs vertically (left and right).
func (e Edge) Vertical() bool { return e == Left || e == Right }

// Along returns the coordinate of p along the edge's free axis:
// y for vertical edges, x for horizontal ones.
func (e Edge) Along(p geom.Point) float64 {
	if e.Vertical() {
		return p.Y
	}
	return p.X
}

// Outward reports whether the edge lies on the upper-right side of the box.
func (e Edge) Outward() bool { return e == Right || e == Top }

func (e Edge) String() string {
	switch e {
	case Left:
		return "left"
	case Bottom:
		return "bottom"
	case Right:
		return "right"
	case Top:
		return "top"
	}
	return fmt.Sprintf("edge(%d)", int(e))
}

// Parse converts a side name into an Edge.
func Parse(s string) (Edge, error) {
	for _, e := range All {
		if e.String() == s {
			return e, nil
		}
	}
	return 0, fmt.Errorf("invalid edge: %q (must be one of: left, bottom, right, top)", s)
}

// Classifier finds the perimeter edge nearest to a point.
type Classifier struct {
	Box geom.BoundingBox
}

// Closest returns the edge nearest to p and whether it runs vertically.
// Ties go to the first edge in the order left, bottom, right, top.
func (c Classifier) Closest(p geom.Point) (Edge, bool) {
	ll, ur := c.Box.LL, c.Box.UR
	dists := [4]float64{
		math.Abs(p.X - ll.X),
		math.Abs(p.Y - ll.Y),
		math.Abs(p.X - ur.X),
		math.Abs(p.Y - ur.Y),
	}
	best := Left
	for _, e := range All[1:] {
		if dists[e] < dists[best] {
			best = e
		}
	}
	return best, best.Vertical()
}

// Distance returns how far p is from edge e of the box.
func (c Classifier) Distance(p geom.Point, e Edge) float64 {
	switch e {
	case Left:
		return math.Abs(p.X - c.Box.LL.X)
	case Bottom:
		return math.Abs(p.Y - c.Box.LL.Y)
	case Right:
		return math.Abs(p.X - c.Box.UR.X)
	default:
		return math.Abs(p.Y - c.Box.UR.Y)
	}
}

// Offset returns the perpendicular coordinate of a line running parallel to
// edge e at distance clearance outside the box (inside when negative):
// x for left/right, y for bottom/top.
func Offset(box geom.BoundingBox, e Edge, clearance float64) float64 {
	switch e {
	case Left:
		return box.LL.X - clearance
	case Bottom:
		return box.LL.Y - clearance
	case Right:
		return box.UR.X + clearance
	default:
		return box.UR.Y + clearance
	}
}
