// Package blockage indexes obstruction shapes for the path search.
//
// Shapes are kept in an R-tree so that a candidate wire can be checked
// against only the obstructions near it. Every entry remembers the net it
// belongs to; a wire never blocks its own net.
package blockage

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/matzehuels/macroroute/pkg/geom"
)

// minExtent keeps degenerate rectangles (via points, zero-width segments)
// indexable.
const minExtent = 1e-9

// Blockage is one indexed obstruction.
type Blockage struct {
	Net   string
	Shape geom.Shape
}

// Bounds implements rtreego.Spatial.
func (b *Blockage) Bounds() rtreego.Rect {
	return toRtree(b.Shape.Rect)
}

func toRtree(r geom.Rect) rtreego.Rect {
	r = r.Normalize()
	rect, _ := rtreego.NewRect(
		rtreego.Point{r.LL.X, r.LL.Y},
		[]float64{math.Max(r.Width(), minExtent), math.Max(r.Height(), minExtent)},
	)
	return rect
}

// Index is an R-tree of blockages. It is not safe for concurrent use.
type Index struct {
	tree  *rtreego.Rtree
	items []*Blockage
}

// New returns an empty index.
func New() *Index {
	return &Index{tree: rtreego.NewTree(2, 25, 50)}
}

// Add indexes shape as an obstruction owned by net.
func (ix *Index) Add(net string, shape geom.Shape) {
	b := &Blockage{Net: net, Shape: shape}
	ix.tree.Insert(b)
	ix.items = append(ix.items, b)
}

// AddInflated indexes shape grown by d on every side.
func (ix *Index) AddInflated(net string, shape geom.Shape, d float64) {
	ix.Add(net, Inflate(shape, d))
}

// Inflate returns shape grown by d on every side.
func Inflate(shape geom.Shape, d float64) geom.Shape {
	shape.Rect = shape.Rect.Expand(d)
	return shape
}

// Intersecting returns the blockages on layer whose rectangles overlap r.
// An empty layer matches every layer.
func (ix *Index) Intersecting(r geom.Rect, layer string) []Blockage {
	var out []Blockage
	for _, sp := range ix.tree.SearchIntersect(toRtree(r)) {
		b := sp.(*Blockage)
		if layer != "" && b.Shape.Layer != layer {
			continue
		}
		if !b.Shape.Rect.Intersects(r.Normalize()) {
			continue
		}
		out = append(out, *b)
	}
	return out
}

// Blocked reports whether r on layer overlaps a blockage of a net other than
// net.
func (ix *Index) Blocked(r geom.Rect, layer, net string) bool {
	for _, b := range ix.Intersecting(r, layer) {
		if b.Net != net {
			return true
		}
	}
	return false
}

// Len returns the number of indexed blockages.
func (ix *Index) Len() int { return len(ix.items) }

// All returns every blockage in insertion order.
func (ix *Index) All() []Blockage {
	out := make([]Blockage, len(ix.items))
	for i, b := range ix.items {
		out[i] = *b
	}
	return out
}
