// Package route defines the shortest-path search the supply router relies on.
//
// The search itself is a collaborator: anything implementing [Finder] can be
// plugged into a router session. [Manhattan] is a small reference finder that
// tries the two L-shaped routes between a pair of shapes and rejects those
// crossing another net's blockages.
package route

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/macroroute/pkg/blockage"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/tech"
)

// Layer indices used by path nodes.
const (
	Horizontal = 0
	Vertical   = 1
)

// ErrNoPath is returned by finders that report "no path" as an error rather
// than a nil path.
var ErrNoPath = stderrors.New("no path")

// Node is one grid node of a found path.
type Node struct {
	Point geom.Point `json:"point"`
	Layer int        `json:"layer"`
}

// Path is an ordered list of nodes from source to target.
type Path []Node

// Points returns the node coordinates.
func (p Path) Points() []geom.Point {
	out := make([]geom.Point, len(p))
	for i, n := range p {
		out[i] = n.Point
	}
	return out
}

// Length returns the Manhattan wire length of the path.
func (p Path) Length() float64 {
	var l float64
	for i := 1; i < len(p); i++ {
		d := p[i].Point.Sub(p[i-1].Point)
		l += abs(d.X) + abs(d.Y)
	}
	return l
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Finder searches a path between two shapes around the given blockages.
// A nil path with a nil error means no path exists.
type Finder interface {
	FindPath(ctx context.Context, source, target geom.Shape, blockages *blockage.Index) (Path, error)
}

// Manhattan is an L-shape finder. Horizontal runs use the horizontal layer and
// vertical runs the vertical one; a run is rejected when its wire rectangle
// overlaps a blockage of a net other than the source's.
type Manhattan struct {
	Layers    [2]string
	HalfWidth float64
}

// NewManhattan returns a finder using the layers and wire width of cfg.
func NewManhattan(cfg tech.Config) *Manhattan {
	return &Manhattan{
		Layers:    [2]string{cfg.HorizontalLayer, cfg.VerticalLayer},
		HalfWidth: cfg.HalfWire,
	}
}

// FindPath implements Finder.
func (m *Manhattan) FindPath(ctx context.Context, source, target geom.Shape, blockages *blockage.Index) (Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, t := source.Center(), target.Center()
	net := source.Name

	var candidates []Path
	switch {
	case geom.Round3(s.Y) == geom.Round3(t.Y):
		candidates = []Path{{{s, Horizontal}, {t, Horizontal}}}
	case geom.Round3(s.X) == geom.Round3(t.X):
		candidates = []Path{{{s, Vertical}, {t, Vertical}}}
	default:
		hc, vc := geom.Pt(t.X, s.Y), geom.Pt(s.X, t.Y)
		candidates = []Path{
			{{s, Horizontal}, {hc, Horizontal}, {hc, Vertical}, {t, Vertical}},
			{{s, Vertical}, {vc, Vertical}, {vc, Horizontal}, {t, Horizontal}},
		}
	}

	for _, p := range candidates {
		if m.clear(p, net, blockages) {
			return p, nil
		}
	}
	return nil, nil
}

func (m *Manhattan) clear(p Path, net string, blockages *blockage.Index) bool {
	if blockages == nil {
		return true
	}
	for i := 1; i < len(p); i++ {
		a, b := p[i-1], p[i]
		if a.Layer != b.Layer {
			continue
		}
		r := geom.Rect{LL: a.Point, UR: b.Point}.Normalize().Expand(m.HalfWidth)
		if blockages.Blocked(r, m.Layers[a.Layer], net) {
			return false
		}
	}
	return true
}
