// Package wire lowers polylines and found paths into layout geometry.
//
// Horizontal runs are drawn on the horizontal layer and vertical runs on the
// vertical layer. Every bend between the two gets a via stack. Nothing is
// rolled back: segments written before a layout error stay in the layout.
package wire

import (
	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/layout"
	"github.com/matzehuels/macroroute/pkg/planner"
	"github.com/matzehuels/macroroute/pkg/route"
	"github.com/matzehuels/macroroute/pkg/tech"
)

// Lowerer writes wires into a layout.
type Lowerer struct {
	Layout layout.Layout
	Config tech.Config
}

// New returns a lowerer writing into l.
func New(l layout.Layout, cfg tech.Config) *Lowerer {
	return &Lowerer{Layout: l, Config: cfg}
}

// SegmentLayer picks the layer of the run a→b: horizontal when the endpoints
// share y at three decimals, vertical otherwise.
func (w *Lowerer) SegmentLayer(a, b geom.Point) string {
	return w.Config.Layer(geom.Round3(a.Y) != geom.Round3(b.Y))
}

// AddWire draws points as consecutive runs with a via stack at every interior
// point.
func (w *Lowerer) AddWire(points planner.PointList) error {
	for i := 1; i < len(points); i++ {
		if i > 1 {
			if err := w.addBend(points[i-1]); err != nil {
				return err
			}
		}
		a, b := points[i-1], points[i]
		if err := w.Layout.AddPath(w.SegmentLayer(a, b), []geom.Point{a, b}); err != nil {
			return err
		}
	}
	return nil
}

func (w *Lowerer) addBend(at geom.Point) error {
	return w.Layout.AddViaStack(w.Config.HorizontalLayer, w.Config.VerticalLayer, at)
}

// AddStartVia lifts a source pin onto the routing layer at its center.
func (w *Lowerer) AddStartVia(at geom.Point) error {
	return w.addBend(at)
}

// AddPlan lowers a planner decision: the start via first, if any, then the
// wire.
func (w *Lowerer) AddPlan(plan planner.Plan) error {
	if plan.StartVia != nil {
		if err := w.AddStartVia(*plan.StartVia); err != nil {
			return err
		}
	}
	return w.AddWire(plan.Points)
}

// AddPath lowers a found path. Consecutive nodes on one layer become a run;
// a layer change becomes a via stack. The returned shapes cover the drawn
// runs, widened to the wire width, named after net.
func (w *Lowerer) AddPath(net string, p route.Path) ([]geom.Shape, error) {
	layers := [2]string{w.Config.HorizontalLayer, w.Config.VerticalLayer}
	for _, n := range p {
		if n.Layer != route.Horizontal && n.Layer != route.Vertical {
			return nil, errors.New(errors.ErrCodeInternal, "path node layer %d out of range", n.Layer)
		}
	}
	var shapes []geom.Shape
	for i := 1; i < len(p); i++ {
		a, b := p[i-1], p[i]
		if a.Layer != b.Layer {
			if err := w.Layout.AddViaStack(layers[a.Layer], layers[b.Layer], b.Point); err != nil {
				return shapes, err
			}
			continue
		}
		if a.Point == b.Point {
			continue
		}
		layer := layers[a.Layer]
		if err := w.Layout.AddPath(layer, []geom.Point{a.Point, b.Point}); err != nil {
			return shapes, err
		}
		r := geom.Rect{LL: a.Point, UR: b.Point}.Normalize().Expand(w.Config.HalfWire)
		shapes = append(shapes, geom.NewShape(net, r, layer))
	}
	return shapes, nil
}
