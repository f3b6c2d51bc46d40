package supply

import (
	"github.com/matzehuels/macroroute/pkg/edge"
	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/layout"
	"github.com/matzehuels/macroroute/pkg/placement"
	"github.com/matzehuels/macroroute/pkg/planner"
	"github.com/matzehuels/macroroute/pkg/tech"
	"github.com/matzehuels/macroroute/pkg/wire"
)

// Exit is the wire drawn for one moat pin.
type Exit struct {
	Pin          string            `json:"pin"`
	Edge         edge.Edge         `json:"edge"`
	Points       planner.PointList `json:"points"`
	Displacement float64           `json:"displacement"`
}

// Jogged reports whether the exit bends along the edge first.
func (e Exit) Jogged() bool { return len(e.Points) == 3 }

// Moat connects guard-ring supply pins to the ring.
type Moat struct {
	Box    geom.BoundingBox
	Config tech.Config
	Layout layout.Layout
}

// Resolve draws the exit of pin to the ring segment on its nearest edge. The
// exit keeps one track width from every coordinate already occupied on that
// edge in st, probing alternately on both sides of the pin. The chosen exit
// coordinate is reserved in st.
func (m *Moat) Resolve(pin geom.Shape, ring *Ring, st *placement.State) (Exit, error) {
	c := pin.Center()
	e, _ := edge.Classifier{Box: m.Box}.Closest(c)
	tw := m.Config.TrackWidth()
	along := e.Along(c)

	free := func(d float64) bool { return !st.Conflicts(e, along+d, tw) }
	d, _, err := placement.Probe(placement.Alternate, m.Config.ProbeStep, m.Config.MaxProbeSteps, free)
	if err != nil {
		return Exit{}, errors.Wrap(errors.ErrCodePlacementInfeasible, err,
			"no free exit for moat pin %s on %s edge", pin.Name, e)
	}

	seg := ring.Side(e)
	sc := seg.Center()
	var pts planner.PointList
	if e.Vertical() {
		if d == 0 {
			pts = planner.PointList{c, geom.Pt(sc.X, c.Y)}
		} else {
			y := c.Y + d
			pts = planner.PointList{c, geom.Pt(c.X, y), geom.Pt(sc.X, y)}
		}
	} else {
		if d == 0 {
			pts = planner.PointList{c, geom.Pt(c.X, sc.Y)}
		} else {
			x := c.X + d
			pts = planner.PointList{c, geom.Pt(x, c.Y), geom.Pt(x, sc.Y)}
		}
	}

	if err := m.draw(pin, seg, pts); err != nil {
		return Exit{}, err
	}
	st.Reserve(e, along+d)
	return Exit{Pin: pin.Name, Edge: e, Points: pts, Displacement: d}, nil
}

// draw lowers pts with via stacks from the pin's layer onto the first run and
// from the last run onto the ring segment's layer.
func (m *Moat) draw(pin, seg geom.Shape, pts planner.PointList) error {
	w := wire.New(m.Layout, m.Config)
	first := w.SegmentLayer(pts[0], pts[1])
	last := w.SegmentLayer(pts[len(pts)-2], pts[len(pts)-1])

	if pin.Layer != "" && pin.Layer != first {
		if err := m.Layout.AddViaStack(pin.Layer, first, pts[0]); err != nil {
			return err
		}
	}
	if err := w.AddWire(pts); err != nil {
		return err
	}
	if seg.Layer != last {
		return m.Layout.AddViaStack(last, seg.Layer, pts[len(pts)-1])
	}
	return nil
}
