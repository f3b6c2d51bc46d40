// Package planner decides the polyline connecting a source pin to its
// perimeter placeholder.
//
// The decision is closed form: the placeholder's center is compared, at three
// decimals, against the four perimeter offsets. Left and right placeholders are
// reached by a straight horizontal run. Top and bottom placeholders need a via
// stack at the source first, then either a straight vertical run or a jog
// through a fixed horizontal channel.
package planner

import (
	"github.com/matzehuels/macroroute/pkg/edge"
	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/tech"
)

// PointList is an ordered polyline of 2 to 4 points.
type PointList []geom.Point

// Direct reports whether the list is a single straight run.
func (l PointList) Direct() bool { return len(l) == 2 }

// Interior returns the bend points of the list.
func (l PointList) Interior() []geom.Point {
	if len(l) <= 2 {
		return nil
	}
	return l[1 : len(l)-1]
}

// Plan is the planner's decision for one pin.
type Plan struct {
	Points PointList
	Edge   edge.Edge
	// StartVia is set when the source must first be lifted onto the routing
	// layer at its center.
	StartVia *geom.Point
}

// Planner holds the geometry shared by every decision of a session.
type Planner struct {
	Box    geom.BoundingBox
	Config tech.Config
}

// New returns a planner for box.
func New(box geom.BoundingBox, cfg tech.Config) *Planner {
	return &Planner{Box: box, Config: cfg}
}

// Offset returns the perpendicular placeholder coordinate of edge e.
func (p *Planner) Offset(e edge.Edge) float64 {
	return edge.Offset(p.Box, e, p.Config.Clearance())
}

// TopChannel is the y of the jog channel used by top-edge placeholders.
func (p *Planner) TopChannel(up bool) float64 {
	// The parity flag is inverted on top so the two channels do not overlap.
	return nudge(p.Config.StructureHeight+p.Config.TopChannelClearance, !up, p.Config.ChannelNudge)
}

// BottomChannel is the y of the jog channel used by bottom-edge placeholders.
func (p *Planner) BottomChannel(up bool) float64 {
	return nudge(p.Box.LL.Y+p.Config.BottomChannelClearance, up, p.Config.ChannelNudge)
}

func nudge(y float64, up bool, by float64) float64 {
	if up {
		return y + by
	}
	return y - by
}

// Decide returns the polyline from source to target, a placeholder sitting on
// one of the perimeter offsets. up is the data-output parity flag.
func (p *Planner) Decide(source, target geom.Shape, up bool) (Plan, error) {
	sc, tc := source.Center(), target.Center()
	eq := func(a, b float64) bool { return geom.Round3(a) == geom.Round3(b) }

	switch {
	case eq(tc.X, p.Offset(edge.Left)):
		return Plan{Points: PointList{source.RC(), target.LC()}, Edge: edge.Left}, nil

	case eq(tc.X, p.Offset(edge.Right)):
		return Plan{Points: PointList{source.LC(), target.RC()}, Edge: edge.Right}, nil

	case eq(tc.Y, p.Offset(edge.Top)):
		plan := Plan{Edge: edge.Top, StartVia: &sc}
		if eq(tc.X, sc.X) {
			plan.Points = PointList{source.BC(), target.UC()}
			return plan, nil
		}
		y := p.TopChannel(up)
		if p.Config.StructureHeight <= 0 || y <= p.Box.LL.Y || y >= p.Box.UR.Y {
			return Plan{}, errors.New(errors.ErrCodeInvalidConfig,
				"top channel of %s at y=%.3f is outside %s; set structure_height", source.Name, y, p.Box.Rect)
		}
		plan.Points = PointList{source.BC(), geom.Pt(sc.X, y), geom.Pt(tc.X, y), target.UC()}
		return plan, nil

	case eq(tc.Y, p.Offset(edge.Bottom)):
		plan := Plan{Edge: edge.Bottom, StartVia: &sc}
		if eq(tc.X, sc.X) {
			plan.Points = PointList{source.UC(), target.BC()}
			return plan, nil
		}
		y := p.BottomChannel(up)
		plan.Points = PointList{source.UC(), geom.Pt(sc.X, y), geom.Pt(tc.X, y), target.BC()}
		return plan, nil
	}

	return Plan{}, errors.New(errors.ErrCodeInternal,
		"target %s at %s is not on a perimeter offset", target.Name, tc)
}
