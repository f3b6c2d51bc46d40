package supply

import (
	"github.com/matzehuels/macroroute/pkg/blockage"
	"github.com/matzehuels/macroroute/pkg/edge"
	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/layout"
	"github.com/matzehuels/macroroute/pkg/tech"
)

// RingOrder is the order ring sides are built and stored in.
var RingOrder = [4]edge.Edge{edge.Top, edge.Bottom, edge.Right, edge.Left}

// Ring is a four-sided supply ring of one net.
type Ring struct {
	Net string `json:"net"`

	// Sides are stored in RingOrder.
	Sides [4]geom.Shape `json:"sides"`

	// Taps are the placeholder supply pins spread along the sides.
	Taps []geom.Shape `json:"taps"`
	Vias []geom.Point `json:"vias"`
}

// Side returns the ring segment on edge e.
func (r *Ring) Side(e edge.Edge) geom.Shape {
	for i, s := range RingOrder {
		if s == e {
			return r.Sides[i]
		}
	}
	return geom.Shape{}
}

// Segments returns the four sides as a slice.
func (r *Ring) Segments() []geom.Shape {
	return append([]geom.Shape(nil), r.Sides[:]...)
}

// Builder draws supply pins into a layout.
type Builder struct {
	Box       geom.BoundingBox
	Config    tech.Config
	Layout    layout.Layout
	Blockages *blockage.Index // optional
}

// Thickness is the width of one side: RingVias via columns and the spaces
// between them.
func (b *Builder) Thickness() float64 { return b.Config.RingThickness() }

// SideRect returns the rectangle of one side. An inner ring sits a margin of
// twice its thickness inside the box and is shortened by that margin at both
// ends.
func (b *Builder) SideRect(side edge.Edge, inner bool) geom.Rect {
	ll, ur := b.Box.LL, b.Box.UR
	w := b.Thickness()
	var m float64
	if inner {
		m = 2 * w
	}

	var off geom.Point
	switch side {
	case edge.Top:
		off = geom.Pt(ll.X+m, ur.Y-w-m)
	case edge.Right:
		off = geom.Pt(ur.X-w-m, ll.Y+m)
	default: // bottom, left
		off = geom.Pt(ll.X+m, ll.Y+m)
	}

	width, height := b.Box.Width(), w
	if side.Vertical() {
		width, height = w, b.Box.Height()
	}
	if inner {
		if side.Vertical() {
			height -= 2 * m
		} else {
			width -= 2 * m
		}
	}
	return geom.Rect{LL: off, UR: geom.Pt(off.X+width, off.Y+height)}
}

// Taps returns RingTaps placeholder shapes spread evenly along a side,
// skipping one thickness at each end.
func (b *Builder) Taps(net string, side edge.Edge, r geom.Rect) []geom.Shape {
	n := b.Config.RingTaps
	tw, w := b.Config.TrackWire, b.Thickness()
	layer := b.Config.Layer(side.Vertical())

	taps := make([]geom.Shape, 0, n)
	if side.Vertical() {
		space := (r.Height() - 2*w - float64(n)*tw) / float64(n+1)
		for i := 1; i <= n; i++ {
			y := r.LL.Y + w + float64(i)*(space+tw)
			taps = append(taps, geom.NewShape(net, geom.R(r.LL.X, y-tw, r.LL.X+w, y), layer))
		}
		return taps
	}
	space := (r.Width() - 2*w - float64(n)*tw) / float64(n+1)
	for i := 1; i <= n; i++ {
		x := r.LL.X + w + float64(i)*(space+tw)
		taps = append(taps, geom.NewShape(net, geom.R(x-tw, r.LL.Y, x, r.LL.Y+w), layer))
	}
	return taps
}

// SidePin adds one side of the ring as a layout pin named net and returns it
// with its taps. Vertical sides use the vertical layer.
func (b *Builder) SidePin(net string, side edge.Edge, inner bool) (geom.Shape, []geom.Shape, error) {
	r := b.SideRect(side, inner)
	if r.Width() <= 0 || r.Height() <= 0 {
		return geom.Shape{}, nil, errors.New(errors.ErrCodeInvalidInput,
			"%s ring side of %s does not fit in %s", side, net, b.Box.Rect)
	}
	pin := geom.NewShape(net, r, b.Config.Layer(side.Vertical()))
	if err := b.Layout.AddPin(pin); err != nil {
		return geom.Shape{}, nil, err
	}
	return pin, b.Taps(net, side, r), nil
}

// RingPin adds a full ring for net: four side pins, corner vias and taps.
// The sides are also recorded as blockages grown by the track spacing.
func (b *Builder) RingPin(net string, inner bool) (Ring, error) {
	ring := Ring{Net: net}
	for i, side := range RingOrder {
		pin, taps, err := b.SidePin(net, side, inner)
		if err != nil {
			return ring, err
		}
		ring.Sides[i] = pin
		ring.Taps = append(ring.Taps, taps...)
	}

	n := b.Config.RingVias
	shift := b.Config.TrackWire + b.Config.TrackSpace
	hw := b.Config.TrackWire / 2
	for i, side := range ring.Sides {
		ll, ur := side.Rect.LL, side.Rect.UR
		var tl geom.Point
		if i%2 == 1 {
			tl = geom.Pt(ur.X-float64(n-1)*shift-hw, ll.Y+float64(n-1)*shift+hw)
		} else {
			tl = geom.Pt(ll.X+hw, ur.Y-hw)
		}
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				at := geom.Pt(tl.X+float64(j)*shift, tl.Y-float64(k)*shift)
				if err := b.Layout.AddVia(b.Config.HorizontalLayer, b.Config.VerticalLayer, at); err != nil {
					return ring, err
				}
				ring.Vias = append(ring.Vias, at)
			}
		}
	}

	if b.Blockages != nil {
		for _, side := range ring.Sides {
			b.Blockages.AddInflated(net, side, b.Config.TrackSpace)
		}
	}
	return ring, nil
}
