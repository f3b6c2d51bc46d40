package geom

import (
	"fmt"
	"math"

	"github.com/matzehuels/macroroute/pkg/errors"
)

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x" bson:"x" toml:"x"`
	Y float64 `json:"y" bson:"y" toml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Distance returns the Euclidean distance to q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Equal3 reports whether p and q coincide after rounding to three decimals.
func (p Point) Equal3(q Point) bool {
	return Round3(p.X) == Round3(q.X) && Round3(p.Y) == Round3(q.Y)
}

func (p Point) String() string { return fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y) }

// Round3 rounds v to three decimals. Coordinate equality tests throughout the
// router go through Round3 to tolerate floating point noise.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Rect is an axis-aligned rectangle given by its lower-left and upper-right corners.
type Rect struct {
	LL Point `json:"ll" bson:"ll" toml:"ll"`
	UR Point `json:"ur" bson:"ur" toml:"ur"`
}

// R builds a Rect from corner coordinates.
func R(llx, lly, urx, ury float64) Rect {
	return Rect{LL: Pt(llx, lly), UR: Pt(urx, ury)}
}

// RectAround returns the rectangle centered on c with the given half extents.
func RectAround(c Point, halfW, halfH float64) Rect {
	return Rect{LL: Pt(c.X-halfW, c.Y-halfH), UR: Pt(c.X+halfW, c.Y+halfH)}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.UR.X - r.LL.X }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.UR.Y - r.LL.Y }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.LL.X + r.UR.X) / 2, Y: (r.LL.Y + r.UR.Y) / 2}
}

// Expand grows the rectangle by d on every side. Negative d shrinks it.
func (r Rect) Expand(d float64) Rect {
	return Rect{LL: Pt(r.LL.X-d, r.LL.Y-d), UR: Pt(r.UR.X+d, r.UR.Y+d)}
}

// Contains reports whether p lies inside or on the border of r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.LL.X && p.X <= r.UR.X && p.Y >= r.LL.Y && p.Y <= r.UR.Y
}

// Intersects reports whether r and o overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.LL.X < o.UR.X && o.LL.X < r.UR.X && r.LL.Y < o.UR.Y && o.LL.Y < r.UR.Y
}

// Distance returns the gap between r and o: zero when they touch or overlap,
// otherwise the Euclidean distance between their closest points.
func (r Rect) Distance(o Rect) float64 {
	dx := math.Max(0, math.Max(o.LL.X-r.UR.X, r.LL.X-o.UR.X))
	dy := math.Max(0, math.Max(o.LL.Y-r.UR.Y, r.LL.Y-o.UR.Y))
	return math.Hypot(dx, dy)
}

// Normalize returns r with its corners ordered so LL is below and left of UR.
func (r Rect) Normalize() Rect {
	return Rect{
		LL: Pt(math.Min(r.LL.X, r.UR.X), math.Min(r.LL.Y, r.UR.Y)),
		UR: Pt(math.Max(r.LL.X, r.UR.X), math.Max(r.LL.Y, r.UR.Y)),
	}
}

func (r Rect) String() string { return fmt.Sprintf("[%s %s]", r.LL, r.UR) }

// BoundingBox is the macro perimeter. It is immutable for a routing session.
type BoundingBox struct {
	Rect
}

// NewBoundingBox validates the corners and returns the box.
func NewBoundingBox(ll, ur Point) (BoundingBox, error) {
	if err := errors.ValidateBoundingBox(ll.X, ll.Y, ur.X, ur.Y); err != nil {
		return BoundingBox{}, err
	}
	return BoundingBox{Rect{LL: ll, UR: ur}}, nil
}

// Validate re-checks the box invariants.
func (b BoundingBox) Validate() error {
	return errors.ValidateBoundingBox(b.LL.X, b.LL.Y, b.UR.X, b.UR.Y)
}
