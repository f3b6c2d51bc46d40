package geom

import "fmt"

// Shape is a named rectangle on a metal layer. Layout pins, perimeter
// placeholders and ring segments are all shapes.
type Shape struct {
	Name  string `json:"name" bson:"name" toml:"name"`
	Rect  Rect   `json:"rect" bson:"rect" toml:"rect"`
	Layer string `json:"layer" bson:"layer" toml:"layer"`
}

// NewShape returns a shape with a normalized rectangle.
func NewShape(name string, r Rect, layer string) Shape {
	return Shape{Name: name, Rect: r.Normalize(), Layer: layer}
}

// Center returns the center of the shape.
func (s Shape) Center() Point { return s.Rect.Center() }

// LC returns the left-center point.
func (s Shape) LC() Point { return Pt(s.Rect.LL.X, s.Center().Y) }

// RC returns the right-center point.
func (s Shape) RC() Point { return Pt(s.Rect.UR.X, s.Center().Y) }

// UC returns the upper-center point.
func (s Shape) UC() Point { return Pt(s.Center().X, s.Rect.UR.Y) }

// BC returns the bottom-center point.
func (s Shape) BC() Point { return Pt(s.Center().X, s.Rect.LL.Y) }

// Width returns the horizontal span of the shape.
func (s Shape) Width() float64 { return s.Rect.Width() }

// Height returns the vertical span of the shape.
func (s Shape) Height() float64 { return s.Rect.Height() }

// Distance returns the center-to-center distance to o.
func (s Shape) Distance(o Shape) float64 { return s.Center().Distance(o.Center()) }

// Renamed returns a copy of the shape carrying name.
func (s Shape) Renamed(name string) Shape {
	s.Name = name
	return s
}

func (s Shape) String() string {
	return fmt.Sprintf("%s@%s%s", s.Name, s.Layer, s.Rect)
}
