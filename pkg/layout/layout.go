// Package layout defines the layout-mutation collaborator the router writes into
// and an in-memory implementation of it.
//
// The router never talks to a design database directly. Everything it produces
// (placeholder pins, path segments, via stacks, ring rectangles) goes through the
// [Layout] interface. [Memory] records those calls so they can be inspected by
// tests, exported to JSON, or persisted by the pipeline.
package layout

import (
	"slices"

	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
)

// Layout is the mutation API of the design database.
type Layout interface {
	// Pin returns the first pin shape registered under name.
	Pin(name string) (geom.Shape, bool)
	// Pins returns every shape registered under name (supply nets have many).
	Pins(name string) []geom.Shape
	// AllPins returns every registered pin shape in insertion order.
	AllPins() []geom.Shape
	// AddPin registers a named pin shape.
	AddPin(s geom.Shape) error
	// ReplacePin removes every shape named name and registers s under that name.
	ReplacePin(name string, s geom.Shape) error
	// RemovePin removes every shape named name.
	RemovePin(name string) error
	// AddPath adds a wire along points on layer.
	AddPath(layer string, points []geom.Point) error
	// AddViaStack adds the vias needed to move from one layer to another at a point.
	AddViaStack(from, to string, at geom.Point) error
	// AddVia adds a single via between two adjacent layers.
	AddVia(lower, upper string, at geom.Point) error
	// AddRect adds a plain rectangle.
	AddRect(layer string, r geom.Rect) error
}

// Path is one recorded wire.
type Path struct {
	Layer  string       `json:"layer" bson:"layer"`
	Points []geom.Point `json:"points" bson:"points"`
}

// Via is one recorded via or via stack.
type Via struct {
	From  string     `json:"from" bson:"from"`
	To    string     `json:"to" bson:"to"`
	At    geom.Point `json:"at" bson:"at"`
	Stack bool       `json:"stack,omitempty" bson:"stack,omitempty"`
}

// Rect is one recorded plain rectangle.
type Rect struct {
	Layer string    `json:"layer" bson:"layer"`
	Rect  geom.Rect `json:"rect" bson:"rect"`
}

// Memory is an in-memory Layout. It is not safe for concurrent use.
type Memory struct {
	pins  []geom.Shape
	paths []Path
	vias  []Via
	rects []Rect
}

// NewMemory returns a layout pre-populated with pins.
func NewMemory(pins ...geom.Shape) *Memory {
	return &Memory{pins: slices.Clone(pins)}
}

// Pin returns the first pin shape registered under name.
func (m *Memory) Pin(name string) (geom.Shape, bool) {
	for _, p := range m.pins {
		if p.Name == name {
			return p, true
		}
	}
	return geom.Shape{}, false
}

// Pins returns every shape registered under name.
func (m *Memory) Pins(name string) []geom.Shape {
	var out []geom.Shape
	for _, p := range m.pins {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

// AllPins returns every registered pin in insertion order.
func (m *Memory) AllPins() []geom.Shape { return slices.Clone(m.pins) }

// AddPin registers a named pin shape.
func (m *Memory) AddPin(s geom.Shape) error {
	if err := errors.ValidatePinName(s.Name); err != nil {
		return err
	}
	m.pins = append(m.pins, s)
	return nil
}

// ReplacePin removes every shape named name and registers s under that name.
func (m *Memory) ReplacePin(name string, s geom.Shape) error {
	if err := m.RemovePin(name); err != nil {
		return err
	}
	m.pins = append(m.pins, s.Renamed(name))
	return nil
}

// RemovePin removes every shape named name.
func (m *Memory) RemovePin(name string) error {
	n := len(m.pins)
	m.pins = slices.DeleteFunc(m.pins, func(p geom.Shape) bool { return p.Name == name })
	if len(m.pins) == n {
		return errors.New(errors.ErrCodePinNotFound, "pin %q not found", name)
	}
	return nil
}

// AddPath adds a wire along points on layer.
func (m *Memory) AddPath(layer string, points []geom.Point) error {
	if len(points) < 2 {
		return errors.New(errors.ErrCodeInvalidInput, "path on %s needs at least 2 points, got %d", layer, len(points))
	}
	m.paths = append(m.paths, Path{Layer: layer, Points: slices.Clone(points)})
	return nil
}

// AddViaStack records a via stack between two layers.
func (m *Memory) AddViaStack(from, to string, at geom.Point) error {
	m.vias = append(m.vias, Via{From: from, To: to, At: at, Stack: true})
	return nil
}

// AddVia records a single via.
func (m *Memory) AddVia(lower, upper string, at geom.Point) error {
	m.vias = append(m.vias, Via{From: lower, To: upper, At: at})
	return nil
}

// AddRect records a plain rectangle.
func (m *Memory) AddRect(layer string, r geom.Rect) error {
	m.rects = append(m.rects, Rect{Layer: layer, Rect: r})
	return nil
}

// Paths returns the recorded wires.
func (m *Memory) Paths() []Path { return slices.Clone(m.paths) }

// Vias returns the recorded vias and via stacks.
func (m *Memory) Vias() []Via { return slices.Clone(m.vias) }

// Rects returns the recorded rectangles.
func (m *Memory) Rects() []Rect { return slices.Clone(m.rects) }

// Ensure Memory implements Layout.
var _ Layout = (*Memory)(nil)
