// Package geom provides the 2D primitives shared by the placement, planning and
// supply packages: points, axis-aligned rectangles, bounding boxes and named
// layout shapes (pins).
//
// All coordinates are in layout units (microns in a typical technology). Shapes are
// values; mutating a Shape never affects the layout it was read from.
package geom
