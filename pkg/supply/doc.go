// Package supply builds power rings and decides which supply pins to connect.
//
// # Rings
//
// [Builder.RingPin] draws four side pins in the fixed order top, bottom,
// right, left, drops a grid of vias at the corners and spreads evenly spaced
// taps along every side. Taps are placeholders: they exist only as routing
// targets and are never connected to each other.
//
// # Spanning trees
//
// [MSTPairs] runs Prim's algorithm over the complete center-distance graph of
// one net, leaving out edges between two placeholders. [MSTWithRing] adds
// pin-to-ring pairs under a distance cutoff, either one pin per ring segment
// (exclusive) or many.
//
// # Moat exits
//
// [Moat.Resolve] brings a guard-ring supply pin straight out to the ring
// segment on its nearest edge, jogging along the edge first when the straight
// exit would crowd an escape pin already placed there.
package supply
