// Package diag writes postmortem dumps of supply connection graphs.
//
// When the path search cannot connect a pair, the router aborts the pass.
// Before it does, it hands the net's pins, the planned pairs and the failing
// pair to [Write], which leaves a Graphviz DOT file and, when rendering works,
// an SVG next to it. The failing pair is drawn in red; placeholder pins are
// dashed.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is needed.
package diag
