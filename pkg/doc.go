// Package pkg provides the core libraries for macroroute.
//
// # Overview
//
// macroroute finishes the perimeter of a hard macro: it brings IO pins out to
// the boundary, wires them to their placeholders, draws power rings and
// connects the supply pins of each net with a minimum spanning tree. The pkg
// directory is organized into three areas:
//
//  1. Geometry and decisions ([geom], [edge], [tech], [placement], [planner], [supply])
//  2. Layout writing ([layout], [wire], [route], [blockage])
//  3. Orchestration and infrastructure ([router], [pipeline], [cache], [store], [observability])
//
// # Architecture
//
// The typical data flow of one job:
//
//	job.toml
//	   ↓
//	[pipeline] package (validate, cache lookup)
//	   ↓
//	[router] package (one session per macro)
//	   ↓
//	[placement] → [planner] → [wire]    IO escape
//	[supply] → [route] → [wire]         supply rings and trees
//	   ↓
//	[layout] export (JSON) + run record in [store]
//
// # Quick Start
//
//	job, _ := pipeline.LoadJob("sram.toml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, job)
//	if err != nil {
//	    return err
//	}
//	_ = layout.WriteFile(res.Layout, "sram.layout.json")
//
// # Main Packages
//
// [geom] - Points, rectangles, named shapes and the macro bounding box. All
// coordinate comparisons round to three decimals.
//
// [placement] - Decides the perimeter slot of each IO pin by role (clock,
// address, data, control) and probes for a free position when the nominal
// one is taken.
//
// [planner] - Decides the polyline from a pin to its placeholder, including
// the channel jog for pins far from the edge.
//
// [supply] - Builds four-sided rings, moat exits and the spanning-tree pairs
// of a supply net, optionally matched to ring segments.
//
// [route] - The shortest-path search used to realize each supply pair.
//
// [diag] - DOT/SVG dumps of nets that could not be routed.
//
// ## Infrastructure
//
// [pipeline] - Runs a job end to end. Results are cached by job hash and
// run records are saved to a [store].
//
// [cache] - Result caches: file, Redis, and a null cache.
//
// [store] - Run records in memory or MongoDB.
//
// [observability] - Hooks for metrics; [observability/prom] exports them to
// Prometheus.
//
// [errors] - Coded errors shared by every package.
package pkg
