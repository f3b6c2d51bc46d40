// Package pipeline runs routing jobs end to end.
//
// A [Job] describes one macro: its box, technology, pins and which passes to
// run. The [Runner] validates the job, serves a cached result when the same
// job ran before, and otherwise drives a router session over an in-memory
// layout, caches the result and optionally stores it.
//
// # Usage
//
//	job, err := pipeline.LoadJob("sram.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, job)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	layout.WriteFile(result.Layout, "sram.layout.json")
package pipeline

import (
	"time"

	"github.com/matzehuels/macroroute/pkg/layout"
	"github.com/matzehuels/macroroute/pkg/placement"
	"github.com/matzehuels/macroroute/pkg/router"
	"github.com/matzehuels/macroroute/pkg/supply"
)

// Result contains the outputs of a job run.
type Result struct {
	// RunID identifies this execution. A cache hit gets a fresh ID.
	RunID string `json:"run_id"`

	// JobHash is the content hash of the job after defaults.
	JobHash string `json:"job_hash"`

	// Layout is everything the passes wrote.
	Layout layout.Export `json:"layout"`

	// Placements are the perimeter positions of the IO pins.
	Placements []placement.Placement `json:"placements,omitempty"`

	// Unclassified lists IO pins no placement rule applied to.
	Unclassified []string `json:"unclassified,omitempty"`

	// Supply has one entry per routed supply net.
	Supply []router.NetResult `json:"supply,omitempty"`

	// Moat lists the drawn moat exits.
	Moat []supply.Exit `json:"moat,omitempty"`

	Stats Stats `json:"stats"`

	// CacheHit reports whether the result came from the cache.
	CacheHit bool `json:"-"`
}

// Stats contains job execution statistics.
type Stats struct {
	Pins        int           `json:"pins"`
	Placed      int           `json:"placed"`
	Displaced   int           `json:"displaced"`
	SupplyPairs int           `json:"supply_pairs"`
	MoatExits   int           `json:"moat_exits"`
	Paths       int           `json:"paths"`
	Vias        int           `json:"vias"`
	Duration    time.Duration `json:"duration"`
}

// Map returns the counters keyed by name, for storage.
func (s Stats) Map() map[string]int {
	return map[string]int{
		"pins":         s.Pins,
		"placed":       s.Placed,
		"displaced":    s.Displaced,
		"supply_pairs": s.SupplyPairs,
		"moat_exits":   s.MoatExits,
		"paths":        s.Paths,
		"vias":         s.Vias,
	}
}
