package supply

import (
	"math"
	"sort"

	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
)

// Pair is one connection the path search must realize.
type Pair struct {
	Source geom.Shape `json:"source"`
	Target geom.Shape `json:"target"`
}

// Length is the center distance between the pair's shapes.
func (p Pair) Length() float64 { return p.Source.Distance(p.Target) }

// FakeSet returns a predicate matching the given placeholder shapes.
func FakeSet(fakes []geom.Shape) func(geom.Shape) bool {
	set := make(map[geom.Shape]struct{}, len(fakes))
	for _, f := range fakes {
		set[f] = struct{}{}
	}
	return func(s geom.Shape) bool {
		_, ok := set[s]
		return ok
	}
}

// MSTPairs returns the edges of a minimum spanning tree over pins, weighted by
// center distance. Edges between two placeholders (isFake) do not exist.
// The first pin is the root; ties go to the first candidate found scanning
// connected pins, then neighbors, in input order.
//
// Fewer than one pin is invalid; a single pin yields no pairs. A pin that
// cannot be reached (only placeholder neighbors) is an error.
func MSTPairs(pins []geom.Shape, isFake func(geom.Shape) bool) ([]Pair, error) {
	k := len(pins)
	if k == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "spanning tree needs at least one pin")
	}
	if isFake == nil {
		isFake = func(geom.Shape) bool { return false }
	}

	fake := make([]bool, k)
	for i, p := range pins {
		fake[i] = isFake(p)
	}
	adjacent := func(i, j int) bool { return i != j && !(fake[i] && fake[j]) }

	connected := make([]bool, k)
	connected[0] = true
	pairs := make([]Pair, 0, k-1)
	for len(pairs) < k-1 {
		best, s, t := math.Inf(1), -1, -1
		for m := 0; m < k; m++ {
			if !connected[m] {
				continue
			}
			for n := 0; n < k; n++ {
				if connected[n] || !adjacent(m, n) {
					continue
				}
				if d := pins[m].Distance(pins[n]); d < best {
					best, s, t = d, m, n
				}
			}
		}
		if t < 0 {
			return pairs, errors.New(errors.ErrCodeInvalidInput,
				"%d of %d pins of %s cannot join the spanning tree", k-1-len(pairs), k, pins[0].Name)
		}
		connected[t] = true
		pairs = append(pairs, Pair{Source: pins[s], Target: pins[t]})
	}
	return pairs, nil
}

// Policy controls how internal pins are matched to ring segments.
type Policy struct {
	// MaxDistance is the largest gap between a pin and a ring segment that
	// still gets a pair. Matches are kept when the gap is <= MaxDistance.
	MaxDistance float64
	// Exclusive allows each ring segment to serve a single pin.
	Exclusive bool
}

// MSTWithRing returns the spanning-tree pairs of pins plus one pair from each
// eligible pin to its nearest ring segment. Placeholders are never matched to
// the ring. Pins are considered in ascending order of their nearest-segment
// gap, ties kept in input order.
func MSTWithRing(pins, ring []geom.Shape, policy Policy, isFake func(geom.Shape) bool) ([]Pair, error) {
	pairs, err := MSTPairs(pins, isFake)
	if err != nil {
		return nil, err
	}
	if isFake == nil {
		isFake = func(geom.Shape) bool { return false }
	}

	type candidate struct {
		pin  geom.Shape
		dist float64
	}
	var cands []candidate
	for _, p := range pins {
		if isFake(p) {
			continue
		}
		if _, d := nearest(p, ring, nil); d <= policy.MaxDistance {
			cands = append(cands, candidate{pin: p, dist: d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	used := make([]bool, len(ring))
	for _, c := range cands {
		var skip []bool
		if policy.Exclusive {
			skip = used
		}
		i, d := nearest(c.pin, ring, skip)
		if i < 0 || d > policy.MaxDistance {
			continue
		}
		used[i] = true
		pairs = append(pairs, Pair{Source: c.pin, Target: ring[i]})
	}
	return pairs, nil
}

// nearest returns the index and gap distance of the ring segment closest to
// p, ignoring segments marked in skip. The first segment wins ties.
func nearest(p geom.Shape, ring []geom.Shape, skip []bool) (int, float64) {
	best, bi := math.Inf(1), -1
	for i, s := range ring {
		if skip != nil && skip[i] {
			continue
		}
		if d := p.Rect.Distance(s.Rect); d < best {
			best, bi = d, i
		}
	}
	return bi, best
}
