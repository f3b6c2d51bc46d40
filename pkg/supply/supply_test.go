package supply

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/matzehuels/macroroute/pkg/blockage"
	"github.com/matzehuels/macroroute/pkg/edge"
	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/layout"
	"github.com/matzehuels/macroroute/pkg/placement"
	"github.com/matzehuels/macroroute/pkg/tech"
)

func newBuilder(t *testing.T, mem *layout.Memory) *Builder {
	t.Helper()
	box, err := geom.NewBoundingBox(geom.Pt(0, 0), geom.Pt(100, 80))
	if err != nil {
		t.Fatal(err)
	}
	return &Builder{Box: box, Config: tech.Default(), Layout: mem, Blockages: blockage.New()}
}

func supplyPin(net string, x, y float64) geom.Shape {
	return geom.NewShape(net, geom.RectAround(geom.Pt(x, y), 0.5, 0.5), "m4")
}

func rectNear(a, b geom.Rect) bool {
	return a.LL.Equal3(b.LL) && a.UR.Equal3(b.UR)
}

// =============================================================================
// Ring
// =============================================================================

func TestSideRect(t *testing.T) {
	b := newBuilder(t, layout.NewMemory())
	w := b.Thickness()
	m := 2 * w

	tests := []struct {
		side  edge.Edge
		inner bool
		want  geom.Rect
	}{
		{edge.Top, false, geom.R(0, 80-w, 100, 80)},
		{edge.Bottom, false, geom.R(0, 0, 100, w)},
		{edge.Right, false, geom.R(100-w, 0, 100, 80)},
		{edge.Left, false, geom.R(0, 0, w, 80)},
		{edge.Top, true, geom.R(m, 80-w-m, 100-m, 80-m)},
		{edge.Bottom, true, geom.R(m, m, 100-m, m+w)},
		{edge.Right, true, geom.R(100-w-m, m, 100-m, 80-m)},
		{edge.Left, true, geom.R(m, m, m+w, 80-m)},
	}

	for _, tt := range tests {
		if got := b.SideRect(tt.side, tt.inner); !rectNear(got, tt.want) {
			t.Errorf("SideRect(%v, inner=%v) = %s, want %s", tt.side, tt.inner, got, tt.want)
		}
	}
}

func TestRingPin(t *testing.T) {
	mem := layout.NewMemory()
	b := newBuilder(t, mem)

	ring, err := b.RingPin("vdd", false)
	if err != nil {
		t.Fatalf("RingPin() error: %v", err)
	}

	wantLayers := map[edge.Edge]string{edge.Top: "m3", edge.Bottom: "m3", edge.Right: "m4", edge.Left: "m4"}
	for i, side := range RingOrder {
		if got := ring.Sides[i].Layer; got != wantLayers[side] {
			t.Errorf("%v side layer = %q, want %q", side, got, wantLayers[side])
		}
		if ring.Side(side) != ring.Sides[i] {
			t.Errorf("Side(%v) does not match stored order", side)
		}
	}

	if got := len(mem.Pins("vdd")); got != 4 {
		t.Errorf("layout has %d vdd pins, want 4", got)
	}
	if got := len(ring.Taps); got != 4*tech.DefaultRingTaps {
		t.Errorf("len(Taps) = %d, want %d", got, 4*tech.DefaultRingTaps)
	}
	n := tech.DefaultRingVias
	if got := len(mem.Vias()); got != 4*n*n {
		t.Errorf("corner vias = %d, want %d", got, 4*n*n)
	}
	if got := b.Blockages.Len(); got != 4 {
		t.Errorf("blockages = %d, want 4", got)
	}

	hw := tech.DefaultTrackWire / 2
	if want := geom.Pt(hw, 80-hw); !ring.Vias[0].Equal3(want) {
		t.Errorf("top corner anchor = %s, want %s", ring.Vias[0], want)
	}
	shift := tech.DefaultTrackWire + tech.DefaultTrackSpace
	if want := geom.Pt(100-float64(n-1)*shift-hw, float64(n-1)*shift+hw); !ring.Vias[n*n].Equal3(want) {
		t.Errorf("bottom corner anchor = %s, want %s", ring.Vias[n*n], want)
	}
}

func TestTapsInsideSides(t *testing.T) {
	b := newBuilder(t, layout.NewMemory())
	ring, err := b.RingPin("gnd", true)
	if err != nil {
		t.Fatal(err)
	}
	per := tech.DefaultRingTaps
	for i, side := range ring.Sides {
		r := side.Rect.Expand(1e-9)
		for _, tap := range ring.Taps[i*per : (i+1)*per] {
			if !r.Contains(tap.Rect.LL) || !r.Contains(tap.Rect.UR) {
				t.Errorf("tap %s outside side %s", tap.Rect, side.Rect)
			}
			if tap.Layer != side.Layer || tap.Name != "gnd" {
				t.Errorf("tap = %s, want on %s named gnd", tap, side.Layer)
			}
		}
	}
}

func TestRingTooSmall(t *testing.T) {
	box, _ := geom.NewBoundingBox(geom.Pt(0, 0), geom.Pt(2, 2))
	b := &Builder{Box: box, Config: tech.Default(), Layout: layout.NewMemory()}
	if _, err := b.RingPin("vdd", true); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

// =============================================================================
// Spanning trees
// =============================================================================

func weight(pairs []Pair) float64 {
	var w float64
	for _, p := range pairs {
		w += p.Length()
	}
	return w
}

// connectedAcyclic checks that pairs form a spanning tree over pins.
func connectedAcyclic(pins []geom.Shape, pairs []Pair) bool {
	parent := make(map[geom.Shape]geom.Shape, len(pins))
	var find func(geom.Shape) geom.Shape
	find = func(s geom.Shape) geom.Shape {
		if p, ok := parent[s]; ok && p != s {
			r := find(p)
			parent[s] = r
			return r
		}
		return s
	}
	for _, p := range pins {
		parent[p] = p
	}
	for _, pr := range pairs {
		a, b := find(pr.Source), find(pr.Target)
		if a == b {
			return false
		}
		parent[a] = b
	}
	root := find(pins[0])
	for _, p := range pins {
		if find(p) != root {
			return false
		}
	}
	return true
}

func TestMSTPairsMinimal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		k := 2 + rng.Intn(12)
		pins := make([]geom.Shape, k)
		var fakes []geom.Shape
		for i := range pins {
			pins[i] = supplyPin("vdd", rng.Float64()*100, rng.Float64()*80)
			if i > 0 && rng.Intn(3) == 0 {
				fakes = append(fakes, pins[i])
			}
		}
		isFake := FakeSet(fakes)

		pairs, err := MSTPairs(pins, isFake)
		if err != nil {
			t.Fatalf("trial %d: MSTPairs() error: %v", trial, err)
		}
		if len(pairs) != k-1 {
			t.Fatalf("trial %d: %d pairs, want %d", trial, len(pairs), k-1)
		}
		if !connectedAcyclic(pins, pairs) {
			t.Errorf("trial %d: pairs do not form a spanning tree", trial)
		}
		for _, p := range pairs {
			if isFake(p.Source) && isFake(p.Target) {
				t.Errorf("trial %d: placeholder pair %v", trial, p)
			}
		}

		g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
		for i := range pins {
			for j := i + 1; j < k; j++ {
				if isFake(pins[i]) && isFake(pins[j]) {
					continue
				}
				g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), pins[i].Distance(pins[j])))
			}
		}
		dst := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
		want := path.Prim(dst, g)
		if got := weight(pairs); math.Abs(got-want) > 1e-9 {
			t.Errorf("trial %d: tree weight = %v, want %v", trial, got, want)
		}
	}
}

func TestMSTPairsTieBreak(t *testing.T) {
	a := supplyPin("vdd", 0, 0)
	b := supplyPin("vdd", 10, 0)
	c := supplyPin("vdd", -10, 0)

	pairs, err := MSTPairs([]geom.Shape{a, b, c}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if pairs[0].Target != b || pairs[1].Target != c {
		t.Errorf("pairs = %v, want a→b then a→c", pairs)
	}
}

func TestMSTPairsDegenerate(t *testing.T) {
	if _, err := MSTPairs(nil, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("MSTPairs(nil) error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}

	pairs, err := MSTPairs([]geom.Shape{supplyPin("vdd", 1, 1)}, nil)
	if err != nil || len(pairs) != 0 {
		t.Errorf("MSTPairs(one pin) = %v, %v; want no pairs", pairs, err)
	}

	// Coincident pins still connect.
	p := supplyPin("vdd", 5, 5)
	q := geom.NewShape("vdd", p.Rect, "m3")
	if pairs, err := MSTPairs([]geom.Shape{p, q}, nil); err != nil || len(pairs) != 1 {
		t.Errorf("MSTPairs(coincident) = %v, %v; want one pair", pairs, err)
	}

	// Only placeholders: nothing can join the root.
	f1, f2 := supplyPin("vdd", 1, 1), supplyPin("vdd", 9, 9)
	if _, err := MSTPairs([]geom.Shape{f1, f2}, FakeSet([]geom.Shape{f1, f2})); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("MSTPairs(all placeholders) error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestMSTWithRingCutoff(t *testing.T) {
	b := newBuilder(t, layout.NewMemory())
	ring, err := b.RingPin("vdd", false)
	if err != nil {
		t.Fatal(err)
	}
	pins := []geom.Shape{supplyPin("vdd", 40, 40), supplyPin("vdd", 60, 40)}

	pairs, err := MSTWithRing(pins, ring.Segments(), Policy{MaxDistance: 10, Exclusive: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 {
		t.Errorf("pairs = %d, want only the internal tree edge", len(pairs))
	}
}

func TestMSTWithRingExactCutoff(t *testing.T) {
	b := newBuilder(t, layout.NewMemory())
	ring, err := b.RingPin("vdd", false)
	if err != nil {
		t.Fatal(err)
	}
	pin := supplyPin("vdd", 50, 3)
	gap := pin.Rect.Distance(ring.Side(edge.Bottom).Rect)

	pairs, err := MSTWithRing([]geom.Shape{pin}, ring.Segments(), Policy{MaxDistance: gap}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 || pairs[0].Target != ring.Side(edge.Bottom) {
		t.Errorf("at cutoff: pairs = %v, want one pair to the bottom side", pairs)
	}

	pairs, err = MSTWithRing([]geom.Shape{pin}, ring.Segments(), Policy{MaxDistance: math.Nextafter(gap, 0)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 0 {
		t.Errorf("below cutoff: pairs = %v, want none", pairs)
	}
}

func TestMSTWithRingPolicy(t *testing.T) {
	b := newBuilder(t, layout.NewMemory())
	ring, err := b.RingPin("vdd", false)
	if err != nil {
		t.Fatal(err)
	}
	pins := []geom.Shape{
		supplyPin("vdd", 50, 3),
		supplyPin("vdd", 3, 40),
		supplyPin("vdd", 30, 3),
	}
	ringPairs := func(pairs []Pair) map[geom.Shape]int {
		out := map[geom.Shape]int{}
		for _, p := range pairs {
			for _, s := range ring.Sides {
				if p.Target == s {
					out[s]++
				}
			}
		}
		return out
	}

	tests := []struct {
		exclusive  bool
		wantRing   int
		wantBottom int
	}{
		{true, 2, 1},
		{false, 3, 2},
	}

	for _, tt := range tests {
		pairs, err := MSTWithRing(pins, ring.Segments(), Policy{MaxDistance: 5, Exclusive: tt.exclusive}, nil)
		if err != nil {
			t.Fatal(err)
		}
		counts := ringPairs(pairs)
		total := 0
		for _, n := range counts {
			total += n
		}
		if total != tt.wantRing {
			t.Errorf("exclusive=%v: ring pairs = %d, want %d", tt.exclusive, total, tt.wantRing)
		}
		if got := counts[ring.Side(edge.Bottom)]; got != tt.wantBottom {
			t.Errorf("exclusive=%v: bottom pairs = %d, want %d", tt.exclusive, got, tt.wantBottom)
		}
		if got := len(pairs) - total; got != len(pins)-1 {
			t.Errorf("exclusive=%v: internal pairs = %d, want %d", tt.exclusive, got, len(pins)-1)
		}
	}
}

func TestMSTWithRingSkipsPlaceholders(t *testing.T) {
	b := newBuilder(t, layout.NewMemory())
	ring, err := b.RingPin("vdd", false)
	if err != nil {
		t.Fatal(err)
	}
	pin := supplyPin("vdd", 50, 40)
	pairs, err := MSTWithRing(append([]geom.Shape{pin}, ring.Taps...), ring.Segments(),
		Policy{MaxDistance: 100}, FakeSet(ring.Taps))
	if err != nil {
		t.Fatal(err)
	}
	// One tree edge per tap plus the single real pin's ring pair.
	if want := len(ring.Taps) + 1; len(pairs) != want {
		t.Errorf("pairs = %d, want %d", len(pairs), want)
	}
}

// =============================================================================
// Moat
// =============================================================================

func occupiedGap(st *placement.State, e edge.Edge, coord float64) float64 {
	gap := math.Inf(1)
	for _, v := range st.Occupied(e) {
		gap = math.Min(gap, math.Abs(v-coord))
	}
	return gap
}

func TestMoatResolve(t *testing.T) {
	ringLayout := layout.NewMemory()
	b := newBuilder(t, ringLayout)
	ring, err := b.RingPin("vdd", false)
	if err != nil {
		t.Fatal(err)
	}
	bottomY := ring.Side(edge.Bottom).Center().Y

	tests := []struct {
		name      string
		pin       geom.Shape
		reserved  []float64
		wantJog   bool
		wantStack int
	}{
		{"direct", supplyPin("vdd", 20, 5), nil, false, 1},
		{"jog", geom.NewShape("vdd", geom.RectAround(geom.Pt(50, 5), 0.5, 0.5), "m1"), []float64{50}, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := layout.NewMemory()
			m := &Moat{Box: b.Box, Config: tech.Default(), Layout: mem}
			st := placement.NewState()
			for _, v := range tt.reserved {
				st.Reserve(edge.Bottom, v)
			}
			before := st.Occupied(edge.Bottom)
			c := tt.pin.Center()

			exit, err := m.Resolve(tt.pin, &ring, st)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if exit.Edge != edge.Bottom {
				t.Errorf("Edge = %v, want bottom", exit.Edge)
			}
			if exit.Jogged() != tt.wantJog {
				t.Errorf("Jogged() = %v, want %v (points %v)", exit.Jogged(), tt.wantJog, exit.Points)
			}
			last := exit.Points[len(exit.Points)-1]
			if geom.Round3(last.Y) != geom.Round3(bottomY) {
				t.Errorf("exit ends at y=%v, want ring centerline %v", last.Y, bottomY)
			}
			if len(mem.Paths()) != len(exit.Points)-1 {
				t.Errorf("Paths() = %d, want %d", len(mem.Paths()), len(exit.Points)-1)
			}
			if got := len(mem.Vias()); got != tt.wantStack {
				t.Errorf("via stacks = %d, want %d", got, tt.wantStack)
			}

			coord := c.X + exit.Displacement
			st2 := placement.NewState()
			for _, v := range before {
				st2.Reserve(edge.Bottom, v)
			}
			if g := occupiedGap(st2, edge.Bottom, coord); g < m.Config.TrackWidth() {
				t.Errorf("exit at x=%v is %v from a placed pin, want >= %v", coord, g, m.Config.TrackWidth())
			}
			if got := st.Occupied(edge.Bottom); len(got) != len(before)+1 {
				t.Errorf("Occupied() = %v, want exit reserved", got)
			}
		})
	}
}

func TestMoatAlternates(t *testing.T) {
	b := newBuilder(t, layout.NewMemory())
	ring, err := b.RingPin("vdd", false)
	if err != nil {
		t.Fatal(err)
	}
	m := &Moat{Box: b.Box, Config: tech.Default(), Layout: layout.NewMemory()}
	st := placement.NewState()
	// Block the right-hand side so only a left shift is free.
	st.Reserve(edge.Bottom, 50)
	st.Reserve(edge.Bottom, 50.35)

	exit, err := m.Resolve(supplyPin("vdd", 50, 5), &ring, st)
	if err != nil {
		t.Fatal(err)
	}
	if exit.Displacement >= 0 {
		t.Errorf("Displacement = %v, want a shift to the left", exit.Displacement)
	}
}

func TestMoatInfeasible(t *testing.T) {
	b := newBuilder(t, layout.NewMemory())
	ring, err := b.RingPin("vdd", false)
	if err != nil {
		t.Fatal(err)
	}
	cfg := tech.Default()
	cfg.MaxProbeSteps = 2
	m := &Moat{Box: b.Box, Config: cfg, Layout: layout.NewMemory()}
	st := placement.NewState()
	st.Reserve(edge.Bottom, 50)

	if _, err := m.Resolve(supplyPin("vdd", 50, 5), &ring, st); !errors.Is(err, errors.ErrCodePlacementInfeasible) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodePlacementInfeasible)
	}
}
