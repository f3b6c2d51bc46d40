package wire

import (
	"testing"

	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/layout"
	"github.com/matzehuels/macroroute/pkg/planner"
	"github.com/matzehuels/macroroute/pkg/route"
	"github.com/matzehuels/macroroute/pkg/tech"
)

func TestAddWireDirect(t *testing.T) {
	mem := layout.NewMemory()
	w := New(mem, tech.Default())

	if err := w.AddWire(planner.PointList{geom.Pt(1, 5), geom.Pt(9, 5)}); err != nil {
		t.Fatal(err)
	}
	paths := mem.Paths()
	if len(paths) != 1 {
		t.Fatalf("Paths() = %d, want 1", len(paths))
	}
	if paths[0].Layer != "m3" {
		t.Errorf("horizontal run on %q, want m3", paths[0].Layer)
	}
	if len(mem.Vias()) != 0 {
		t.Errorf("Vias() = %d, want 0", len(mem.Vias()))
	}
}

func TestAddWireJog(t *testing.T) {
	mem := layout.NewMemory()
	w := New(mem, tech.Default())

	pts := planner.PointList{geom.Pt(10, 40), geom.Pt(10, 21.5), geom.Pt(14, 21.5), geom.Pt(14, 0.86)}
	if err := w.AddWire(pts); err != nil {
		t.Fatal(err)
	}

	paths := mem.Paths()
	if len(paths) != 3 {
		t.Fatalf("Paths() = %d, want 3", len(paths))
	}
	wantLayers := []string{"m4", "m3", "m4"}
	for i, p := range paths {
		if p.Layer != wantLayers[i] {
			t.Errorf("segment %d layer = %q, want %q", i, p.Layer, wantLayers[i])
		}
	}

	vias := mem.Vias()
	if len(vias) != 2 {
		t.Fatalf("Vias() = %d, want 2", len(vias))
	}
	for i, v := range vias {
		if v.At != pts[i+1] {
			t.Errorf("via %d at %s, want interior point %s", i, v.At, pts[i+1])
		}
		if !v.Stack || v.From != "m3" || v.To != "m4" {
			t.Errorf("via %d = %+v, want m3→m4 stack", i, v)
		}
	}
}

func TestAddWireRoundsLayerChoice(t *testing.T) {
	mem := layout.NewMemory()
	w := New(mem, tech.Default())
	if err := w.AddWire(planner.PointList{geom.Pt(0, 1.0001), geom.Pt(5, 1.0004)}); err != nil {
		t.Fatal(err)
	}
	if got := mem.Paths()[0].Layer; got != "m3" {
		t.Errorf("layer = %q, want m3 for y equal at three decimals", got)
	}
}

func TestAddPlan(t *testing.T) {
	mem := layout.NewMemory()
	w := New(mem, tech.Default())
	start := geom.Pt(3, 3)
	plan := planner.Plan{Points: planner.PointList{geom.Pt(3, 3.2), geom.Pt(3, 99)}, StartVia: &start}

	if err := w.AddPlan(plan); err != nil {
		t.Fatal(err)
	}
	vias := mem.Vias()
	if len(vias) != 1 || vias[0].At != start {
		t.Errorf("Vias() = %v, want one start via at %s", vias, start)
	}
	if len(mem.Paths()) != 1 {
		t.Errorf("Paths() = %d, want 1", len(mem.Paths()))
	}
}

func TestAddPath(t *testing.T) {
	mem := layout.NewMemory()
	w := New(mem, tech.Default())
	p := route.Path{
		{Point: geom.Pt(0, 0), Layer: route.Horizontal},
		{Point: geom.Pt(10, 0), Layer: route.Horizontal},
		{Point: geom.Pt(10, 0), Layer: route.Vertical},
		{Point: geom.Pt(10, 8), Layer: route.Vertical},
	}

	shapes, err := w.AddPath("vdd", p)
	if err != nil {
		t.Fatal(err)
	}
	if len(mem.Paths()) != 2 || len(mem.Vias()) != 1 {
		t.Errorf("got %d paths and %d vias, want 2 and 1", len(mem.Paths()), len(mem.Vias()))
	}
	if len(shapes) != 2 || shapes[0].Name != "vdd" || shapes[1].Layer != "m4" {
		t.Errorf("shapes = %v, want two vdd runs ending on m4", shapes)
	}
}

func TestAddPathLayerOutOfRange(t *testing.T) {
	mem := layout.NewMemory()
	w := New(mem, tech.Default())
	p := route.Path{
		{Point: geom.Pt(0, 0), Layer: route.Horizontal},
		{Point: geom.Pt(10, 0), Layer: route.Horizontal},
		{Point: geom.Pt(10, 0), Layer: 2},
		{Point: geom.Pt(10, 8), Layer: 2},
	}

	shapes, err := w.AddPath("vdd", p)
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Fatalf("AddPath() error = %v, want INTERNAL_ERROR", err)
	}
	if len(shapes) != 0 || len(mem.Paths()) != 0 {
		t.Errorf("AddPath() drew %d shapes, %d paths; want nothing", len(shapes), len(mem.Paths()))
	}
}
