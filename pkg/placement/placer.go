package placement

import (
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/macroroute/pkg/edge"
	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/tech"
)

// FakeSuffix is appended to a source pin name to name its placeholder.
const FakeSuffix = "_fake"

// Report summarizes one placement pass.
type Report struct {
	Placed       []Placement `json:"placed"`
	Unclassified []string    `json:"unclassified,omitempty"`
}

// Placer computes perimeter placeholders for one macro.
type Placer struct {
	box        geom.BoundingBox
	cfg        tech.Config
	classifier edge.Classifier
	logger     *log.Logger
}

// NewPlacer returns a placer for the given box. The config must already have
// defaults applied. A nil logger discards output.
func NewPlacer(box geom.BoundingBox, cfg tech.Config, logger *log.Logger) (*Placer, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Placer{box: box, cfg: cfg, classifier: edge.Classifier{Box: box}, logger: logger}, nil
}

// Box returns the macro bounding box.
func (p *Placer) Box() geom.BoundingBox { return p.box }

// Nominal returns the undisplaced placeholder center for a source center on e.
// The along-edge coordinate is kept, the perpendicular one sits at the edge
// offset.
func (p *Placer) Nominal(e edge.Edge, c geom.Point) geom.Point {
	if e.Vertical() {
		return geom.Pt(p.EdgeOffset(e), c.Y)
	}
	return geom.Pt(c.X, p.EdgeOffset(e))
}

// EdgeOffset returns the perpendicular coordinate at which placeholders on e
// sit: x for left/right, y for bottom/top.
func (p *Placer) EdgeOffset(e edge.Edge) float64 {
	return edge.Offset(p.box, e, p.cfg.Clearance())
}

func shift(e edge.Edge, pt geom.Point, d float64) geom.Point {
	if e.Vertical() {
		return geom.Pt(pt.X, pt.Y+d)
	}
	return geom.Pt(pt.X+d, pt.Y)
}

// FakePin builds the placeholder shape for source centered at c on e. The
// layer is orthogonal to the edge direction.
func (p *Placer) FakePin(source string, c geom.Point, e edge.Edge) geom.Shape {
	h := 2 * p.cfg.HalfWire
	return geom.NewShape(source+FakeSuffix, geom.RectAround(c, h, h), p.cfg.Layer(!e.Vertical()))
}

// Place finds a conflict-free position for pin on e, registers it in st and
// returns the placement. Data-output roles also keep the via clearance from
// their source once displaced.
func (p *Placer) Place(st *State, pin geom.Shape, role Role, e edge.Edge) (Placement, error) {
	up := false
	if role.IsDataOut() {
		bit, ok := BitIndex(pin.Name)
		up = ok && bit%2 == 0
	}
	return p.place(st, pin, role, e, role.IsDataOut(), up)
}

func (p *Placer) place(st *State, pin geom.Shape, role Role, e edge.Edge, viaClearance, up bool) (Placement, error) {
	if _, ok := st.Lookup(pin.Name); ok {
		return Placement{}, errors.New(errors.ErrCodeInvalidInput, "pin %q already placed", pin.Name)
	}
	nominal := p.Nominal(e, pin.Center())
	pitch := p.cfg.MinPitch()
	free := func(d float64) bool {
		if st.Conflicts(e, e.Along(shift(e, nominal, d)), pitch) {
			return false
		}
		return !viaClearance || d == 0 || math.Abs(d) >= p.cfg.ViaClearance
	}
	d, attempts, err := Probe(Forward, p.cfg.ProbeStep, p.cfg.MaxProbeSteps, free)
	if err != nil {
		return Placement{}, errors.Wrap(errors.ErrCodePlacementInfeasible, err,
			"no free position for %s on %s edge after %d steps", pin.Name, e, p.cfg.MaxProbeSteps)
	}
	if attempts > 0 {
		p.logger.Warn("overlap, changing position", "pin", pin.Name, "edge", e, "displacement", geom.Round3(d))
	}
	center := shift(e, nominal, d)
	pl := Placement{
		Source:       pin,
		Fake:         p.FakePin(pin.Name, center, e),
		Center:       center,
		Edge:         e,
		Role:         role,
		Up:           up,
		Displacement: d,
	}
	st.Add(pl)
	p.logger.Debug("pin added", "fake", pl.Fake)
	return pl, nil
}

// InitialPositions places every pin by role. Geometric roles are placed first
// in input order, data-output roles second. Names matching no role are
// collected in the report and left unplaced, unless the config asks for
// strict roles: then the pass fails with UNCLASSIFIED_PIN before placing
// anything.
func (p *Placer) InitialPositions(st *State, pins []geom.Shape) (Report, error) {
	var rep Report
	if len(pins) == 0 {
		return rep, errors.New(errors.ErrCodeInvalidInput, "no pins to place")
	}
	if p.cfg.StrictRoles {
		var unknown []string
		for _, pin := range pins {
			if _, ok := Rules[ClassifyRole(pin.Name)]; !ok {
				unknown = append(unknown, pin.Name)
			}
		}
		if len(unknown) > 0 {
			return rep, errors.New(errors.ErrCodeUnclassifiedPin, "no placement rule for %s", strings.Join(unknown, ", "))
		}
	}
	var deferred []geom.Shape
	for _, pin := range pins {
		role := ClassifyRole(pin.Name)
		rule, ok := Rules[role]
		if !ok {
			p.logger.Warn("unclassified pin", "pin", pin.Name)
			rep.Unclassified = append(rep.Unclassified, pin.Name)
			continue
		}
		if rule.Deferred {
			deferred = append(deferred, pin)
			continue
		}
		natural, _ := p.classifier.Closest(pin.Center())
		pl, err := p.Place(st, pin, role, rule.Edge(natural))
		if err != nil {
			return rep, err
		}
		rep.Placed = append(rep.Placed, pl)
	}
	for _, pin := range deferred {
		role := ClassifyRole(pin.Name)
		e, up, err := DataOutEdge(role, pin.Name, p.cfg.DataOutEdges)
		if err != nil {
			return rep, err
		}
		pl, err := p.place(st, pin, role, e, true, up)
		if err != nil {
			return rep, err
		}
		rep.Placed = append(rep.Placed, pl)
	}
	return rep, nil
}

// PlaceFallback places a pin using only geometry: address pins go to the
// nearest vertical edge, data-output pins to the nearest horizontal edge, and
// everything else to the classifier's edge.
func (p *Placer) PlaceFallback(st *State, pin geom.Shape) (Placement, error) {
	e, _ := p.classifier.Closest(pin.Center())
	role := ClassifyRole(pin.Name)
	switch {
	case strings.HasPrefix(pin.Name, "addr"):
		if e == edge.Top || e == edge.Left {
			e = edge.Left
		} else {
			e = edge.Right
		}
	case strings.HasPrefix(pin.Name, "dout"):
		if e == edge.Bottom || e == edge.Right {
			e = edge.Bottom
		} else {
			e = edge.Top
		}
	}
	return p.place(st, pin, role, e, false, false)
}

// Config returns the technology config the placer was built with.
func (p *Placer) Config() tech.Config { return p.cfg }

// Closest classifies c against the macro box.
func (p *Placer) Closest(c geom.Point) edge.Edge {
	e, _ := p.classifier.Closest(c)
	return e
}
