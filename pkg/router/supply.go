package router

import (
	"context"
	stderrors "errors"
	"math"
	"time"

	"github.com/matzehuels/macroroute/pkg/diag"
	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/route"
	"github.com/matzehuels/macroroute/pkg/supply"
)

// SupplyNet configures the supply pass of one net.
type SupplyNet struct {
	Net string `toml:"net" json:"net"`

	// Ring builds a four-sided ring for the net before connecting its pins.
	Ring bool `toml:"ring" json:"ring,omitempty"`
	// Inner pulls the ring inside the box by twice its thickness.
	Inner bool `toml:"inner" json:"inner,omitempty"`
	// Taps connects pins to the ring through its taps instead of matching
	// each pin to the nearest ring side.
	Taps bool `toml:"taps" json:"taps,omitempty"`

	// ExclusiveRingMatch lets each ring side serve a single pin.
	ExclusiveRingMatch bool `toml:"exclusive_ring_match" json:"exclusive_ring_match,omitempty"`
	// MaxRingDistance caps the pin-to-side gap of a ring match. Zero means no cap.
	MaxRingDistance float64 `toml:"max_ring_distance" json:"max_ring_distance,omitempty"`
}

// Policy returns the ring matching policy of the net.
func (n SupplyNet) Policy() supply.Policy {
	d := n.MaxRingDistance
	if d <= 0 {
		d = math.Inf(1)
	}
	return supply.Policy{MaxDistance: d, Exclusive: n.ExclusiveRingMatch}
}

// NetResult is the outcome of routing one supply net.
type NetResult struct {
	Net   string        `json:"net"`
	Pins  int           `json:"pins"`
	Pairs []supply.Pair `json:"pairs"`
	Wires int           `json:"wires"`
	Ring  *supply.Ring  `json:"ring,omitempty"`
}

// RouteSupply connects every net in order. Pins of all nets are entered as
// blockages first so a net never routes across another net's pins. Routing
// stops at the first pair the finder cannot connect; the error carries an
// errors.UnroutableError and, when a diagnostic directory is set, the path
// of the dump written for the net.
func (s *Session) RouteSupply(ctx context.Context, nets []SupplyNet) ([]NetResult, error) {
	pinsByNet := make(map[string][]geom.Shape, len(nets))
	for _, n := range nets {
		if n.Net == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "supply net has no name")
		}
		pins := s.insidePins(n.Net)
		pinsByNet[n.Net] = pins
		for _, p := range pins {
			s.blockages.Add(n.Net, p)
		}
	}

	results := make([]NetResult, 0, len(nets))
	for _, n := range nets {
		start := time.Now()
		pins := pinsByNet[n.Net]
		s.hooks.OnSupplyNetStart(ctx, n.Net, len(pins))
		res, err := s.routeNet(ctx, n, pins)
		s.hooks.OnSupplyNetComplete(ctx, n.Net, len(res.Pairs), time.Since(start), err)
		if err != nil {
			return results, err
		}
		s.logger.Info("supply net routed", "net", n.Net, "pins", len(pins), "pairs", len(res.Pairs))
		results = append(results, res)
	}
	return results, nil
}

// insidePins returns the layout pins of net whose center lies in the box.
func (s *Session) insidePins(net string) []geom.Shape {
	var pins []geom.Shape
	for _, p := range s.layout.Pins(net) {
		if s.box.Contains(p.Center()) {
			pins = append(pins, p)
		}
	}
	return pins
}

func (s *Session) routeNet(ctx context.Context, n SupplyNet, pins []geom.Shape) (NetResult, error) {
	res := NetResult{Net: n.Net, Pins: len(pins)}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if len(pins) == 0 {
		return res, errors.New(errors.ErrCodePinNotFound, "no pins of %s inside %s", n.Net, s.box.Rect)
	}

	var pairs []supply.Pair
	var isFake func(geom.Shape) bool
	var err error
	if n.Ring {
		b := supply.Builder{Box: s.box, Config: s.cfg, Layout: s.layout, Blockages: s.blockages}
		ring, rerr := b.RingPin(n.Net, n.Inner)
		if rerr != nil {
			return res, rerr
		}
		s.rings[n.Net] = ring
		res.Ring = &ring
		if n.Taps {
			isFake = supply.FakeSet(ring.Taps)
			pairs, err = supply.MSTPairs(append(append([]geom.Shape(nil), pins...), ring.Taps...), isFake)
		} else {
			pairs, err = supply.MSTWithRing(pins, ring.Segments(), n.Policy(), nil)
		}
	} else {
		pairs, err = supply.MSTPairs(pins, nil)
	}
	if err != nil {
		return res, err
	}

	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path, err := s.finder.FindPath(ctx, pair.Source, pair.Target, s.blockages)
		if stderrors.Is(err, route.ErrNoPath) {
			return res, s.unroutable(ctx, n.Net, pins, pairs[:i], pair, isFake)
		}
		if err != nil {
			return res, err
		}
		if path == nil {
			return res, s.unroutable(ctx, n.Net, pins, pairs[:i], pair, isFake)
		}
		shapes, err := s.lowerer.AddPath(n.Net, path)
		if err != nil {
			return res, err
		}
		for _, sh := range shapes {
			s.blockages.Add(n.Net, sh)
		}
		res.Wires += len(shapes)
		res.Pairs = append(res.Pairs, pair)
		s.logger.Debug("pair routed", "net", n.Net, "source", pair.Source.Center(), "target", pair.Target.Center(), "length", geom.Round3(path.Length()))
	}
	return res, nil
}

func (s *Session) unroutable(ctx context.Context, net string, pins []geom.Shape, routed []supply.Pair, failed supply.Pair, isFake func(geom.Shape) bool) error {
	src, dst := failed.Source.Center().String(), failed.Target.Center().String()
	s.hooks.OnUnroutable(ctx, net, src, dst)
	uerr := &errors.UnroutableError{Net: net, Source: src, Target: dst}
	if s.diagDir != "" {
		path, err := diag.Write(s.diagDir, diag.Dump{
			Net:    net,
			Pins:   pins,
			Pairs:  routed,
			Failed: &failed,
			IsFake: isFake,
		})
		if err != nil {
			s.logger.Warn("diagnostic dump failed", "net", net, "err", err)
		} else {
			uerr.Diagnostic = path
		}
	}
	s.logger.Error("unroutable pair", "net", net, "source", src, "target", dst, "diagnostic", uerr.Diagnostic)
	return errors.Wrap(errors.ErrCodeUnroutable, uerr, "route %s", net)
}

// Ring returns the ring built for net by RouteSupply.
func (s *Session) Ring(net string) (supply.Ring, bool) {
	r, ok := s.rings[net]
	return r, ok
}

// RouteMoat connects each named moat pin straight out to the ring of net.
// Exits avoid the perimeter positions already taken by IO pins and earlier
// moat exits. RouteSupply must have built the ring.
func (s *Session) RouteMoat(ctx context.Context, net string, names []string) ([]supply.Exit, error) {
	ring, ok := s.rings[net]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no ring for %s; route the supply net with ring = true first", net)
	}
	pins, err := s.lookup(names)
	if err != nil {
		return nil, err
	}
	m := supply.Moat{Box: s.box, Config: s.cfg, Layout: s.layout}
	exits := make([]supply.Exit, 0, len(pins))
	for _, pin := range pins {
		if err := ctx.Err(); err != nil {
			return exits, err
		}
		exit, err := m.Resolve(pin, &ring, s.state)
		if err != nil {
			return exits, err
		}
		if exit.Displacement != 0 {
			s.hooks.OnPinDisplaced(ctx, exit.Edge.String(), exit.Displacement)
			s.logger.Warn("moat exit moved", "pin", pin.Name, "edge", exit.Edge, "displacement", geom.Round3(exit.Displacement))
		}
		exits = append(exits, exit)
	}
	return exits, nil
}
