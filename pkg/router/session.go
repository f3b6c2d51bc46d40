package router

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/macroroute/pkg/blockage"
	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/layout"
	"github.com/matzehuels/macroroute/pkg/observability"
	"github.com/matzehuels/macroroute/pkg/placement"
	"github.com/matzehuels/macroroute/pkg/planner"
	"github.com/matzehuels/macroroute/pkg/route"
	"github.com/matzehuels/macroroute/pkg/supply"
	"github.com/matzehuels/macroroute/pkg/tech"
	"github.com/matzehuels/macroroute/pkg/wire"
)

// Options configures a Session. Zero values select defaults.
type Options struct {
	Finder route.Finder               // default: route.NewManhattan(cfg)
	Logger *log.Logger                // default: discard
	Hooks  observability.RoutingHooks // default: observability.Routing()
	// DiagDir receives a DOT/SVG dump of a net that cannot be routed.
	// Empty disables dumps.
	DiagDir string
}

// Session is one routing run over a macro.
type Session struct {
	box    geom.BoundingBox
	cfg    tech.Config
	layout layout.Layout

	placer    *placement.Placer
	planner   *planner.Planner
	lowerer   *wire.Lowerer
	state     *placement.State
	blockages *blockage.Index
	finder    route.Finder
	rings     map[string]supply.Ring

	logger  *log.Logger
	hooks   observability.RoutingHooks
	diagDir string
}

// New validates box and cfg and returns a session writing into l.
func New(box geom.BoundingBox, cfg tech.Config, l layout.Layout, opts Options) (*Session, error) {
	if l == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Hooks == nil {
		opts.Hooks = observability.Routing()
	}
	if opts.Finder == nil {
		opts.Finder = route.NewManhattan(cfg)
	}
	placer, err := placement.NewPlacer(box, cfg, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &Session{
		box:       box,
		cfg:       cfg,
		layout:    l,
		placer:    placer,
		planner:   planner.New(box, cfg),
		lowerer:   wire.New(l, cfg),
		state:     placement.NewState(),
		blockages: blockage.New(),
		finder:    opts.Finder,
		rings:     make(map[string]supply.Ring),
		logger:    opts.Logger,
		hooks:     opts.Hooks,
		diagDir:   opts.DiagDir,
	}, nil
}

// State returns the placement state shared by the passes of this session.
func (s *Session) State() *placement.State { return s.state }

// Blockages returns the blockage index used by supply routing.
func (s *Session) Blockages() *blockage.Index { return s.blockages }

// lookup returns the layout pin of every name, in order.
func (s *Session) lookup(names []string) ([]geom.Shape, error) {
	pins := make([]geom.Shape, 0, len(names))
	for _, name := range names {
		pin, ok := s.layout.Pin(name)
		if !ok {
			return nil, errors.New(errors.ErrCodePinNotFound, "pin %q not found", name)
		}
		pins = append(pins, pin)
	}
	return pins, nil
}

// place runs initial placement for names and reports it to the hooks.
func (s *Session) place(ctx context.Context, names []string) (placement.Report, error) {
	start := time.Now()
	s.hooks.OnPlacementStart(ctx, len(names))

	rep, err := s.placeAll(ctx, names)
	s.hooks.OnPlacementComplete(ctx, len(rep.Placed), len(rep.Unclassified), time.Since(start), err)
	if err != nil {
		return rep, err
	}
	for _, pl := range rep.Placed {
		if pl.Displacement != 0 {
			s.hooks.OnPinDisplaced(ctx, pl.Edge.String(), pl.Displacement)
		}
		s.blockages.Add(pl.Source.Name, pl.Fake)
	}
	return rep, nil
}

func (s *Session) placeAll(ctx context.Context, names []string) (placement.Report, error) {
	if err := ctx.Err(); err != nil {
		return placement.Report{}, err
	}
	pins, err := s.lookup(names)
	if err != nil {
		return placement.Report{}, err
	}
	return s.placer.InitialPositions(s.state, pins)
}

// AddIOPins moves each named pin to its perimeter position: the layout pin is
// replaced by its placeholder shape. Nothing is wired.
func (s *Session) AddIOPins(ctx context.Context, names []string) (placement.Report, error) {
	rep, err := s.place(ctx, names)
	if err != nil {
		return rep, err
	}
	for _, pl := range rep.Placed {
		if err := s.layout.ReplacePin(pl.Source.Name, pl.Fake); err != nil {
			return rep, err
		}
	}
	s.logger.Info("io pins placed", "placed", len(rep.Placed), "unclassified", len(rep.Unclassified))
	return rep, nil
}

// AddIOPinsConnected places each named pin and wires it from its original
// position to the placeholder. When done the placeholder carries the pin's
// name and the original shape is gone.
func (s *Session) AddIOPinsConnected(ctx context.Context, names []string) (placement.Report, error) {
	rep, err := s.place(ctx, names)
	if err != nil {
		return rep, err
	}
	for _, pl := range rep.Placed {
		if err := s.layout.AddPin(pl.Fake); err != nil {
			return rep, err
		}
	}
	for _, pl := range rep.Placed {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		plan, err := s.planner.Decide(pl.Source, pl.Fake, pl.Up)
		if err != nil {
			return rep, err
		}
		if err := s.lowerer.AddPlan(plan); err != nil {
			return rep, err
		}
		s.logger.Debug("io pin connected", "pin", pl.Source.Name, "edge", pl.Edge, "points", len(plan.Points))
	}
	for _, pl := range rep.Placed {
		if err := s.layout.RemovePin(pl.Fake.Name); err != nil {
			return rep, err
		}
		if err := s.layout.ReplacePin(pl.Source.Name, pl.Fake); err != nil {
			return rep, err
		}
	}
	s.logger.Info("io pins connected", "placed", len(rep.Placed), "unclassified", len(rep.Unclassified))
	return rep, nil
}
