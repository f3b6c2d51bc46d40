package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/macroroute/pkg/buildinfo"
	"github.com/matzehuels/macroroute/pkg/cache"
	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/layout"
	"github.com/matzehuels/macroroute/pkg/observability"
	"github.com/matzehuels/macroroute/pkg/route"
	"github.com/matzehuels/macroroute/pkg/router"
	"github.com/matzehuels/macroroute/pkg/store"
)

// DefaultTTL is how long job results stay cached.
const DefaultTTL = 7 * 24 * time.Hour

// finderName identifies the path search in cache keys.
const finderName = "manhattan"

// Runner executes jobs with caching.
//
// The Runner holds no per-job state. Multiple goroutines can use the same
// Runner for different jobs; each Execute builds its own session.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Store receives a record of every executed (non-cached) job. Optional.
	Store store.Store
	// DiagDir receives dumps of unroutable supply nets. Empty disables them.
	DiagDir string
	// Refresh skips the cache lookup. Results are still written back.
	Refresh bool
	// TTL of cached results. Zero uses DefaultTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs every pass the job asks for: IO placement, supply routing and
// moat exits, in that order.
func (r *Runner) Execute(ctx context.Context, job Job) (res *Result, err error) {
	if err := job.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	jobHash, err := cache.HashJSON(job)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash job")
	}

	runID := uuid.NewString()
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnJobStart(ctx, runID, job.Name)
	defer func() { hooks.OnJobComplete(ctx, runID, job.Name, time.Since(start), err) }()

	key := r.Keyer.JobKey(jobHash, cache.JobKeyOpts{Finder: finderName, Version: buildinfo.Version})
	if !r.Refresh {
		if cached, ok := r.lookup(ctx, key); ok {
			cached.RunID = runID
			cached.CacheHit = true
			r.Logger.Info("job served from cache", "job", job.Name, "run", runID)
			return cached, nil
		}
	}

	res, err = r.run(ctx, job)
	if err != nil {
		r.saveFailure(ctx, jobHash, err)
		return nil, err
	}
	res.RunID = runID
	res.JobHash = jobHash
	res.Stats.Duration = time.Since(start)

	r.save(ctx, key, job, res)
	r.Logger.Info("job routed",
		"job", job.Name,
		"run", runID,
		"placed", res.Stats.Placed,
		"supply_pairs", res.Stats.SupplyPairs,
		"duration", res.Stats.Duration)
	return res, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "job")
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		r.Logger.Warn("discarding unreadable cache entry", "err", err)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "job")
	return &res, true
}

func (r *Runner) save(ctx context.Context, key string, job Job, res *Result) {
	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "job", len(data))
		}
	}
	if r.Store == nil {
		return
	}
	rec := store.Record{
		RunID:        res.RunID,
		JobName:      job.Name,
		JobHash:      res.JobHash,
		CreatedAt:    time.Now().UTC(),
		Layout:       res.Layout,
		Unclassified: res.Unclassified,
		Stats:        res.Stats.Map(),
	}
	if err := r.Store.Save(ctx, rec); err != nil {
		r.Logger.Warn("store write failed", "run", res.RunID, "err", err)
	}
}

// saveFailure caches the unroutable pair of a failed run under the diag key of
// its net so a later Failure call can report it without rerunning the job.
func (r *Runner) saveFailure(ctx context.Context, jobHash string, err error) {
	var uerr *errors.UnroutableError
	if !stderrors.As(err, &uerr) {
		return
	}
	data, merr := json.Marshal(uerr)
	if merr != nil {
		return
	}
	if err := r.Cache.Set(ctx, r.Keyer.DiagKey(jobHash, uerr.Net), data, r.ttl()); err != nil {
		r.Logger.Warn("cache write failed", "net", uerr.Net, "err", err)
	}
}

// Failure returns the last recorded unroutable pair of net for job, if any.
func (r *Runner) Failure(ctx context.Context, job Job, net string) (*errors.UnroutableError, bool, error) {
	if err := job.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	jobHash, err := cache.HashJSON(job)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash job")
	}
	data, hit, err := r.Cache.Get(ctx, r.Keyer.DiagKey(jobHash, net))
	if err != nil || !hit {
		return nil, false, err
	}
	var uerr errors.UnroutableError
	if err := json.Unmarshal(data, &uerr); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "decode failure of %s", net)
	}
	return &uerr, true, nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL == 0 {
		return DefaultTTL
	}
	return r.TTL
}

func (r *Runner) run(ctx context.Context, job Job) (*Result, error) {
	box, err := job.Box()
	if err != nil {
		return nil, err
	}
	mem := layout.NewMemory(job.Pins...)
	s, err := router.New(box, job.Tech, mem, router.Options{
		Finder:  route.NewManhattan(job.Tech),
		Logger:  r.Logger,
		DiagDir: r.DiagDir,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if len(job.IOPins) > 0 {
		addIO := s.AddIOPins
		if job.ConnectIO {
			addIO = s.AddIOPinsConnected
		}
		rep, err := addIO(ctx, job.IOPins)
		if err != nil {
			return nil, err
		}
		res.Placements = rep.Placed
		res.Unclassified = rep.Unclassified
	}
	if len(job.Supply) > 0 {
		nets, err := s.RouteSupply(ctx, job.Supply)
		if err != nil {
			return nil, err
		}
		res.Supply = nets
	}
	for _, m := range job.Moat {
		exits, err := s.RouteMoat(ctx, m.Net, m.Pins)
		if err != nil {
			return nil, err
		}
		res.Moat = append(res.Moat, exits...)
	}

	res.Layout = mem.Export()
	res.Stats = Stats{
		Pins:      len(job.Pins),
		Placed:    len(res.Placements),
		MoatExits: len(res.Moat),
		Paths:     len(res.Layout.Paths),
		Vias:      len(res.Layout.Vias),
	}
	for _, p := range res.Placements {
		if p.Displacement != 0 {
			res.Stats.Displaced++
		}
	}
	for _, n := range res.Supply {
		res.Stats.SupplyPairs += len(n.Pairs)
	}
	return res, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(ctx); err == nil {
			err = serr
		}
	}
	return err
}
