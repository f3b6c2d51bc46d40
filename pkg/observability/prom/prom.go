// Package prom implements the observability hooks on Prometheus collectors.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/macroroute/pkg/observability"
)

// Hooks records routing, pipeline and cache events as Prometheus metrics.
type Hooks struct {
	PinsPlaced       prometheus.Counter
	PinsUnclassified prometheus.Counter
	PinDisplacement  *prometheus.HistogramVec
	SupplyPairs      *prometheus.CounterVec
	SupplyDuration   *prometheus.HistogramVec
	Unroutable       *prometheus.CounterVec
	Jobs             *prometheus.CounterVec
	JobDuration      prometheus.Histogram
	CacheOps         *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		PinsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "macroroute_pins_placed_total",
			Help: "Perimeter placeholders placed",
		}),
		PinsUnclassified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "macroroute_pins_unclassified_total",
			Help: "Escape pins whose name matched no role",
		}),
		PinDisplacement: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macroroute_pin_displacement",
				Help:    "Distance placeholders were pushed off their nominal position",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"edge"},
		),
		SupplyPairs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macroroute_supply_pairs_total",
				Help: "Supply connections routed",
			},
			[]string{"net"},
		),
		SupplyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macroroute_supply_net_seconds",
				Help:    "Time spent routing one supply net",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"net", "status"},
		),
		Unroutable: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macroroute_unroutable_total",
				Help: "Pairs the path search could not connect",
			},
			[]string{"net"},
		),
		Jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macroroute_jobs_total",
				Help: "Jobs run by the pipeline",
			},
			[]string{"status"},
		),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "macroroute_job_seconds",
			Help:    "Job wall time",
			Buckets: prometheus.DefBuckets,
		}),
		CacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macroroute_cache_operations_total",
				Help: "Cache lookups and writes",
			},
			[]string{"key_type", "op"},
		),
	}
	reg.MustRegister(
		h.PinsPlaced, h.PinsUnclassified, h.PinDisplacement,
		h.SupplyPairs, h.SupplyDuration, h.Unroutable,
		h.Jobs, h.JobDuration, h.CacheOps,
	)
	return h
}

// Register installs h as the global routing, pipeline and cache hooks.
func (h *Hooks) Register() {
	observability.SetRoutingHooks(h)
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *Hooks) OnPlacementStart(context.Context, int) {}

func (h *Hooks) OnPlacementComplete(_ context.Context, placed, unclassified int, _ time.Duration, _ error) {
	h.PinsPlaced.Add(float64(placed))
	h.PinsUnclassified.Add(float64(unclassified))
}

func (h *Hooks) OnPinDisplaced(_ context.Context, edge string, displacement float64) {
	h.PinDisplacement.WithLabelValues(edge).Observe(displacement)
}

func (h *Hooks) OnSupplyNetStart(context.Context, string, int) {}

func (h *Hooks) OnSupplyNetComplete(_ context.Context, net string, pairs int, d time.Duration, err error) {
	h.SupplyPairs.WithLabelValues(net).Add(float64(pairs))
	h.SupplyDuration.WithLabelValues(net, status(err)).Observe(d.Seconds())
}

func (h *Hooks) OnUnroutable(_ context.Context, net, _, _ string) {
	h.Unroutable.WithLabelValues(net).Inc()
}

func (h *Hooks) OnJobStart(context.Context, string, string) {}

func (h *Hooks) OnJobComplete(_ context.Context, _, _ string, d time.Duration, err error) {
	h.Jobs.WithLabelValues(status(err)).Inc()
	h.JobDuration.Observe(d.Seconds())
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.CacheOps.WithLabelValues(keyType, "set").Inc()
}

var (
	_ observability.RoutingHooks  = (*Hooks)(nil)
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
)
