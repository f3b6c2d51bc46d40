// Package observability provides hooks for metrics and tracing.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about routing passes, pipeline runs and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the router and pipeline
// packages never import a metrics backend. The prom subpackage provides a
// Prometheus implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    h := prom.New(prometheus.DefaultRegisterer)
//	    observability.SetRoutingHooks(h)
//	    observability.SetCacheHooks(h)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Routing().OnSupplyNetStart(ctx, net, len(pins))
//	// ... route the net ...
//	observability.Routing().OnSupplyNetComplete(ctx, net, len(pairs), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Routing Hooks
// =============================================================================

// RoutingHooks receives events from a router session.
type RoutingHooks interface {
	// Escape placement events
	OnPlacementStart(ctx context.Context, pins int)
	OnPlacementComplete(ctx context.Context, placed, unclassified int, duration time.Duration, err error)
	OnPinDisplaced(ctx context.Context, edge string, displacement float64)

	// Supply routing events
	OnSupplyNetStart(ctx context.Context, net string, pins int)
	OnSupplyNetComplete(ctx context.Context, net string, pairs int, duration time.Duration, err error)
	OnUnroutable(ctx context.Context, net, source, target string)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from job runs.
type PipelineHooks interface {
	OnJobStart(ctx context.Context, runID, job string)
	OnJobComplete(ctx context.Context, runID, job string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRoutingHooks is a no-op implementation of RoutingHooks.
type NoopRoutingHooks struct{}

func (NoopRoutingHooks) OnPlacementStart(context.Context, int) {}
func (NoopRoutingHooks) OnPlacementComplete(context.Context, int, int, time.Duration, error) {
}
func (NoopRoutingHooks) OnPinDisplaced(context.Context, string, float64)                        {}
func (NoopRoutingHooks) OnSupplyNetStart(context.Context, string, int)                          {}
func (NoopRoutingHooks) OnSupplyNetComplete(context.Context, string, int, time.Duration, error) {}
func (NoopRoutingHooks) OnUnroutable(context.Context, string, string, string)                   {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnJobStart(context.Context, string, string)                          {}
func (NoopPipelineHooks) OnJobComplete(context.Context, string, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	routingHooks  RoutingHooks  = NoopRoutingHooks{}
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetRoutingHooks registers custom routing hooks.
// This should be called once at application startup before any routing pass.
func SetRoutingHooks(h RoutingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		routingHooks = h
	}
}

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any job runs.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Routing returns the registered routing hooks.
func Routing() RoutingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return routingHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	routingHooks = NoopRoutingHooks{}
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
