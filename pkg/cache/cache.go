// Package cache stores job results between runs.
//
// Three backends implement [Cache]: [FileCache] for the developer harness,
// [RedisCache] for shared runs, and [NullCache] when caching is off. Keys are
// built by a [Keyer] from a hash of the job content, so an unchanged job hits
// the cache regardless of where its file lives.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value stored under key and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// JobKeyOpts are the run parameters that change a job's result without
// changing the job itself.
type JobKeyOpts struct {
	// Finder names the path search used for supply routing.
	Finder string `json:"finder,omitempty"`
	// Version is the router build version.
	Version string `json:"version,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// JobKey returns the key of a job result.
	JobKey(jobHash string, opts JobKeyOpts) string
	// DiagKey returns the key of a diagnostic dump for one net.
	DiagKey(jobHash, net string) string
}

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// JobKey implements Keyer.
func (DefaultKeyer) JobKey(jobHash string, opts JobKeyOpts) string {
	return hashKey("job", jobHash, opts)
}

// DiagKey implements Keyer.
func (DefaultKeyer) DiagKey(jobHash, net string) string {
	return "diag:" + jobHash + ":" + net
}
