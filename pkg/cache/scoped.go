package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects can share one
// Redis instance without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "sram_1kb:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// JobKey generates a prefixed job result key.
func (k *ScopedKeyer) JobKey(jobHash string, opts JobKeyOpts) string {
	return k.prefix + k.inner.JobKey(jobHash, opts)
}

// DiagKey generates a prefixed diagnostic key.
func (k *ScopedKeyer) DiagKey(jobHash, net string) string {
	return k.prefix + k.inner.DiagKey(jobHash, net)
}
