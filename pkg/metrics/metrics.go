// Package metrics wires the session engine's Prometheus metrics, gated by
// an explicit opt-in the way the teacher's pkg/metrics package gates
// BadgerDB/cache/S3 instrumentation: InitRegistry must be called before
// any constructor returns a non-nil metrics struct, so an embedder that
// never calls it pays zero instrumentation overhead.
package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	enabled  atomic.Bool
	mu       sync.Mutex
	registry *prometheus.Registry
)

// InitRegistry enables metrics collection and creates a fresh registry.
// Safe to call more than once; later calls replace the registry.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	registry = prometheus.NewRegistry()
	enabled.Store(true)
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled.Load()
}

// GetRegistry returns the active registry, or nil if metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}
