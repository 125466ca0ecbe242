// Package metrics defines the metrics interfaces of the repository and the
// HTTP server exposing them.
//
// Metrics are optional. Until InitRegistry is called, constructors in the
// prometheus subpackage return no-op implementations.
//
// Usage:
//
//	metrics.InitRegistry()
//	reg := registry.NewRegistry(registry.Options{
//	    Metrics: prometheus.NewRepositoryMetrics(),
//	})
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// registry is written once by InitRegistry
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// Call it before creating metrics instances. Subsequent calls are ignored.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global Prometheus registry.
//
// Returns nil if InitRegistry has not been called.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}
