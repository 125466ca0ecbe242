package config

import (
	"github.com/marmos91/dittocmis/pkg/metrics"
	"github.com/marmos91/dittocmis/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// Repository records facade operations (never nil, no-op if disabled)
	Repository metrics.RepositoryMetrics

	// HTTP records browser binding requests (never nil, no-op if disabled)
	HTTP metrics.HTTPMetrics
}

// InitializeMetrics creates the metrics components. When enabled it
// initializes the global Prometheus registry and a metrics server whose
// /healthz probes health; otherwise every collector is a no-op.
func InitializeMetrics(cfg *Config, health metrics.HealthFunc) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{
			Repository: metrics.NewNoopRepositoryMetrics(),
			HTTP:       metrics.NewNoopHTTPMetrics(),
		}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Server: metrics.NewServer(metrics.ServerConfig{
			Port:   cfg.Metrics.Port,
			Health: health,
		}),
		Repository: prometheus.NewRepositoryMetrics(),
		HTTP:       prometheus.NewHTTPMetrics(),
	}
}
