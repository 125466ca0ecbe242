package config

import (
	"fmt"

	"github.com/marmos91/dittocmis/internal/ratelimiter"
	"github.com/marmos91/dittocmis/internal/telemetry"
	"github.com/marmos91/dittocmis/pkg/adapter"
	"github.com/marmos91/dittocmis/pkg/adapter/browser"
	"github.com/marmos91/dittocmis/pkg/metrics"
)

// CreateAdapters creates all enabled protocol bindings. httpMetrics may be
// nil.
func CreateAdapters(cfg *Config, httpMetrics metrics.HTTPMetrics) ([]adapter.Adapter, error) {
	var adapters []adapter.Adapter

	if cfg.Server.HTTP.Enabled {
		adapters = append(adapters, browser.New(browser.Config{
			Port:            cfg.Server.HTTP.Port,
			ReadTimeout:     cfg.Server.HTTP.ReadTimeout,
			WriteTimeout:    cfg.Server.HTTP.WriteTimeout,
			IdleTimeout:     cfg.Server.HTTP.IdleTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			RateLimit: ratelimiter.Config{
				RequestsPerSecond: cfg.Server.HTTP.RateLimit.RequestsPerSecond,
				Burst:             cfg.Server.HTTP.RateLimit.Burst,
			},
			ServiceName: cfg.Telemetry.ServiceName,
		}, httpMetrics))
	}

	if len(adapters) == 0 {
		return nil, fmt.Errorf("no adapters enabled in configuration")
	}
	return adapters, nil
}

// Tracing converts the telemetry section for telemetry.Setup.
func (c *Config) Tracing() telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		ServiceName:    c.Telemetry.ServiceName,
		ServiceVersion: Version,
		SampleRatio:    c.Telemetry.SampleRatio,
	}
}
