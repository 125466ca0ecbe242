// Package telemetry installs the process-wide OpenTelemetry tracer
// provider. Facade operations and HTTP requests open spans through the
// global provider; when telemetry is disabled those spans are no-ops.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/dittocmis/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config configures tracing.
type Config struct {
	Enabled bool

	// Endpoint is the OTLP/HTTP collector address, host:port.
	Endpoint string

	// Insecure sends spans over plain HTTP.
	Insecure bool

	ServiceName    string
	ServiceVersion string

	// SampleRatio is the fraction of root spans recorded. Values outside
	// (0, 1] record everything.
	SampleRatio float64
}

// ShutdownFunc flushes pending spans and stops the exporter.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs a tracer provider exporting over OTLP/HTTP. With tracing
// disabled it leaves the global no-op provider in place.
func Setup(ctx context.Context, config Config) (ShutdownFunc, error) {
	if !config.Enabled {
		logger.Debug("Tracing disabled")
		return noopShutdown, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	provider, err := install(exporter, config)
	if err != nil {
		return nil, err
	}
	return provider.Shutdown, nil
}

// install wires exporter into a new global tracer provider.
func install(exporter sdktrace.SpanExporter, config Config) (*sdktrace.TracerProvider, error) {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", config.ServiceName),
		attribute.String("service.version", config.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if config.SampleRatio > 0 && config.SampleRatio < 1 {
		sampler = sdktrace.TraceIDRatioBased(config.SampleRatio)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing enabled: exporting to %s as %s", config.Endpoint, config.ServiceName)
	return provider, nil
}
