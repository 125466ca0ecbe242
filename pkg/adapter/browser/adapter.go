// Package browser is a JSON-over-HTTP binding for the repositories of a
// registry. Every route is a read; write routes exist only to report that
// the operation is not supported.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/internal/ratelimiter"
	"github.com/marmos91/dittocmis/pkg/metrics"
	"github.com/marmos91/dittocmis/pkg/registry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

// Config holds configuration parameters for the HTTP binding.
//
// Default values (applied by New if zero):
//   - Port: 8080
//   - ReadTimeout: 30s
//   - WriteTimeout: 60s
//   - IdleTimeout: 2m
//   - ShutdownTimeout: 30s
//   - ServiceName: "dittocmis"
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// RateLimit throttles each client address. A zero rate disables it.
	RateLimit ratelimiter.Config

	// ServiceName names the server in trace spans.
	ServiceName string

	// Realm is sent in WWW-Authenticate challenges.
	// Default: "dittocmis"
	Realm string
}

func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 2 * time.Minute
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.ServiceName == "" {
		c.ServiceName = "dittocmis"
	}
	if c.Realm == "" {
		c.Realm = "dittocmis"
	}
}

// BrowserAdapter serves the HTTP binding.
//
// Shutdown flow:
//  1. Context cancelled or Stop() called
//  2. Listener closed, no new requests accepted
//  3. In-flight requests finish within ShutdownTimeout
//
// Thread safety:
// All methods are safe for concurrent use. Stop() is idempotent.
type BrowserAdapter struct {
	config   Config
	echo     *echo.Echo
	metrics  metrics.HTTPMetrics
	registry *registry.Registry

	shutdownOnce sync.Once
}

// New creates a binding with its routes installed. m may be nil.
func New(config Config, m metrics.HTTPMetrics) *BrowserAdapter {
	config.applyDefaults()
	if m == nil {
		m = metrics.NewNoopHTTPMetrics()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = config.ReadTimeout
	e.Server.WriteTimeout = config.WriteTimeout
	e.Server.IdleTimeout = config.IdleTimeout

	a := &BrowserAdapter{config: config, echo: e, metrics: m}
	e.HTTPErrorHandler = a.handleError

	e.Use(otelecho.Middleware(config.ServiceName))
	e.Use(a.recordRequests)
	e.Use(middleware.Recover())
	e.Use(ratelimiter.Middleware(ratelimiter.New(config.RateLimit), m.RecordRateLimited))

	a.routes()
	return a
}

// SetRegistry injects the repositories to serve.
func (a *BrowserAdapter) SetRegistry(reg *registry.Registry) {
	a.registry = reg
}

// Handler returns the binding's routes, mainly for tests.
func (a *BrowserAdapter) Handler() http.Handler {
	return a.echo
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (a *BrowserAdapter) Serve(ctx context.Context) error {
	if a.registry == nil {
		return fmt.Errorf("browser binding: no registry set")
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.Port))
	if err != nil {
		return fmt.Errorf("browser binding: listen on port %d: %w", a.config.Port, err)
	}
	a.echo.Listener = listener

	errChan := make(chan error, 1)
	go func() {
		logger.Info("CMIS browser binding listening on port %d", a.config.Port)
		if err := a.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()
		if err := a.Stop(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errChan:
		return fmt.Errorf("browser binding failed: %w", err)
	}
}

// Stop shuts the server down. Safe to call more than once.
func (a *BrowserAdapter) Stop(ctx context.Context) error {
	var shutdownErr error
	a.shutdownOnce.Do(func() {
		if err := a.echo.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("browser binding shutdown: %w", err)
			return
		}
		logger.Info("CMIS browser binding stopped")
	})
	return shutdownErr
}

func (a *BrowserAdapter) Protocol() string {
	return "CMIS-Browser"
}

func (a *BrowserAdapter) Port() int {
	return a.config.Port
}

// recordRequests reports every request by route pattern and final status.
func (a *BrowserAdapter) recordRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			// resolve the status now; the error handler runs after us
			c.Error(err)
		}
		a.metrics.RecordRequest(c.Path(), c.Response().Status, time.Since(start))
		return nil
	}
}
