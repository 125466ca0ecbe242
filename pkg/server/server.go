package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/adapter"
	"github.com/marmos91/dittocmis/pkg/registry"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyServed is returned by a second call to Serve.
var ErrAlreadyServed = errors.New("server: Serve already called")

// DittoServer runs protocol bindings over one shared repository registry.
//
// Bindings are registered with AddAdapter before Serve. Serve blocks until
// ctx is cancelled or a binding fails, then stops every binding in reverse
// registration order.
type DittoServer struct {
	registry *registry.Registry

	mu       sync.Mutex
	adapters []adapter.Adapter
	served   bool

	// StopTimeout bounds the graceful shutdown of all bindings.
	StopTimeout time.Duration
}

// New creates a server over reg. Panics if reg is nil.
func New(reg *registry.Registry) *DittoServer {
	if reg == nil {
		panic("registry cannot be nil")
	}
	return &DittoServer{
		registry:    reg,
		StopTimeout: 30 * time.Second,
	}
}

// AddAdapter injects the registry into a and schedules it for Serve.
// Duplicate protocols and port conflicts are rejected.
func (s *DittoServer) AddAdapter(a adapter.Adapter) error {
	if a == nil {
		return errors.New("adapter cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.served {
		return ErrAlreadyServed
	}

	protocol, port := a.Protocol(), a.Port()
	for _, existing := range s.adapters {
		if existing.Protocol() == protocol {
			return fmt.Errorf("adapter for protocol %s already registered", protocol)
		}
		if existing.Port() == port {
			return fmt.Errorf("port %d already in use by %s adapter", port, existing.Protocol())
		}
	}

	a.SetRegistry(s.registry)
	s.adapters = append(s.adapters, a)

	logger.Info("Registered %s adapter on port %d", protocol, port)
	return nil
}

// Serve starts all bindings and blocks until ctx is done or one fails.
// It returns ctx.Err() after a cancellation, the failing binding's error
// otherwise.
func (s *DittoServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.served {
		s.mu.Unlock()
		return ErrAlreadyServed
	}
	s.served = true
	adapters := append([]adapter.Adapter(nil), s.adapters...)
	s.mu.Unlock()

	if len(adapters) == 0 {
		return errors.New("no adapters registered; call AddAdapter() before Serve()")
	}

	logger.Info("Starting server with %d adapter(s) and %d repositories", len(adapters), s.registry.CountRepositories())

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range adapters {
		g.Go(func() error {
			logger.Info("Starting %s adapter on port %d", a.Protocol(), a.Port())
			err := a.Serve(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("%s adapter failed: %v", a.Protocol(), err)
				return fmt.Errorf("%s adapter error: %w", a.Protocol(), err)
			}
			logger.Debug("%s adapter stopped", a.Protocol())
			return nil
		})
	}

	// stop everyone once the first binding fails or ctx is cancelled
	<-gctx.Done()
	s.stopAll(adapters)

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return ctx.Err()
}

// stopAll signals every binding in reverse registration order.
func (s *DittoServer) stopAll(adapters []adapter.Adapter) {
	ctx, cancel := context.WithTimeout(context.Background(), s.StopTimeout)
	defer cancel()

	logger.Info("Initiating graceful shutdown of %d adapter(s)", len(adapters))
	for i := len(adapters) - 1; i >= 0; i-- {
		if err := adapters[i].Stop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Error stopping %s adapter: %v", adapters[i].Protocol(), err)
		}
	}
}

// Adapters returns a copy of the registered bindings.
func (s *DittoServer) Adapters() []adapter.Adapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]adapter.Adapter(nil), s.adapters...)
}
