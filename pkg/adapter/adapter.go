package adapter

import (
	"context"

	"github.com/marmos91/dittocmis/pkg/registry"
)

// Adapter is a protocol binding that exposes the registry's repositories to
// clients, managed by the server.
//
// Lifecycle:
//  1. Creation: Adapter is created with binding-specific configuration
//  2. Registry injection: SetRegistry() provides the shared repositories
//  3. Startup: Serve() starts listening and blocks until shutdown
//  4. Shutdown: Stop() initiates graceful shutdown with timeout
//
// Thread safety:
// Implementations must be safe for concurrent use. SetRegistry() is called
// once before Serve(), but Stop() may be called concurrently with Serve().
type Adapter interface {
	// Serve starts the binding and blocks until the context is cancelled
	// or an unrecoverable error occurs.
	//
	// When the context is cancelled, Serve must stop accepting requests,
	// let in-flight requests finish (with timeout) and return nil or
	// context.Canceled. Returning before cancellation is treated as fatal
	// and stops every other adapter.
	Serve(ctx context.Context) error

	// SetRegistry injects the registry holding every repository.
	// Called exactly once, before Serve().
	SetRegistry(reg *registry.Registry)

	// Stop initiates graceful shutdown. It must be idempotent, safe to call
	// concurrently with Serve() and respect the context deadline.
	Stop(ctx context.Context) error

	// Protocol returns the binding name for logging, e.g. "CMIS-Browser".
	Protocol() string

	// Port returns the TCP port the binding listens on.
	Port() int
}
