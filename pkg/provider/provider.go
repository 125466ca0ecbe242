// Package provider is the plug-point for dynamic properties: values computed
// per entity at projection time instead of being stored.
//
// Each registered provider contributes one property to folder and document
// types. A provider that fails yields a null value for its property; it never
// fails the projection.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// ErrNoValue reports that a provider has nothing to say about an entity
// (e.g. a content provider asked about a folder). The property is emitted as
// null and nothing is logged.
var ErrNoValue = errors.New("no value")

// Provider computes a dynamic property.
type Provider interface {
	// Name is unique within a Registry and becomes part of the property id.
	Name() string

	// Writable is reported as the property's updatability.
	Writable() bool

	// Value computes the property for entity using session.
	Value(ctx context.Context, session resource.Session, entity *resource.Entity) (string, error)
}

// Registry holds the configured providers.
//
// Thread safety:
// Safe for concurrent use. Registration normally happens once at startup.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a registry holding providers.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds p. Names must be unique.
func (r *Registry) Register(p Provider) error {
	if p == nil || p.Name() == "" {
		return fmt.Errorf("provider name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.Name()]; exists {
		return fmt.Errorf("provider %q already registered", p.Name())
	}
	r.providers[p.Name()] = p
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, bool) {
	if r == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	return p, ok
}

// List returns the providers sorted by name. A nil Registry is empty.
func (r *Registry) List() []Provider {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	list := r.List()
	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.Name()
	}
	return names
}
