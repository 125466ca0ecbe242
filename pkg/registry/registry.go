package registry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/auth"
	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/metrics"
	"github.com/marmos91/dittocmis/pkg/provider"
	"github.com/marmos91/dittocmis/pkg/repository"
	"github.com/marmos91/dittocmis/pkg/store/content"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// Registry manages all named resources: resource stores, content stores,
// and the repositories exposed over them. It provides thread-safe
// registration and lookup.
//
// Every resource store gets one type registry and one authenticator, shared
// by all repositories bound to it.
//
// Example usage:
//
//	reg := NewRegistry(Options{Providers: providers})
//	reg.RegisterResourceStore(ctx, "badger-main", badgerStore)
//	reg.RegisterContentStore("local-disk", fsStore)
//	reg.AddRepository(ctx, &RepositoryConfig{ID: "main", ResourceStore: "badger-main", ContentStore: "local-disk"})
//
//	repo, _ := reg.GetRepository("main")
type Registry struct {
	mu           sync.RWMutex
	options      Options
	stores       map[string]*storeEntry
	content      map[string]content.ContentStore
	repositories map[string]*Binding
}

// storeEntry is a resource store with the per-store collaborators every
// repository on it shares.
type storeEntry struct {
	store resource.Store
	types *repository.TypeRegistry
	auth  *auth.Authenticator
}

// Options are shared by every store and repository in a registry.
type Options struct {
	// Providers are the dynamic property providers added to every type
	// hierarchy. Nil means none.
	Providers *provider.Registry

	// Types configures the per-store type registries. Metrics is filled in
	// from Metrics when unset.
	Types repository.TypeRegistryConfig

	// Auth configures the per-store authenticators.
	Auth auth.Config

	// Metrics records repository operations. Nil disables collection.
	Metrics metrics.RepositoryMetrics

	// ProductVersion is reported by every repository.
	ProductVersion string
}

// NewRegistry creates an empty registry.
func NewRegistry(options Options) *Registry {
	if options.Providers == nil {
		options.Providers, _ = provider.NewRegistry()
	}
	if options.Metrics == nil {
		options.Metrics = metrics.NewNoopRepositoryMetrics()
	}
	if options.Types.Metrics == nil {
		options.Types.Metrics = options.Metrics
	}

	return &Registry{
		options:      options,
		stores:       make(map[string]*storeEntry),
		content:      make(map[string]content.ContentStore),
		repositories: make(map[string]*Binding),
	}
}

// RegisterResourceStore adds a named resource store and builds its type
// hierarchy. Returns an error if a store with the same name already exists
// or the schema cannot be read.
func (r *Registry) RegisterResourceStore(ctx context.Context, name string, store resource.Store) error {
	if store == nil {
		return fmt.Errorf("cannot register nil resource store")
	}
	if name == "" {
		return fmt.Errorf("cannot register resource store with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[name]; exists {
		return fmt.Errorf("resource store %q already registered", name)
	}

	types, err := repository.NewTypeRegistry(ctx, store, r.options.Providers, r.options.Types)
	if err != nil {
		return fmt.Errorf("resource store %q: build types: %w", name, err)
	}

	r.stores[name] = &storeEntry{
		store: store,
		types: types,
		auth:  auth.New(store, r.options.Auth),
	}
	return nil
}

// RegisterContentStore adds a named content store to the registry.
// Returns an error if a store with the same name already exists.
func (r *Registry) RegisterContentStore(name string, store content.ContentStore) error {
	if store == nil {
		return fmt.Errorf("cannot register nil content store")
	}
	if name == "" {
		return fmt.Errorf("cannot register content store with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.content[name]; exists {
		return fmt.Errorf("content store %q already registered", name)
	}

	r.content[name] = store
	return nil
}

// AddRepository creates and registers a repository.
// This method:
//  1. Validates that the repository doesn't already exist
//  2. Validates that the referenced stores exist
//  3. Resolves the repository root in the resource store
//  4. Registers the repository under its id
//
// Returns an error if:
// - A repository with the same id already exists
// - The referenced resource or content store doesn't exist
// - The root path doesn't name a folder
func (r *Registry) AddRepository(ctx context.Context, config *RepositoryConfig) error {
	if config.ID == "" {
		return fmt.Errorf("cannot add repository with empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.repositories[config.ID]; exists {
		return fmt.Errorf("repository %q already exists", config.ID)
	}

	entry, exists := r.stores[config.ResourceStore]
	if !exists {
		return fmt.Errorf("resource store %q not found", config.ResourceStore)
	}

	var blobs content.ContentStore
	if config.ContentStore != "" {
		blobs, exists = r.content[config.ContentStore]
		if !exists {
			return fmt.Errorf("content store %q not found", config.ContentStore)
		}
	}

	repo, err := repository.New(ctx, repository.Config{
		ID:             config.ID,
		Name:           config.Name,
		Description:    config.Description,
		RootPath:       config.RootPath,
		ProductVersion: r.options.ProductVersion,
	}, repository.Dependencies{
		Store:         entry.store,
		Authenticator: entry.auth,
		Types:         entry.types,
		Content:       blobs,
		Metrics:       r.options.Metrics,
	})
	if err != nil {
		return err
	}

	r.repositories[config.ID] = &Binding{
		Config:     *config,
		Repository: repo,
	}
	logger.Info("Repository %s bound to store %s at %s", config.ID, config.ResourceStore, repo.RootID())
	return nil
}

// RemoveRepository removes a repository from the registry.
// Returns an error if the repository doesn't exist.
// Note: This does NOT close the underlying stores, as they may be used by other repositories.
func (r *Registry) RemoveRepository(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.repositories[id]; !exists {
		return fmt.Errorf("repository %q not found", id)
	}

	delete(r.repositories, id)
	return nil
}

// GetRepository retrieves a repository by id. An unknown id is a protocol
// NotFound so bindings can return it as-is.
func (r *Registry) GetRepository(id string) (*repository.Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding, exists := r.repositories[id]
	if !exists {
		return nil, cmis.NotFound("repository %q not found", id)
	}
	return binding.Repository, nil
}

// GetBinding retrieves the configuration a repository was added with.
func (r *Registry) GetBinding(id string) (*Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding, exists := r.repositories[id]
	if !exists {
		return nil, cmis.NotFound("repository %q not found", id)
	}
	return binding, nil
}

// GetResourceStore retrieves a resource store by name.
func (r *Registry) GetResourceStore(name string) (resource.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.stores[name]
	if !exists {
		return nil, fmt.Errorf("resource store %q not found", name)
	}
	return entry.store, nil
}

// GetContentStore retrieves a content store by name.
func (r *Registry) GetContentStore(name string) (content.ContentStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, exists := r.content[name]
	if !exists {
		return nil, fmt.Errorf("content store %q not found", name)
	}
	return store, nil
}

// GetTypes retrieves the type registry of a resource store.
func (r *Registry) GetTypes(storeName string) (*repository.TypeRegistry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.stores[storeName]
	if !exists {
		return nil, fmt.Errorf("resource store %q not found", storeName)
	}
	return entry.types, nil
}

// ListRepositories returns all registered repository ids, sorted.
// The returned slice is a copy and safe to modify.
func (r *Registry) ListRepositories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.repositories))
	for id := range r.repositories {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ListResourceStores returns all registered resource store names, sorted.
func (r *Registry) ListResourceStores() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ListContentStores returns all registered content store names, sorted.
func (r *Registry) ListContentStores() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.content))
	for name := range r.content {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RepositoryInfos describes every repository, ordered by id.
func (r *Registry) RepositoryInfos() []*cmis.RepositoryInfo {
	ids := r.ListRepositories()
	infos := make([]*cmis.RepositoryInfo, 0, len(ids))
	for _, id := range ids {
		repo, err := r.GetRepository(id)
		if err != nil {
			// removed concurrently
			continue
		}
		infos = append(infos, repo.Info())
	}
	return infos
}

// CountRepositories returns the number of registered repositories.
func (r *Registry) CountRepositories() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.repositories)
}

// Healthcheck checks every resource store.
func (r *Registry) Healthcheck(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range slices.Sorted(maps.Keys(r.stores)) {
		if err := r.stores[name].store.Healthcheck(ctx); err != nil {
			return fmt.Errorf("resource store %q: %w", name, err)
		}
	}
	return nil
}

// Close closes every registered store. Repositories become unusable.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, entry := range r.stores {
		if err := entry.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("resource store %q: %w", name, err))
		}
	}
	for name, store := range r.content {
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("content store %q: %w", name, err))
		}
	}

	r.repositories = make(map[string]*Binding)
	return errors.Join(errs...)
}
