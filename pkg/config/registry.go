package config

import (
	"context"
	"fmt"

	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/auth"
	"github.com/marmos91/dittocmis/pkg/metrics"
	"github.com/marmos91/dittocmis/pkg/provider"
	"github.com/marmos91/dittocmis/pkg/registry"
	"github.com/marmos91/dittocmis/pkg/repository"
	"github.com/marmos91/dittocmis/pkg/store/content"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// ProviderTitle exposes the Title store property, inherited from ancestors.
const ProviderTitle = "title"

// Store names inside the registry. The configuration describes one of each.
const (
	resourceStoreName = "resources"
	contentStoreName  = "content"
)

// InitializeRegistry creates a fully configured Registry from the provided
// configuration:
//  1. Creates the content store and the resource store
//  2. Seeds the demo tree when store.memory.seed is set
//  3. Registers the configured users and their groups
//  4. Builds the dynamic property providers
//  5. Registers both stores and the repository
//
// m may be nil.
func InitializeRegistry(ctx context.Context, cfg *Config, m metrics.RepositoryMetrics) (*registry.Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}
	logger.Debug("Initializing registry from configuration")

	blobs, err := CreateContentStore(ctx, &cfg.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to create content store: %w", err)
	}

	store, seed, err := CreateResourceStore(ctx, &cfg.Store)
	if err != nil {
		_ = blobs.Close()
		return nil, fmt.Errorf("failed to create resource store: %w", err)
	}

	cleanup := func(err error) (*registry.Registry, error) {
		_ = store.Close()
		_ = blobs.Close()
		return nil, err
	}

	if seed {
		if err := SeedDemo(ctx, store, blobs); err != nil {
			return cleanup(fmt.Errorf("failed to seed demo tree: %w", err))
		}
		logger.Info("Seeded demo tree in the %s store", cfg.Store.Type)
	}

	if err := RegisterUsers(ctx, store, cfg.Users); err != nil {
		return cleanup(err)
	}

	providers, err := CreateProviders(cfg.Repository.Providers, blobs)
	if err != nil {
		return cleanup(err)
	}

	reg := registry.NewRegistry(registry.Options{
		Providers: providers,
		Types:     repository.TypeRegistryConfig{RefreshInterval: cfg.Repository.TypeRefreshInterval},
		Auth: auth.Config{
			CacheTTL:       cfg.Auth.CacheTTL,
			AllowAnonymous: cfg.Auth.AllowAnonymous,
		},
		Metrics:        m,
		ProductVersion: Version,
	})

	if err := reg.RegisterResourceStore(ctx, resourceStoreName, store); err != nil {
		return cleanup(err)
	}
	if err := reg.RegisterContentStore(contentStoreName, blobs); err != nil {
		return cleanup(err)
	}

	err = reg.AddRepository(ctx, &registry.RepositoryConfig{
		ID:            cfg.Repository.ID,
		Name:          cfg.Repository.Name,
		Description:   cfg.Repository.Description,
		ResourceStore: resourceStoreName,
		ContentStore:  contentStoreName,
		RootPath:      cfg.Repository.RootPath,
	})
	if err != nil {
		_ = reg.Close()
		return nil, fmt.Errorf("failed to add repository %q: %w", cfg.Repository.ID, err)
	}

	logger.Info("Repository %q ready (store=%s, content=%s, root=%s)",
		cfg.Repository.ID, cfg.Store.Type, cfg.Content.Type, cfg.Repository.RootPath)
	return reg, nil
}

// RegisterUsers adds users and the groups they name. Users that already
// exist (a persistent store on restart) are skipped along with their groups.
func RegisterUsers(ctx context.Context, store resource.MutableStore, users []UserConfig) error {
	groups := make(map[string]string)
	for i, u := range users {
		if _, _, err := store.LookupUser(ctx, u.Name); err == nil {
			logger.Info("User %q already exists, skipping creation", u.Name)
			continue
		} else if !resource.IsNotFound(err) {
			return fmt.Errorf("failed to look up users[%d] %q: %w", i, u.Name, err)
		}

		spec := resource.UserSpec{
			Name:        u.Name,
			DisplayName: u.DisplayName,
			Password:    u.Password,
			Roles:       u.Roles,
			Admin:       u.Admin,
		}
		for _, name := range u.Groups {
			id, ok := groups[name]
			if !ok {
				g, err := store.AddGroup(ctx, name)
				if err != nil {
					return fmt.Errorf("failed to add group %q: %w", name, err)
				}
				id = g.ID
				groups[name] = id
			}
			spec.Groups = append(spec.Groups, id)
		}

		if _, err := store.AddUser(ctx, spec); err != nil {
			return fmt.Errorf("failed to add users[%d] %q: %w", i, u.Name, err)
		}
		logger.Debug("Registered user %s", u.Name)
	}
	return nil
}

// CreateProviders builds the named dynamic property providers.
func CreateProviders(names []string, blobs content.ContentStore) (*provider.Registry, error) {
	providers := make([]provider.Provider, 0, len(names))
	for _, name := range names {
		switch name {
		case provider.NameSize:
			providers = append(providers, provider.NewSizeProvider())
		case provider.NameDetectedMimeType:
			providers = append(providers, provider.NewMimeTypeProvider(blobs))
		case ProviderTitle:
			providers = append(providers, provider.NewPropertyProvider(ProviderTitle, "Title", true))
		default:
			return nil, fmt.Errorf("unknown property provider %q", name)
		}
	}

	reg, err := provider.NewRegistry(providers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create property providers: %w", err)
	}
	return reg, nil
}
