package registry

import "github.com/marmos91/dittocmis/pkg/repository"

// RepositoryConfig describes a repository to expose. A repository binds
// together:
// - A repository id (the first path segment of the HTTP binding)
// - A resource store instance (folders, documents, relations, access control)
// - An optional content store instance (document bodies)
// - A root folder inside the resource store
//
// Multiple repositories can reference the same store instances.
type RepositoryConfig struct {
	ID          string
	Name        string
	Description string

	// ResourceStore is the name of a registered resource store.
	ResourceStore string

	// ContentStore is the name of a registered content store. Empty leaves
	// every content stream unavailable.
	ContentStore string

	// RootPath is the store folder shown as the repository root.
	// Default: "/"
	RootPath string
}

// Binding is a registered repository and the configuration it was built
// from.
type Binding struct {
	Config     RepositoryConfig
	Repository *repository.Repository
}
