// Package resource defines the resource store the repository reads from: a
// path-addressed tree of folders and documents with locks, permission bits,
// access control entries, named properties and typed relations.
//
// Implementations live in the memory and badger subpackages. All of them
// pass the conformance suite in the testing subpackage.
package resource

import (
	"context"

	"github.com/google/uuid"
)

// Store is a resource store.
//
// A Store hands out Sessions. Every session is bound to one principal and is
// meant to serve a single inbound call; sessions are never shared.
//
// Thread safety:
// Store methods are safe for concurrent use. A Session is not required to be.
type Store interface {
	// LookupUser returns the user principal registered under username along
	// with its bcrypt password hash.
	//
	// Returns ErrNotFound if no such user exists.
	LookupUser(ctx context.Context, username string) (Principal, []byte, error)

	// OpenSession opens a session acting as principal.
	OpenSession(ctx context.Context, principal Principal) (Session, error)

	// RelationTypes enumerates every relation type the store knows.
	RelationTypes(ctx context.Context) ([]RelationType, error)

	// PropertyNames enumerates every named property defined in the store.
	// The order is stable (sorted).
	PropertyNames(ctx context.Context) ([]string, error)

	// Healthcheck verifies the backing storage is usable.
	Healthcheck(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// Session is a principal-bound view of the store.
//
// Read methods return ErrNotFound for unknown ids or paths and
// ErrPermissionDenied when the principal may not see the entity.
type Session interface {
	// Principal returns the principal the session acts as.
	Principal() Principal

	// ReadOnly reports whether the store is in its published, read-only
	// state. Nothing is writable while it is.
	ReadOnly() bool

	// Entity reads an entity by id.
	Entity(ctx context.Context, id uuid.UUID) (*Entity, error)

	// EntityByPath reads an entity by absolute path. "/" is the top-level
	// folder.
	EntityByPath(ctx context.Context, path string) (*Entity, error)

	// Children lists the immediate children of a folder, ordered by name.
	// Children the principal may not read are omitted.
	//
	// Returns ErrNotFolder if id is a document.
	Children(ctx context.Context, id uuid.UUID) ([]*Entity, error)

	// Parent returns the parent folder of an entity.
	//
	// Returns ErrNotFound for the top-level folder.
	Parent(ctx context.Context, id uuid.UUID) (*Entity, error)

	// Lock returns the write-lock state of an entity.
	Lock(ctx context.Context, id uuid.UUID) (Lock, error)

	// HasPermission reports whether the principal holds every bit of want.
	HasPermission(ctx context.Context, id uuid.UUID, want Permission) (bool, error)

	// AccessControl returns the effective entries of an entity, nearest
	// first: its own entries followed by those inherited from ancestors.
	AccessControl(ctx context.Context, id uuid.UUID) ([]AccessControlEntry, error)

	// Property reads one named property. With inherited set, the nearest
	// ancestor carrying the property supplies the value.
	Property(ctx context.Context, id uuid.UUID, name string, inherited bool) (string, bool, error)

	// Properties reads all named properties of an entity, optionally merged
	// with those inherited from ancestors (nearer values win).
	Properties(ctx context.Context, id uuid.UUID, inherited bool) (map[string]string, error)

	// Relations lists relations touching an entity in the given direction.
	Relations(ctx context.Context, id uuid.UUID, dir Direction) ([]Relation, error)

	// LookupPrincipal resolves a user or group id.
	LookupPrincipal(ctx context.Context, id string) (Principal, error)

	// Close ends the session. Further calls return ErrSessionClosed.
	Close() error
}

// DocumentSpec describes a document to create.
type DocumentSpec struct {
	Name      string
	Owner     string
	Size      int64
	ContentID string
	MimeType  string
}

// UserSpec describes a user to register.
type UserSpec struct {
	Name        string
	DisplayName string
	Password    string
	Groups      []string
	Roles       []string
	Admin       bool
}

// Builder seeds and maintains store content. It bypasses permission checks
// and is used by provisioning commands and tests, never by the repository.
type Builder interface {
	AddUser(ctx context.Context, spec UserSpec) (Principal, error)
	AddGroup(ctx context.Context, name string) (Principal, error)
	CreateFolder(ctx context.Context, parentID uuid.UUID, name, owner string) (*Entity, error)
	CreateDocument(ctx context.Context, parentID uuid.UUID, spec DocumentSpec) (*Entity, error)
	SetProperty(ctx context.Context, id uuid.UUID, name, value string) error
	DefineRelationType(ctx context.Context, rt RelationType) error
	Relate(ctx context.Context, rel Relation) error

	// SetAccessControl replaces the entries set directly on an entity.
	SetAccessControl(ctx context.Context, id uuid.UUID, aces []AccessControlEntry) error

	SetLock(ctx context.Context, id uuid.UUID, lock Lock) error
	SetReadOnly(ctx context.Context, readOnly bool) error

	// RootID returns the id of the top-level folder.
	RootID() uuid.UUID
}

// MutableStore is a Store that can also be seeded.
type MutableStore interface {
	Store
	Builder
}
