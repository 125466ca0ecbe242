// Package memory implements an in-memory resource store.
//
// All data lives in maps guarded by a single RWMutex and is lost when the
// process exits. It is the default store for development and the reference
// implementation for the conformance suite.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

type userRecord struct {
	principal resource.Principal
	hash      []byte
}

// MemoryResourceStore is an in-memory resource.MutableStore.
type MemoryResourceStore struct {
	mu sync.RWMutex

	rootID   uuid.UUID
	entities map[uuid.UUID]*resource.Entity

	// children maps a folder id to child name -> child id
	children map[uuid.UUID]map[string]uuid.UUID

	paths      map[string]uuid.UUID
	properties map[uuid.UUID]map[string]string
	propNames  map[string]struct{}
	aces       map[uuid.UUID][]resource.AccessControlEntry
	locks      map[uuid.UUID]resource.Lock

	// outgoing and incoming index relations by source and by target
	outgoing map[uuid.UUID][]resource.Relation
	incoming map[uuid.UUID][]resource.Relation
	relTypes map[string]resource.RelationType

	users      map[string]*userRecord
	principals map[string]resource.Principal

	readOnly   bool
	bcryptCost int
	now        func() time.Time
}

// MemoryResourceStoreConfig configures a MemoryResourceStore.
type MemoryResourceStoreConfig struct {
	// RootACL is applied to the top-level folder at creation.
	// Default: ALL_OTHERS granted read and view
	RootACL []resource.AccessControlEntry

	// BcryptCost is the cost used when hashing user passwords.
	// Default: bcrypt.DefaultCost
	BcryptCost int

	// Now is the clock used for timestamps. Default: time.Now
	Now func() time.Time
}

// NewMemoryResourceStore creates an empty store holding only the top-level
// folder.
func NewMemoryResourceStore(config MemoryResourceStoreConfig) *MemoryResourceStore {
	now := config.Now
	if now == nil {
		now = time.Now
	}

	s := &MemoryResourceStore{
		rootID:     uuid.New(),
		entities:   make(map[uuid.UUID]*resource.Entity),
		children:   make(map[uuid.UUID]map[string]uuid.UUID),
		paths:      make(map[string]uuid.UUID),
		properties: make(map[uuid.UUID]map[string]string),
		propNames:  make(map[string]struct{}),
		aces:       make(map[uuid.UUID][]resource.AccessControlEntry),
		locks:      make(map[uuid.UUID]resource.Lock),
		outgoing:   make(map[uuid.UUID][]resource.Relation),
		incoming:   make(map[uuid.UUID][]resource.Relation),
		relTypes:   make(map[string]resource.RelationType),
		users:      make(map[string]*userRecord),
		principals: make(map[string]resource.Principal),
		bcryptCost: config.BcryptCost,
		now:        now,
	}

	ts := now()
	root := &resource.Entity{
		ID:         s.rootID,
		Kind:       resource.KindFolder,
		Path:       "/",
		CreatedAt:  ts,
		CreatedBy:  resource.SystemPrincipalID,
		ModifiedAt: ts,
		ModifiedBy: resource.SystemPrincipalID,
	}
	s.entities[root.ID] = root
	s.children[root.ID] = make(map[string]uuid.UUID)
	s.paths["/"] = root.ID

	rootACL := config.RootACL
	if rootACL == nil {
		rootACL = []resource.AccessControlEntry{{
			PrincipalID: resource.PrincipalAllOthers,
			Granted:     resource.PermissionRead | resource.PermissionView,
		}}
	}
	s.aces[root.ID] = withSource(rootACL, root.ID)

	s.principals[resource.SystemPrincipalID] = resource.Principal{
		ID:          resource.SystemPrincipalID,
		Name:        resource.SystemPrincipalID,
		DisplayName: "System",
		Admin:       true,
	}

	return s
}

// NewMemoryResourceStoreWithDefaults creates a store with default settings.
func NewMemoryResourceStoreWithDefaults() *MemoryResourceStore {
	return NewMemoryResourceStore(MemoryResourceStoreConfig{})
}

func (s *MemoryResourceStore) RootID() uuid.UUID {
	return s.rootID
}

func (s *MemoryResourceStore) LookupUser(ctx context.Context, username string) (resource.Principal, []byte, error) {
	if err := ctx.Err(); err != nil {
		return resource.Principal{}, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return resource.Principal{}, nil, resource.NotFound("user", username)
	}
	return clonePrincipal(u.principal), slices.Clone(u.hash), nil
}

func (s *MemoryResourceStore) OpenSession(ctx context.Context, principal resource.Principal) (resource.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &session{store: s, principal: principal}, nil
}

func (s *MemoryResourceStore) RelationTypes(ctx context.Context) ([]resource.RelationType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]resource.RelationType, 0, len(s.relTypes))
	for _, rt := range s.relTypes {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryResourceStore) PropertyNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.propNames))
	for name := range s.propNames {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryResourceStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryResourceStore) Close() error {
	return nil
}

func withSource(aces []resource.AccessControlEntry, id uuid.UUID) []resource.AccessControlEntry {
	out := make([]resource.AccessControlEntry, len(aces))
	for i, ace := range aces {
		ace.SourceID = id
		out[i] = ace
	}
	return out
}

func clonePrincipal(p resource.Principal) resource.Principal {
	p.Groups = slices.Clone(p.Groups)
	p.Roles = slices.Clone(p.Roles)
	return p
}
