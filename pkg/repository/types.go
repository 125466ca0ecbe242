package repository

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/metrics"
	"github.com/marmos91/dittocmis/pkg/provider"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"golang.org/x/sync/singleflight"
)

// TypeSource is the part of the resource store the type registry reads.
// resource.Store satisfies it.
type TypeSource interface {
	RelationTypes(ctx context.Context) ([]resource.RelationType, error)
	PropertyNames(ctx context.Context) ([]string, error)
}

// TypeRegistryConfig configures a TypeRegistry.
type TypeRegistryConfig struct {
	// RefreshInterval is how long a snapshot is served before the next read
	// rebuilds it. Zero disables refreshing.
	// Default (via config package): 5m
	RefreshInterval time.Duration

	// Metrics records rebuilds. Nil disables collection.
	Metrics metrics.RepositoryMetrics

	// Now is the clock. Default: time.Now
	Now func() time.Time
}

// typeSnapshot is one immutable build of the type hierarchy. Nothing in a
// published snapshot is modified; readers hand out copies.
type typeSnapshot struct {
	types map[string]*cmis.TypeDefinition

	// children maps a type id to its subtype ids in registration order.
	// The "" key lists the base types.
	children map[string][]string

	// relationTypes maps a store relation name to its kind.
	relationTypes map[string]resource.RelationType

	propertyNames []string
	providers     []provider.Provider
	builtAt       time.Time
}

// TypeRegistry serves the type hierarchy synthesized from the store schema.
//
// Reads never block on a rebuild in progress except when they trigger it:
// the snapshot is swapped atomically once complete, and concurrent readers
// that find it expired share a single rebuild.
type TypeRegistry struct {
	source    TypeSource
	providers *provider.Registry
	config    TypeRegistryConfig

	current atomic.Pointer[typeSnapshot]
	group   singleflight.Group
}

// NewTypeRegistry builds the first snapshot.
func NewTypeRegistry(ctx context.Context, source TypeSource, providers *provider.Registry, config TypeRegistryConfig) (*TypeRegistry, error) {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NewNoopRepositoryMetrics()
	}

	r := &TypeRegistry{source: source, providers: providers, config: config}
	if err := r.Refresh(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Refresh rebuilds the hierarchy now and swaps it in. On failure the
// previous snapshot stays in place.
func (r *TypeRegistry) Refresh(ctx context.Context) error {
	start := time.Now()
	s, err := r.build(ctx)
	r.config.Metrics.RecordTypeRefresh(time.Since(start), err)
	if err != nil {
		return err
	}

	r.current.Store(s)
	r.config.Metrics.SetTypeCount(len(s.types))
	logger.Debug("Type registry rebuilt: %d types, %d store properties, %d providers",
		len(s.types), len(s.propertyNames), len(s.providers))
	return nil
}

// snapshot returns the current build, rebuilding it first when expired.
func (r *TypeRegistry) snapshot(ctx context.Context) *typeSnapshot {
	s := r.current.Load()
	if !r.expired(s) {
		return s
	}

	_, _, _ = r.group.Do("refresh", func() (any, error) {
		if !r.expired(r.current.Load()) {
			return nil, nil
		}
		if err := r.Refresh(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Type registry refresh failed, serving previous types: %v", err)

			// Retry after another interval instead of on every read.
			stale := *r.current.Load()
			stale.builtAt = r.config.Now()
			r.current.Store(&stale)
			return nil, err
		}
		return nil, nil
	})
	return r.current.Load()
}

func (r *TypeRegistry) expired(s *typeSnapshot) bool {
	if r.config.RefreshInterval <= 0 {
		return false
	}
	return r.config.Now().Sub(s.builtAt) >= r.config.RefreshInterval
}

func (r *TypeRegistry) build(ctx context.Context) (*typeSnapshot, error) {
	relTypes, err := r.source.RelationTypes(ctx)
	if err != nil {
		return nil, err
	}
	propNames, err := r.source.PropertyNames(ctx)
	if err != nil {
		return nil, err
	}

	s := &typeSnapshot{
		types:         make(map[string]*cmis.TypeDefinition),
		children:      make(map[string][]string),
		relationTypes: make(map[string]resource.RelationType, len(relTypes)),
		propertyNames: slices.Clone(propNames),
		providers:     r.providers.List(),
		builtAt:       r.config.Now(),
	}
	slices.Sort(s.propertyNames)

	folder, document, relationship := folderType(), documentType(), relationshipType()

	for _, name := range s.propertyNames {
		direct := propertyDefinition(DirectNamespace+name, cmis.PropertyTypeString, cmis.UpdatabilityReadWrite)
		inherited := propertyDefinition(InheritedNamespace+name, cmis.PropertyTypeString, cmis.UpdatabilityReadOnly)
		for _, t := range []*cmis.TypeDefinition{folder, document} {
			t.PropertyDefinitions[direct.ID] = copyDefinition(direct)
			t.PropertyDefinitions[inherited.ID] = copyDefinition(inherited)
		}
	}

	for _, p := range s.providers {
		upd := cmis.UpdatabilityReadOnly
		if p.Writable() {
			upd = cmis.UpdatabilityReadWrite
		}
		def := propertyDefinition(DynamicNamespace+p.Name(), cmis.PropertyTypeString, upd)
		def.Queryable, def.Orderable = false, false
		folder.PropertyDefinitions[def.ID] = copyDefinition(def)
		document.PropertyDefinitions[def.ID] = copyDefinition(def)
	}

	for _, t := range []*cmis.TypeDefinition{folder, document, relationship} {
		s.add(t)
	}

	relTypes = slices.Clone(relTypes)
	slices.SortFunc(relTypes, func(a, b resource.RelationType) int {
		return strings.Compare(a.Name, b.Name)
	})
	for _, rt := range relTypes {
		if rt.Name == "" {
			continue
		}
		sub := relationshipSubtype(rt.Name, rt.ContentDerived, relationship)
		if _, dup := s.types[sub.ID]; dup {
			logger.Warn("Relation type %q maps to existing type %s, skipped", rt.Name, sub.ID)
			continue
		}
		s.relationTypes[rt.Name] = rt
		s.add(sub)
	}

	return s, nil
}

func copyDefinition(d *cmis.PropertyDefinition) *cmis.PropertyDefinition {
	c := *d
	return &c
}

func (s *typeSnapshot) add(t *cmis.TypeDefinition) {
	s.types[t.ID] = t
	s.children[t.ParentTypeID] = append(s.children[t.ParentTypeID], t.ID)
}

func (s *typeSnapshot) lookup(id string) (*cmis.TypeDefinition, error) {
	t, ok := s.types[id]
	if !ok {
		return nil, cmis.NotFound("type %q not found", id)
	}
	return t, nil
}

// isSubtype reports whether id equals ancestor or derives from it.
func (s *typeSnapshot) isSubtype(id, ancestor string) bool {
	for id != "" {
		if id == ancestor {
			return true
		}
		t, ok := s.types[id]
		if !ok {
			return false
		}
		id = t.ParentTypeID
	}
	return false
}

// relationType returns the kind of a store relation. Relations whose type
// is not in the snapshot yet are treated as content derived.
func (s *typeSnapshot) relationType(name string) resource.RelationType {
	if rt, ok := s.relationTypes[name]; ok {
		return rt
	}
	return resource.RelationType{Name: name, ContentDerived: true}
}

// GetType returns a copy of a type definition.
func (r *TypeRegistry) GetType(ctx context.Context, id string) (*cmis.TypeDefinition, error) {
	t, err := r.snapshot(ctx).lookup(id)
	if err != nil {
		return nil, err
	}
	return t.Copy(true), nil
}

// GetTypeChildren pages the direct subtypes of id. An empty id lists the
// base types.
func (r *TypeRegistry) GetTypeChildren(ctx context.Context, id string, includeDefinitions bool, maxItems, skipCount int64) (*cmis.TypeDefinitionList, error) {
	s := r.snapshot(ctx)
	if id != "" {
		if _, err := s.lookup(id); err != nil {
			return nil, err
		}
	}

	ids := s.children[id]
	skip, take := pageBounds(maxItems, skipCount)
	page, more := Page(slices.Values(ids), skip, take)

	list := &cmis.TypeDefinitionList{
		Types:        make([]*cmis.TypeDefinition, 0, len(page)),
		HasMoreItems: more,
	}
	for _, childID := range page {
		list.Types = append(list.Types, s.types[childID].Copy(includeDefinitions))
	}
	total := int64(len(ids))
	list.NumItems = &total
	return list, nil
}

// GetTypeDescendants returns the subtype tree below id, depth levels deep.
// A negative depth is unbounded; zero is rejected. An empty id starts from
// the base types.
func (r *TypeRegistry) GetTypeDescendants(ctx context.Context, id string, depth int64, includeDefinitions bool) ([]cmis.TypeDefinitionContainer, error) {
	if depth == 0 {
		return nil, cmis.InvalidArgument("depth must not be 0")
	}

	s := r.snapshot(ctx)
	if id != "" {
		if _, err := s.lookup(id); err != nil {
			return nil, err
		}
	}
	return s.descendants(id, depth, includeDefinitions), nil
}

func (s *typeSnapshot) descendants(id string, depth int64, includeDefinitions bool) []cmis.TypeDefinitionContainer {
	ids := s.children[id]
	out := make([]cmis.TypeDefinitionContainer, 0, len(ids))
	for _, childID := range ids {
		c := cmis.TypeDefinitionContainer{Type: s.types[childID].Copy(includeDefinitions)}
		if depth < 0 || depth > 1 {
			c.Children = s.descendants(childID, depth-1, includeDefinitions)
		}
		out = append(out, c)
	}
	return out
}

// PropertyNames returns the store property names known to the current
// snapshot.
func (r *TypeRegistry) PropertyNames(ctx context.Context) []string {
	return slices.Clone(r.snapshot(ctx).propertyNames)
}
