package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

type session struct {
	store     *MemoryResourceStore
	principal resource.Principal
	closed    atomic.Bool
}

func (ss *session) Principal() resource.Principal {
	return ss.principal
}

func (ss *session) ReadOnly() bool {
	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()
	return ss.store.readOnly
}

func (ss *session) check(ctx context.Context) error {
	if ss.closed.Load() {
		return resource.NewError(resource.ErrSessionClosed, "session closed", "")
	}
	return ctx.Err()
}

// readable fetches an entity and verifies read permission. Caller holds the
// read lock.
func (ss *session) readable(id uuid.UUID) (*resource.Entity, error) {
	e, ok := ss.store.entities[id]
	if !ok {
		return nil, resource.NotFound("entity", id.String())
	}
	if !resource.Evaluate(ss.store.effectiveACL(id), ss.principal, resource.PermissionRead) {
		return nil, resource.NewError(resource.ErrPermissionDenied, "read access denied", e.Path)
	}
	return e, nil
}

func (ss *session) Entity(ctx context.Context, id uuid.UUID) (*resource.Entity, error) {
	if err := ss.check(ctx); err != nil {
		return nil, err
	}

	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	e, err := ss.readable(id)
	if err != nil {
		return nil, err
	}
	return e.Clone(), nil
}

func (ss *session) EntityByPath(ctx context.Context, path string) (*resource.Entity, error) {
	if err := ss.check(ctx); err != nil {
		return nil, err
	}

	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	id, ok := ss.store.paths[resource.CleanPath(path)]
	if !ok {
		return nil, resource.NotFound("path", path)
	}
	e, err := ss.readable(id)
	if err != nil {
		return nil, err
	}
	return e.Clone(), nil
}

func (ss *session) Children(ctx context.Context, id uuid.UUID) ([]*resource.Entity, error) {
	if err := ss.check(ctx); err != nil {
		return nil, err
	}

	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	parent, err := ss.readable(id)
	if err != nil {
		return nil, err
	}
	if !parent.IsFolder() {
		return nil, resource.NewError(resource.ErrNotFolder, "not a folder", parent.Path)
	}

	names := slices.Sorted(maps.Keys(ss.store.children[id]))
	out := make([]*resource.Entity, 0, len(names))
	for _, name := range names {
		child, err := ss.readable(ss.store.children[id][name])
		if err != nil {
			if resource.IsPermissionDenied(err) {
				continue
			}
			return nil, err
		}
		out = append(out, child.Clone())
	}
	return out, nil
}

func (ss *session) Parent(ctx context.Context, id uuid.UUID) (*resource.Entity, error) {
	if err := ss.check(ctx); err != nil {
		return nil, err
	}

	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	e, err := ss.readable(id)
	if err != nil {
		return nil, err
	}
	if !e.HasParent() {
		return nil, resource.NotFound("parent", e.Path)
	}
	parent, err := ss.readable(e.ParentID)
	if err != nil {
		return nil, err
	}
	return parent.Clone(), nil
}

func (ss *session) Lock(ctx context.Context, id uuid.UUID) (resource.Lock, error) {
	if err := ss.check(ctx); err != nil {
		return resource.Lock{}, err
	}

	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	if _, err := ss.readable(id); err != nil {
		return resource.Lock{}, err
	}
	return ss.store.locks[id], nil
}

func (ss *session) HasPermission(ctx context.Context, id uuid.UUID, want resource.Permission) (bool, error) {
	if err := ss.check(ctx); err != nil {
		return false, err
	}

	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	if _, ok := ss.store.entities[id]; !ok {
		return false, resource.NotFound("entity", id.String())
	}
	return resource.Evaluate(ss.store.effectiveACL(id), ss.principal, want), nil
}

func (ss *session) AccessControl(ctx context.Context, id uuid.UUID) ([]resource.AccessControlEntry, error) {
	if err := ss.check(ctx); err != nil {
		return nil, err
	}

	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	if _, err := ss.readable(id); err != nil {
		return nil, err
	}
	return ss.store.effectiveACL(id), nil
}

func (ss *session) Property(ctx context.Context, id uuid.UUID, name string, inherited bool) (string, bool, error) {
	if err := ss.check(ctx); err != nil {
		return "", false, err
	}

	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	e, err := ss.readable(id)
	if err != nil {
		return "", false, err
	}
	for {
		if v, ok := ss.store.properties[e.ID][name]; ok {
			return v, true, nil
		}
		if !inherited || !e.HasParent() {
			return "", false, nil
		}
		e = ss.store.entities[e.ParentID]
	}
}

func (ss *session) Properties(ctx context.Context, id uuid.UUID, inherited bool) (map[string]string, error) {
	if err := ss.check(ctx); err != nil {
		return nil, err
	}

	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	e, err := ss.readable(id)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for {
		for k, v := range ss.store.properties[e.ID] {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
		if !inherited || !e.HasParent() {
			return out, nil
		}
		e = ss.store.entities[e.ParentID]
	}
}

func (ss *session) Relations(ctx context.Context, id uuid.UUID, dir resource.Direction) ([]resource.Relation, error) {
	if err := ss.check(ctx); err != nil {
		return nil, err
	}

	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	if _, err := ss.readable(id); err != nil {
		return nil, err
	}

	var out []resource.Relation
	if dir == resource.DirectionSource || dir == resource.DirectionEither {
		out = append(out, ss.store.outgoing[id]...)
	}
	if dir == resource.DirectionTarget || dir == resource.DirectionEither {
		for _, rel := range ss.store.incoming[id] {
			// a self relation is already listed as outgoing
			if dir == resource.DirectionEither && rel.SourceID == rel.TargetID {
				continue
			}
			out = append(out, rel)
		}
	}
	sortRelations(out)
	return out, nil
}

func (ss *session) LookupPrincipal(ctx context.Context, id string) (resource.Principal, error) {
	if err := ss.check(ctx); err != nil {
		return resource.Principal{}, err
	}

	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	p, ok := ss.store.principals[id]
	if !ok {
		return resource.Principal{}, resource.NotFound("principal", id)
	}
	return clonePrincipal(p), nil
}

func (ss *session) Close() error {
	ss.closed.Store(true)
	return nil
}

// effectiveACL collects entries from id up to the root, nearest first.
// Caller holds the read lock.
func (s *MemoryResourceStore) effectiveACL(id uuid.UUID) []resource.AccessControlEntry {
	var out []resource.AccessControlEntry
	for {
		out = append(out, s.aces[id]...)
		e, ok := s.entities[id]
		if !ok || !e.HasParent() {
			break
		}
		id = e.ParentID
	}
	return resource.TruncateInherited(out)
}

func sortRelations(rels []resource.Relation) {
	sort.SliceStable(rels, func(i, j int) bool {
		a, b := rels[i], rels[j]
		if a.SourceID != b.SourceID {
			return a.SourceID.String() < b.SourceID.String()
		}
		if a.TargetID != b.TargetID {
			return a.TargetID.String() < b.TargetID.String()
		}
		return a.Type < b.Type
	})
}
