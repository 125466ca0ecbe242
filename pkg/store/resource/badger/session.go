package badger

import (
	"context"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

type session struct {
	store     *BadgerResourceStore
	principal resource.Principal
	closed    atomic.Bool
}

func (ss *session) Principal() resource.Principal {
	return ss.principal
}

func (ss *session) ReadOnly() bool {
	readOnly := false
	_ = ss.store.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keyConfigReadOnly))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			readOnly = string(val) == "1"
			return nil
		})
	})
	return readOnly
}

// view runs fn in a read-only transaction after checking the session and
// context.
func (ss *session) view(ctx context.Context, fn func(txn *badgerdb.Txn) error) error {
	if ss.closed.Load() {
		return resource.NewError(resource.ErrSessionClosed, "session closed", "")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ioError(ss.store.db.View(fn))
}

func loadEntity(txn *badgerdb.Txn, id uuid.UUID) (*resource.Entity, error) {
	var e resource.Entity
	if err := getJSON(txn, keyEntity(id), &e, "entity", id.String()); err != nil {
		return nil, err
	}
	return &e, nil
}

// effectiveACL collects entries from id up to the root, nearest first.
func effectiveACL(txn *badgerdb.Txn, e *resource.Entity) ([]resource.AccessControlEntry, error) {
	var out []resource.AccessControlEntry
	for {
		var aces []resource.AccessControlEntry
		err := getJSON(txn, keyACL(e.ID), &aces, "acl", e.Path)
		if err != nil && !resource.IsNotFound(err) {
			return nil, err
		}
		out = append(out, aces...)
		if !e.HasParent() {
			break
		}
		if e, err = loadEntity(txn, e.ParentID); err != nil {
			return nil, err
		}
	}
	return resource.TruncateInherited(out), nil
}

func (ss *session) allowed(txn *badgerdb.Txn, e *resource.Entity, want resource.Permission) (bool, error) {
	aces, err := effectiveACL(txn, e)
	if err != nil {
		return false, err
	}
	return resource.Evaluate(aces, ss.principal, want), nil
}

func (ss *session) readable(txn *badgerdb.Txn, id uuid.UUID) (*resource.Entity, error) {
	e, err := loadEntity(txn, id)
	if err != nil {
		return nil, err
	}
	ok, err := ss.allowed(txn, e, resource.PermissionRead)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, resource.NewError(resource.ErrPermissionDenied, "read access denied", e.Path)
	}
	return e, nil
}

func (ss *session) Entity(ctx context.Context, id uuid.UUID) (*resource.Entity, error) {
	var out *resource.Entity
	err := ss.view(ctx, func(txn *badgerdb.Txn) error {
		var err error
		out, err = ss.readable(txn, id)
		return err
	})
	return out, err
}

func (ss *session) EntityByPath(ctx context.Context, path string) (*resource.Entity, error) {
	var out *resource.Entity
	err := ss.view(ctx, func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyPath(resource.CleanPath(path)))
		if err == badgerdb.ErrKeyNotFound {
			return resource.NotFound("path", path)
		}
		if err != nil {
			return err
		}
		var id uuid.UUID
		if err := item.Value(func(val []byte) error {
			id, err = uuid.ParseBytes(val)
			return err
		}); err != nil {
			return err
		}
		out, err = ss.readable(txn, id)
		return err
	})
	return out, err
}

func (ss *session) Children(ctx context.Context, id uuid.UUID) ([]*resource.Entity, error) {
	var out []*resource.Entity
	err := ss.view(ctx, func(txn *badgerdb.Txn) error {
		parent, err := ss.readable(txn, id)
		if err != nil {
			return err
		}
		if !parent.IsFolder() {
			return resource.NewError(resource.ErrNotFolder, "not a folder", parent.Path)
		}

		var childIDs []uuid.UUID
		err = scanPrefix(txn, keyChildPrefix(id), true, func(_ []byte, val []byte) error {
			childID, err := uuid.ParseBytes(val)
			if err != nil {
				return err
			}
			childIDs = append(childIDs, childID)
			return nil
		})
		if err != nil {
			return err
		}

		for _, childID := range childIDs {
			child, err := ss.readable(txn, childID)
			if err != nil {
				if resource.IsPermissionDenied(err) {
					continue
				}
				return err
			}
			out = append(out, child)
		}
		return nil
	})
	return out, err
}

func (ss *session) Parent(ctx context.Context, id uuid.UUID) (*resource.Entity, error) {
	var out *resource.Entity
	err := ss.view(ctx, func(txn *badgerdb.Txn) error {
		e, err := ss.readable(txn, id)
		if err != nil {
			return err
		}
		if !e.HasParent() {
			return resource.NotFound("parent", e.Path)
		}
		out, err = ss.readable(txn, e.ParentID)
		return err
	})
	return out, err
}

func (ss *session) Lock(ctx context.Context, id uuid.UUID) (resource.Lock, error) {
	var lock resource.Lock
	err := ss.view(ctx, func(txn *badgerdb.Txn) error {
		e, err := ss.readable(txn, id)
		if err != nil {
			return err
		}
		err = getJSON(txn, keyLock(id), &lock, "lock", e.Path)
		if resource.IsNotFound(err) {
			return nil
		}
		return err
	})
	return lock, err
}

func (ss *session) HasPermission(ctx context.Context, id uuid.UUID, want resource.Permission) (bool, error) {
	var ok bool
	err := ss.view(ctx, func(txn *badgerdb.Txn) error {
		e, err := loadEntity(txn, id)
		if err != nil {
			return err
		}
		ok, err = ss.allowed(txn, e, want)
		return err
	})
	return ok, err
}

func (ss *session) AccessControl(ctx context.Context, id uuid.UUID) ([]resource.AccessControlEntry, error) {
	var out []resource.AccessControlEntry
	err := ss.view(ctx, func(txn *badgerdb.Txn) error {
		e, err := ss.readable(txn, id)
		if err != nil {
			return err
		}
		out, err = effectiveACL(txn, e)
		return err
	})
	return out, err
}

func readValue(txn *badgerdb.Txn, id uuid.UUID, name string) (string, bool, error) {
	item, err := txn.Get(keyValue(id, name))
	if err == badgerdb.ErrKeyNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	val, err := item.ValueCopy(nil)
	return string(val), err == nil, err
}

func (ss *session) Property(ctx context.Context, id uuid.UUID, name string, inherited bool) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := ss.view(ctx, func(txn *badgerdb.Txn) error {
		e, err := ss.readable(txn, id)
		if err != nil {
			return err
		}
		for {
			if value, found, err = readValue(txn, e.ID, name); err != nil || found {
				return err
			}
			if !inherited || !e.HasParent() {
				return nil
			}
			if e, err = loadEntity(txn, e.ParentID); err != nil {
				return err
			}
		}
	})
	return value, found, err
}

func (ss *session) Properties(ctx context.Context, id uuid.UUID, inherited bool) (map[string]string, error) {
	out := make(map[string]string)
	err := ss.view(ctx, func(txn *badgerdb.Txn) error {
		e, err := ss.readable(txn, id)
		if err != nil {
			return err
		}
		for {
			prefix := keyValuePrefix(e.ID)
			err := scanPrefix(txn, prefix, true, func(key, val []byte) error {
				name := string(key[len(prefix):])
				if _, seen := out[name]; !seen {
					out[name] = string(val)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if !inherited || !e.HasParent() {
				return nil
			}
			if e, err = loadEntity(txn, e.ParentID); err != nil {
				return err
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ss *session) Relations(ctx context.Context, id uuid.UUID, dir resource.Direction) ([]resource.Relation, error) {
	var out []resource.Relation
	err := ss.view(ctx, func(txn *badgerdb.Txn) error {
		if _, err := ss.readable(txn, id); err != nil {
			return err
		}

		if dir == resource.DirectionSource || dir == resource.DirectionEither {
			err := scanPrefix(txn, keyOutgoingPrefix(id), false, func(key, _ []byte) error {
				source, target, typ, ok := splitRelationKey(key, prefixOutgoing)
				if ok {
					out = append(out, resource.Relation{SourceID: source, TargetID: target, Type: typ})
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		if dir == resource.DirectionTarget || dir == resource.DirectionEither {
			return scanPrefix(txn, keyIncomingPrefix(id), false, func(key, _ []byte) error {
				target, source, typ, ok := splitRelationKey(key, prefixIncoming)
				if !ok {
					return nil
				}
				// a self relation is already listed as outgoing
				if dir == resource.DirectionEither && source == target {
					return nil
				}
				out = append(out, resource.Relation{SourceID: source, TargetID: target, Type: typ})
				return nil
			})
		}
		return nil
	})
	return out, err
}

func (ss *session) LookupPrincipal(ctx context.Context, id string) (resource.Principal, error) {
	var p resource.Principal
	err := ss.view(ctx, func(txn *badgerdb.Txn) error {
		return getJSON(txn, keyPrincipal(id), &p, "principal", id)
	})
	return p, err
}

func (ss *session) Close() error {
	ss.closed.Store(true)
	return nil
}
