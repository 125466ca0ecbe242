package badger

import (
	"context"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

func (s *BadgerResourceStore) AddUser(ctx context.Context, spec resource.UserSpec) (resource.Principal, error) {
	if err := ctx.Err(); err != nil {
		return resource.Principal{}, err
	}
	if spec.Name == "" {
		return resource.Principal{}, resource.NewError(resource.ErrInvalidArgument, "user name is empty", "")
	}

	cost := s.bcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(spec.Password), cost)
	if err != nil {
		return resource.Principal{}, resource.NewError(resource.ErrInvalidArgument, "cannot hash password: "+err.Error(), spec.Name)
	}

	p := resource.Principal{
		ID:          uuid.NewString(),
		Name:        spec.Name,
		DisplayName: spec.DisplayName,
		Kind:        resource.PrincipalUser,
		Groups:      spec.Groups,
		Roles:       spec.Roles,
		Admin:       spec.Admin,
	}

	err = s.db.Update(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get(keyUser(spec.Name)); err == nil {
			return resource.NewError(resource.ErrAlreadyExists, "user already exists", spec.Name)
		} else if err != badgerdb.ErrKeyNotFound {
			return err
		}
		if err := putJSON(txn, keyUser(spec.Name), userRecord{Principal: p, Hash: hash}); err != nil {
			return err
		}
		return putJSON(txn, keyPrincipal(p.ID), p)
	})
	if err != nil {
		return resource.Principal{}, ioError(err)
	}
	return p, nil
}

func (s *BadgerResourceStore) AddGroup(ctx context.Context, name string) (resource.Principal, error) {
	if err := ctx.Err(); err != nil {
		return resource.Principal{}, err
	}

	p := resource.Principal{ID: uuid.NewString(), Name: name, Kind: resource.PrincipalGroup}
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return putJSON(txn, keyPrincipal(p.ID), p)
	})
	if err != nil {
		return resource.Principal{}, ioError(err)
	}
	return p, nil
}

func (s *BadgerResourceStore) CreateFolder(ctx context.Context, parentID uuid.UUID, name, owner string) (*resource.Entity, error) {
	return s.create(ctx, parentID, &resource.Entity{Kind: resource.KindFolder, Name: name}, owner)
}

func (s *BadgerResourceStore) CreateDocument(ctx context.Context, parentID uuid.UUID, spec resource.DocumentSpec) (*resource.Entity, error) {
	return s.create(ctx, parentID, &resource.Entity{
		Kind:      resource.KindDocument,
		Name:      spec.Name,
		Size:      spec.Size,
		ContentID: spec.ContentID,
		MimeType:  spec.MimeType,
	}, spec.Owner)
}

func (s *BadgerResourceStore) create(ctx context.Context, parentID uuid.UUID, e *resource.Entity, owner string) (*resource.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.Name == "" || strings.Contains(e.Name, "/") {
		return nil, resource.NewError(resource.ErrInvalidArgument, "invalid name", e.Name)
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		parent, err := loadEntity(txn, parentID)
		if err != nil {
			return err
		}
		if !parent.IsFolder() {
			return resource.NewError(resource.ErrNotFolder, "not a folder", parent.Path)
		}
		if _, err := txn.Get(keyChild(parentID, e.Name)); err == nil {
			return resource.NewError(resource.ErrAlreadyExists, "entity already exists", resource.JoinPath(parent.Path, e.Name))
		} else if err != badgerdb.ErrKeyNotFound {
			return err
		}

		now := s.now()
		e.ID = uuid.New()
		e.ParentID = parentID
		e.Path = resource.JoinPath(parent.Path, e.Name)
		e.CreatedAt, e.ModifiedAt = now, now
		e.CreatedBy, e.ModifiedBy = owner, owner

		if err := putJSON(txn, keyEntity(e.ID), e); err != nil {
			return err
		}
		if err := txn.Set(keyChild(parentID, e.Name), []byte(e.ID.String())); err != nil {
			return err
		}
		return txn.Set(keyPath(e.Path), []byte(e.ID.String()))
	})
	if err != nil {
		return nil, ioError(err)
	}
	return e.Clone(), nil
}

// requireEntity fails with ErrNotFound if id is unknown.
func requireEntity(txn *badgerdb.Txn, id uuid.UUID) error {
	_, err := txn.Get(keyEntity(id))
	if err == badgerdb.ErrKeyNotFound {
		return resource.NotFound("entity", id.String())
	}
	return err
}

func (s *BadgerResourceStore) SetProperty(ctx context.Context, id uuid.UUID, name, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ioError(s.db.Update(func(txn *badgerdb.Txn) error {
		if err := requireEntity(txn, id); err != nil {
			return err
		}
		if err := txn.Set(keyValue(id, name), []byte(value)); err != nil {
			return err
		}
		return txn.Set(keyName(name), nil)
	}))
}

func (s *BadgerResourceStore) DefineRelationType(ctx context.Context, rt resource.RelationType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rt.Name == "" {
		return resource.NewError(resource.ErrInvalidArgument, "relation type name is empty", "")
	}
	return ioError(s.db.Update(func(txn *badgerdb.Txn) error {
		return putJSON(txn, keyRelType(rt.Name), rt)
	}))
}

func (s *BadgerResourceStore) Relate(ctx context.Context, rel resource.Relation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ioError(s.db.Update(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get(keyRelType(rel.Type)); err == badgerdb.ErrKeyNotFound {
			return resource.NotFound("relation type", rel.Type)
		} else if err != nil {
			return err
		}
		for _, id := range []uuid.UUID{rel.SourceID, rel.TargetID} {
			if err := requireEntity(txn, id); err != nil {
				return err
			}
		}
		if err := txn.Set(keyOutgoing(rel.SourceID, rel.TargetID, rel.Type), nil); err != nil {
			return err
		}
		return txn.Set(keyIncoming(rel.TargetID, rel.SourceID, rel.Type), nil)
	}))
}

func (s *BadgerResourceStore) SetAccessControl(ctx context.Context, id uuid.UUID, aces []resource.AccessControlEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stamped := make([]resource.AccessControlEntry, len(aces))
	for i, ace := range aces {
		ace.SourceID = id
		stamped[i] = ace
	}

	return ioError(s.db.Update(func(txn *badgerdb.Txn) error {
		if err := requireEntity(txn, id); err != nil {
			return err
		}
		return putJSON(txn, keyACL(id), stamped)
	}))
}

func (s *BadgerResourceStore) SetLock(ctx context.Context, id uuid.UUID, lock resource.Lock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ioError(s.db.Update(func(txn *badgerdb.Txn) error {
		if err := requireEntity(txn, id); err != nil {
			return err
		}
		if lock.Owner == "" {
			return txn.Delete(keyLock(id))
		}
		return putJSON(txn, keyLock(id), lock)
	}))
}

func (s *BadgerResourceStore) SetReadOnly(ctx context.Context, readOnly bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value := []byte("0")
	if readOnly {
		value = []byte("1")
	}
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keyConfigReadOnly), value)
	})
	return errors.Wrap(err, "set read-only flag")
}
