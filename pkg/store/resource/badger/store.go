// Package badger implements a persistent resource store on BadgerDB.
//
// Values are JSON encoded under prefixed keys (see keys.go). Every read runs
// in its own read-only transaction, so a session observes each call's data
// consistently but not across calls.
package badger

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/pkg/errors"
)

// BadgerResourceStore is a resource.MutableStore persisted in BadgerDB.
type BadgerResourceStore struct {
	db         *badgerdb.DB
	rootID     uuid.UUID
	bcryptCost int
	now        func() time.Time
}

// BadgerResourceStoreConfig configures a BadgerResourceStore.
type BadgerResourceStoreConfig struct {
	// DBPath is the directory holding the database files.
	DBPath string `mapstructure:"db_path" validate:"required_without=InMemory"`

	// InMemory keeps the database in memory. Used by tests.
	InMemory bool `mapstructure:"in_memory"`

	// BlockCacheSizeMB sizes Badger's block cache. Default: 64
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`

	// BcryptCost is the cost used when hashing user passwords.
	// Default: bcrypt.DefaultCost
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type userRecord struct {
	Principal resource.Principal `json:"principal"`
	Hash      []byte             `json:"hash"`
}

// NewBadgerResourceStore opens (or creates) a store. A new database gets a
// top-level folder readable by everyone.
func NewBadgerResourceStore(ctx context.Context, config BadgerResourceStoreConfig) (*BadgerResourceStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badgerdb.DefaultOptions(config.DBPath)
	if config.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLoggingLevel(badgerdb.WARNING)
	opts = opts.WithCompression(options.None)

	blockCacheMB := config.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}
	opts = opts.WithBlockCacheSize(blockCacheMB << 20)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open BadgerDB at %s", config.DBPath)
	}

	s := &BadgerResourceStore{db: db, bcryptCost: config.BcryptCost, now: time.Now}
	if err := s.initializeRoot(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to initialize root folder")
	}
	return s, nil
}

func (s *BadgerResourceStore) initializeRoot() error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keyConfigRoot))
		if err == nil {
			return item.Value(func(val []byte) error {
				id, err := uuid.ParseBytes(val)
				s.rootID = id
				return err
			})
		}
		if err != badgerdb.ErrKeyNotFound {
			return err
		}

		now := s.now()
		root := &resource.Entity{
			ID:         uuid.New(),
			Kind:       resource.KindFolder,
			Path:       "/",
			CreatedAt:  now,
			CreatedBy:  resource.SystemPrincipalID,
			ModifiedAt: now,
			ModifiedBy: resource.SystemPrincipalID,
		}
		s.rootID = root.ID

		system := resource.Principal{
			ID:          resource.SystemPrincipalID,
			Name:        resource.SystemPrincipalID,
			DisplayName: "System",
			Admin:       true,
		}
		rootACL := []resource.AccessControlEntry{{
			PrincipalID: resource.PrincipalAllOthers,
			Granted:     resource.PermissionRead | resource.PermissionView,
			SourceID:    root.ID,
		}}

		if err := putJSON(txn, keyEntity(root.ID), root); err != nil {
			return err
		}
		if err := putJSON(txn, keyPrincipal(system.ID), system); err != nil {
			return err
		}
		if err := putJSON(txn, keyACL(root.ID), rootACL); err != nil {
			return err
		}
		if err := txn.Set(keyPath("/"), []byte(root.ID.String())); err != nil {
			return err
		}
		return txn.Set([]byte(keyConfigRoot), []byte(root.ID.String()))
	})
}

func (s *BadgerResourceStore) RootID() uuid.UUID {
	return s.rootID
}

func (s *BadgerResourceStore) LookupUser(ctx context.Context, username string) (resource.Principal, []byte, error) {
	if err := ctx.Err(); err != nil {
		return resource.Principal{}, nil, err
	}

	var rec userRecord
	err := s.db.View(func(txn *badgerdb.Txn) error {
		return getJSON(txn, keyUser(username), &rec, "user", username)
	})
	if err != nil {
		return resource.Principal{}, nil, err
	}
	return rec.Principal, rec.Hash, nil
}

func (s *BadgerResourceStore) OpenSession(ctx context.Context, principal resource.Principal) (resource.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &session{store: s, principal: principal}, nil
}

func (s *BadgerResourceStore) RelationTypes(ctx context.Context) ([]resource.RelationType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []resource.RelationType
	err := s.db.View(func(txn *badgerdb.Txn) error {
		return scanPrefix(txn, []byte(prefixRelType), true, func(_ []byte, val []byte) error {
			var rt resource.RelationType
			if err := json.Unmarshal(val, &rt); err != nil {
				return errors.Wrap(err, "decode relation type")
			}
			out = append(out, rt)
			return nil
		})
	})
	if err != nil {
		return nil, ioError(err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *BadgerResourceStore) PropertyNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		return scanPrefix(txn, []byte(prefixName), false, func(key []byte, _ []byte) error {
			out = append(out, string(key[len(prefixName):]))
			return nil
		})
	})
	if err != nil {
		return nil, ioError(err)
	}
	return out, nil
}

func (s *BadgerResourceStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return resource.NewError(resource.ErrIOError, "database is closed", "")
	}
	return s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keyConfigRoot))
		return err
	})
}

func (s *BadgerResourceStore) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "failed to close BadgerDB")
	}
	return nil
}

// ============================================================================
// Encoding helpers
// ============================================================================

func putJSON(txn *badgerdb.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return txn.Set(key, data)
}

// getJSON decodes the value at key into v. A missing key becomes an
// ErrNotFound StoreError describing what/path.
func getJSON(txn *badgerdb.Txn, key []byte, v any, what, path string) error {
	item, err := txn.Get(key)
	if err == badgerdb.ErrKeyNotFound {
		return resource.NotFound(what, path)
	}
	if err != nil {
		return ioError(err)
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, v); err != nil {
			return ioError(errors.Wrapf(err, "decode %s", key))
		}
		return nil
	})
}

// scanPrefix calls fn for every key under prefix in key order.
func scanPrefix(txn *badgerdb.Txn, prefix []byte, values bool, fn func(key, val []byte) error) error {
	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = values

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		var val []byte
		if values {
			var err error
			if val, err = item.ValueCopy(nil); err != nil {
				return err
			}
		}
		if err := fn(key, val); err != nil {
			return err
		}
	}
	return nil
}

// ioError wraps infrastructure failures. StoreErrors pass through.
func ioError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := resource.CodeOf(err); ok {
		return err
	}
	return &resource.StoreError{Code: resource.ErrIOError, Message: err.Error()}
}
