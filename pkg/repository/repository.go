// Package repository exposes a resource store through the document
// management protocol's object model.
//
// A Repository answers protocol operations by projecting store entities
// into typed objects: properties gated by a client filter, allowable
// actions derived from locks and permissions, ACLs, and relationships
// addressed by synthetic ids. Types come from a TypeRegistry synthesized
// from the store schema and the configured property providers.
//
// Every operation authenticates the caller, opens a store session for the
// duration of the call and maps failures to cmis errors.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/auth"
	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/metrics"
	"github.com/marmos91/dittocmis/pkg/store/content"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/marmos91/dittocmis/pkg/repository"

// Config describes one repository.
type Config struct {
	// ID is what callers pass as the repository id.
	ID          string
	Name        string
	Description string

	// RootPath is the store folder exposed as the repository root. Paths
	// seen by clients are relative to it.
	// Default: "/"
	RootPath string

	// ProductVersion is reported in the repository info.
	// Default: "dev"
	ProductVersion string
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.RootPath == "" {
		c.RootPath = "/"
	}
	c.RootPath = resource.CleanPath(c.RootPath)
	if c.ProductVersion == "" {
		c.ProductVersion = "dev"
	}
}

// Dependencies are the collaborators of a Repository.
type Dependencies struct {
	Store         resource.Store
	Authenticator *auth.Authenticator
	Types         *TypeRegistry

	// Content holds document bodies. Nil makes every content stream
	// unavailable.
	Content content.ContentStore

	// Metrics records operations. Nil disables collection.
	Metrics metrics.RepositoryMetrics

	// Now is the clock used for lock expiry. Default: time.Now
	Now func() time.Time
}

// Repository is the entry point protocol bindings call.
//
// Thread safety:
// Safe for concurrent use. Each call runs on its own store session.
type Repository struct {
	config  Config
	rootID  uuid.UUID
	store   resource.Store
	auth    *auth.Authenticator
	types   *TypeRegistry
	content content.ContentStore
	metrics metrics.RepositoryMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

// New creates a repository. The root folder is resolved once, as the
// system principal.
func New(ctx context.Context, config Config, deps Dependencies) (*Repository, error) {
	config.applyDefaults()
	if config.ID == "" {
		return nil, fmt.Errorf("repository id is required")
	}
	if deps.Store == nil || deps.Authenticator == nil || deps.Types == nil {
		return nil, fmt.Errorf("repository %s: store, authenticator and types are required", config.ID)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNoopRepositoryMetrics()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	system, err := deps.Store.OpenSession(ctx, resource.Principal{
		ID:    resource.SystemPrincipalID,
		Name:  resource.SystemPrincipalID,
		Admin: true,
	})
	if err != nil {
		return nil, fmt.Errorf("repository %s: open system session: %w", config.ID, err)
	}
	defer func() { _ = system.Close() }()

	root, err := system.EntityByPath(ctx, config.RootPath)
	if err != nil {
		return nil, fmt.Errorf("repository %s: resolve root %s: %w", config.ID, config.RootPath, err)
	}
	if !root.IsFolder() {
		return nil, fmt.Errorf("repository %s: root %s is not a folder", config.ID, config.RootPath)
	}

	return &Repository{
		config:  config,
		rootID:  root.ID,
		store:   deps.Store,
		auth:    deps.Authenticator,
		types:   deps.Types,
		content: deps.Content,
		metrics: deps.Metrics,
		tracer:  otel.Tracer(tracerName),
		now:     deps.Now,
	}, nil
}

// ID returns the repository id.
func (r *Repository) ID() string {
	return r.config.ID
}

// RootID returns the id of the root folder.
func (r *Repository) RootID() string {
	return r.rootID.String()
}

// Types returns the type registry.
func (r *Repository) Types() *TypeRegistry {
	return r.types
}

// call runs fn on a fresh session for the caller. It is the only place
// failures are translated to protocol errors.
func (r *Repository) call(ctx context.Context, cc CallContext, operation, target string, fn func(ctx context.Context, req *request) error) (err error) {
	ctx, span := r.tracer.Start(ctx, "cmis."+operation, trace.WithAttributes(
		attribute.String("cmis.repository", r.config.ID),
		attribute.String("cmis.target", target),
		attribute.String("cmis.user", cc.Username),
	))
	start := time.Now()

	defer func() {
		err = mapStoreError(err)
		r.metrics.RecordOperation(operation, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if cmis.KindOf(err) == cmis.KindRuntime {
				logger.Error("%s %s failed: %v", operation, target, err)
			} else {
				logger.Warn("%s %s: %v", operation, target, err)
			}
		}
		span.End()
	}()

	logger.Info("%s: repository=%s target=%s user=%s", operation, cc.RepositoryID, target, cc.Username)

	if cc.RepositoryID != r.config.ID {
		return cmis.NotFound("repository %q not found", cc.RepositoryID)
	}

	principal, err := r.auth.Authenticate(ctx, resource.Credentials{Username: cc.Username, Password: cc.Password})
	if err != nil {
		return err
	}

	session, err := r.store.OpenSession(ctx, principal)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	req := &request{
		session: session,
		proj: &projector{
			session:    session,
			types:      r.types.snapshot(ctx),
			rootID:     r.rootID,
			rootPath:   r.config.RootPath,
			objectInfo: cc.ObjectInfoRequired,
			now:        r.now,
			names:      make(map[string]string),
		},
	}
	return fn(ctx, req)
}

// GetRepositoryInfo describes this repository.
func (r *Repository) GetRepositoryInfo(ctx context.Context, cc CallContext) (*cmis.RepositoryInfo, error) {
	var info *cmis.RepositoryInfo
	err := r.call(ctx, cc, "GetRepositoryInfo", r.config.ID, func(ctx context.Context, req *request) error {
		info = r.info()
		return nil
	})
	return info, err
}

// GetTypeDefinition returns one type.
func (r *Repository) GetTypeDefinition(ctx context.Context, cc CallContext, typeID string) (*cmis.TypeDefinition, error) {
	var def *cmis.TypeDefinition
	err := r.call(ctx, cc, "GetTypeDefinition", typeID, func(ctx context.Context, req *request) error {
		t, err := req.proj.types.lookup(typeID)
		if err != nil {
			return err
		}
		def = t.Copy(true)
		return nil
	})
	return def, err
}

// GetTypeChildren pages the subtypes of typeID; an empty id lists the base
// types.
func (r *Repository) GetTypeChildren(ctx context.Context, cc CallContext, typeID string, includeDefinitions bool, maxItems, skipCount int64) (*cmis.TypeDefinitionList, error) {
	var list *cmis.TypeDefinitionList
	err := r.call(ctx, cc, "GetTypeChildren", typeID, func(ctx context.Context, req *request) (err error) {
		list, err = r.types.GetTypeChildren(ctx, typeID, includeDefinitions, maxItems, skipCount)
		return err
	})
	return list, err
}

// GetTypeDescendants returns the subtype tree of typeID.
func (r *Repository) GetTypeDescendants(ctx context.Context, cc CallContext, typeID string, depth int64, includeDefinitions bool) ([]cmis.TypeDefinitionContainer, error) {
	var tree []cmis.TypeDefinitionContainer
	err := r.call(ctx, cc, "GetTypeDescendants", typeID, func(ctx context.Context, req *request) (err error) {
		tree, err = r.types.GetTypeDescendants(ctx, typeID, depth, includeDefinitions)
		return err
	})
	return tree, err
}

// GetObject projects a folder, document or relationship.
func (r *Repository) GetObject(ctx context.Context, cc CallContext, objectID string, opts ObjectOptions) (*cmis.ObjectData, error) {
	var data cmis.ObjectData
	err := r.call(ctx, cc, "GetObject", objectID, func(ctx context.Context, req *request) error {
		obj, err := req.resolve(ctx, objectID)
		if err != nil {
			return err
		}
		data, err = req.project(ctx, obj, ParseFilter(opts.Filter), opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// GetObjectByPath projects the folder or document at path, relative to the
// repository root.
func (r *Repository) GetObjectByPath(ctx context.Context, cc CallContext, path string, opts ObjectOptions) (*cmis.ObjectData, error) {
	var data cmis.ObjectData
	err := r.call(ctx, cc, "GetObjectByPath", path, func(ctx context.Context, req *request) error {
		e, err := req.entityByPath(ctx, path)
		if err != nil {
			return err
		}
		data, err = req.project(ctx, entityObject(e), ParseFilter(opts.Filter), opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// GetProperties returns the filtered properties of an object.
func (r *Repository) GetProperties(ctx context.Context, cc CallContext, objectID, filter string) (cmis.Properties, error) {
	var props cmis.Properties
	err := r.call(ctx, cc, "GetProperties", objectID, func(ctx context.Context, req *request) error {
		obj, err := req.resolve(ctx, objectID)
		if err != nil {
			return err
		}
		data, err := req.project(ctx, obj, ParseFilter(filter), ObjectOptions{})
		props = data.Properties
		return err
	})
	return props, err
}

// GetAllowableActions evaluates what the caller may do with an object.
func (r *Repository) GetAllowableActions(ctx context.Context, cc CallContext, objectID string) (cmis.AllowableActions, error) {
	var actions cmis.AllowableActions
	err := r.call(ctx, cc, "GetAllowableActions", objectID, func(ctx context.Context, req *request) error {
		obj, err := req.resolve(ctx, objectID)
		if err != nil {
			return err
		}
		if obj.base == cmis.BaseTypeRelationship {
			actions, err = req.proj.relationshipActions(ctx, obj)
		} else {
			actions, err = req.proj.allowableActions(ctx, obj.entity)
		}
		return err
	})
	return actions, err
}

// GetACL returns the access control list of an object. Relationships have
// an empty one.
func (r *Repository) GetACL(ctx context.Context, cc CallContext, objectID string, onlyBasicPermissions bool) (*cmis.Acl, error) {
	var acl *cmis.Acl
	err := r.call(ctx, cc, "GetACL", objectID, func(ctx context.Context, req *request) error {
		obj, err := req.resolve(ctx, objectID)
		if err != nil {
			return err
		}
		if obj.base == cmis.BaseTypeRelationship {
			acl = &cmis.Acl{Aces: []cmis.Ace{}, Exact: false}
			return nil
		}
		acl, err = req.proj.acl(ctx, obj.entity, onlyBasicPermissions)
		return err
	})
	return acl, err
}

// GetChildren pages the children of a folder.
func (r *Repository) GetChildren(ctx context.Context, cc CallContext, folderID string, opts ChildrenOptions) (*cmis.ObjectInFolderList, error) {
	var list *cmis.ObjectInFolderList
	err := r.call(ctx, cc, "GetChildren", folderID, func(ctx context.Context, req *request) error {
		folder, err := req.folder(ctx, folderID)
		if err != nil {
			return err
		}
		list, err = req.children(ctx, folder, opts)
		return err
	})
	return list, err
}

// GetDescendants returns the tree of folders and documents below a folder.
// depth must not be 0; a negative depth is unbounded.
func (r *Repository) GetDescendants(ctx context.Context, cc CallContext, folderID string, depth int64, opts DescendantsOptions) ([]cmis.ObjectInFolderContainer, error) {
	return r.tree(ctx, cc, "GetDescendants", folderID, depth, false, opts)
}

// GetFolderTree is GetDescendants restricted to folders.
func (r *Repository) GetFolderTree(ctx context.Context, cc CallContext, folderID string, depth int64, opts DescendantsOptions) ([]cmis.ObjectInFolderContainer, error) {
	return r.tree(ctx, cc, "GetFolderTree", folderID, depth, true, opts)
}

func (r *Repository) tree(ctx context.Context, cc CallContext, operation, folderID string, depth int64, foldersOnly bool, opts DescendantsOptions) ([]cmis.ObjectInFolderContainer, error) {
	var tree []cmis.ObjectInFolderContainer
	err := r.call(ctx, cc, operation, folderID, func(ctx context.Context, req *request) error {
		if depth == 0 {
			return cmis.InvalidArgument("depth must not be 0")
		}
		folder, err := req.folder(ctx, folderID)
		if err != nil {
			return err
		}
		tree, err = req.descendants(ctx, folder, depth, foldersOnly, ParseFilter(opts.Filter), opts)
		return err
	})
	return tree, err
}

// GetFolderParent returns the parent of a folder. The root folder has
// none.
func (r *Repository) GetFolderParent(ctx context.Context, cc CallContext, folderID, filter string) (*cmis.ObjectData, error) {
	var data cmis.ObjectData
	err := r.call(ctx, cc, "GetFolderParent", folderID, func(ctx context.Context, req *request) error {
		folder, err := req.folder(ctx, folderID)
		if err != nil {
			return err
		}
		parent, err := req.folderParent(ctx, folder)
		if err != nil {
			return err
		}
		data, err = req.project(ctx, entityObject(parent), ParseFilter(filter), ObjectOptions{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// GetObjectParents returns the parents of a folder or document.
// Relationships are not filed and are rejected.
func (r *Repository) GetObjectParents(ctx context.Context, cc CallContext, objectID string, opts ParentsOptions) ([]cmis.ObjectParentData, error) {
	var parents []cmis.ObjectParentData
	err := r.call(ctx, cc, "GetObjectParents", objectID, func(ctx context.Context, req *request) error {
		if IsRelationshipID(objectID) {
			return cmis.InvalidArgument("relationship %q has no parents", objectID)
		}
		e, err := req.entity(ctx, objectID)
		if err != nil {
			return err
		}
		parents, err = req.objectParents(ctx, e, opts)
		return err
	})
	return parents, err
}

// GetObjectRelationships lists the relationships of a folder or document.
func (r *Repository) GetObjectRelationships(ctx context.Context, cc CallContext, objectID string, opts RelationshipsOptions) (*cmis.ObjectList, error) {
	var list *cmis.ObjectList
	err := r.call(ctx, cc, "GetObjectRelationships", objectID, func(ctx context.Context, req *request) error {
		if IsRelationshipID(objectID) {
			return cmis.InvalidArgument("object %q is a relationship", objectID)
		}
		e, err := req.entity(ctx, objectID)
		if err != nil {
			return err
		}
		list, err = req.relationships(ctx, e, opts)
		return err
	})
	return list, err
}
