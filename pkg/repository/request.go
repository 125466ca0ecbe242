package repository

import (
	"context"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// request is the state of one facade call: the caller's session and the
// projector bound to it.
type request struct {
	session resource.Session
	proj    *projector
}

// resolve maps a protocol id to an object.
func (r *request) resolve(ctx context.Context, id string) (object, error) {
	if id == "" {
		return object{}, cmis.InvalidArgument("object id is required")
	}
	if IsRelationshipID(id) {
		return r.resolveRelationship(ctx, id)
	}

	e, err := r.entity(ctx, id)
	if err != nil {
		return object{}, err
	}
	return entityObject(e), nil
}

// entity resolves a folder or document id.
func (r *request) entity(ctx context.Context, id string) (*resource.Entity, error) {
	uid, err := ParseEntityID(id)
	if err != nil {
		return nil, err
	}

	e, err := r.session.Entity(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !r.proj.within(e.Path) {
		return nil, cmis.NotFound("object %q not found", id)
	}
	return e, nil
}

// entityByPath resolves a path relative to the repository root.
func (r *request) entityByPath(ctx context.Context, path string) (*resource.Entity, error) {
	if path == "" {
		return nil, cmis.InvalidArgument("path is required")
	}

	storePath := r.proj.storePath(path)
	if !r.proj.within(storePath) {
		return nil, cmis.NotFound("path %q not found", path)
	}
	return r.session.EntityByPath(ctx, storePath)
}

// folder resolves an id that must name a folder.
func (r *request) folder(ctx context.Context, id string) (*resource.Entity, error) {
	if IsRelationshipID(id) {
		return nil, cmis.InvalidArgument("object %q is not a folder", id)
	}
	e, err := r.entity(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsFolder() {
		return nil, cmis.InvalidArgument("object %q is not a folder", id)
	}
	return e, nil
}

// document resolves an id that must name a document.
func (r *request) document(ctx context.Context, id string) (*resource.Entity, error) {
	if IsRelationshipID(id) {
		return nil, cmis.InvalidArgument("object %q is not a document", id)
	}
	e, err := r.entity(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsDocument() {
		return nil, cmis.InvalidArgument("object %q is not a document", id)
	}
	return e, nil
}

// project projects obj with its own copy of f.
func (r *request) project(ctx context.Context, obj object, f *Filter, opts ObjectOptions) (cmis.ObjectData, error) {
	return r.proj.project(ctx, obj, f.Copy(), opts)
}
