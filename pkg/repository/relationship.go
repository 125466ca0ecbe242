package repository

import (
	"context"
	"slices"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// resolveRelationship rebuilds a relationship from its synthetic id. The
// relation must still exist on its source, and both ends must be visible
// under the repository root.
func (r *request) resolveRelationship(ctx context.Context, id string) (object, error) {
	rel, err := DecodeRelationshipID(id)
	if err != nil {
		return object{}, err
	}

	source, err := r.session.Entity(ctx, rel.SourceID)
	if err != nil {
		return object{}, err
	}
	if !r.proj.within(source.Path) {
		return object{}, cmis.NotFound("relationship %q not found", id)
	}

	relations, err := r.session.Relations(ctx, source.ID, resource.DirectionSource)
	if err != nil {
		return object{}, err
	}
	if !slices.Contains(relations, rel) {
		return object{}, cmis.NotFound("relationship %q not found", id)
	}

	target, err := r.session.Entity(ctx, rel.TargetID)
	if resource.IsNotFound(err) || resource.IsPermissionDenied(err) {
		return object{}, cmis.NotFound("relationship %q not found", id)
	}
	if err != nil {
		return object{}, err
	}
	if !r.proj.within(target.Path) {
		return object{}, cmis.NotFound("relationship %q not found", id)
	}
	return relationshipObject(rel, source, target), nil
}

// matchesRelationshipType applies the type filter of a relationships query.
func (r *request) matchesRelationshipType(rel resource.Relation, typeID string, includeSubtypes bool) bool {
	if typeID == "" {
		return true
	}
	relTypeID := RelationshipTypeID(rel.Type)
	if relTypeID == typeID {
		return true
	}
	return includeSubtypes && r.proj.types.isSubtype(relTypeID, typeID)
}

// endpoint reads the other end of a relation. ok is false when the caller
// cannot see it or it lies outside the repository root.
func (r *request) endpoint(ctx context.Context, e *resource.Entity, rel resource.Relation, source bool) (*resource.Entity, bool, error) {
	want := rel.TargetID
	if source {
		want = rel.SourceID
	}
	if want == e.ID {
		return e, true, nil
	}

	other, err := r.session.Entity(ctx, want)
	if resource.IsNotFound(err) || resource.IsPermissionDenied(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return other, r.proj.within(other.Path), nil
}

// relationships lists the relations of e as relationship objects. Relations
// whose other end is not visible to the caller are left out.
func (r *request) relationships(ctx context.Context, e *resource.Entity, opts RelationshipsOptions) (*cmis.ObjectList, error) {
	if opts.TypeID != "" {
		if _, err := r.proj.types.lookup(opts.TypeID); err != nil {
			return nil, err
		}
	}

	relations, err := r.session.Relations(ctx, e.ID, opts.Direction)
	if err != nil {
		return nil, err
	}

	var visible []object
	for _, rel := range relations {
		if !r.matchesRelationshipType(rel, opts.TypeID, opts.IncludeSubRelationshipTypes) {
			continue
		}
		source, ok, err := r.endpoint(ctx, e, rel, true)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		target, ok, err := r.endpoint(ctx, e, rel, false)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		visible = append(visible, relationshipObject(rel, source, target))
	}

	skip, take := pageBounds(opts.MaxItems, opts.SkipCount)
	page, more := Page(slices.Values(visible), skip, take)

	f := ParseFilter(opts.Filter)
	objOpts := ObjectOptions{IncludeAllowableActions: opts.IncludeAllowableActions}
	list := &cmis.ObjectList{Objects: make([]cmis.ObjectData, 0, len(page)), HasMoreItems: more}
	for _, obj := range page {
		data, err := r.project(ctx, obj, f, objOpts)
		if err != nil {
			return nil, err
		}
		list.Objects = append(list.Objects, data)
	}
	total := int64(len(visible))
	list.NumItems = &total
	return list, nil
}
