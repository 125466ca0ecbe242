package repository

import (
	"context"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// writable reports whether the caller may change e: the store is not in
// its published state, the caller holds write permission and the entity is
// unlocked or locked by the caller.
func (p *projector) writable(ctx context.Context, e *resource.Entity) (bool, error) {
	if p.session.ReadOnly() {
		return false, nil
	}

	ok, err := p.session.HasPermission(ctx, e.ID, resource.PermissionWrite)
	if err != nil || !ok {
		return false, err
	}

	lock, err := p.session.Lock(ctx, e.ID)
	if err != nil {
		return false, err
	}
	return lock.Available(p.session.Principal().ID, p.now()), nil
}

// allowableActions evaluates the action table for a folder or document.
func (p *projector) allowableActions(ctx context.Context, e *resource.Entity) (cmis.AllowableActions, error) {
	writable, err := p.writable(ctx, e)
	if err != nil {
		return nil, err
	}
	root := p.isRoot(e)

	actions := cmis.AllowableActions{
		cmis.ActionGetProperties:    true,
		cmis.ActionUpdateProperties: writable && !root,
		cmis.ActionMoveObject:       writable && !root,
		cmis.ActionDeleteObject:     writable && !root,
		cmis.ActionGetObjectParents: !root,
	}

	if e.IsFolder() {
		actions[cmis.ActionGetFolderParent] = !root
		actions[cmis.ActionCreateDocument] = writable
		actions[cmis.ActionCreateFolder] = writable
		actions[cmis.ActionDeleteTree] = writable
		actions[cmis.ActionGetChildren] = true
		actions[cmis.ActionGetDescendants] = true
		actions[cmis.ActionGetFolderTree] = true
		return actions, nil
	}

	actions[cmis.ActionGetContentStream] = true
	actions[cmis.ActionSetContentStream] = writable
	actions[cmis.ActionDeleteContentStream] = writable
	actions[cmis.ActionGetAllVersions] = true
	return actions, nil
}

// relationshipActions: properties are always readable; deleting requires a
// writable source and a relation kind that is not derived from content.
func (p *projector) relationshipActions(ctx context.Context, obj object) (cmis.AllowableActions, error) {
	writable, err := p.writable(ctx, obj.entity)
	if err != nil {
		return nil, err
	}
	rt := p.types.relationType(obj.relation.Type)

	return cmis.AllowableActions{
		cmis.ActionGetProperties: true,
		cmis.ActionDeleteObject:  writable && !rt.ContentDerived,
	}, nil
}
