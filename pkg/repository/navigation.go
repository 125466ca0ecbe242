package repository

import (
	"context"
	"slices"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// children pages the immediate children of a folder. NumItems is the total
// number of visible children.
func (r *request) children(ctx context.Context, folder *resource.Entity, opts ChildrenOptions) (*cmis.ObjectInFolderList, error) {
	entries, err := r.session.Children(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	skip, take := pageBounds(opts.MaxItems, opts.SkipCount)
	page, more := Page(slices.Values(entries), skip, take)

	f := ParseFilter(opts.Filter)
	list := &cmis.ObjectInFolderList{
		Objects:      make([]cmis.ObjectInFolderData, 0, len(page)),
		HasMoreItems: more,
	}
	for _, child := range page {
		data, err := r.project(ctx, entityObject(child), f, opts.ObjectOptions)
		if err != nil {
			return nil, err
		}
		entry := cmis.ObjectInFolderData{Object: data}
		if opts.IncludePathSegment {
			entry.PathSegment = child.Name
		}
		list.Objects = append(list.Objects, entry)
	}
	total := int64(len(entries))
	list.NumItems = &total
	return list, nil
}

// descendants collects the tree below folder, depth levels deep (negative
// is unbounded). Each level is projected in full before recursing into its
// folders, in order.
func (r *request) descendants(ctx context.Context, folder *resource.Entity, depth int64, foldersOnly bool, f *Filter, opts DescendantsOptions) ([]cmis.ObjectInFolderContainer, error) {
	entries, err := r.session.Children(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	if foldersOnly {
		entries = slices.DeleteFunc(entries, func(e *resource.Entity) bool { return !e.IsFolder() })
	}

	level := make([]cmis.ObjectInFolderContainer, 0, len(entries))
	for _, child := range entries {
		data, err := r.project(ctx, entityObject(child), f, opts.ObjectOptions)
		if err != nil {
			return nil, err
		}
		entry := cmis.ObjectInFolderData{Object: data}
		if opts.IncludePathSegment {
			entry.PathSegment = child.Name
		}
		level = append(level, cmis.ObjectInFolderContainer{Object: entry})
	}

	if depth == 1 {
		return level, nil
	}
	for i, child := range entries {
		if !child.IsFolder() {
			continue
		}
		sub, err := r.descendants(ctx, child, depth-1, foldersOnly, f, opts)
		if err != nil {
			return nil, err
		}
		if len(sub) > 0 {
			level[i].Children = sub
		}
	}
	return level, nil
}

// folderParent returns the parent folder. The repository root has none.
func (r *request) folderParent(ctx context.Context, folder *resource.Entity) (*resource.Entity, error) {
	if r.proj.isRoot(folder) {
		return nil, cmis.InvalidArgument("the root folder has no parent")
	}
	return r.session.Parent(ctx, folder.ID)
}

// objectParents returns the single parent of a folder or document, or an
// empty list for the repository root.
func (r *request) objectParents(ctx context.Context, e *resource.Entity, opts ParentsOptions) ([]cmis.ObjectParentData, error) {
	if r.proj.isRoot(e) {
		return []cmis.ObjectParentData{}, nil
	}

	parent, err := r.session.Parent(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	data, err := r.project(ctx, entityObject(parent), ParseFilter(opts.Filter), opts.ObjectOptions)
	if err != nil {
		return nil, err
	}

	entry := cmis.ObjectParentData{Object: data}
	if opts.IncludeRelativePathSegment {
		entry.RelativePathSegment = e.Name
	}
	return []cmis.ObjectParentData{entry}, nil
}
