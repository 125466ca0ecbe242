package repository

import "github.com/marmos91/dittocmis/pkg/store/resource"

// CallContext carries the per-call parameters supplied by a binding.
type CallContext struct {
	// RepositoryID must name this repository.
	RepositoryID string

	// Username and Password are the caller's credentials. An empty
	// Username is an anonymous call.
	Username string
	Password string

	// ObjectInfoRequired asks for ObjectInfo on every projected object.
	ObjectInfoRequired bool
}

// ObjectOptions selects what a projection includes.
type ObjectOptions struct {
	// Filter is a comma-separated list of property query names. Empty or
	// "*" selects every property.
	Filter string

	IncludeAllowableActions bool
	IncludeACL              bool

	// OnlyBasicPermissions renders ACL entries as cmis:read, cmis:write
	// and cmis:all instead of the store's native permission names.
	OnlyBasicPermissions bool
}

// ChildrenOptions configures GetChildren.
type ChildrenOptions struct {
	ObjectOptions

	IncludePathSegment bool

	// MaxItems <= 0 means no limit. A negative SkipCount is treated as 0.
	MaxItems  int64
	SkipCount int64
}

// DescendantsOptions configures GetDescendants and GetFolderTree.
type DescendantsOptions struct {
	ObjectOptions

	IncludePathSegment bool
}

// ParentsOptions configures GetObjectParents.
type ParentsOptions struct {
	ObjectOptions

	IncludeRelativePathSegment bool
}

// RelationshipsOptions configures GetObjectRelationships.
type RelationshipsOptions struct {
	// TypeID restricts the result to one relationship type. Empty matches
	// every type.
	TypeID                      string
	IncludeSubRelationshipTypes bool

	Direction resource.Direction

	Filter                  string
	IncludeAllowableActions bool

	MaxItems  int64
	SkipCount int64
}
