// Package cmis holds the protocol-side shapes produced by the repository:
// typed property bags, allowable actions, access control lists, type
// definitions and repository descriptions.
//
// Nothing in this package talks to the resource store. Values are plain data
// and safe to serialize with encoding/json.
package cmis

// BaseTypeID identifies one of the three root object types.
type BaseTypeID string

const (
	BaseTypeFolder       BaseTypeID = "cmis:folder"
	BaseTypeDocument     BaseTypeID = "cmis:document"
	BaseTypeRelationship BaseTypeID = "cmis:relationship"
)

// Property ids shared by every base type.
const (
	PropObjectID             = "cmis:objectId"
	PropObjectTypeID         = "cmis:objectTypeId"
	PropBaseTypeID           = "cmis:baseTypeId"
	PropName                 = "cmis:name"
	PropCreatedBy            = "cmis:createdBy"
	PropCreationDate         = "cmis:creationDate"
	PropLastModifiedBy       = "cmis:lastModifiedBy"
	PropLastModificationDate = "cmis:lastModificationDate"
	PropChangeToken          = "cmis:changeToken"
)

// Folder properties.
const (
	PropPath                      = "cmis:path"
	PropParentID                  = "cmis:parentId"
	PropAllowedChildObjectTypeIDs = "cmis:allowedChildObjectTypeIds"
)

// Document properties.
const (
	PropIsImmutable               = "cmis:isImmutable"
	PropIsLatestVersion           = "cmis:isLatestVersion"
	PropIsMajorVersion            = "cmis:isMajorVersion"
	PropIsLatestMajorVersion      = "cmis:isLatestMajorVersion"
	PropVersionLabel              = "cmis:versionLabel"
	PropVersionSeriesID           = "cmis:versionSeriesId"
	PropIsVersionSeriesCheckedOut = "cmis:isVersionSeriesCheckedOut"
	PropVersionSeriesCheckedOutBy = "cmis:versionSeriesCheckedOutBy"
	PropVersionSeriesCheckedOutID = "cmis:versionSeriesCheckedOutId"
	PropCheckinComment            = "cmis:checkinComment"
	PropContentStreamLength       = "cmis:contentStreamLength"
	PropContentStreamMimeType     = "cmis:contentStreamMimeType"
	PropContentStreamFileName     = "cmis:contentStreamFileName"
	PropContentStreamID           = "cmis:contentStreamId"
)

// Relationship properties.
const (
	PropSourceID = "cmis:sourceId"
	PropTargetID = "cmis:targetId"
)

// Action names reported in an allowable-actions set.
type Action string

const (
	ActionGetProperties       Action = "canGetProperties"
	ActionUpdateProperties    Action = "canUpdateProperties"
	ActionMoveObject          Action = "canMoveObject"
	ActionDeleteObject        Action = "canDeleteObject"
	ActionGetObjectParents    Action = "canGetObjectParents"
	ActionGetFolderParent     Action = "canGetFolderParent"
	ActionCreateDocument      Action = "canCreateDocument"
	ActionCreateFolder        Action = "canCreateFolder"
	ActionDeleteTree          Action = "canDeleteTree"
	ActionGetChildren         Action = "canGetChildren"
	ActionGetDescendants      Action = "canGetDescendants"
	ActionGetFolderTree       Action = "canGetFolderTree"
	ActionGetContentStream    Action = "canGetContentStream"
	ActionSetContentStream    Action = "canSetContentStream"
	ActionDeleteContentStream Action = "canDeleteContentStream"
	ActionGetAllVersions      Action = "canGetAllVersions"
)

// PropertyType is the data kind of a property.
type PropertyType string

const (
	PropertyTypeString   PropertyType = "string"
	PropertyTypeID       PropertyType = "id"
	PropertyTypeInteger  PropertyType = "integer"
	PropertyTypeBoolean  PropertyType = "boolean"
	PropertyTypeDateTime PropertyType = "datetime"
)

type Cardinality string

const (
	CardinalitySingle Cardinality = "single"
	CardinalityMulti  Cardinality = "multi"
)

type Updatability string

const (
	UpdatabilityReadOnly  Updatability = "readonly"
	UpdatabilityReadWrite Updatability = "readwrite"
	UpdatabilityOnCreate  Updatability = "oncreate"
)

// Basic permission names.
const (
	PermissionRead  = "cmis:read"
	PermissionWrite = "cmis:write"
	PermissionAll   = "cmis:all"
)

// Version is the protocol version reported in repository info.
const Version = "1.0"
