package cmis

import (
	"io"
	"slices"
	"time"
)

// PropertyData is one emitted property. An empty Values slice is the
// protocol's null value.
type PropertyData struct {
	ID        string       `json:"id"`
	QueryName string       `json:"queryName"`
	Type      PropertyType `json:"type"`
	Values    []any        `json:"values"`
}

// IsNull reports whether the property carries no value.
func (p PropertyData) IsNull() bool {
	return len(p.Values) == 0
}

// First returns the first value or nil.
func (p PropertyData) First() any {
	if len(p.Values) == 0 {
		return nil
	}
	return p.Values[0]
}

// Properties is an ordered property bag. Order is emission order.
type Properties []PropertyData

// Get returns the property with the given id.
func (p Properties) Get(id string) (PropertyData, bool) {
	for _, prop := range p {
		if prop.ID == id {
			return prop, true
		}
	}
	return PropertyData{}, false
}

// Value returns the first value of the property with the given id, or nil.
func (p Properties) Value(id string) any {
	prop, ok := p.Get(id)
	if !ok {
		return nil
	}
	return prop.First()
}

// IDs returns the property ids in emission order.
func (p Properties) IDs() []string {
	ids := make([]string, len(p))
	for i, prop := range p {
		ids[i] = prop.ID
	}
	return ids
}

// AllowableActions maps every evaluated action to its outcome.
type AllowableActions map[Action]bool

// Allowed reports whether a is present and true.
func (a AllowableActions) Allowed(action Action) bool {
	return a[action]
}

// Granted returns the allowed actions sorted by name.
func (a AllowableActions) Granted() []Action {
	out := make([]Action, 0, len(a))
	for action, ok := range a {
		if ok {
			out = append(out, action)
		}
	}
	slices.Sort(out)
	return out
}

// Ace is one access control entry. PrincipalID holds the display name of
// the principal.
type Ace struct {
	PrincipalID string   `json:"principalId"`
	Permissions []string `json:"permissions"`
	Direct      bool     `json:"direct"`
}

// Acl is an access control list. Exact is false when the list may not be
// exhaustive.
type Acl struct {
	Aces  []Ace `json:"aces"`
	Exact bool  `json:"exact"`
}

// ObjectInfo is side-channel metadata some bindings need to build links.
type ObjectInfo struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	TypeID             string     `json:"typeId"`
	BaseType           BaseTypeID `json:"baseType"`
	CreatedBy          string     `json:"createdBy"`
	CreationDate       time.Time  `json:"creationDate"`
	LastModified       time.Time  `json:"lastModificationDate"`
	HasContent         bool       `json:"hasContent"`
	HasParent          bool       `json:"hasParent"`
	ContentType        string     `json:"contentType,omitempty"`
	FileName           string     `json:"fileName,omitempty"`
	RelationshipSource string     `json:"relationshipSourceId,omitempty"`
	RelationshipTarget string     `json:"relationshipTargetId,omitempty"`
}

// ObjectData is a projected object.
type ObjectData struct {
	Properties       Properties       `json:"properties"`
	AllowableActions AllowableActions `json:"allowableActions,omitempty"`
	Acl              *Acl             `json:"acl,omitempty"`
	Info             *ObjectInfo      `json:"-"`
}

// ID returns the cmis:objectId value.
func (o ObjectData) ID() string {
	id, _ := o.Properties.Value(PropObjectID).(string)
	return id
}

// ObjectInFolderData is a child entry, optionally with its path segment.
type ObjectInFolderData struct {
	Object      ObjectData `json:"object"`
	PathSegment string     `json:"pathSegment,omitempty"`
}

type ObjectInFolderList struct {
	Objects      []ObjectInFolderData `json:"objects"`
	HasMoreItems bool                 `json:"hasMoreItems"`
	NumItems     *int64               `json:"numItems,omitempty"`
}

// ObjectInFolderContainer is a node of a descendants or folder tree.
type ObjectInFolderContainer struct {
	Object   ObjectInFolderData        `json:"object"`
	Children []ObjectInFolderContainer `json:"children,omitempty"`
}

type ObjectParentData struct {
	Object              ObjectData `json:"object"`
	RelativePathSegment string     `json:"relativePathSegment,omitempty"`
}

type ObjectList struct {
	Objects      []ObjectData `json:"objects"`
	HasMoreItems bool         `json:"hasMoreItems"`
	NumItems     *int64       `json:"numItems,omitempty"`
}

// ContentStream is a document body. The caller must close Stream.
type ContentStream struct {
	FileName string
	MimeType string
	Length   int64
	Stream   io.ReadCloser
}
