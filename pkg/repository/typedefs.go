package repository

import (
	"strings"

	"github.com/marmos91/dittocmis/pkg/cmis"
)

// Property and type id namespaces for definitions derived from the store.
const (
	// DirectNamespace prefixes a store property read from the entity itself
	DirectNamespace = "ditto:"

	// InheritedNamespace prefixes a store property resolved through ancestors
	InheritedNamespace = "ditto-inherited:"

	// DynamicNamespace prefixes a property computed by a provider
	DynamicNamespace = "ditto-dynamic:"

	// RelationshipTypePrefix prefixes the id of a relationship subtype
	RelationshipTypePrefix = DirectNamespace + "REL_"
)

// RelationshipTypeID derives the type id of a store relation type.
func RelationshipTypeID(relationType string) string {
	return RelationshipTypePrefix + strings.ToUpper(relationType)
}

func localName(id string) string {
	if i := strings.LastIndexByte(id, ':'); i >= 0 {
		return id[i+1:]
	}
	return id
}

func propertyDefinition(id string, typ cmis.PropertyType, upd cmis.Updatability) *cmis.PropertyDefinition {
	name := localName(id)
	return &cmis.PropertyDefinition{
		ID:           id,
		LocalName:    name,
		QueryName:    id,
		DisplayName:  name,
		Type:         typ,
		Cardinality:  cmis.CardinalitySingle,
		Updatability: upd,
		Queryable:    true,
		Orderable:    true,
	}
}

func defineAll(defs ...*cmis.PropertyDefinition) map[string]*cmis.PropertyDefinition {
	out := make(map[string]*cmis.PropertyDefinition, len(defs))
	for _, d := range defs {
		out[d.ID] = d
	}
	return out
}

func required(d *cmis.PropertyDefinition) *cmis.PropertyDefinition {
	d.Required = true
	return d
}

func multi(d *cmis.PropertyDefinition) *cmis.PropertyDefinition {
	d.Cardinality = cmis.CardinalityMulti
	d.Orderable = false
	return d
}

// commonPropertyDefinitions are shared by the three base types.
func commonPropertyDefinitions() []*cmis.PropertyDefinition {
	ro := cmis.UpdatabilityReadOnly
	return []*cmis.PropertyDefinition{
		required(propertyDefinition(cmis.PropObjectID, cmis.PropertyTypeID, ro)),
		required(propertyDefinition(cmis.PropName, cmis.PropertyTypeString, cmis.UpdatabilityReadWrite)),
		propertyDefinition(cmis.PropCreatedBy, cmis.PropertyTypeString, ro),
		propertyDefinition(cmis.PropCreationDate, cmis.PropertyTypeDateTime, ro),
		propertyDefinition(cmis.PropLastModifiedBy, cmis.PropertyTypeString, ro),
		propertyDefinition(cmis.PropLastModificationDate, cmis.PropertyTypeDateTime, ro),
		propertyDefinition(cmis.PropChangeToken, cmis.PropertyTypeString, ro),
		required(propertyDefinition(cmis.PropBaseTypeID, cmis.PropertyTypeID, ro)),
		required(propertyDefinition(cmis.PropObjectTypeID, cmis.PropertyTypeID, cmis.UpdatabilityOnCreate)),
	}
}

func folderType() *cmis.TypeDefinition {
	ro := cmis.UpdatabilityReadOnly
	defs := append(commonPropertyDefinitions(),
		propertyDefinition(cmis.PropPath, cmis.PropertyTypeString, ro),
		propertyDefinition(cmis.PropParentID, cmis.PropertyTypeID, ro),
		multi(propertyDefinition(cmis.PropAllowedChildObjectTypeIDs, cmis.PropertyTypeID, ro)),
	)
	return &cmis.TypeDefinition{
		ID:                  string(cmis.BaseTypeFolder),
		LocalName:           "folder",
		LocalNamespace:      DirectNamespace,
		QueryName:           string(cmis.BaseTypeFolder),
		DisplayName:         "Folder",
		Description:         "Folder",
		BaseTypeID:          cmis.BaseTypeFolder,
		Creatable:           true,
		Fileable:            true,
		Queryable:           false,
		IncludedInSuperType: true,
		ControllableACL:     true,
		PropertyDefinitions: defineAll(defs...),
	}
}

func documentType() *cmis.TypeDefinition {
	ro := cmis.UpdatabilityReadOnly
	defs := append(commonPropertyDefinitions(),
		propertyDefinition(cmis.PropIsImmutable, cmis.PropertyTypeBoolean, ro),
		propertyDefinition(cmis.PropIsLatestVersion, cmis.PropertyTypeBoolean, ro),
		propertyDefinition(cmis.PropIsMajorVersion, cmis.PropertyTypeBoolean, ro),
		propertyDefinition(cmis.PropIsLatestMajorVersion, cmis.PropertyTypeBoolean, ro),
		propertyDefinition(cmis.PropVersionLabel, cmis.PropertyTypeString, ro),
		propertyDefinition(cmis.PropVersionSeriesID, cmis.PropertyTypeID, ro),
		propertyDefinition(cmis.PropIsVersionSeriesCheckedOut, cmis.PropertyTypeBoolean, ro),
		propertyDefinition(cmis.PropVersionSeriesCheckedOutBy, cmis.PropertyTypeString, ro),
		propertyDefinition(cmis.PropVersionSeriesCheckedOutID, cmis.PropertyTypeID, ro),
		propertyDefinition(cmis.PropCheckinComment, cmis.PropertyTypeString, ro),
		propertyDefinition(cmis.PropContentStreamLength, cmis.PropertyTypeInteger, ro),
		propertyDefinition(cmis.PropContentStreamMimeType, cmis.PropertyTypeString, ro),
		propertyDefinition(cmis.PropContentStreamFileName, cmis.PropertyTypeString, ro),
		propertyDefinition(cmis.PropContentStreamID, cmis.PropertyTypeID, ro),
	)
	return &cmis.TypeDefinition{
		ID:                  string(cmis.BaseTypeDocument),
		LocalName:           "document",
		LocalNamespace:      DirectNamespace,
		QueryName:           string(cmis.BaseTypeDocument),
		DisplayName:         "Document",
		Description:         "Document",
		BaseTypeID:          cmis.BaseTypeDocument,
		Creatable:           true,
		Fileable:            true,
		Queryable:           false,
		IncludedInSuperType: true,
		ControllableACL:     true,
		Versionable:         false,
		ContentStreamAllow:  "allowed",
		PropertyDefinitions: defineAll(defs...),
	}
}

func relationshipType() *cmis.TypeDefinition {
	defs := append(commonPropertyDefinitions(),
		required(propertyDefinition(cmis.PropSourceID, cmis.PropertyTypeID, cmis.UpdatabilityOnCreate)),
		required(propertyDefinition(cmis.PropTargetID, cmis.PropertyTypeID, cmis.UpdatabilityOnCreate)),
	)
	return &cmis.TypeDefinition{
		ID:                  string(cmis.BaseTypeRelationship),
		LocalName:           "relationship",
		LocalNamespace:      DirectNamespace,
		QueryName:           string(cmis.BaseTypeRelationship),
		DisplayName:         "Relationship",
		Description:         "Relationship",
		BaseTypeID:          cmis.BaseTypeRelationship,
		Creatable:           false,
		Fileable:            false,
		Queryable:           false,
		IncludedInSuperType: true,
		PropertyDefinitions: defineAll(defs...),
	}
}

// relationshipSubtype derives the type of one store relation kind.
// Content-derived relations cannot be created on their own.
func relationshipSubtype(name string, contentDerived bool, parent *cmis.TypeDefinition) *cmis.TypeDefinition {
	id := RelationshipTypeID(name)
	t := &cmis.TypeDefinition{
		ID:                  id,
		LocalName:           name,
		LocalNamespace:      DirectNamespace,
		QueryName:           id,
		DisplayName:         name,
		Description:         "Relation " + name,
		BaseTypeID:          cmis.BaseTypeRelationship,
		ParentTypeID:        parent.ID,
		Creatable:           !contentDerived,
		Fileable:            false,
		Queryable:           false,
		IncludedInSuperType: true,
		AllowedSourceTypes:  []string{string(cmis.BaseTypeDocument), string(cmis.BaseTypeFolder)},
		AllowedTargetTypes:  []string{string(cmis.BaseTypeDocument), string(cmis.BaseTypeFolder)},
	}
	t.InheritFrom(parent)
	return t
}
