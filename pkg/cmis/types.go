package cmis

import (
	"maps"
	"slices"
)

// PropertyDefinition describes one property of a type.
type PropertyDefinition struct {
	ID           string       `json:"id"`
	LocalName    string       `json:"localName"`
	QueryName    string       `json:"queryName"`
	DisplayName  string       `json:"displayName"`
	Description  string       `json:"description,omitempty"`
	Type         PropertyType `json:"propertyType"`
	Cardinality  Cardinality  `json:"cardinality"`
	Updatability Updatability `json:"updatability"`
	Inherited    bool         `json:"inherited"`
	Required     bool         `json:"required"`
	Queryable    bool         `json:"queryable"`
	Orderable    bool         `json:"orderable"`
}

// TypeDefinition is a node of the type hierarchy. ParentTypeID is empty for
// the base types.
type TypeDefinition struct {
	ID                  string                         `json:"id"`
	LocalName           string                         `json:"localName"`
	LocalNamespace      string                         `json:"localNamespace"`
	QueryName           string                         `json:"queryName"`
	DisplayName         string                         `json:"displayName"`
	Description         string                         `json:"description"`
	BaseTypeID          BaseTypeID                     `json:"baseId"`
	ParentTypeID        string                         `json:"parentId,omitempty"`
	Creatable           bool                           `json:"creatable"`
	Fileable            bool                           `json:"fileable"`
	Queryable           bool                           `json:"queryable"`
	FulltextIndexed     bool                           `json:"fulltextIndexed"`
	IncludedInSuperType bool                           `json:"includedInSupertypeQuery"`
	ControllableACL     bool                           `json:"controllableACL"`
	ControllablePolicy  bool                           `json:"controllablePolicy"`
	Versionable         bool                           `json:"versionable,omitempty"`
	ContentStreamAllow  string                         `json:"contentStreamAllowed,omitempty"`
	AllowedSourceTypes  []string                       `json:"allowedSourceTypes,omitempty"`
	AllowedTargetTypes  []string                       `json:"allowedTargetTypes,omitempty"`
	PropertyDefinitions map[string]*PropertyDefinition `json:"propertyDefinitions,omitempty"`
}

// Copy returns a copy of t. When includeProperties is false the property
// definitions are dropped.
func (t *TypeDefinition) Copy(includeProperties bool) *TypeDefinition {
	c := *t
	c.AllowedSourceTypes = append([]string(nil), t.AllowedSourceTypes...)
	c.AllowedTargetTypes = append([]string(nil), t.AllowedTargetTypes...)
	if !includeProperties {
		c.PropertyDefinitions = nil
		return &c
	}
	c.PropertyDefinitions = make(map[string]*PropertyDefinition, len(t.PropertyDefinitions))
	for id, def := range t.PropertyDefinitions {
		d := *def
		c.PropertyDefinitions[id] = &d
	}
	return &c
}

// InheritFrom copies every property definition of parent into t, marked as
// inherited. Definitions already present on t are kept.
func (t *TypeDefinition) InheritFrom(parent *TypeDefinition) {
	if t.PropertyDefinitions == nil {
		t.PropertyDefinitions = make(map[string]*PropertyDefinition, len(parent.PropertyDefinitions))
	}
	for id, def := range parent.PropertyDefinitions {
		if _, ok := t.PropertyDefinitions[id]; ok {
			continue
		}
		d := *def
		d.Inherited = true
		t.PropertyDefinitions[id] = &d
	}
}

// PropertyIDs returns the sorted ids of the type's property definitions.
func (t *TypeDefinition) PropertyIDs() []string {
	return slices.Sorted(maps.Keys(t.PropertyDefinitions))
}

type TypeDefinitionList struct {
	Types        []*TypeDefinition `json:"types"`
	HasMoreItems bool              `json:"hasMoreItems"`
	NumItems     *int64            `json:"numItems,omitempty"`
}

type TypeDefinitionContainer struct {
	Type     *TypeDefinition           `json:"type"`
	Children []TypeDefinitionContainer `json:"children,omitempty"`
}
