package repository

import (
	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// object is what a protocol id resolves to: a folder, a document or a
// relationship. Projection dispatches on base.
type object struct {
	base cmis.BaseTypeID

	// entity is the folder or document; for a relationship, its source.
	entity *resource.Entity

	// relation and target are set for relationships only.
	relation resource.Relation
	target   *resource.Entity
}

func entityObject(e *resource.Entity) object {
	base := cmis.BaseTypeDocument
	if e.IsFolder() {
		base = cmis.BaseTypeFolder
	}
	return object{base: base, entity: e}
}

func relationshipObject(rel resource.Relation, source, target *resource.Entity) object {
	return object{base: cmis.BaseTypeRelationship, entity: source, relation: rel, target: target}
}

func (o object) id() string {
	if o.base == cmis.BaseTypeRelationship {
		return EncodeRelationshipID(o.relation)
	}
	return o.entity.ID.String()
}
