package repository

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// RelationshipIDPrefix starts every synthetic relationship id.
const RelationshipIDPrefix = "REL_"

// relationshipIDPattern matches REL_<source>_<target>_<type>. Endpoint ids
// are canonical UUIDs: fixed width and free of '_', so the groups are
// positional and the type name may contain anything.
var relationshipIDPattern = regexp.MustCompile(
	`^REL_([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})_` +
		`([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})_(.+)$`,
)

// EncodeRelationshipID builds the synthetic id of a relation. The relation
// type must not be empty.
func EncodeRelationshipID(rel resource.Relation) string {
	var b strings.Builder
	b.Grow(len(RelationshipIDPrefix) + 2*37 + len(rel.Type))
	b.WriteString(RelationshipIDPrefix)
	b.WriteString(rel.SourceID.String())
	b.WriteByte('_')
	b.WriteString(rel.TargetID.String())
	b.WriteByte('_')
	b.WriteString(rel.Type)
	return b.String()
}

// DecodeRelationshipID parses a synthetic relationship id.
//
// Returns a cmis NotFound error if id does not match the grammar as a whole.
func DecodeRelationshipID(id string) (resource.Relation, error) {
	m := relationshipIDPattern.FindStringSubmatch(id)
	if m == nil {
		return resource.Relation{}, cmis.NotFound("relationship %q not found", id)
	}

	source, err := uuid.Parse(m[1])
	if err != nil {
		return resource.Relation{}, cmis.NotFound("relationship %q not found", id)
	}
	target, err := uuid.Parse(m[2])
	if err != nil {
		return resource.Relation{}, cmis.NotFound("relationship %q not found", id)
	}

	return resource.Relation{SourceID: source, TargetID: target, Type: m[3]}, nil
}

// IsRelationshipID reports whether id is meant as a relationship id. It
// does not validate the rest of the grammar.
func IsRelationshipID(id string) bool {
	return strings.HasPrefix(id, RelationshipIDPrefix)
}

// ParseEntityID validates a folder or document id.
//
// Returns a cmis NotFound error for anything but a canonical UUID.
func ParseEntityID(id string) (uuid.UUID, error) {
	if len(id) != 36 {
		return uuid.Nil, cmis.NotFound("object %q not found", id)
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, cmis.NotFound("object %q not found", id)
	}
	return u, nil
}
