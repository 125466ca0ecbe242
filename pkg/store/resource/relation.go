package resource

import "github.com/google/uuid"

// Relation is a directed, typed association between two entities. It has
// no identity of its own beyond the triple.
type Relation struct {
	SourceID uuid.UUID `json:"source_id"`
	TargetID uuid.UUID `json:"target_id"`
	Type     string    `json:"type"`
}

// RelationType is a relation kind known to the store.
//
// ContentDerived relations are computed from document content and cannot be
// created or deleted independently.
type RelationType struct {
	Name           string `json:"name"`
	ContentDerived bool   `json:"content_derived"`
}

// Direction selects which relations of an entity to list.
type Direction int

const (
	// DirectionSource lists relations where the entity is the source
	DirectionSource Direction = iota

	// DirectionTarget lists relations where the entity is the target
	DirectionTarget

	// DirectionEither lists both
	DirectionEither
)

func (d Direction) String() string {
	switch d {
	case DirectionSource:
		return "source"
	case DirectionTarget:
		return "target"
	default:
		return "either"
	}
}

// ParseDirection accepts "source", "target" and "either".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "", "source":
		return DirectionSource, true
	case "target":
		return DirectionTarget, true
	case "either":
		return DirectionEither, true
	}
	return DirectionSource, false
}
