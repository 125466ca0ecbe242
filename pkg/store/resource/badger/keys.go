package badger

import (
	"strings"

	"github.com/google/uuid"
)

// Key namespace
//
// Data Type            Prefix  Key Format                         Value
// ===========================================================================
// Entity               "e:"    e:<uuid>                           Entity (JSON)
// Children             "c:"    c:<parentUUID>:<childName>         childUUID
// Path index           "p:"    p:<path>                           UUID
// Property value       "v:"    v:<uuid>:<name>                    value
// Property name        "n:"    n:<name>                           empty
// Access control       "a:"    a:<uuid>                           []AccessControlEntry (JSON)
// Lock                 "l:"    l:<uuid>                           Lock (JSON)
// Outgoing relation    "ro:"   ro:<source>:<target>:<type>        empty
// Incoming relation    "ri:"   ri:<target>:<source>:<type>        empty
// Relation type        "rt:"   rt:<name>                          RelationType (JSON)
// User                 "u:"    u:<name>                           userRecord (JSON)
// Principal            "g:"    g:<id>                             Principal (JSON)
// Config               "cfg:"  cfg:root, cfg:readonly             UUID / "1"|"0"
//
// Children keys sort by name under their prefix, so a prefix scan returns
// children in name order. UUIDs are fixed-width, so relation keys split
// unambiguously.

const (
	prefixEntity      = "e:"
	prefixChild       = "c:"
	prefixPath        = "p:"
	prefixValue       = "v:"
	prefixName        = "n:"
	prefixACL         = "a:"
	prefixLock        = "l:"
	prefixOutgoing    = "ro:"
	prefixIncoming    = "ri:"
	prefixRelType     = "rt:"
	prefixUser        = "u:"
	prefixPrincipal   = "g:"
	keyConfigRoot     = "cfg:root"
	keyConfigReadOnly = "cfg:readonly"
)

func keyEntity(id uuid.UUID) []byte {
	return []byte(prefixEntity + id.String())
}

func keyChildPrefix(parent uuid.UUID) []byte {
	return []byte(prefixChild + parent.String() + ":")
}

func keyChild(parent uuid.UUID, name string) []byte {
	return []byte(prefixChild + parent.String() + ":" + name)
}

func keyPath(path string) []byte {
	return []byte(prefixPath + path)
}

func keyValuePrefix(id uuid.UUID) []byte {
	return []byte(prefixValue + id.String() + ":")
}

func keyValue(id uuid.UUID, name string) []byte {
	return []byte(prefixValue + id.String() + ":" + name)
}

func keyName(name string) []byte {
	return []byte(prefixName + name)
}

func keyACL(id uuid.UUID) []byte {
	return []byte(prefixACL + id.String())
}

func keyLock(id uuid.UUID) []byte {
	return []byte(prefixLock + id.String())
}

func keyOutgoingPrefix(source uuid.UUID) []byte {
	return []byte(prefixOutgoing + source.String() + ":")
}

func keyOutgoing(source, target uuid.UUID, typ string) []byte {
	return []byte(prefixOutgoing + source.String() + ":" + target.String() + ":" + typ)
}

func keyIncomingPrefix(target uuid.UUID) []byte {
	return []byte(prefixIncoming + target.String() + ":")
}

func keyIncoming(target, source uuid.UUID, typ string) []byte {
	return []byte(prefixIncoming + target.String() + ":" + source.String() + ":" + typ)
}

func keyRelType(name string) []byte {
	return []byte(prefixRelType + name)
}

func keyUser(name string) []byte {
	return []byte(prefixUser + name)
}

func keyPrincipal(id string) []byte {
	return []byte(prefixPrincipal + id)
}

// splitRelationKey parses the "<a>:<b>:<type>" tail of a relation key.
func splitRelationKey(key []byte, prefix string) (a, b uuid.UUID, typ string, ok bool) {
	rest := strings.TrimPrefix(string(key), prefix)
	const idLen = 36
	if len(rest) < 2*idLen+3 || rest[idLen] != ':' || rest[2*idLen+1] != ':' {
		return uuid.Nil, uuid.Nil, "", false
	}
	var err error
	if a, err = uuid.Parse(rest[:idLen]); err != nil {
		return uuid.Nil, uuid.Nil, "", false
	}
	if b, err = uuid.Parse(rest[idLen+1 : 2*idLen+1]); err != nil {
		return uuid.Nil, uuid.Nil, "", false
	}
	return a, b, rest[2*idLen+2:], true
}
