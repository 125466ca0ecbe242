package resource

import (
	"strings"

	"github.com/google/uuid"
)

// Permission is a set of native permission bits.
type Permission uint32

const (
	// PermissionRead allows reading content and properties
	PermissionRead Permission = 1 << iota

	// PermissionView allows seeing the entity in listings
	PermissionView

	// PermissionWrite allows changing content and properties
	PermissionWrite

	// PermissionControl allows changing the access control list
	PermissionControl

	// PermissionPublish allows publishing the workspace
	PermissionPublish
)

// PermissionAll grants every native permission.
const PermissionAll = PermissionRead | PermissionView | PermissionWrite | PermissionControl | PermissionPublish

// nativePermissionNames lists every bit in a stable order.
var nativePermissionNames = []struct {
	bit  Permission
	name string
}{
	{PermissionRead, "read"},
	{PermissionView, "view"},
	{PermissionWrite, "write"},
	{PermissionControl, "control"},
	{PermissionPublish, "publish"},
}

// Names returns the native names of the bits set in p, in bit order.
func (p Permission) Names() []string {
	var out []string
	for _, n := range nativePermissionNames {
		if p&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

// Has reports whether every bit of want is set.
func (p Permission) Has(want Permission) bool {
	return p&want == want
}

// ParsePermission converts native names into a Permission. Unknown names are
// reported through ok.
func ParsePermission(names ...string) (Permission, bool) {
	var p Permission
	for _, name := range names {
		found := false
		for _, n := range nativePermissionNames {
			if strings.EqualFold(n.name, name) {
				p |= n.bit
				found = true
				break
			}
		}
		if !found {
			return p, false
		}
	}
	return p, true
}

// Pseudo principals that appear in access control entries.
const (
	// PrincipalAllOthers matches every principal
	PrincipalAllOthers = "ALL_OTHERS"

	// PrincipalOverwriteAll matches every principal and stops inheritance
	// from ancestors above the entity carrying it
	PrincipalOverwriteAll = "OVERWRITE_ALL"

	// RolePrefix prefixes role principal ids
	RolePrefix = "ROLE_"
)

// IsPseudoPrincipal reports whether id names a principal that is not backed
// by a user or group record.
func IsPseudoPrincipal(id string) bool {
	return id == PrincipalAllOthers || id == PrincipalOverwriteAll || strings.HasPrefix(id, RolePrefix)
}

// AccessControlEntry grants and denies permission bits to a principal.
//
// SourceID is the entity the entry was set on. Entries returned for an
// entity carry their provenance: an entry is direct iff SourceID equals the
// entity's id.
type AccessControlEntry struct {
	PrincipalID string     `json:"principal_id"`
	Granted     Permission `json:"granted"`
	Denied      Permission `json:"denied"`
	SourceID    uuid.UUID  `json:"source_id"`
}

// appliesTo reports whether the entry's principal covers p.
func (ace AccessControlEntry) appliesTo(p Principal) bool {
	switch {
	case ace.PrincipalID == PrincipalAllOthers, ace.PrincipalID == PrincipalOverwriteAll:
		return true
	case strings.HasPrefix(ace.PrincipalID, RolePrefix):
		role := strings.TrimPrefix(ace.PrincipalID, RolePrefix)
		for _, r := range p.Roles {
			if strings.EqualFold(r, role) {
				return true
			}
		}
		return false
	case ace.PrincipalID == p.ID:
		return true
	}
	for _, g := range p.Groups {
		if g == ace.PrincipalID {
			return true
		}
	}
	return false
}

// Evaluate decides whether p holds want on an entity whose effective entries
// are aces, ordered nearest first. A deny on a nearer level beats a grant on
// a farther one; on the same level a deny wins. Administrators hold every
// permission.
func Evaluate(aces []AccessControlEntry, p Principal, want Permission) bool {
	if p.Admin {
		return true
	}

	var granted, denied Permission
	for i := 0; i < len(aces); {
		level := aces[i].SourceID
		var levelGranted, levelDenied Permission
		for ; i < len(aces) && aces[i].SourceID == level; i++ {
			if !aces[i].appliesTo(p) {
				continue
			}
			levelGranted |= aces[i].Granted
			levelDenied |= aces[i].Denied
		}
		// bits already decided at a nearer level are not revisited
		undecided := ^(granted | denied)
		denied |= levelDenied & undecided
		granted |= levelGranted &^ levelDenied & undecided
	}

	return granted.Has(want) && denied&want == 0
}

// TruncateInherited drops the entries of ancestors above the nearest level
// that carries an OVERWRITE_ALL entry. aces must be ordered nearest first.
func TruncateInherited(aces []AccessControlEntry) []AccessControlEntry {
	for i, ace := range aces {
		if ace.PrincipalID != PrincipalOverwriteAll {
			continue
		}
		end := i
		for end < len(aces) && aces[end].SourceID == ace.SourceID {
			end++
		}
		return aces[:end]
	}
	return aces
}
