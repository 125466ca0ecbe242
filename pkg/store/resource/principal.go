package resource

// PrincipalKind tags users, groups and roles.
type PrincipalKind int

const (
	PrincipalUser PrincipalKind = iota
	PrincipalGroup
	PrincipalRole
)

// Principal is a user or group known to the store.
type Principal struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name,omitempty"`
	Kind        PrincipalKind `json:"kind"`
	Groups      []string      `json:"groups,omitempty"`
	Roles       []string      `json:"roles,omitempty"`
	Admin       bool          `json:"admin,omitempty"`
}

// Label returns the display name, falling back to the login name.
func (p Principal) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// SystemPrincipalID owns the entities a store creates on its own, such as
// the root folder.
const SystemPrincipalID = "system"

// Credentials are the login data supplied by a caller.
type Credentials struct {
	Username string
	Password string
}
