package repository

import (
	"context"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// Native permission names are the store's bit names in this namespace;
// denied bits get a "deny-" prefix.
const (
	nativePermissionPrefix = DirectNamespace
	denyPrefix             = "deny-"
)

// basicPermissions folds granted bits into the three basic permissions.
// Denied bits have no basic form and are left out.
func basicPermissions(granted resource.Permission) []string {
	var out []string
	if granted&(resource.PermissionRead|resource.PermissionView) != 0 {
		out = append(out, cmis.PermissionRead)
	}
	if granted.Has(resource.PermissionWrite) {
		out = append(out, cmis.PermissionWrite)
	}
	if granted.Has(resource.PermissionControl) {
		out = append(out, cmis.PermissionAll)
	}
	return out
}

func nativePermissions(granted, denied resource.Permission) []string {
	var out []string
	for _, name := range granted.Names() {
		out = append(out, nativePermissionPrefix+name)
	}
	for _, name := range denied.Names() {
		out = append(out, nativePermissionPrefix+denyPrefix+name)
	}
	return out
}

// acl renders the effective entries of e. Entries set on e itself are
// direct; the rest are inherited. The list is never reported as exact.
func (p *projector) acl(ctx context.Context, e *resource.Entity, onlyBasic bool) (*cmis.Acl, error) {
	entries, err := p.session.AccessControl(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	acl := &cmis.Acl{Aces: make([]cmis.Ace, 0, len(entries)), Exact: false}
	for _, entry := range entries {
		var perms []string
		if onlyBasic {
			perms = basicPermissions(entry.Granted)
		} else {
			perms = nativePermissions(entry.Granted, entry.Denied)
		}
		if len(perms) == 0 {
			continue
		}

		acl.Aces = append(acl.Aces, cmis.Ace{
			PrincipalID: p.displayName(ctx, entry.PrincipalID),
			Permissions: perms,
			Direct:      entry.SourceID == e.ID,
		})
	}
	return acl, nil
}

// nativePermissionDefinitions lists every native permission name for the
// repository's ACL capabilities.
func nativePermissionDefinitions() []cmis.PermissionDefinition {
	names := resource.PermissionAll.Names()
	out := make([]cmis.PermissionDefinition, 0, 2*len(names))
	for _, name := range names {
		out = append(out, cmis.PermissionDefinition{
			Permission:  nativePermissionPrefix + name,
			Description: "Grants " + name,
		})
	}
	for _, name := range names {
		out = append(out, cmis.PermissionDefinition{
			Permission:  nativePermissionPrefix + denyPrefix + name,
			Description: "Denies " + name,
		})
	}
	return out
}
