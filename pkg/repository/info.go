package repository

import (
	"github.com/marmos91/dittocmis/pkg/auth"
	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

const (
	vendorName  = "DittoCMIS"
	productName = "DittoCMIS"
)

// permissionMapping ties allowable-action keys to the basic permission
// that grants them.
var permissionMapping = []cmis.PermissionMapping{
	{Key: "canGetProperties.Object", Permissions: []string{cmis.PermissionRead}},
	{Key: "canGetACL.Object", Permissions: []string{cmis.PermissionRead}},
	{Key: "canGetChildren.Folder", Permissions: []string{cmis.PermissionRead}},
	{Key: "canGetDescendents.Folder", Permissions: []string{cmis.PermissionRead}},
	{Key: "canGetFolderParent.Object", Permissions: []string{cmis.PermissionRead}},
	{Key: "canGetParents.Folder", Permissions: []string{cmis.PermissionRead}},
	{Key: "canViewContent.Object", Permissions: []string{cmis.PermissionRead}},
	{Key: "canUpdateProperties.Object", Permissions: []string{cmis.PermissionWrite}},
	{Key: "canMove.Object", Permissions: []string{cmis.PermissionWrite}},
	{Key: "canDelete.Object", Permissions: []string{cmis.PermissionWrite}},
	{Key: "canCreateDocument.Folder", Permissions: []string{cmis.PermissionWrite}},
	{Key: "canCreateFolder.Folder", Permissions: []string{cmis.PermissionWrite}},
	{Key: "canDeleteTree.Folder", Permissions: []string{cmis.PermissionWrite}},
	{Key: "canSetContent.Document", Permissions: []string{cmis.PermissionWrite}},
	{Key: "canDeleteContent.Document", Permissions: []string{cmis.PermissionWrite}},
	{Key: "canApplyACL.Object", Permissions: []string{cmis.PermissionAll}},
}

// info describes the repository. The change log token is empty: the store
// keeps no change log.
func (r *Repository) info() *cmis.RepositoryInfo {
	perms := []cmis.PermissionDefinition{
		{Permission: cmis.PermissionRead, Description: "Read properties and content"},
		{Permission: cmis.PermissionWrite, Description: "Modify properties and content"},
		{Permission: cmis.PermissionAll, Description: "All permissions"},
	}
	perms = append(perms, nativePermissionDefinitions()...)

	mapping := make([]cmis.PermissionMapping, len(permissionMapping))
	for i, m := range permissionMapping {
		mapping[i] = cmis.PermissionMapping{Key: m.Key, Permissions: append([]string(nil), m.Permissions...)}
	}

	return &cmis.RepositoryInfo{
		ID:                   r.config.ID,
		Name:                 r.config.Name,
		Description:          r.config.Description,
		VendorName:           vendorName,
		ProductName:          productName,
		ProductVersion:       r.config.ProductVersion,
		RootFolderID:         r.rootID.String(),
		CmisVersionSupported: cmis.Version,
		Capabilities: cmis.RepositoryCapabilities{
			ACL:                  "discover",
			Changes:              "none",
			ContentStreamUpdates: "none",
			GetDescendants:       true,
			GetFolderTree:        true,
			Query:                "none",
			Renditions:           "none",
			Join:                 "none",
		},
		AclCapabilities: cmis.AclCapabilities{
			SupportedPermissions: "both",
			Propagation:          "repositorydetermined",
			Permissions:          perms,
			Mapping:              mapping,
		},
		PrincipalAnonymous: auth.AnonymousPrincipalID,
		PrincipalAnyone:    resource.PrincipalAllOthers,
	}
}

// Info describes the repository without a call context. Bindings use it to
// list repositories.
func (r *Repository) Info() *cmis.RepositoryInfo {
	return r.info()
}
