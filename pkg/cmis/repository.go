package cmis

// RepositoryCapabilities lists the optional protocol features the repository
// supports.
type RepositoryCapabilities struct {
	ACL                   string `json:"capabilityACL"`
	AllVersionsSearchable bool   `json:"capabilityAllVersionsSearchable"`
	Changes               string `json:"capabilityChanges"`
	ContentStreamUpdates  string `json:"capabilityContentStreamUpdatability"`
	GetDescendants        bool   `json:"capabilityGetDescendants"`
	GetFolderTree         bool   `json:"capabilityGetFolderTree"`
	Multifiling           bool   `json:"capabilityMultifiling"`
	PWCSearchable         bool   `json:"capabilityPWCSearchable"`
	PWCUpdatable          bool   `json:"capabilityPWCUpdatable"`
	Query                 string `json:"capabilityQuery"`
	Renditions            string `json:"capabilityRenditions"`
	Unfiling              bool   `json:"capabilityUnfiling"`
	VersionSpecificFiling bool   `json:"capabilityVersionSpecificFiling"`
	Join                  string `json:"capabilityJoin"`
}

// PermissionDefinition names a permission a client may see in an ACL.
type PermissionDefinition struct {
	Permission  string `json:"permission"`
	Description string `json:"description"`
}

// PermissionMapping binds an allowable-action key to the permissions that
// grant it.
type PermissionMapping struct {
	Key         string   `json:"key"`
	Permissions []string `json:"permissions"`
}

type AclCapabilities struct {
	SupportedPermissions string                 `json:"supportedPermissions"`
	Propagation          string                 `json:"propagation"`
	Permissions          []PermissionDefinition `json:"permissions"`
	Mapping              []PermissionMapping    `json:"permissionMapping"`
}

// RepositoryInfo describes a repository.
type RepositoryInfo struct {
	ID                   string                 `json:"repositoryId"`
	Name                 string                 `json:"repositoryName"`
	Description          string                 `json:"repositoryDescription"`
	VendorName           string                 `json:"vendorName"`
	ProductName          string                 `json:"productName"`
	ProductVersion       string                 `json:"productVersion"`
	RootFolderID         string                 `json:"rootFolderId"`
	CmisVersionSupported string                 `json:"cmisVersionSupported"`
	Capabilities         RepositoryCapabilities `json:"capabilities"`
	AclCapabilities      AclCapabilities        `json:"aclCapabilities"`
	PrincipalAnonymous   string                 `json:"principalIdAnonymous"`
	PrincipalAnyone      string                 `json:"principalIdAnyone"`
	ChangesIncomplete    bool                   `json:"changesIncomplete"`
	LatestChangeLogToken string                 `json:"latestChangeLogToken,omitempty"`
	ThinClientURI        string                 `json:"thinClientURI,omitempty"`
}
