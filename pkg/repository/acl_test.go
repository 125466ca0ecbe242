package repository

import (
	"context"
	"testing"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicPermissions(t *testing.T) {
	tests := []struct {
		name    string
		granted resource.Permission
		want    []string
	}{
		{"none", 0, nil},
		{"view only", resource.PermissionView, []string{cmis.PermissionRead}},
		{"read write", resource.PermissionRead | resource.PermissionWrite, []string{cmis.PermissionRead, cmis.PermissionWrite}},
		{"control", resource.PermissionControl, []string{cmis.PermissionAll}},
		{"publish has no basic form", resource.PermissionPublish, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, basicPermissions(tt.granted))
		})
	}
}

func TestNativePermissions(t *testing.T) {
	got := nativePermissions(resource.PermissionRead|resource.PermissionWrite, resource.PermissionControl)
	assert.Equal(t, []string{"ditto:read", "ditto:write", "ditto:deny-control"}, got)
}

func TestGetACL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.SetAccessControl(ctx, f.docA.ID, []resource.AccessControlEntry{
		{PrincipalID: f.bob.ID, Denied: resource.PermissionRead},
		{PrincipalID: "ROLE_auditor", Granted: resource.PermissionRead},
	}))

	basic, err := f.repo.GetACL(ctx, f.asAlice(), f.docA.ID.String(), true)
	require.NoError(t, err)
	assert.False(t, basic.Exact)
	require.Len(t, basic.Aces, 3, "bob's deny-only entry has no basic form")

	assert.Equal(t, cmis.Ace{PrincipalID: "ROLE_auditor", Permissions: []string{cmis.PermissionRead}, Direct: true}, basic.Aces[0])
	assert.Equal(t, cmis.Ace{PrincipalID: "editors", Permissions: []string{cmis.PermissionWrite}, Direct: false}, basic.Aces[1])
	assert.Equal(t, cmis.Ace{PrincipalID: resource.PrincipalAllOthers, Permissions: []string{cmis.PermissionRead}, Direct: false}, basic.Aces[2])

	native, err := f.repo.GetACL(ctx, f.asAlice(), f.docA.ID.String(), false)
	require.NoError(t, err)
	require.Len(t, native.Aces, 4)
	assert.Equal(t, "bob", native.Aces[0].PrincipalID)
	assert.Equal(t, []string{"ditto:deny-read"}, native.Aces[0].Permissions)
	assert.True(t, native.Aces[0].Direct)
	assert.Equal(t, []string{"ditto:read", "ditto:view"}, native.Aces[3].Permissions)
}

func TestGetACLOfRelationshipIsEmpty(t *testing.T) {
	f := newFixture(t)
	id := EncodeRelationshipID(resource.Relation{SourceID: f.docA.ID, TargetID: f.docD2.ID, Type: "related"})

	acl, err := f.repo.GetACL(context.Background(), f.asAlice(), id, false)
	require.NoError(t, err)
	assert.Empty(t, acl.Aces)
	assert.False(t, acl.Exact)
}
