package repository

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowableActionsRoot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.root.ID.String()

	require.NoError(t, f.store.SetReadOnly(ctx, true))
	readOnly, err := f.repo.GetAllowableActions(ctx, f.asAdmin(), root)
	require.NoError(t, err)

	for _, a := range []cmis.Action{cmis.ActionGetProperties, cmis.ActionGetChildren, cmis.ActionGetDescendants, cmis.ActionGetFolderTree} {
		assert.True(t, readOnly.Allowed(a), "%s under read-only", a)
	}
	for _, a := range []cmis.Action{cmis.ActionDeleteObject, cmis.ActionMoveObject, cmis.ActionCreateDocument, cmis.ActionCreateFolder, cmis.ActionGetObjectParents, cmis.ActionGetFolderParent} {
		assert.False(t, readOnly.Allowed(a), "%s under read-only", a)
	}

	require.NoError(t, f.store.SetReadOnly(ctx, false))
	writable, err := f.repo.GetAllowableActions(ctx, f.asAdmin(), root)
	require.NoError(t, err)

	for _, a := range []cmis.Action{cmis.ActionCreateDocument, cmis.ActionCreateFolder, cmis.ActionDeleteTree} {
		assert.True(t, writable.Allowed(a), "%s on writable root", a)
	}
	for _, a := range []cmis.Action{cmis.ActionDeleteObject, cmis.ActionMoveObject, cmis.ActionUpdateProperties} {
		assert.False(t, writable.Allowed(a), "%s on writable root", a)
	}
}

func TestAllowableActionsNonRootFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		cc      CallContext
		granted []cmis.Action
		denied  []cmis.Action
	}{
		{
			name: "editor",
			cc:   f.asAlice(),
			granted: []cmis.Action{
				cmis.ActionGetProperties, cmis.ActionUpdateProperties, cmis.ActionMoveObject,
				cmis.ActionDeleteObject, cmis.ActionGetObjectParents, cmis.ActionGetFolderParent,
				cmis.ActionCreateDocument, cmis.ActionCreateFolder, cmis.ActionDeleteTree,
				cmis.ActionGetChildren, cmis.ActionGetDescendants, cmis.ActionGetFolderTree,
			},
		},
		{
			name:    "reader",
			cc:      f.asBob(),
			granted: []cmis.Action{cmis.ActionGetProperties, cmis.ActionGetChildren, cmis.ActionGetFolderParent},
			denied:  []cmis.Action{cmis.ActionDeleteObject, cmis.ActionMoveObject, cmis.ActionCreateFolder, cmis.ActionDeleteTree},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions, err := f.repo.GetAllowableActions(ctx, tt.cc, f.site.ID.String())
			require.NoError(t, err)
			for _, a := range tt.granted {
				assert.True(t, actions.Allowed(a), a)
			}
			for _, a := range tt.denied {
				assert.False(t, actions.Allowed(a), a)
			}
			_, hasContent := actions[cmis.ActionGetContentStream]
			assert.False(t, hasContent)
		})
	}
}

func TestAllowableActionsConfiguredRoot(t *testing.T) {
	// /site as repository root: delete and move turn off once it is the root
	f := newFixtureWithConfig(t, Config{ID: "site", RootPath: "/site"})

	actions, err := f.repo.GetAllowableActions(context.Background(), f.asAlice(), f.site.ID.String())
	require.NoError(t, err)
	assert.True(t, actions.Allowed(cmis.ActionCreateDocument))
	assert.False(t, actions.Allowed(cmis.ActionDeleteObject))
	assert.False(t, actions.Allowed(cmis.ActionMoveObject))
	assert.False(t, actions.Allowed(cmis.ActionGetFolderParent))
}

func TestAllowableActionsDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	actions, err := f.repo.GetAllowableActions(ctx, f.asAlice(), f.docA.ID.String())
	require.NoError(t, err)
	for _, a := range []cmis.Action{cmis.ActionGetContentStream, cmis.ActionSetContentStream, cmis.ActionDeleteContentStream, cmis.ActionGetAllVersions, cmis.ActionDeleteObject} {
		assert.True(t, actions.Allowed(a), a)
	}
	_, hasChildren := actions[cmis.ActionGetChildren]
	assert.False(t, hasChildren)

	// a lock held by someone else makes the document read-only for alice
	require.NoError(t, f.store.SetLock(ctx, f.docA.ID, resource.Lock{Owner: f.bob.ID, ExpiresAt: time.Now().Add(time.Hour)}))
	locked, err := f.repo.GetAllowableActions(ctx, f.asAlice(), f.docA.ID.String())
	require.NoError(t, err)
	assert.True(t, locked.Allowed(cmis.ActionGetContentStream))
	assert.False(t, locked.Allowed(cmis.ActionSetContentStream))
	assert.False(t, locked.Allowed(cmis.ActionDeleteObject))

	// her own lock does not
	require.NoError(t, f.store.SetLock(ctx, f.docA.ID, resource.Lock{Owner: f.alice.ID}))
	own, err := f.repo.GetAllowableActions(ctx, f.asAlice(), f.docA.ID.String())
	require.NoError(t, err)
	assert.True(t, own.Allowed(cmis.ActionSetContentStream))

	// an expired lock is free
	require.NoError(t, f.store.SetLock(ctx, f.docA.ID, resource.Lock{Owner: f.bob.ID, ExpiresAt: time.Now().Add(-time.Minute)}))
	expired, err := f.repo.GetAllowableActions(ctx, f.asAlice(), f.docA.ID.String())
	require.NoError(t, err)
	assert.True(t, expired.Allowed(cmis.ActionDeleteObject))
}
