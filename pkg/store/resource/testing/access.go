package testing

import (
	"testing"
	"time"

	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAccessTests covers permissions, access control entries, locks and the
// read-only state.
func (suite *StoreTestSuite) RunAccessTests(t *testing.T) {
	t.Run("InheritedWrite", suite.testInheritedWrite)
	t.Run("AccessControlProvenance", suite.testAccessControlProvenance)
	t.Run("ReadDenied", suite.testReadDenied)
	t.Run("Locks", suite.testLocks)
	t.Run("ReadOnly", suite.testReadOnly)
}

func (suite *StoreTestSuite) testInheritedWrite(t *testing.T) {
	f := suite.newFixture(t)
	s := f.session(t, f.alice)
	ctx := testContext()

	ok, err := s.HasPermission(ctx, f.docA.ID, resource.PermissionWrite)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasPermission(ctx, f.other.ID, resource.PermissionWrite)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.HasPermission(ctx, f.other.ID, resource.PermissionRead)
	require.NoError(t, err)
	assert.True(t, ok)
}

func (suite *StoreTestSuite) testAccessControlProvenance(t *testing.T) {
	f := suite.newFixture(t)
	s := f.session(t, f.alice)
	ctx := testContext()

	aces, err := s.AccessControl(ctx, f.docA.ID)
	require.NoError(t, err)
	require.Len(t, aces, 2)

	assert.Equal(t, f.editors.ID, aces[0].PrincipalID)
	assert.Equal(t, f.site.ID, aces[0].SourceID)
	assert.Equal(t, resource.PrincipalAllOthers, aces[1].PrincipalID)
	assert.Equal(t, f.store.RootID(), aces[1].SourceID)

	direct, err := s.AccessControl(ctx, f.site.ID)
	require.NoError(t, err)
	assert.Equal(t, f.site.ID, direct[0].SourceID)
}

func (suite *StoreTestSuite) testReadDenied(t *testing.T) {
	f := suite.newFixture(t)
	ctx := testContext()

	require.NoError(t, f.store.SetAccessControl(ctx, f.other.ID, []resource.AccessControlEntry{
		{PrincipalID: f.alice.ID, Denied: resource.PermissionRead},
	}))

	s := f.session(t, f.alice)
	_, err := s.Entity(ctx, f.other.ID)
	assert.True(t, resource.IsPermissionDenied(err))

	children, err := s.Children(ctx, f.store.RootID())
	require.NoError(t, err)
	assert.Len(t, children, 1)
	assert.Equal(t, f.site.ID, children[0].ID)
}

func (suite *StoreTestSuite) testLocks(t *testing.T) {
	f := suite.newFixture(t)
	s := f.session(t, f.alice)
	ctx := testContext()

	lock, err := s.Lock(ctx, f.docA.ID)
	require.NoError(t, err)
	assert.True(t, lock.Available(f.alice.ID, time.Now()))

	require.NoError(t, f.store.SetLock(ctx, f.docA.ID, resource.Lock{Owner: "someone-else"}))
	lock, err = s.Lock(ctx, f.docA.ID)
	require.NoError(t, err)
	assert.False(t, lock.Available(f.alice.ID, time.Now()))

	require.NoError(t, f.store.SetLock(ctx, f.docA.ID, resource.Lock{}))
	lock, err = s.Lock(ctx, f.docA.ID)
	require.NoError(t, err)
	assert.False(t, lock.IsLocked(time.Now()))
}

func (suite *StoreTestSuite) testReadOnly(t *testing.T) {
	f := suite.newFixture(t)
	ctx := testContext()

	assert.False(t, f.session(t, f.alice).ReadOnly())
	require.NoError(t, f.store.SetReadOnly(ctx, true))
	assert.True(t, f.session(t, f.alice).ReadOnly())
}
