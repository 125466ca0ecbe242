package testing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTreeTests covers entity reads and navigation.
func (suite *StoreTestSuite) RunTreeTests(t *testing.T) {
	t.Run("EntityByID", suite.testEntityByID)
	t.Run("EntityByPath", suite.testEntityByPath)
	t.Run("ChildrenSortedByName", suite.testChildren)
	t.Run("Parent", suite.testParent)
	t.Run("CreateDuplicate", suite.testCreateDuplicate)
	t.Run("ClosedSession", suite.testClosedSession)
}

func (suite *StoreTestSuite) testEntityByID(t *testing.T) {
	f := suite.newFixture(t)
	s := f.session(t, f.alice)
	ctx := testContext()

	e, err := s.Entity(ctx, f.docA.ID)
	require.NoError(t, err)
	assert.Equal(t, "/site/a.txt", e.Path)
	assert.Equal(t, "a.txt", e.Name)
	assert.Equal(t, resource.KindDocument, e.Kind)
	assert.Equal(t, int64(42), e.Size)
	assert.Equal(t, "content-a", e.ContentID)
	assert.Equal(t, f.site.ID, e.ParentID)
	assert.Equal(t, f.alice.ID, e.CreatedBy)
	assert.False(t, e.CreatedAt.IsZero())

	_, err = s.Entity(ctx, uuid.New())
	assert.True(t, resource.IsNotFound(err))
}

func (suite *StoreTestSuite) testEntityByPath(t *testing.T) {
	f := suite.newFixture(t)
	s := f.session(t, f.alice)
	ctx := testContext()

	root, err := s.EntityByPath(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, f.store.RootID(), root.ID)
	assert.False(t, root.HasParent())
	assert.Empty(t, root.Name)

	site, err := s.EntityByPath(ctx, "site/")
	require.NoError(t, err)
	assert.Equal(t, f.site.ID, site.ID)
	assert.True(t, site.IsFolder())

	_, err = s.EntityByPath(ctx, "/missing")
	assert.True(t, resource.IsNotFound(err))
}

func (suite *StoreTestSuite) testChildren(t *testing.T) {
	f := suite.newFixture(t)
	s := f.session(t, f.alice)
	ctx := testContext()

	children, err := s.Children(ctx, f.site.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.docA.ID, f.docB.ID}, ids(children))

	rootChildren, err := s.Children(ctx, f.store.RootID())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.other.ID, f.site.ID}, ids(rootChildren))

	_, err = s.Children(ctx, f.docA.ID)
	code, ok := resource.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, resource.ErrNotFolder, code)
}

func (suite *StoreTestSuite) testParent(t *testing.T) {
	f := suite.newFixture(t)
	s := f.session(t, f.alice)
	ctx := testContext()

	parent, err := s.Parent(ctx, f.docA.ID)
	require.NoError(t, err)
	assert.Equal(t, f.site.ID, parent.ID)

	_, err = s.Parent(ctx, f.store.RootID())
	assert.True(t, resource.IsNotFound(err))
}

func (suite *StoreTestSuite) testCreateDuplicate(t *testing.T) {
	f := suite.newFixture(t)

	_, err := f.store.CreateFolder(testContext(), f.site.ID, "a.txt", f.alice.ID)
	code, ok := resource.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, resource.ErrAlreadyExists, code)

	_, err = f.store.CreateFolder(testContext(), f.docA.ID, "x", f.alice.ID)
	code, ok = resource.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, resource.ErrNotFolder, code)
}

func (suite *StoreTestSuite) testClosedSession(t *testing.T) {
	f := suite.newFixture(t)
	s, err := f.store.OpenSession(testContext(), f.alice)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Entity(testContext(), f.docA.ID)
	code, ok := resource.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, resource.ErrSessionClosed, code)
}
