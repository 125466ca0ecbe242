package testing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPropertyTests covers named properties and their inheritance.
func (suite *StoreTestSuite) RunPropertyTests(t *testing.T) {
	t.Run("DirectAndInherited", suite.testDirectAndInherited)
	t.Run("PropertyNames", suite.testPropertyNames)
}

func (suite *StoreTestSuite) testDirectAndInherited(t *testing.T) {
	f := suite.newFixture(t)
	ctx := testContext()

	require.NoError(t, f.store.SetProperty(ctx, f.site.ID, "Owner", "marketing"))
	require.NoError(t, f.store.SetProperty(ctx, f.site.ID, "Title", "Site"))
	require.NoError(t, f.store.SetProperty(ctx, f.docA.ID, "Title", "Doc A"))

	s := f.session(t, f.alice)

	v, ok, err := s.Property(ctx, f.docA.ID, "Owner", false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)

	v, ok, err = s.Property(ctx, f.docA.ID, "Owner", true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "marketing", v)

	v, ok, err = s.Property(ctx, f.docA.ID, "Title", true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Doc A", v)

	direct, err := s.Properties(ctx, f.docA.ID, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Title": "Doc A"}, direct)

	merged, err := s.Properties(ctx, f.docA.ID, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Title": "Doc A", "Owner": "marketing"}, merged)
}

func (suite *StoreTestSuite) testPropertyNames(t *testing.T) {
	f := suite.newFixture(t)
	ctx := testContext()

	require.NoError(t, f.store.SetProperty(ctx, f.docA.ID, "Title", "x"))
	require.NoError(t, f.store.SetProperty(ctx, f.docB.ID, "Author", "y"))
	require.NoError(t, f.store.SetProperty(ctx, f.docB.ID, "Title", "z"))

	names, err := f.store.PropertyNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Author", "Title"}, names)

	assert.True(t, resource.IsNotFound(f.store.SetProperty(ctx, uuid.New(), "x", "y")))
}
