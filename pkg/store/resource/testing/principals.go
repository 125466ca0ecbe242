package testing

import (
	"testing"

	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// RunPrincipalTests covers users, groups and principal lookups.
func (suite *StoreTestSuite) RunPrincipalTests(t *testing.T) {
	t.Run("LookupUser", suite.testLookupUser)
	t.Run("LookupPrincipal", suite.testLookupPrincipal)
	t.Run("DuplicateUser", suite.testDuplicateUser)
}

func (suite *StoreTestSuite) testLookupUser(t *testing.T) {
	f := suite.newFixture(t)
	ctx := testContext()

	p, hash, err := f.store.LookupUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, p.ID)
	assert.Equal(t, []string{f.editors.ID}, p.Groups)
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("secret")))

	_, _, err = f.store.LookupUser(ctx, "mallory")
	assert.True(t, resource.IsNotFound(err))
}

func (suite *StoreTestSuite) testLookupPrincipal(t *testing.T) {
	f := suite.newFixture(t)
	s := f.session(t, f.alice)
	ctx := testContext()

	p, err := s.LookupPrincipal(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", p.Label())

	g, err := s.LookupPrincipal(ctx, f.editors.ID)
	require.NoError(t, err)
	assert.Equal(t, resource.PrincipalGroup, g.Kind)
	assert.Equal(t, "editors", g.Label())

	_, err = s.LookupPrincipal(ctx, "unknown")
	assert.True(t, resource.IsNotFound(err))
}

func (suite *StoreTestSuite) testDuplicateUser(t *testing.T) {
	f := suite.newFixture(t)

	_, err := f.store.AddUser(testContext(), resource.UserSpec{Name: "alice", Password: "x"})
	code, ok := resource.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, resource.ErrAlreadyExists, code)
}
