package testing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/stretchr/testify/require"
)

// StoreTestSuite is a conformance suite for resource.MutableStore
// implementations. It tests the interface contract, not implementation
// details.
//
// Usage:
//
//	func TestMyResourceStore(t *testing.T) {
//	    suite := &testing.StoreTestSuite{
//	        NewStore: func(t *testing.T) resource.MutableStore {
//	            return mystore.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore creates a fresh store for each test.
	NewStore func(t *testing.T) resource.MutableStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("Tree", suite.RunTreeTests)
	t.Run("Access", suite.RunAccessTests)
	t.Run("Properties", suite.RunPropertyTests)
	t.Run("Relations", suite.RunRelationTests)
	t.Run("Principals", suite.RunPrincipalTests)
}

func testContext() context.Context {
	return context.Background()
}

// fixture is a small tree shared by most tests:
//
//	/           (ALL_OTHERS read+view)
//	/site       (editors write)
//	/site/a.txt (42 bytes)
//	/site/b.txt
//	/other
type fixture struct {
	store   resource.MutableStore
	alice   resource.Principal
	editors resource.Principal
	site    *resource.Entity
	docA    *resource.Entity
	docB    *resource.Entity
	other   *resource.Entity
}

func (suite *StoreTestSuite) newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := testContext()
	store := suite.NewStore(t)
	t.Cleanup(func() { _ = store.Close() })

	editors, err := store.AddGroup(ctx, "editors")
	require.NoError(t, err)

	alice, err := store.AddUser(ctx, resource.UserSpec{
		Name:        "alice",
		DisplayName: "Alice Liddell",
		Password:    "secret",
		Groups:      []string{editors.ID},
	})
	require.NoError(t, err)

	site, err := store.CreateFolder(ctx, store.RootID(), "site", alice.ID)
	require.NoError(t, err)
	docB, err := store.CreateDocument(ctx, site.ID, resource.DocumentSpec{Name: "b.txt", Owner: alice.ID})
	require.NoError(t, err)
	docA, err := store.CreateDocument(ctx, site.ID, resource.DocumentSpec{Name: "a.txt", Owner: alice.ID, Size: 42, ContentID: "content-a"})
	require.NoError(t, err)
	other, err := store.CreateFolder(ctx, store.RootID(), "other", alice.ID)
	require.NoError(t, err)

	require.NoError(t, store.SetAccessControl(ctx, site.ID, []resource.AccessControlEntry{
		{PrincipalID: editors.ID, Granted: resource.PermissionWrite},
	}))

	return &fixture{
		store:   store,
		alice:   alice,
		editors: editors,
		site:    site,
		docA:    docA,
		docB:    docB,
		other:   other,
	}
}

func (f *fixture) session(t *testing.T, p resource.Principal) resource.Session {
	t.Helper()
	s, err := f.store.OpenSession(testContext(), p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ids(entities []*resource.Entity) []uuid.UUID {
	out := make([]uuid.UUID, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}
