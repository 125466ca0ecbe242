package testing

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/marmos91/dittocmis/pkg/store/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreTestSuite is a conformance suite for ContentStore implementations.
//
// Usage:
//
//	func TestMyContentStore(t *testing.T) {
//	    suite := &testing.StoreTestSuite{
//	        NewStore: func(t *testing.T) content.ContentStore {
//	            return mystore.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore creates a fresh store for each test.
	NewStore func(t *testing.T) content.ContentStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("WriteAndRead", suite.testWriteAndRead)
	t.Run("Overwrite", suite.testOverwrite)
	t.Run("NotFound", suite.testNotFound)
	t.Run("Delete", suite.testDelete)
	t.Run("ReadPrefix", suite.testReadPrefix)
	t.Run("InvalidID", suite.testInvalidID)
	t.Run("ListAndDeleteBatch", suite.testListAndDeleteBatch)
}

func testContext() context.Context {
	return context.Background()
}

func readAll(t *testing.T, store content.ContentStore, id content.ContentID) []byte {
	t.Helper()
	rc, err := store.ReadContent(testContext(), id)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func (suite *StoreTestSuite) testWriteAndRead(t *testing.T) {
	store := suite.NewStore(t)
	ctx := testContext()

	require.NoError(t, store.WriteContent(ctx, "doc-1", []byte("hello world")))
	assert.Equal(t, []byte("hello world"), readAll(t, store, "doc-1"))

	size, err := store.GetContentSize(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)
}

func (suite *StoreTestSuite) testOverwrite(t *testing.T) {
	store := suite.NewStore(t)
	ctx := testContext()

	require.NoError(t, store.WriteContent(ctx, "doc-1", []byte("first version")))
	require.NoError(t, store.WriteContent(ctx, "doc-1", []byte("v2")))
	assert.Equal(t, []byte("v2"), readAll(t, store, "doc-1"))
}

func (suite *StoreTestSuite) testNotFound(t *testing.T) {
	store := suite.NewStore(t)
	ctx := testContext()

	_, err := store.ReadContent(ctx, "missing")
	assert.True(t, errors.Is(err, content.ErrContentNotFound))

	_, err = store.GetContentSize(ctx, "missing")
	assert.True(t, errors.Is(err, content.ErrContentNotFound))
}

func (suite *StoreTestSuite) testDelete(t *testing.T) {
	store := suite.NewStore(t)
	ctx := testContext()

	require.NoError(t, store.WriteContent(ctx, "doc-1", []byte("x")))
	require.NoError(t, store.Delete(ctx, "doc-1"))
	require.NoError(t, store.Delete(ctx, "doc-1"))

	_, err := store.ReadContent(ctx, "doc-1")
	assert.ErrorIs(t, err, content.ErrContentNotFound)
}

func (suite *StoreTestSuite) testReadPrefix(t *testing.T) {
	store := suite.NewStore(t)
	ctx := testContext()

	require.NoError(t, store.WriteContent(ctx, "doc-1", []byte("abcdefgh")))

	head, err := content.ReadPrefix(ctx, store, "doc-1", 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), head)
}

func (suite *StoreTestSuite) testInvalidID(t *testing.T) {
	store := suite.NewStore(t)
	assert.ErrorIs(t, store.WriteContent(testContext(), "", []byte("x")), content.ErrInvalidContentID)
}

func (suite *StoreTestSuite) testListAndDeleteBatch(t *testing.T) {
	store, ok := suite.NewStore(t).(content.GarbageCollectableStore)
	if !ok {
		t.Skip("store does not support garbage collection")
	}
	ctx := testContext()

	for _, id := range []content.ContentID{"doc-1", "doc-2", "doc-3", "doc-4", "doc-5"} {
		require.NoError(t, store.WriteContent(ctx, id, []byte(id)))
	}

	ids, err := store.ListAllContent(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []content.ContentID{"doc-1", "doc-2", "doc-3", "doc-4", "doc-5"}, ids)

	failures, err := store.DeleteBatch(ctx, []content.ContentID{"doc-2", "doc-4", "missing"})
	require.NoError(t, err)
	assert.Empty(t, failures)

	ids, err = store.ListAllContent(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []content.ContentID{"doc-1", "doc-3", "doc-5"}, ids)
}
