package gc

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/dittocmis/pkg/store/content"
	contentmemory "github.com/marmos91/dittocmis/pkg/store/content/memory"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/marmos91/dittocmis/pkg/store/resource/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture holds two referenced bodies, one nested a level down, and two
// orphans.
func fixture(t *testing.T) (*memory.MemoryResourceStore, *contentmemory.MemoryContentStore) {
	t.Helper()
	ctx := context.Background()

	store := memory.NewMemoryResourceStoreWithDefaults()
	blobs := contentmemory.NewMemoryContentStore()

	folder, err := store.CreateFolder(ctx, store.RootID(), "docs", resource.SystemPrincipalID)
	require.NoError(t, err)

	for parent, id := range map[string]string{"root": "kept-1", "docs": "kept-2"} {
		parentID := store.RootID()
		if parent == "docs" {
			parentID = folder.ID
		}
		require.NoError(t, blobs.WriteContent(ctx, content.ContentID(id), []byte(id)))
		_, err := store.CreateDocument(ctx, parentID, resource.DocumentSpec{
			Name: id + ".txt", Owner: resource.SystemPrincipalID, Size: int64(len(id)), ContentID: id,
		})
		require.NoError(t, err)
	}
	_, err = store.CreateDocument(ctx, folder.ID, resource.DocumentSpec{Name: "empty.txt", Owner: resource.SystemPrincipalID})
	require.NoError(t, err)

	require.NoError(t, blobs.WriteContent(ctx, "orphan-1", []byte("x")))
	require.NoError(t, blobs.WriteContent(ctx, "orphan-2", []byte("y")))
	return store, blobs
}

func TestReferencedContent(t *testing.T) {
	store, _ := fixture(t)

	refs, err := ReferencedContent(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, map[content.ContentID]struct{}{"kept-1": {}, "kept-2": {}}, refs)
}

func TestRunNowDeletesOrphans(t *testing.T) {
	store, blobs := fixture(t)

	c, err := NewCollector(store, blobs, Config{BatchSize: 1})
	require.NoError(t, err)

	stats, err := c.RunNow(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.ExistingCount)
	assert.EqualValues(t, 2, stats.ReferencedCount)
	assert.EqualValues(t, 2, stats.OrphanedCount)
	assert.EqualValues(t, 2, stats.DeletedCount)
	assert.Zero(t, stats.FailedCount)
	assert.False(t, stats.EndTime.IsZero())

	ids, err := blobs.ListAllContent(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []content.ContentID{"kept-1", "kept-2"}, ids)
}

func TestRunNowDryRun(t *testing.T) {
	store, blobs := fixture(t)

	c, err := NewCollector(store, blobs, Config{DryRun: true})
	require.NoError(t, err)

	stats, err := c.RunNow(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.OrphanedCount)
	assert.Zero(t, stats.DeletedCount)

	ids, err := blobs.ListAllContent(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 4)
}

// plainStore hides the garbage collection methods of the memory store.
type plainStore struct {
	content.ContentStore
}

func TestNewCollectorRequiresListing(t *testing.T) {
	store, blobs := fixture(t)

	_, err := NewCollector(store, plainStore{blobs}, Config{})
	assert.Error(t, err)

	_, err = NewCollector(nil, blobs, Config{})
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	store, blobs := fixture(t)

	c, err := NewCollector(store, blobs, Config{Interval: 10 * time.Millisecond})
	require.NoError(t, err)
	c.Start()

	assert.Eventually(t, func() bool {
		ids, err := blobs.ListAllContent(context.Background())
		return err == nil && len(ids) == 2
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Stop(ctx))
	require.NoError(t, c.Stop(ctx))
}
