package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCollector(t *testing.T) {
	ctx := context.Background()

	reg, err := InitializeRegistry(ctx, testConfig(), nil)
	require.NoError(t, err)
	defer reg.Close()

	blobs, err := reg.GetContentStore(contentStoreName)
	require.NoError(t, err)
	require.NoError(t, blobs.WriteContent(ctx, "stray", []byte("left behind")))

	collector, err := CreateCollector(testConfig(), reg)
	require.NoError(t, err)

	stats, err := collector.RunNow(ctx)
	require.NoError(t, err)

	// every seeded document body is referenced
	assert.EqualValues(t, 1, stats.OrphanedCount)
	assert.EqualValues(t, 1, stats.DeletedCount)
	assert.Equal(t, stats.ExistingCount-1, stats.ReferencedCount)

	_, err = blobs.GetContentSize(ctx, "stray")
	assert.Error(t, err)
}
