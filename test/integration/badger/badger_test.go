//go:build integration

package badger_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marmos91/dittocmis/pkg/config"
	"github.com/marmos91/dittocmis/pkg/repository"
	"github.com/marmos91/dittocmis/pkg/store/content"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestBadgerRestart_Integration runs the configured stack on a Badger
// resource store and a filesystem content store, restarts it and checks
// that entities, users and bodies survive.
//
// Run with: go test -tags=integration ./test/integration/badger/...
func TestBadgerRestart_Integration(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := config.GetDefaultConfig()
	cfg.Store.Type = "badger"
	cfg.Store.Badger = map[string]any{
		"db_path":     filepath.Join(dir, "resources"),
		"bcrypt_cost": bcrypt.MinCost,
	}
	cfg.Content.Type = "filesystem"
	cfg.Content.Filesystem = map[string]any{"path": filepath.Join(dir, "content")}
	require.NoError(t, config.Validate(cfg))

	admin := repository.CallContext{RepositoryID: cfg.Repository.ID, Username: "admin", Password: "admin"}

	// first run: add a folder and a document directly through the builder
	reg, err := config.InitializeRegistry(ctx, cfg, nil)
	require.NoError(t, err)

	store, err := reg.GetResourceStore("resources")
	require.NoError(t, err)
	builder, ok := store.(resource.Builder)
	require.True(t, ok, "badger store must be seedable")

	blobs, err := reg.GetContentStore("content")
	require.NoError(t, err)

	folder, err := builder.CreateFolder(ctx, builder.RootID(), "reports", resource.SystemPrincipalID)
	require.NoError(t, err)
	require.NoError(t, blobs.WriteContent(ctx, "q1", []byte("quarterly numbers")))
	_, err = builder.CreateDocument(ctx, folder.ID, resource.DocumentSpec{
		Name: "q1.txt", Owner: resource.SystemPrincipalID, Size: 17, ContentID: "q1",
	})
	require.NoError(t, err)
	require.NoError(t, blobs.WriteContent(ctx, "stray", []byte("nobody points here")))

	firstAdmin, _, err := store.LookupUser(ctx, "admin")
	require.NoError(t, err)
	require.NoError(t, reg.Close())

	// second run: same paths, users registered again
	reg, err = config.InitializeRegistry(ctx, cfg, nil)
	require.NoError(t, err)
	defer reg.Close()

	store, err = reg.GetResourceStore("resources")
	require.NoError(t, err)
	again, _, err := store.LookupUser(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, firstAdmin.ID, again.ID, "users are not re-created on restart")

	repo, err := reg.GetRepository(cfg.Repository.ID)
	require.NoError(t, err)

	doc, err := repo.GetObjectByPath(ctx, admin, "/reports/q1.txt", repository.ObjectOptions{})
	require.NoError(t, err)
	stream, err := repo.GetContentStream(ctx, admin, doc.ID())
	require.NoError(t, err)
	defer stream.Stream.Close()
	assert.EqualValues(t, 17, stream.Length)

	collector, err := config.CreateCollector(cfg, reg)
	require.NoError(t, err)
	stats, err := collector.RunNow(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.DeletedCount)

	blobs, err = reg.GetContentStore("content")
	require.NoError(t, err)
	_, err = blobs.GetContentSize(ctx, "stray")
	assert.ErrorIs(t, err, content.ErrContentNotFound)
	_, err = blobs.GetContentSize(ctx, "q1")
	assert.NoError(t, err)
}
