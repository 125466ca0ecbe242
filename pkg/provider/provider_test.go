package provider

import (
	"context"
	"testing"

	"github.com/marmos91/dittocmis/pkg/store/content"
	contentmemory "github.com/marmos91/dittocmis/pkg/store/content/memory"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/marmos91/dittocmis/pkg/store/resource/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(NewSizeProvider(), NewPropertyProvider("title", "Title", false))
	require.NoError(t, err)

	assert.Equal(t, []string{"size", "title"}, r.Names())

	p, ok := r.Get("title")
	require.True(t, ok)
	assert.True(t, p.Writable())

	assert.Error(t, r.Register(NewSizeProvider()))

	var nilRegistry *Registry
	assert.Empty(t, nilRegistry.List())
}

func TestBuiltinProviders(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryResourceStore(memory.MemoryResourceStoreConfig{BcryptCost: bcrypt.MinCost})
	blobs := contentmemory.NewMemoryContentStore()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	require.NoError(t, blobs.WriteContent(ctx, content.ContentID("img"), png))

	folder, err := store.CreateFolder(ctx, store.RootID(), "site", resource.SystemPrincipalID)
	require.NoError(t, err)
	image, err := store.CreateDocument(ctx, folder.ID, resource.DocumentSpec{Name: "logo.png", Size: 2048, ContentID: "img"})
	require.NoError(t, err)
	empty, err := store.CreateDocument(ctx, folder.ID, resource.DocumentSpec{Name: "empty.txt"})
	require.NoError(t, err)
	require.NoError(t, store.SetProperty(ctx, folder.ID, "Title", "Home"))

	session, err := store.OpenSession(ctx, resource.Principal{ID: "reader"})
	require.NoError(t, err)
	defer session.Close()

	tests := []struct {
		name     string
		provider Provider
		entity   *resource.Entity
		want     string
		noValue  bool
	}{
		{"size of document", NewSizeProvider(), image, "2.0 kB", false},
		{"size of folder", NewSizeProvider(), folder, "", true},
		{"mimetype sniffed", NewMimeTypeProvider(blobs), image, "image/png", false},
		{"mimetype of empty document", NewMimeTypeProvider(blobs), empty, "", true},
		{"title direct", NewPropertyProvider("title", "Title", false), folder, "Home", false},
		{"title missing", NewPropertyProvider("title", "Title", false), image, "", true},
		{"title inherited", NewPropertyProvider("title", "Title", true), image, "Home", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.provider.Value(ctx, session, tt.entity)
			if tt.noValue {
				assert.ErrorIs(t, err, ErrNoValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
