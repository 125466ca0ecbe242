package fs

import (
	"context"
	"testing"

	"github.com/marmos91/dittocmis/pkg/store/content"
	contenttesting "github.com/marmos91/dittocmis/pkg/store/content/testing"
	"github.com/stretchr/testify/require"
)

func TestFSContentStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func(t *testing.T) content.ContentStore {
			store, err := NewFSContentStore(context.Background(), FSContentStoreConfig{Path: t.TempDir()})
			require.NoError(t, err)
			return store
		},
	}
	suite.Run(t)
}
