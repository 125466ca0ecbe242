package memory

import (
	"testing"

	"github.com/marmos91/dittocmis/pkg/store/resource"
	storetesting "github.com/marmos91/dittocmis/pkg/store/resource/testing"
	"golang.org/x/crypto/bcrypt"
)

func TestMemoryResourceStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) resource.MutableStore {
			return NewMemoryResourceStore(MemoryResourceStoreConfig{BcryptCost: bcrypt.MinCost})
		},
	}
	suite.Run(t)
}
