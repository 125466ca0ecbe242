// Package memory implements an in-memory content store.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/marmos91/dittocmis/pkg/store/content"
)

// MemoryContentStore keeps content in a map guarded by an RWMutex.
type MemoryContentStore struct {
	mu   sync.RWMutex
	data map[content.ContentID][]byte
}

func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{data: make(map[content.ContentID][]byte)}
}

func (s *MemoryContentStore) ReadContent(ctx context.Context, id content.ContentID) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.data[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
	}
	// stored slices are never mutated in place, so sharing is safe
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryContentStore) GetContentSize(ctx context.Context, id content.ContentID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[id]
	if !ok {
		return 0, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
	}
	return int64(len(data)), nil
}

func (s *MemoryContentStore) WriteContent(ctx context.Context, id content.ContentID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return content.ErrInvalidContentID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[id] = bytes.Clone(data)
	return nil
}

func (s *MemoryContentStore) Delete(ctx context.Context, id content.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, id)
	return nil
}

func (s *MemoryContentStore) ListAllContent(ctx context.Context) ([]content.ContentID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Collect(maps.Keys(s.data)), nil
}

func (s *MemoryContentStore) DeleteBatch(ctx context.Context, ids []content.ContentID) (map[content.ContentID]error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.data, id)
	}
	return map[content.ContentID]error{}, nil
}

func (s *MemoryContentStore) Close() error {
	return nil
}
