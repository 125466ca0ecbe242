// Package content defines where document bodies live.
//
// Entities in the resource store carry a ContentID; a ContentStore resolves
// that id to bytes. Implementations: memory, fs (local directory) and s3.
package content

import (
	"context"
	"errors"
	"io"
)

// ContentID identifies a document body within a ContentStore.
type ContentID string

var (
	// ErrContentNotFound indicates the requested content does not exist.
	//
	// Implementations wrap it with context:
	//
	//	return nil, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
	ErrContentNotFound = errors.New("content not found")

	// ErrInvalidContentID indicates an empty or malformed ContentID.
	ErrInvalidContentID = errors.New("invalid content ID")
)

// ContentStore reads and writes document bodies.
//
// Thread safety:
// Implementations must be safe for concurrent use.
type ContentStore interface {
	// ReadContent returns a reader for the content. The caller closes it.
	//
	// Returns ErrContentNotFound if id is unknown.
	ReadContent(ctx context.Context, id ContentID) (io.ReadCloser, error)

	// GetContentSize returns the content length in bytes.
	GetContentSize(ctx context.Context, id ContentID) (int64, error)

	// WriteContent stores data under id, replacing previous content.
	WriteContent(ctx context.Context, id ContentID, data []byte) error

	// Delete removes content. Deleting unknown content is not an error.
	Delete(ctx context.Context, id ContentID) error

	// Close releases resources.
	Close() error
}

// GarbageCollectableStore is a ContentStore that can enumerate and bulk
// delete its content. The gc package needs it to find orphaned bodies.
type GarbageCollectableStore interface {
	ContentStore

	// ListAllContent returns the id of every stored item, in no particular
	// order.
	ListAllContent(ctx context.Context) ([]ContentID, error)

	// DeleteBatch removes ids and reports the ones that could not be
	// removed. The error is reserved for failures that abort the batch,
	// such as a cancelled context.
	DeleteBatch(ctx context.Context, ids []ContentID) (map[ContentID]error, error)
}

// ReadPrefix reads at most n bytes from the beginning of the content.
func ReadPrefix(ctx context.Context, store ContentStore, id ContentID, n int64) ([]byte, error) {
	rc, err := store.ReadContent(ctx, id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, n))
}
