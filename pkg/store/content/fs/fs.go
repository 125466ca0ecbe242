// Package fs implements a content store backed by a local directory.
package fs

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/marmos91/dittocmis/pkg/store/content"
)

// FSContentStore stores each content item as one file under basePath. File
// names are the hex encoding of the ContentID.
type FSContentStore struct {
	basePath string
}

// FSContentStoreConfig configures an FSContentStore.
type FSContentStoreConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// NewFSContentStore creates the base directory if needed.
func NewFSContentStore(ctx context.Context, config FSContentStoreConfig) (*FSContentStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(config.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSContentStore{basePath: config.Path}, nil
}

func (r *FSContentStore) getFilePath(id content.ContentID) string {
	return filepath.Join(r.basePath, hex.EncodeToString([]byte(id)))
}

func (r *FSContentStore) ReadContent(ctx context.Context, id content.ContentID) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(r.getFilePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
		}
		return nil, fmt.Errorf("failed to open content: %w", err)
	}
	return file, nil
}

func (r *FSContentStore) GetContentSize(ctx context.Context, id content.ContentID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := os.Stat(r.getFilePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
		}
		return 0, fmt.Errorf("failed to stat content: %w", err)
	}
	return info.Size(), nil
}

// WriteContent writes to a temporary file and renames it into place.
func (r *FSContentStore) WriteContent(ctx context.Context, id content.ContentID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return content.ErrInvalidContentID
	}

	tmp, err := os.CreateTemp(r.basePath, ".write-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.getFilePath(id)); err != nil {
		return fmt.Errorf("failed to commit content: %w", err)
	}
	return nil
}

func (r *FSContentStore) Delete(ctx context.Context, id content.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(r.getFilePath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return nil
}

// ListAllContent decodes the file names under the base directory. Files
// that are not hex encoded, such as leftovers of interrupted writes, are
// skipped.
func (r *FSContentStore) ListAllContent(ctx context.Context) ([]content.ContentID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}

	ids := make([]content.ContentID, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		raw, err := hex.DecodeString(e.Name())
		if err != nil || len(raw) == 0 {
			continue
		}
		ids = append(ids, content.ContentID(raw))
	}
	return ids, nil
}

func (r *FSContentStore) DeleteBatch(ctx context.Context, ids []content.ContentID) (map[content.ContentID]error, error) {
	failures := make(map[content.ContentID]error)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return failures, err
		}
		if err := r.Delete(ctx, id); err != nil {
			failures[id] = err
		}
	}
	return failures, nil
}

func (r *FSContentStore) Close() error {
	return nil
}
