// Package gc removes document bodies no entity references any more.
//
// A body becomes orphaned when its document is removed from the resource
// store, or when a write to the content store succeeds but the entity that
// should point at it is never created. The collector lists the content
// store, walks the resource store for referenced ContentIDs and deletes the
// difference.
package gc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/store/content"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// Collector performs periodic garbage collection on one content store.
//
// Thread Safety: Safe for concurrent use. Runs are serialized.
type Collector struct {
	store  resource.Store
	blobs  content.GarbageCollectableStore
	config Config

	runMu    sync.Mutex
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Config contains configuration for the garbage collector.
type Config struct {
	// Interval between background runs.
	// Default: 24h
	Interval time.Duration

	// BatchSize is how many orphans are handed to DeleteBatch at once.
	// Default: 1000
	BatchSize int

	// DryRun reports orphans without deleting them.
	DryRun bool

	// RunTimeout bounds a single background run.
	// Default: 10m
	RunTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 24 * time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = 10 * time.Minute
	}
}

// NewCollector creates a stopped collector. It fails when blobs cannot
// enumerate its content.
func NewCollector(store resource.Store, blobs content.ContentStore, config Config) (*Collector, error) {
	if store == nil {
		return nil, fmt.Errorf("resource store is required")
	}
	gcStore, ok := blobs.(content.GarbageCollectableStore)
	if !ok {
		return nil, fmt.Errorf("content store %T does not support garbage collection", blobs)
	}
	config.applyDefaults()

	return &Collector{
		store:  store,
		blobs:  gcStore,
		config: config,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Start runs collection every Interval in a background goroutine until
// Stop is called. Call it at most once.
func (c *Collector) Start() {
	logger.Info("Starting garbage collector: interval=%s batch_size=%d dry_run=%v",
		c.config.Interval, c.config.BatchSize, c.config.DryRun)
	go c.worker()
}

// Stop signals the worker and waits for an in-progress run to finish or
// ctx to expire.
func (c *Collector) Stop(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.stopCh) })

	select {
	case <-c.doneCh:
		logger.Info("Garbage collector stopped")
		return nil
	case <-ctx.Done():
		logger.Warn("Garbage collector shutdown timeout")
		return ctx.Err()
	}
}

// RunNow performs one collection and blocks until it completes.
func (c *Collector) RunNow(ctx context.Context) (*Stats, error) {
	return c.collect(ctx)
}

func (c *Collector) worker() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), c.config.RunTimeout)
			stats, err := c.collect(ctx)
			cancel()

			if err != nil {
				logger.Error("Garbage collection failed: %v", err)
			} else {
				logger.Info("Garbage collection completed: %s", stats.Summary())
			}

		case <-c.stopCh:
			return
		}
	}
}

// collect lists existing content first so bodies written during the walk
// of the resource store are never mistaken for orphans by this run.
func (c *Collector) collect(ctx context.Context) (*Stats, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	stats := &Stats{StartTime: time.Now()}
	defer func() { stats.EndTime = time.Now() }()

	existing, err := c.blobs.ListAllContent(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list content: %w", err)
	}
	stats.ExistingCount = uint64(len(existing))

	referenced, err := ReferencedContent(ctx, c.store)
	if err != nil {
		return stats, fmt.Errorf("failed to get referenced content: %w", err)
	}
	stats.ReferencedCount = uint64(len(referenced))

	var orphaned []content.ContentID
	for _, id := range existing {
		if _, ok := referenced[id]; !ok {
			orphaned = append(orphaned, id)
		}
	}
	stats.OrphanedCount = uint64(len(orphaned))
	logger.Debug("GC: existing=%d referenced=%d orphaned=%d", len(existing), len(referenced), len(orphaned))

	if len(orphaned) == 0 {
		return stats, nil
	}

	if c.config.DryRun {
		for i, id := range orphaned {
			if i == 10 {
				logger.Info("GC: dry run, ... and %d more", len(orphaned)-10)
				break
			}
			logger.Info("GC: dry run, would delete %s", id)
		}
		return stats, nil
	}

	for start := 0; start < len(orphaned); start += c.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		batch := orphaned[start:min(start+c.config.BatchSize, len(orphaned))]
		failures, err := c.blobs.DeleteBatch(ctx, batch)
		if err != nil {
			logger.Warn("GC: batch delete failed: %v", err)
			stats.FailedCount += uint64(len(batch))
			continue
		}

		stats.DeletedCount += uint64(len(batch) - len(failures))
		stats.FailedCount += uint64(len(failures))
		for id, ferr := range failures {
			logger.Debug("GC: failed to delete %s: %v", id, ferr)
		}
	}

	return stats, nil
}

// ReferencedContent walks the whole store as the system principal and
// returns the ContentID of every document that has one.
func ReferencedContent(ctx context.Context, store resource.Store) (map[content.ContentID]struct{}, error) {
	session, err := store.OpenSession(ctx, resource.Principal{
		ID:    resource.SystemPrincipalID,
		Name:  resource.SystemPrincipalID,
		Admin: true,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = session.Close() }()

	root, err := session.EntityByPath(ctx, "/")
	if err != nil {
		return nil, err
	}

	referenced := make(map[content.ContentID]struct{})
	pending := []uuid.UUID{root.ID}
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		folder := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		children, err := session.Children(ctx, folder)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", folder, err)
		}
		for _, child := range children {
			switch {
			case child.IsFolder():
				pending = append(pending, child.ID)
			case child.ContentID != "":
				referenced[content.ContentID(child.ContentID)] = struct{}{}
			}
		}
	}
	return referenced, nil
}

// Stats contains statistics from a garbage collection run.
type Stats struct {
	StartTime       time.Time
	EndTime         time.Time
	ReferencedCount uint64 // ContentIDs referenced by documents
	ExistingCount   uint64 // ContentIDs present in the content store
	OrphanedCount   uint64
	DeletedCount    uint64
	FailedCount     uint64
}

// Duration returns the total collection duration.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Summary returns a human-readable summary of the collection.
func (s *Stats) Summary() string {
	return fmt.Sprintf("referenced=%d existing=%d orphaned=%d deleted=%d failed=%d duration=%s",
		s.ReferencedCount, s.ExistingCount, s.OrphanedCount,
		s.DeletedCount, s.FailedCount, s.Duration())
}
