package config

import (
	"github.com/marmos91/dittocmis/pkg/gc"
	"github.com/marmos91/dittocmis/pkg/registry"
)

// CreateCollector builds a garbage collector over the stores registered by
// InitializeRegistry. It does not look at GC.Enabled; callers decide
// whether to Start it.
func CreateCollector(cfg *Config, reg *registry.Registry) (*gc.Collector, error) {
	store, err := reg.GetResourceStore(resourceStoreName)
	if err != nil {
		return nil, err
	}
	blobs, err := reg.GetContentStore(contentStoreName)
	if err != nil {
		return nil, err
	}
	return gc.NewCollector(store, blobs, gc.Config{
		Interval:  cfg.GC.Interval,
		BatchSize: cfg.GC.BatchSize,
		DryRun:    cfg.GC.DryRun,
	})
}
