package planner

import (
	"context"
	"fmt"

	"github.com/penwyp/go-eld-planner/internal/config"
	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/data/cache"
	"github.com/penwyp/go-eld-planner/internal/data/source"
	"github.com/penwyp/go-eld-planner/internal/util"
)

// DataLoader owns the configured trip source and, for the API, its cache
type DataLoader struct {
	config *config.Config
	source source.Source
	cache  *cache.SQLiteCache
}

// NewDataLoader builds the source stack named by cfg.Source. The API source
// is fronted by the SQLite cache; if the cache cannot be opened the API is
// used directly, unless offline mode needs it.
func NewDataLoader(cfg *config.Config) (*DataLoader, error) {
	dl := &DataLoader{config: cfg}

	switch cfg.Source {
	case config.SourceFile:
		dl.source = source.NewFileSource(cfg.Data...)

	case config.SourceAPI:
		remote := source.NewHTTPSource(cfg.APIURL, source.WithTimeout(cfg.Timeout))

		c, err := cache.NewSQLiteCache(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			if cfg.Offline {
				return nil, fmt.Errorf("offline mode needs the trip cache: %w", err)
			}
			util.LogWarnf("Trip cache unavailable, using API directly: %v", err)
			dl.source = remote
			break
		}
		if err := c.Preload(); err != nil {
			util.LogWarnf("Cache preload warning: %v", err)
		}
		dl.cache = c
		dl.source = source.NewCachedSource(remote, c, cfg.Offline)

	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}

	return dl, nil
}

// NewDataLoaderWithSource wraps an existing source
func NewDataLoaderWithSource(cfg *config.Config, src source.Source) *DataLoader {
	return &DataLoader{config: cfg, source: src}
}

// Source returns the underlying trip source
func (dl *DataLoader) Source() source.Source {
	return dl.source
}

// Load lists every trip
func (dl *DataLoader) Load(ctx context.Context) ([]*model.Trip, error) {
	trips, err := dl.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trips: %w", err)
	}
	return trips, nil
}

// WatchDirs lists directories to watch. Only file sources have any.
func (dl *DataLoader) WatchDirs() []string {
	if ds, ok := dl.source.(DirSource); ok {
		return ds.Dirs()
	}
	return nil
}

// ClearCache drops cached trips. It is a no-op without a cache.
func (dl *DataLoader) ClearCache() error {
	if dl.cache == nil {
		return nil
	}
	return dl.cache.Clear()
}

// CacheStats reports cached trip counts in memory and on disk
func (dl *DataLoader) CacheStats() (memory, disk int) {
	if dl.cache == nil {
		return 0, 0
	}
	return dl.cache.Stats()
}

func (dl *DataLoader) Close() error {
	if dl.cache == nil {
		return nil
	}
	return dl.cache.Close()
}
