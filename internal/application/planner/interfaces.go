package planner

import (
	"context"

	"github.com/penwyp/go-eld-planner/internal/data/watcher"
)

// DirSource is a trip source backed by local directories that can be watched
type DirSource interface {
	Dirs() []string
}

// FileMonitor watches for trip file changes
type FileMonitor interface {
	// Run forwards events until ctx is done, then closes Events
	Run(ctx context.Context)
	// Events returns a channel of file change events
	Events() <-chan watcher.FileEvent
}
