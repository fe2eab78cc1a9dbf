package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-eld-planner/internal/util"
)

// FileEvent is a change to a trip data file
type FileEvent struct {
	Path      string
	Operation string
}

// FileWatcher reports changes to .json files under a set of directories
type FileWatcher struct {
	watcher *fsnotify.Watcher
	paths   []string
	events  chan FileEvent
}

// NewFileWatcher watches each path and its subdirectories
func NewFileWatcher(paths []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		paths:   paths,
		events:  make(chan FileEvent, 100),
	}

	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return fw, nil
}

func (fw *FileWatcher) addPath(path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return fw.watcher.Add(p)
		}
		return nil
	})
}

// Run forwards events until ctx is cancelled, then closes the watcher and
// the events channel.
func (fw *FileWatcher) Run(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addPath(event.Name); err != nil {
						util.LogWarnf("Cannot watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}

			if !strings.EqualFold(filepath.Ext(event.Name), ".json") || event.Op == fsnotify.Chmod {
				continue
			}

			select {
			case fw.events <- FileEvent{Path: event.Name, Operation: event.Op.String()}:
			default:
				util.LogDebugf("Watcher event buffer full, dropping %s", event.Name)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error: " + err.Error())
		}
	}
}

func (fw *FileWatcher) Events() <-chan FileEvent {
	return fw.events
}

// Debounce calls fn once per burst of events, after quiet has elapsed with no
// further events. It returns when events is closed.
func Debounce(events <-chan FileEvent, quiet time.Duration, fn func([]FileEvent)) {
	var pending []FileEvent
	timer := time.NewTimer(quiet)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				timer.Stop()
				if len(pending) > 0 {
					fn(pending)
				}
				return
			}
			pending = append(pending, ev)
			timer.Reset(quiet)

		case <-timer.C:
			if len(pending) > 0 {
				fn(pending)
				pending = nil
			}
		}
	}
}
