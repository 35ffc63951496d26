// Package watcher implements file system watching for the watch command.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/shipper/internal/core/domain"
)

// shouldSkipDirectories are directories whose churn never affects the source
// tree hash.
var shouldSkipDirectories = map[string]bool{
	".git":                true,
	".jj":                 true,
	"node_modules":        true,
	domain.ShipperDirName: true,
}

const eventChannelBuffer = 100

// Watcher watches a source tree recursively and emits changed paths.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	paths     chan string
}

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher: fsw,
		paths:     make(chan string, eventChannelBuffer),
	}, nil
}

// Start begins watching root recursively. Change notifications are delivered
// on Paths until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context, root string) error {
	if err := w.addRecursively(root); err != nil {
		return err
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Paths returns the channel of changed file paths.
func (w *Watcher) Paths() <-chan string {
	return w.paths
}

func (w *Watcher) addRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip directories we cannot access instead of aborting the walk.
			return nil //nolint:nilerr
		}
		if !d.IsDir() {
			return nil
		}
		if shouldSkipDirectories[d.Name()] {
			return fs.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.paths)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			select {
			case w.paths <- event.Name:
			case <-ctx.Done():
				return
			}

			// New directories must be added to the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !shouldSkipDirectories[info.Name()] {
					_ = w.addRecursively(event.Name)
				}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher: file system error: %v\n", err)
		}
	}
}
