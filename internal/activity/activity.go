// Package activity turns file writes in a worktree into activity signals.
package activity

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/logging"
	"github.com/sirupsen/logrus"
)

// DefaultThrottle is the minimum spacing between two activity signals.
const DefaultThrottle = time.Second

// Watcher reports edits under a repository root, skipping excluded paths.
type Watcher struct {
	watcher    *fsnotify.Watcher
	root       string
	excludes   []string
	throttle   time.Duration
	onActivity func(time.Time)
	logger     *logrus.Entry
	now        func() time.Time

	mu   sync.Mutex
	last time.Time
}

// New creates a Watcher over every non-excluded directory below root.
// fsnotify is not recursive, so directories created later are added as they appear.
func New(root string, excludes []string, throttle time.Duration, onActivity func(time.Time)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	w := &Watcher{
		watcher:    watcher,
		root:       root,
		excludes:   excludes,
		throttle:   throttle,
		onActivity: onActivity,
		logger:     logging.NewLogger("activity"),
		now:        time.Now,
	}
	if err := w.addTree(root); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and all of its non-excluded subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			w.logger.WithError(err).Debugf("Skipping %s", path)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path, true) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.WithError(err).Warnf("Failed to watch %s", path)
		}
		return nil
	})
}

// ignored reports whether path matches an exclude pattern relative to the root.
func (w *Watcher) ignored(path string, isDir bool) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return contract.ShouldIgnore(rel, w.excludes)
}

// Start processes events until the context is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			_ = w.Close()
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	isDir := false
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			isDir = true
			if !w.ignored(event.Name, true) {
				if err := w.addTree(event.Name); err != nil {
					w.logger.WithError(err).Debugf("Failed to watch new directory %s", event.Name)
				}
			}
		}
	}
	if w.ignored(event.Name, isDir) {
		return
	}
	w.signal(event.Name)
}

// signal forwards one activity, dropping those that arrive within the throttle window.
func (w *Watcher) signal(path string) {
	now := w.now()
	w.mu.Lock()
	if !w.last.IsZero() && now.Sub(w.last) < w.throttle {
		w.mu.Unlock()
		return
	}
	w.last = now
	w.mu.Unlock()

	w.logger.Debugf("Activity: %s", filepath.Base(path))
	if w.onActivity != nil {
		w.onActivity(now)
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
