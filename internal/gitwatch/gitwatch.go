// Package gitwatch notices branch switches by watching the HEAD file of a git directory.
package gitwatch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/timesplit/internal/logging"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long HEAD must stay quiet before a change is reported.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes of HEAD inside a git directory.
// Git replaces HEAD by renaming HEAD.lock, so the directory is watched rather than the file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	gitDir   string
	debounce time.Duration
	onChange func()
	logger   *logrus.Entry

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// New creates a Watcher for gitDir. onChange runs on a timer goroutine once
// HEAD has settled; a non-positive debounce uses DefaultDebounce.
func New(gitDir string, debounce time.Duration, onChange func()) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(gitDir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		watcher:  watcher,
		gitDir:   gitDir,
		debounce: debounce,
		onChange: onChange,
		logger:   logging.NewLogger("gitwatch"),
	}, nil
}

// Start processes events until the context is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != "HEAD" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.logger.Debugf("HEAD event: op=%v", event.Op)
				w.schedule()
			}
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

// schedule restarts the debounce timer so bursts of writes give one callback.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if !closed && w.onChange != nil {
		w.onChange()
	}
}

// Close stops the watcher and drops any pending callback.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
