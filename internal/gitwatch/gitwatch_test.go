package gitwatch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHead(t *testing.T, gitDir, branch string) {
	t.Helper()
	lock := filepath.Join(gitDir, "HEAD.lock")
	require.NoError(t, os.WriteFile(lock, []byte("ref: refs/heads/"+branch+"\n"), 0o644))
	require.NoError(t, os.Rename(lock, filepath.Join(gitDir, "HEAD")))
}

func startWatcher(t *testing.T, gitDir string, calls *atomic.Int32) *Watcher {
	t.Helper()
	w, err := New(gitDir, 20*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func TestWatcher_ReportsHeadChange(t *testing.T) {
	gitDir := t.TempDir()
	writeHead(t, gitDir, "main")

	var calls atomic.Int32
	startWatcher(t, gitDir, &calls)

	writeHead(t, gitDir, "feature")
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	gitDir := t.TempDir()
	writeHead(t, gitDir, "main")

	var calls atomic.Int32
	w, err := New(gitDir, 200*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	for range 5 {
		w.schedule()
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	gitDir := t.TempDir()
	writeHead(t, gitDir, "main")

	var calls atomic.Int32
	startWatcher(t, gitDir, &calls)

	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "index"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "ORIG_HEAD"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_CloseDropsPending(t *testing.T) {
	gitDir := t.TempDir()

	var calls atomic.Int32
	w, err := New(gitDir, 50*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)

	w.schedule()
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	w.schedule()

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), 0, nil)
	assert.Error(t, err)
}
