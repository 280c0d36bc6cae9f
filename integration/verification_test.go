//go:build integration

// Package integration contains integration tests for timesplit.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
// Or use: make test-integration
package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHeadlessTrackingVerification tracks a repository headless across a branch
// switch and verifies the stored intervals against the branches visited.
func TestHeadlessTrackingVerification(t *testing.T) {
	repo := initRepo(t)
	dbPath := filepath.Join(t.TempDir(), "timesplit.db")
	env := []string{
		"TIMESPLIT_STORE_BACKEND=sqlite",
		"TIMESPLIT_STORE_DB_CONNECT=" + dbPath,
	}

	cmd := exec.Command(getTimesplitBinary(), "track", repo,
		"--headless", "--poll-interval", "1s", "--idle-threshold", "1 hour", "--color", "no")
	cmd.Env = append(os.Environ(), env...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stdout
	require.NoError(t, cmd.Start())

	// Let the session start on main, then move to a new branch
	time.Sleep(1500 * time.Millisecond)
	git(t, repo, "checkout", "-q", "-b", "feature/login")
	time.Sleep(2500 * time.Millisecond)

	require.NoError(t, cmd.Process.Signal(syscall.SIGINT))
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		require.NoError(t, err, stdout.String())
	case <-time.After(10 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatalf("track did not stop after SIGINT:\n%s", stdout.String())
	}

	output := stdout.String()
	assert.Contains(t, output, "Switched to branch: main")
	assert.Contains(t, output, "Switched to branch: feature/login")

	out, err := runTimesplit(t, repo, env, "report", repo, "--intervals", "--output", "json")
	require.NoError(t, err)

	var rows []struct {
		Branch  string `json:"branch"`
		Kind    string `json:"kind"`
		Seconds int64  `json:"duration_s"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	require.NotEmpty(t, rows)

	seen := make(map[string]bool)
	for _, r := range rows {
		seen[r.Branch] = true
		assert.Contains(t, []string{"active", "inactive"}, r.Kind)
	}
	assert.True(t, seen["main"], "main should have an interval")
	assert.True(t, seen["feature/login"], "feature/login should have an interval")

	// Intervals come back in start order, so main is first
	assert.Equal(t, "main", rows[0].Branch)
}

// TestReportWithoutData verifies an empty store reports no branches.
func TestReportWithoutData(t *testing.T) {
	repo := initRepo(t)
	env := []string{
		"TIMESPLIT_STORE_BACKEND=sqlite",
		"TIMESPLIT_STORE_DB_CONNECT=" + filepath.Join(t.TempDir(), "empty.db"),
	}

	out, err := runTimesplit(t, repo, env, "report", repo, "--color", "no")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "Showing 0 of 0 branches"), out)
}
