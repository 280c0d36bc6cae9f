// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/timesplit/schema"
)

// GitClient defines the git operations timesplit needs to follow the checked-out branch.
// This allows the session logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its output.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetGitDir returns the absolute path of the repository's git directory.
	GetGitDir(ctx context.Context, repoPath string) (string, error)

	// GetCurrentBranch returns the checked-out branch name.
	// A detached HEAD yields an empty name and no error.
	GetCurrentBranch(ctx context.Context, repoPath string) (string, error)
}

// BranchSource reports the branch currently checked out in one repository.
// An empty name means there is no branch to track.
type BranchSource interface {
	CurrentBranch(ctx context.Context) (string, error)
}

// StoreManager defines the interface for managing interval stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetIntervalStore() IntervalStore
}

// IntervalStore persists closed intervals.
type IntervalStore interface {
	// Record stores a closed interval for a repository. Recording the same
	// interval twice is not an error.
	Record(repo string, iv schema.Interval) error

	// List returns stored intervals ordered by start time.
	List(q schema.ListQuery) ([]schema.IntervalRecord, error)

	// GetStatus returns status information about the store
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}

// Presenter renders branch metrics and user-facing notices.
type Presenter interface {
	Refresh(metrics []schema.BranchMetric)
	Notify(level schema.NoticeLevel, msg string)
}
