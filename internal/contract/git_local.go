package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetGitDir implements the GitClient interface.
func (c *LocalGitClient) GetGitDir(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetCurrentBranch implements the GitClient interface.
// symbolic-ref works before the first commit, unlike rev-parse.
func (c *LocalGitClient) GetCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "symbolic-ref", "--short", "-q", "HEAD")
	if err == nil {
		return strings.TrimSpace(string(out)), nil
	}
	// symbolic-ref exits non-zero on a detached HEAD; only a missing repository is an error.
	if _, dirErr := c.GetGitDir(ctx, repoPath); dirErr != nil {
		return "", dirErr
	}
	return "", nil
}

// RepoBranchSource adapts a GitClient to the BranchSource of a single repository.
type RepoBranchSource struct {
	Client   GitClient
	RepoPath string
}

var _ BranchSource = &RepoBranchSource{} // Compile-time check

// NewRepoBranchSource creates a branch source for the repository at repoPath.
func NewRepoBranchSource(client GitClient, repoPath string) *RepoBranchSource {
	return &RepoBranchSource{Client: client, RepoPath: repoPath}
}

// CurrentBranch implements the BranchSource interface.
func (s *RepoBranchSource) CurrentBranch(ctx context.Context) (string, error) {
	return s.Client.GetCurrentBranch(ctx, s.RepoPath)
}
