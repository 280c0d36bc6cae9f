package contract

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// initRepo creates an empty repository whose first branch is named branch.
func initRepo(t *testing.T, branch string) string {
	t.Helper()
	dir := t.TempDir()
	out, err := exec.Command("git", "-C", dir, "init", "-q").CombinedOutput()
	require.NoError(t, err, string(out))
	out, err = exec.Command("git", "-C", dir, "symbolic-ref", "HEAD", "refs/heads/"+branch).CombinedOutput()
	require.NoError(t, err, string(out))
	return dir
}

// TestMockGitClient_Run ensures the mock records variadic arguments the way callers pass them.
func TestMockGitClient_Run(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()
	expectedErr := errors.New("mocked git error")

	mockClient.
		On("Run", ctx, "/path/to/repo", "symbolic-ref", "HEAD").
		Return([]byte("refs/heads/main"), expectedErr).
		Once()

	out, err := mockClient.Run(ctx, "/path/to/repo", "symbolic-ref", "HEAD")
	assert.Equal(t, []byte("refs/heads/main"), out)
	assert.Equal(t, expectedErr, err)
	mockClient.AssertExpectations(t)
}

func TestRepoBranchSource(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()
	mockClient.On("GetCurrentBranch", ctx, "/repo").Return("feature/login", nil)

	source := NewRepoBranchSource(mockClient, "/repo")
	branch, err := source.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "feature/login", branch)
	mockClient.AssertExpectations(t)
}

func TestLocalGitClient_Run(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initRepo(t, "main")

	_, err := client.Run(ctx, "/nonexistent/path", "status")
	assert.Error(t, err, "Run should fail outside a repository")

	_, err = client.Run(ctx, repo, "invalid-command")
	assert.Error(t, err, "Run should fail for an unknown git command")
}

func TestLocalGitClient_Paths(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initRepo(t, "main")
	resolved, err := filepath.EvalSymlinks(repo)
	require.NoError(t, err)

	root, err := client.GetRepoRoot(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, resolved, root)

	gitDir, err := client.GetGitDir(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolved, ".git"), gitDir)

	_, err = client.GetRepoRoot(ctx, "/nonexistent/path")
	assert.Error(t, err)
}

func TestLocalGitClient_GetCurrentBranch(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()

	t.Run("branch before first commit", func(t *testing.T) {
		repo := initRepo(t, "feature/x")
		branch, err := client.GetCurrentBranch(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, "feature/x", branch)
	})

	t.Run("not a repository", func(t *testing.T) {
		_, err := client.GetCurrentBranch(ctx, t.TempDir())
		assert.Error(t, err)
	})
}
