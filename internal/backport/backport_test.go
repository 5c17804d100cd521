package backport

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ferrocene/releasetools/internal/git"
)

type fakeGithubClient struct {
	base, head string
	err        error

	calledWith int
}

func (c *fakeGithubClient) PullRequestBaseHead(_ context.Context, _, _ string, prNumber int) (string, string, error) {
	c.calledWith = prNumber
	return c.base, c.head, c.err
}

func newTestRepository(t *testing.T) *git.Repository {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not found")
	}

	t.Setenv("GIT_AUTHOR_NAME", "Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	repo := git.NewRepository(t.TempDir())
	ctx := context.Background()

	_, err := repo.Run(ctx, "init", "--quiet")
	require.NoError(t, err)

	_, err = repo.Run(ctx, "symbolic-ref", "HEAD", "refs/heads/main")
	require.NoError(t, err)

	return repo
}

func commitFile(t *testing.T, repo *git.Repository, name string) string {
	t.Helper()

	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), name), []byte(name), 0o600))

	_, err := repo.Run(ctx, "add", name)
	require.NoError(t, err)

	_, err = repo.Run(ctx, "-c", "commit.gpgsign=false", "commit", "--quiet", "-m", "add "+name)
	require.NoError(t, err)

	out, err := repo.Run(ctx, "rev-parse", "HEAD")
	require.NoError(t, err)

	return strings.TrimSpace(out)
}

func TestBackportRebasesPullRequestCommits(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t)))

	repo := newTestRepository(t)
	ctx := context.Background()

	base := commitFile(t, repo, "base")

	_, err := repo.Run(ctx, "checkout", "--quiet", "-b", "feature")
	require.NoError(t, err)
	head := commitFile(t, repo, "feature")

	_, err = repo.Run(ctx, "checkout", "--quiet", "main")
	require.NoError(t, err)
	commitFile(t, repo, "release")

	clt := &fakeGithubClient{base: base, head: head}

	// "true" leaves the todo list unchanged, the rebase ends detached
	bp := NewBackporter(clt, repo, "ferrocene", "ferrocene", "true")

	exitCode, err := bp.Backport(ctx, 12)
	require.NoError(t, err)
	assert.Zero(t, exitCode)
	assert.Equal(t, 12, clt.calledWith)

	assert.FileExists(t, filepath.Join(repo.Dir(), "feature"))
	assert.FileExists(t, filepath.Join(repo.Dir(), "release"))
}

func TestBackportFailsWhenPullRequestIsNotFetchable(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t)))

	repo := git.NewRepository(t.TempDir())
	clt := &fakeGithubClient{err: errors.New("unreachable")}

	bp := NewBackporter(clt, repo, "ferrocene", "ferrocene", "true")

	exitCode, err := bp.Backport(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, -1, exitCode)
	assert.ErrorIs(t, err, clt.err)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'/usr/bin/backport-one'`, shellQuote("/usr/bin/backport-one"))
	assert.Equal(t, `'/tmp/a'\''b'`, shellQuote("/tmp/a'b"))
}
