// Package backport rebases the commits of a pull request onto the current
// branch.
package backport

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ferrocene/releasetools/internal/git"
	"github.com/ferrocene/releasetools/internal/logfields"
)

// Environment variables that are passed to the rebase todo list editor.
const (
	EnvPRNumber      = "FERROCENE_PR_NUMBER"
	EnvCurrentBranch = "FERROCENE_CURRENT_BRANCH"
)

// EditorSubcommand is the argument that makes the backport command act as
// git sequence editor.
const EditorSubcommand = "rebase-editor"

// GithubClient is the subset of the GitHub API that is needed for backports.
type GithubClient interface {
	PullRequestBaseHead(ctx context.Context, owner, repo string, prNumber int) (base, head string, err error)
}

// Backporter rebases pull requests onto the branch that is checked out in a
// repository.
type Backporter struct {
	clt    GithubClient
	repo   *git.Repository
	owner  string
	name   string
	editor string
	logger *zap.Logger
}

// NewBackporter returns a Backporter.
// executable is the path of the program that implements the
// rebase-editor subcommand.
func NewBackporter(clt GithubClient, repo *git.Repository, owner, name, executable string) *Backporter {
	return &Backporter{
		clt:    clt,
		repo:   repo,
		owner:  owner,
		name:   name,
		editor: shellQuote(executable) + " " + EditorSubcommand,
		logger: zap.L().Named("backport"),
	}
}

// Backport rebases the commits of the pull request onto the current branch.
// The exit code of git rebase is returned.
func (b *Backporter) Backport(ctx context.Context, prNumber int) (int, error) {
	logger := b.logger.With(
		logfields.RepositoryOwner(b.owner),
		logfields.Repository(b.name),
		logfields.PullRequest(prNumber),
	)

	base, head, err := b.clt.PullRequestBaseHead(ctx, b.owner, b.name, prNumber)
	if err != nil {
		return -1, fmt.Errorf("fetching base and head of pull request #%d failed: %w", prNumber, err)
	}

	branch, err := b.repo.CurrentBranch(ctx)
	if err != nil {
		return -1, fmt.Errorf("determining current branch failed: %w", err)
	}

	onto := branch
	if onto == "" {
		onto = "HEAD"
	}

	logger.Info(
		"rebasing pull request commits",
		logfields.Event("backport_rebase_started"),
		logfields.Branch(branch),
		zap.String("git.base", base),
		zap.String("git.head", head),
	)

	return b.repo.RebaseInteractive(ctx, &git.RebaseOpts{
		Onto:           onto,
		Upstream:       base,
		Branch:         head,
		SequenceEditor: b.editor,
		Env: []string{
			EnvPRNumber + "=" + strconv.Itoa(prNumber),
			EnvCurrentBranch + "=" + branch,
		},
	})
}

// shellQuote quotes s for /bin/sh, git runs the sequence editor via the
// shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
