// Package prlink creates markdown references to pull requests that do not
// cause GitHub to add backlinks to the referenced pull request.
package prlink

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ferrocene/releasetools/internal/githubclt"
	"github.com/ferrocene/releasetools/internal/logfields"
	"github.com/ferrocene/releasetools/internal/retryer"
)

// DomainWithoutBacklinks is the host used in links. GitHub does not create
// backlinks for links to www.github.com, it redirects them to github.com.
const DomainWithoutBacklinks = "www.github.com"

// GithubClient is the subset of the GitHub API used by the Linker.
type GithubClient interface {
	IssueTitle(ctx context.Context, owner, repo string, issueOrPRNr int) (string, error)
	HasToken() bool
}

// Linker generates links to pull requests.
type Linker struct {
	clt     GithubClient
	retryer *retryer.Retryer
	logger  *zap.Logger
}

// NewLinker returns a Linker. If r is nil, failed requests are not
// retried.
func NewLinker(clt GithubClient, r *retryer.Retryer) *Linker {
	return &Linker{
		clt:     clt,
		retryer: r,
		logger:  zap.L().Named("pr_links"),
	}
}

// ParseRef returns the number of a pull request reference.
// ref is either a number or has the form "<anything>#<number>", e.g.
// "ferrocene/ferrocene#123".
func ParseRef(ref string) (int, error) {
	numStr := ref
	if idx := strings.LastIndex(ref, "#"); idx != -1 {
		numStr = ref[idx+1:]
	}

	nr, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, fmt.Errorf("invalid pull request reference %q: %w", ref, err)
	}

	if nr <= 0 {
		return 0, fmt.Errorf("invalid pull request reference %q: number must be positive", ref)
	}

	return nr, nil
}

// Link returns a markdown link to the pull request ref of repository, in the
// form: `N`: [title](https://www.github.com/owner/repo/issues/N).
func (l *Linker) Link(ctx context.Context, repository, ref string) (string, error) {
	owner, repo, found := strings.Cut(repository, "/")
	if !found || owner == "" || repo == "" {
		return "", fmt.Errorf("invalid repository %q, must be in the format: <owner>/<name>", repository)
	}

	nr, err := ParseRef(ref)
	if err != nil {
		return "", err
	}

	logF := []zap.Field{
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(nr),
	}

	var title string
	fetchTitle := func(ctx context.Context) error {
		var err error

		title, err = l.clt.IssueTitle(ctx, owner, repo, nr)
		if err != nil && githubclt.IsRateLimited(err) {
			l.logRateLimited(logF)
		}

		return err
	}

	if l.retryer == nil {
		err = fetchTitle(ctx)
	} else {
		err = l.retryer.Run(ctx, fetchTitle, logF)
	}
	if err != nil {
		return "", fmt.Errorf("failed to retrieve title of #%d: %w", nr, err)
	}

	return fmt.Sprintf("`%d`: [%s](https://%s/%s/%s/issues/%d)", nr, title, DomainWithoutBacklinks, owner, repo, nr), nil
}

func (l *Linker) logRateLimited(logF []zap.Field) {
	l.logger.Error(
		"failed to retrieve pull request title: rate limited",
		append(logF, logfields.Event("github_rate_limited"))...,
	)

	if !l.clt.HasToken() {
		l.logger.Info(
			"the rate limit for unauthenticated requests is low, set a GitHub token in $GITHUB_TOKEN to increase it",
			logfields.Event("github_token_hint"),
		)
	}
}

// LinkAll returns the links for all refs in order.
// It stops at the first error.
func (l *Linker) LinkAll(ctx context.Context, repository string, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, errors.New("no pull request references given")
	}

	result := make([]string, 0, len(refs))
	for _, ref := range refs {
		link, err := l.Link(ctx, repository, ref)
		if err != nil {
			return nil, err
		}

		result = append(result, link)
	}

	return result, nil
}
