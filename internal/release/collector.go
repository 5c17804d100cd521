package release

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/ferrocene/releasetools/internal/githubclt"
	"github.com/ferrocene/releasetools/internal/logfields"
)

//go:generate mockgen -package mocks -destination mocks/forgeclient.go . ForgeClient
//go:generate mockgen -package mocks -destination mocks/branchiterator.go github.com/ferrocene/releasetools/internal/githubclt BranchIterator

// ForgeClient is the subset of the GitHub API that the Collector uses.
type ForgeClient interface {
	ListProtectedBranches(ctx context.Context, owner, repo string) githubclt.BranchIterator
	ResolveRef(ctx context.Context, owner, repo, ref string) (string, error)
}

// ReleaseBranchRe matches the names of all branches that are released by the
// automation.
var ReleaseBranchRe = regexp.MustCompile(`^(main|release/1\.[0-9]+)$`)

// Candidates are the commits that are considered for being released.
type Candidates struct {
	Commits []string
	// SkippedBranches contains the protected branches that are not release
	// branches.
	SkippedBranches []string
}

// Collector enumerates the candidate commits of a run.
type Collector struct {
	clt    ForgeClient
	owner  string
	repo   string
	logger *zap.Logger
}

func NewCollector(clt ForgeClient, owner, repo string) *Collector {
	logger := zap.L().Named("collector").With(
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
	)

	return &Collector{
		clt:    clt,
		owner:  owner,
		repo:   repo,
		logger: logger,
	}
}

// Collect returns the candidate commits for ev.
func (c *Collector) Collect(ctx context.Context, ev *Event) (*Candidates, error) {
	switch ev.Kind {
	case EventKindScheduled:
		return c.releaseBranchHeads(ctx)

	case EventKindManual:
		if ev.Inputs == nil {
			return nil, errors.New("manual event has no inputs")
		}

		commit, err := c.manualCommit(ctx, ev.Inputs)
		if err != nil {
			return nil, err
		}

		return &Candidates{Commits: []string{commit}}, nil

	default:
		return nil, &UnsupportedTriggerKindError{Kind: string(ev.Kind)}
	}
}

func (c *Collector) releaseBranchHeads(ctx context.Context) (*Candidates, error) {
	var result Candidates

	// logged unconditionally, it explains why a branch is not picked up
	c.logger.Info("only protected branches are considered", logEventProtectedBranchesNote)

	it := c.clt.ListProtectedBranches(ctx, c.owner, c.repo)
	for {
		branch, err := it.Next()
		if err != nil {
			return nil, fmt.Errorf("listing protected branches failed: %w", err)
		}

		if branch == nil {
			return &result, nil
		}

		name := branch.GetName()
		logger := c.logger.With(logfields.Branch(name))

		if !ReleaseBranchRe.MatchString(name) {
			logger.Info(
				fmt.Sprintf("branch `%s` doesn't seem to be a release branch", name),
				logEventBranchSkipped,
			)

			result.SkippedBranches = append(result.SkippedBranches, name)
			continue
		}

		sha := branch.GetCommit().GetSHA()
		if sha == "" {
			return nil, fmt.Errorf("github returned branch %q without head commit", name)
		}

		logger.Debug("found release branch", logEventCandidateFound, logfields.Commit(sha))

		result.Commits = append(result.Commits, sha)
	}
}

func (c *Collector) manualCommit(ctx context.Context, inputs *ManualInputs) (string, error) {
	if inputs.VerbatimRef {
		c.logger.Debug(
			"using ref verbatim as commit",
			logEventCandidateFound,
			logfields.Commit(inputs.Ref),
		)

		return inputs.Ref, nil
	}

	sha, err := c.clt.ResolveRef(ctx, c.owner, c.repo, inputs.Ref)
	if err != nil {
		return "", fmt.Errorf("resolving ref %q failed: %w", inputs.Ref, err)
	}

	c.logger.Debug(
		"resolved ref",
		logEventCandidateFound,
		logfields.Ref(inputs.Ref),
		logfields.Commit(sha),
	)

	return sha, nil
}
