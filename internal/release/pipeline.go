package release

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ferrocene/releasetools/internal/logfields"
	"github.com/ferrocene/releasetools/internal/metadata"
)

// MetadataResolver returns the build metadata of a commit.
type MetadataResolver interface {
	Resolve(ctx context.Context, commit string) (*metadata.BuildMetadata, error)
}

// RunStats summarizes a pipeline run.
type RunStats struct {
	Candidates          int
	SkippedBranches     int
	NotAutomated        int
	DiscardedDuplicates int
	Jobs                int
}

// Pipeline calculates the release jobs for an event.
type Pipeline struct {
	collector *Collector
	resolver  MetadataResolver
	selector  *Selector
	emitter   *Emitter
	logger    *zap.Logger
}

func NewPipeline(collector *Collector, resolver MetadataResolver, emitter *Emitter) *Pipeline {
	return &Pipeline{
		collector: collector,
		resolver:  resolver,
		selector:  NewSelector(),
		emitter:   emitter,
		logger:    zap.L().Named("pipeline"),
	}
}

// Run returns the release jobs for ev.
// Either the complete job list or an error is returned, a run never results
// in a partial list.
func (p *Pipeline) Run(ctx context.Context, ev *Event) ([]*JobDescriptor, *RunStats, error) {
	var stats RunStats

	logger := p.logger.With(logfields.TriggerKind(string(ev.Kind)))

	candidates, err := p.collector.Collect(ctx, ev)
	if err != nil {
		return nil, nil, err
	}

	stats.Candidates = len(candidates.Commits)
	stats.SkippedBranches = len(candidates.SkippedBranches)

	releases := make([]*PendingRelease, 0, len(candidates.Commits))
	for _, commit := range candidates.Commits {
		md, err := p.resolver.Resolve(ctx, commit)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving metadata of commit %s failed: %w", commit, err)
		}

		releases = append(releases, &PendingRelease{Commit: commit, Metadata: md})
	}

	if ev.Kind == EventKindScheduled {
		var notAutomated []*PendingRelease

		releases, notAutomated, err = p.selector.FilterAutomatedChannels(releases)
		if err != nil {
			return nil, nil, err
		}

		stats.NotAutomated = len(notAutomated)
	}

	releases, duplicates := p.selector.DiscardDuplicateChannels(releases)
	stats.DiscardedDuplicates = len(duplicates)

	jobs, err := p.emitter.Emit(ev, releases)
	if err != nil {
		return nil, nil, err
	}

	stats.Jobs = len(jobs)

	logger.Info(
		"calculated release jobs",
		logfields.Event("release_jobs_calculated"),
		zap.Int("candidates", stats.Candidates),
		zap.Int("skipped_branches", stats.SkippedBranches),
		zap.Int("not_automated", stats.NotAutomated),
		zap.Int("discarded_duplicates", stats.DiscardedDuplicates),
		zap.Int("jobs", stats.Jobs),
	)

	return jobs, &stats, nil
}
