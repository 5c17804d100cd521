package release

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ferrocene/releasetools/internal/logfields"
	"github.com/ferrocene/releasetools/internal/metadata"
)

// Selector decides which pending releases are released.
type Selector struct {
	logger *zap.Logger
}

func NewSelector() *Selector {
	return &Selector{logger: zap.L().Named("selector")}
}

// FilterAutomatedChannels returns the releases of the channels that are
// released automatically: nightly, pre-rolling, beta-* and the rolling
// release with the highest rust version. Releases of other channels are
// returned as discarded.
//
// The order of the input is kept, the rolling release is appended at the end.
// If multiple rolling releases have the same rust version, the last one wins.
func (s *Selector) FilterAutomatedChannels(releases []*PendingRelease) (eligible, discarded []*PendingRelease, err error) {
	var rolling *PendingRelease
	var rollingVersion []int

	for _, r := range releases {
		channel := r.Metadata.Channel

		switch {
		case channel == metadata.ChannelNightly,
			channel == metadata.ChannelPreRolling,
			strings.HasPrefix(channel, metadata.ChannelBetaPrefix):
			eligible = append(eligible, r)

		case channel == metadata.ChannelRolling:
			version, parseErr := parseVersion(r.Metadata.RustVersion)
			if parseErr != nil {
				return nil, nil, fmt.Errorf("rust version of commit %s: %w", r.Commit, parseErr)
			}

			if rolling == nil {
				rolling, rollingVersion = r, version
				continue
			}

			loser := r
			if slices.Compare(version, rollingVersion) >= 0 {
				loser = rolling
				rolling, rollingVersion = r, version
			}

			s.logRollingNotLatest(loser)
			discarded = append(discarded, loser)

		default:
			s.logger.Info(
				fmt.Sprintf("channel %s cannot be released automatically", channel),
				logEventChannelNotAutomated,
				logfields.Commit(r.Commit),
				logfields.Channel(channel),
			)
			discarded = append(discarded, r)
		}
	}

	// there are no rolling releases when starting from a repository
	// without release branches
	if rolling != nil {
		eligible = append(eligible, rolling)
	}

	return eligible, discarded, nil
}

func (s *Selector) logRollingNotLatest(r *PendingRelease) {
	s.logger.Info(
		fmt.Sprintf("version %s is not the latest in the rolling channel", r.Metadata.RustVersion),
		logEventRollingNotLatest,
		logfields.Commit(r.Commit),
		logfields.RustVersion(r.Metadata.RustVersion),
	)
}

// DiscardDuplicateChannels removes all releases of channels that more than
// one release targets.
//
// If e.g. a new release branch was created but the change moving it away
// from the nightly channel is not merged yet, two nightly releases are
// pending. Which of them would be released depends on which release job runs
// first, the channel could go back in time. Instead no release is done for
// the channel.
func (s *Selector) DiscardDuplicateChannels(releases []*PendingRelease) (kept, discarded []*PendingRelease) {
	channelsCount := make(map[string]int, len(releases))
	for _, r := range releases {
		channelsCount[r.Metadata.Channel]++
	}

	for _, r := range releases {
		if channelsCount[r.Metadata.Channel] > 1 {
			s.logger.Info(
				fmt.Sprintf(
					"discarding %s on channel %s as multiple releases with that channel exist",
					r.Commit, r.Metadata.Channel,
				),
				logEventDuplicateDiscarded,
				logfields.Commit(r.Commit),
				logfields.Channel(r.Metadata.Channel),
				logFieldReason("duplicate_channel"),
			)

			discarded = append(discarded, r)
			continue
		}

		s.logger.Debug(
			"release is eligible",
			logEventReleaseEligible,
			logfields.Commit(r.Commit),
			logfields.Channel(r.Metadata.Channel),
		)

		kept = append(kept, r)
	}

	return kept, discarded
}

// parseVersion splits a dotted version into its numeric components.
func parseVersion(version string) ([]int, error) {
	parts := strings.Split(version, ".")
	result := make([]int, 0, len(parts))

	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("version %q is not a dotted list of numbers: %w", version, err)
		}

		result = append(result, n)
	}

	return result, nil
}
