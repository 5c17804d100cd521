package release

import (
	"go.uber.org/zap"

	"github.com/ferrocene/releasetools/internal/logfields"
)

var (
	logEventBranchSkipped         = logfields.Event("branch_skipped")
	logEventCandidateFound        = logfields.Event("candidate_found")
	logEventChannelNotAutomated   = logfields.Event("channel_not_released_automatically")
	logEventRollingNotLatest      = logfields.Event("rolling_release_not_latest")
	logEventDuplicateDiscarded    = logfields.Event("duplicate_channel_release_discarded")
	logEventReleaseEligible       = logfields.Event("release_eligible")
	logEventProtectedBranchesNote = logfields.Event("only_protected_branches_considered")
)

func logFieldReason(reason string) zap.Field {
	return zap.String("reason", reason)
}
