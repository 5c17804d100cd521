package release

import (
	"github.com/golang/mock/gomock"
	"github.com/google/go-github/v59/github"

	"github.com/ferrocene/releasetools/internal/metadata"
	"github.com/ferrocene/releasetools/internal/release/mocks"
)

const repoOwner = "testman"
const repo = "repo"

type testBranch struct {
	name   string
	commit string
}

// mockBranchIterator returns an iterator that returns branches in order
// followed by a nil branch.
func mockBranchIterator(ctrl *gomock.Controller, branches ...testBranch) *mocks.MockBranchIterator {
	it := mocks.NewMockBranchIterator(ctrl)

	calls := make([]*gomock.Call, 0, len(branches)+1)
	for _, b := range branches {
		calls = append(calls, it.EXPECT().Next().Return(&github.Branch{
			Name:   github.String(b.name),
			Commit: &github.RepositoryCommit{SHA: github.String(b.commit)},
		}, nil))
	}
	calls = append(calls, it.EXPECT().Next().Return(nil, nil))

	gomock.InOrder(calls...)

	return it
}

func pendingRelease(commit, channel, rustVersion string) *PendingRelease {
	return &PendingRelease{
		Commit: commit,
		Metadata: &metadata.BuildMetadata{
			RustVersion: rustVersion,
			Channel:     channel,
		},
	}
}

func commitsOf(releases []*PendingRelease) []string {
	result := make([]string, 0, len(releases))
	for _, r := range releases {
		result = append(result, r.Commit)
	}

	return result
}
