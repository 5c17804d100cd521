package release

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ferrocene/releasetools/internal/release/mocks"
)

func TestCollectScheduledOnlyReleaseBranches(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	ctrl := gomock.NewController(t)
	clt := mocks.NewMockForgeClient(ctrl)

	clt.EXPECT().
		ListProtectedBranches(gomock.Any(), gomock.Eq(repoOwner), gomock.Eq(repo)).
		Return(mockBranchIterator(ctrl,
			testBranch{name: "main", commit: "aaa"},
			testBranch{name: "release/1.80", commit: "bbb"},
			testBranch{name: "feature/foo", commit: "ccc"},
		))
	clt.EXPECT().ResolveRef(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	c := NewCollector(clt, repoOwner, repo)

	candidates, err := c.Collect(context.Background(), NewScheduledEvent())
	require.NoError(t, err)

	assert.Equal(t, []string{"aaa", "bbb"}, candidates.Commits)
	assert.Equal(t, []string{"feature/foo"}, candidates.SkippedBranches)
}

func TestReleaseBranchRe(t *testing.T) {
	for _, name := range []string{"main", "release/1.0", "release/1.80", "release/1.123"} {
		assert.Truef(t, ReleaseBranchRe.MatchString(name), "branch: %s", name)
	}

	for _, name := range []string{"", "mainline", "xmain", "release/2.0", "release/1.", "release/1.80-fix", "release/1.x", "releases/1.80"} {
		assert.Falsef(t, ReleaseBranchRe.MatchString(name), "branch: %s", name)
	}
}

func TestCollectScheduledListingFails(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	ctrl := gomock.NewController(t)
	clt := mocks.NewMockForgeClient(ctrl)
	listErr := errors.New("github is down")

	it := mocks.NewMockBranchIterator(ctrl)
	gomock.InOrder(
		it.EXPECT().Next().Return(nil, listErr),
	)

	clt.EXPECT().ListProtectedBranches(gomock.Any(), gomock.Any(), gomock.Any()).Return(it)

	candidates, err := NewCollector(clt, repoOwner, repo).Collect(context.Background(), NewScheduledEvent())
	assert.ErrorIs(t, err, listErr)
	assert.Nil(t, candidates)
}

func TestCollectManualVerbatimRef(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	ctrl := gomock.NewController(t)
	clt := mocks.NewMockForgeClient(ctrl)
	clt.EXPECT().ResolveRef(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	clt.EXPECT().ListProtectedBranches(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	ev := NewManualEvent(&ManualInputs{Ref: "abc123", VerbatimRef: true, Env: "prod"})

	candidates, err := NewCollector(clt, repoOwner, repo).Collect(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123"}, candidates.Commits)
	assert.Empty(t, candidates.SkippedBranches)
}

func TestCollectManualResolvesRef(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	ctrl := gomock.NewController(t)
	clt := mocks.NewMockForgeClient(ctrl)
	clt.EXPECT().
		ResolveRef(gomock.Any(), gomock.Eq(repoOwner), gomock.Eq(repo), gomock.Eq("release/1.80")).
		Return("def456", nil).
		Times(1)

	ev := NewManualEvent(&ManualInputs{Ref: "release/1.80", Env: "dev"})

	candidates, err := NewCollector(clt, repoOwner, repo).Collect(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, []string{"def456"}, candidates.Commits)
}

func TestCollectManualResolveFails(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	ctrl := gomock.NewController(t)
	clt := mocks.NewMockForgeClient(ctrl)
	resolveErr := errors.New("not found")
	clt.EXPECT().ResolveRef(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", resolveErr)

	ev := NewManualEvent(&ManualInputs{Ref: "nope", Env: "dev"})

	_, err := NewCollector(clt, repoOwner, repo).Collect(context.Background(), ev)
	assert.ErrorIs(t, err, resolveErr)
}

func TestCollectUnsupportedKind(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	clt := mocks.NewMockForgeClient(gomock.NewController(t))

	_, err := NewCollector(clt, repoOwner, repo).Collect(context.Background(), &Event{Kind: "push"})

	var kindErr *UnsupportedTriggerKindError
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, "push", kindErr.Kind)
}
