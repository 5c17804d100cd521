package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestFilterAutomatedChannels(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	releases := []*PendingRelease{
		pendingRelease("rolling-old", "rolling", "1.74.0"),
		pendingRelease("nightly", "nightly", "1.82.0"),
		pendingRelease("stable", "stable-24.05", "1.76.0"),
		pendingRelease("pre-rolling", "pre-rolling", "1.81.0"),
		pendingRelease("beta", "beta-24.08", "1.79.0"),
		pendingRelease("rolling-new", "rolling", "1.80.0"),
	}

	eligible, discarded, err := NewSelector().FilterAutomatedChannels(releases)
	require.NoError(t, err)

	assert.Equal(t, []string{"nightly", "pre-rolling", "beta", "rolling-new"}, commitsOf(eligible))
	assert.ElementsMatch(t, []string{"rolling-old", "stable"}, commitsOf(discarded))
}

func TestFilterAutomatedChannelsComparesVersionsNumerically(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	releases := []*PendingRelease{
		pendingRelease("a", "rolling", "1.74.0"),
		pendingRelease("b", "rolling", "1.75.10"),
		pendingRelease("c", "rolling", "1.75.2"),
	}

	eligible, discarded, err := NewSelector().FilterAutomatedChannels(releases)
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, commitsOf(eligible))
	assert.ElementsMatch(t, []string{"a", "c"}, commitsOf(discarded))
}

func TestFilterAutomatedChannelsSelectionIsOrderIndependent(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	orders := [][]string{
		{"1.74.0", "1.75.2", "1.75.10"},
		{"1.75.10", "1.75.2", "1.74.0"},
		{"1.75.2", "1.75.10", "1.74.0"},
	}

	for _, versions := range orders {
		var releases []*PendingRelease
		for _, v := range versions {
			releases = append(releases, pendingRelease(v, "rolling", v))
		}

		eligible, _, err := NewSelector().FilterAutomatedChannels(releases)
		require.NoError(t, err)
		assert.Equal(t, []string{"1.75.10"}, commitsOf(eligible), "input order: %v", versions)
	}
}

func TestFilterAutomatedChannelsTieLastWins(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	releases := []*PendingRelease{
		pendingRelease("first", "rolling", "1.75.0"),
		pendingRelease("second", "rolling", "1.75.0"),
	}

	eligible, discarded, err := NewSelector().FilterAutomatedChannels(releases)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, commitsOf(eligible))
	assert.Equal(t, []string{"first"}, commitsOf(discarded))
}

func TestFilterAutomatedChannelsShorterVersionIsLower(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	releases := []*PendingRelease{
		pendingRelease("long", "rolling", "1.75.0"),
		pendingRelease("short", "rolling", "1.75"),
	}

	eligible, _, err := NewSelector().FilterAutomatedChannels(releases)
	require.NoError(t, err)
	assert.Equal(t, []string{"long"}, commitsOf(eligible))
}

func TestFilterAutomatedChannelsWithoutRolling(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	eligible, discarded, err := NewSelector().FilterAutomatedChannels([]*PendingRelease{
		pendingRelease("nightly", "nightly", "1.82.0"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"nightly"}, commitsOf(eligible))
	assert.Empty(t, discarded)

	eligible, discarded, err = NewSelector().FilterAutomatedChannels(nil)
	require.NoError(t, err)
	assert.Empty(t, eligible)
	assert.Empty(t, discarded)
}

func TestFilterAutomatedChannelsInvalidRollingVersion(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	_, _, err := NewSelector().FilterAutomatedChannels([]*PendingRelease{
		pendingRelease("abc", "rolling", "1.75.0-beta"),
	})
	assert.ErrorContains(t, err, "abc")
}

func TestDiscardDuplicateChannels(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	releases := []*PendingRelease{
		pendingRelease("nightly-1", "nightly", "1.82.0"),
		pendingRelease("beta", "beta-24.08", "1.79.0"),
		pendingRelease("nightly-2", "nightly", "1.82.0"),
		pendingRelease("rolling", "rolling", "1.80.0"),
	}

	kept, discarded := NewSelector().DiscardDuplicateChannels(releases)

	assert.Equal(t, []string{"beta", "rolling"}, commitsOf(kept))
	assert.Equal(t, []string{"nightly-1", "nightly-2"}, commitsOf(discarded))
}

func TestDiscardDuplicateChannelsKeepsUniqueChannels(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	releases := []*PendingRelease{
		pendingRelease("a", "stable-24.05", "1.76.0"),
	}

	kept, discarded := NewSelector().DiscardDuplicateChannels(releases)
	assert.Equal(t, releases, kept)
	assert.Empty(t, discarded)
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("1.75.10")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 75, 10}, v)

	for _, invalid := range []string{"", "1..0", "1.x.0", "v1.75.0"} {
		_, err := parseVersion(invalid)
		assert.Errorf(t, err, "version: %q", invalid)
	}
}
