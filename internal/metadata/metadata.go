// Package metadata resolves the release metadata that CI stores for every
// built commit.
//
// Two schema versions of the metadata document exist. Version 3 carries the
// release channel explicitly, for version 2 it is derived from the rust and
// ferrocene channels and the ferrocene version.
package metadata

// BuildMetadata is the normalized release metadata of a commit.
type BuildMetadata struct {
	RustVersion      string
	RustChannel      string
	FerroceneChannel string
	// FerroceneVersion is a dotted version or "rolling".
	FerroceneVersion string
	// Channel is the release channel, e.g. "nightly", "pre-rolling",
	// "rolling", "beta-24.05" or "stable-24.05".
	Channel string
}

const (
	RustChannelNightly = "nightly"
	RustChannelBeta    = "beta"
	RustChannelStable  = "stable"
)

const (
	FerroceneChannelRolling = "rolling"
	FerroceneChannelBeta    = "beta"
	FerroceneChannelStable  = "stable"
)

const (
	ChannelNightly    = "nightly"
	ChannelPreRolling = "pre-rolling"
	ChannelRolling    = "rolling"
	ChannelBetaPrefix = "beta-"
)

// FerroceneVersionRolling is the ferrocene_version value of rolling builds.
const FerroceneVersionRolling = "rolling"
