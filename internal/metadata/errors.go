package metadata

import "fmt"

// UnsupportedVersionError is returned when the metadata of a commit uses a
// schema version that is not supported.
type UnsupportedVersionError struct {
	Version int
	Commit  string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unexpected ferrocene-ci-metadata.json version `%d` (for commit `%s`)", e.Version, e.Commit)
}

// UnknownChannelError is returned when a channel field of the metadata
// contains an unrecognized value.
type UnknownChannelError struct {
	Field string
	Value string
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("unknown %s `%s`", e.Field, e.Value)
}
