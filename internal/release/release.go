package release

import "github.com/ferrocene/releasetools/internal/metadata"

// PendingRelease is a commit that is a candidate for being released.
type PendingRelease struct {
	Commit   string
	Metadata *metadata.BuildMetadata
}

func (r *PendingRelease) String() string {
	return r.Metadata.Channel + "@" + r.Commit
}
