package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ferrocene/releasetools/internal/logfields"
)

const loggerName = "metadata_resolver"

type rawMetadata struct {
	MetadataVersion  int    `json:"metadata_version"`
	RustVersion      string `json:"rust_version"`
	RustChannel      string `json:"rust_channel"`
	FerroceneChannel string `json:"ferrocene_channel"`
	FerroceneVersion string `json:"ferrocene_version"`
	Channel          string `json:"channel"`
}

// Resolver fetches the metadata of commits from a Store and normalizes it.
// Results are not cached, every Resolve call reads from the store.
type Resolver struct {
	store  Store
	logger *zap.Logger
}

func NewResolver(store Store) *Resolver {
	return &Resolver{
		store:  store,
		logger: zap.L().Named(loggerName),
	}
}

// Resolve returns the BuildMetadata of commit.
// If the document has an unsupported schema version an
// *UnsupportedVersionError is returned, if it contains an unknown channel
// value an *UnknownChannelError.
func (r *Resolver) Resolve(ctx context.Context, commit string) (*BuildMetadata, error) {
	data, err := r.store.Get(ctx, commit)
	if err != nil {
		return nil, err
	}

	var raw rawMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing metadata of commit %s failed: %w", commit, err)
	}

	var md *BuildMetadata

	switch raw.MetadataVersion {
	case 2:
		md, err = fromV2(&raw)
	case 3:
		md, err = fromV3(&raw)
	default:
		return nil, &UnsupportedVersionError{Version: raw.MetadataVersion, Commit: commit}
	}
	if err != nil {
		return nil, fmt.Errorf("metadata of commit %s: %w", commit, err)
	}

	r.logger.Debug(
		"resolved build metadata",
		logfields.Event("metadata_resolved"),
		logfields.Commit(commit),
		logfields.MetadataVersion(raw.MetadataVersion),
		logfields.Channel(md.Channel),
		logfields.RustVersion(md.RustVersion),
	)

	return md, nil
}

func fromV2(raw *rawMetadata) (*BuildMetadata, error) {
	if err := requireFields(raw); err != nil {
		return nil, err
	}

	var channel string

	switch raw.FerroceneChannel {
	case FerroceneChannelRolling:
		var err error
		channel, err = rollingChannel(raw.RustChannel)
		if err != nil {
			return nil, err
		}
	case FerroceneChannelBeta:
		channel = ChannelBetaPrefix + majorVersion(raw.FerroceneVersion)
	case FerroceneChannelStable:
		channel = "stable-" + majorVersion(raw.FerroceneVersion)
	default:
		return nil, &UnknownChannelError{Field: "ferrocene channel", Value: raw.FerroceneChannel}
	}

	return &BuildMetadata{
		RustVersion:      raw.RustVersion,
		RustChannel:      raw.RustChannel,
		FerroceneChannel: raw.FerroceneChannel,
		FerroceneVersion: raw.FerroceneVersion,
		Channel:          channel,
	}, nil
}

func fromV3(raw *rawMetadata) (*BuildMetadata, error) {
	if err := requireFields(raw); err != nil {
		return nil, err
	}

	if raw.Channel == "" {
		return nil, errors.New("channel field is missing or empty")
	}

	return &BuildMetadata{
		RustVersion:      raw.RustVersion,
		RustChannel:      raw.RustChannel,
		FerroceneChannel: raw.FerroceneChannel,
		FerroceneVersion: raw.FerroceneVersion,
		Channel:          raw.Channel,
	}, nil
}

func requireFields(raw *rawMetadata) error {
	var missing []string

	if raw.RustVersion == "" {
		missing = append(missing, "rust_version")
	}
	if raw.RustChannel == "" {
		missing = append(missing, "rust_channel")
	}
	if raw.FerroceneChannel == "" {
		missing = append(missing, "ferrocene_channel")
	}
	if raw.FerroceneVersion == "" {
		missing = append(missing, "ferrocene_version")
	}

	if len(missing) > 0 {
		return fmt.Errorf("fields are missing or empty: %s", strings.Join(missing, ", "))
	}

	return nil
}

func rollingChannel(rustChannel string) (string, error) {
	switch rustChannel {
	case RustChannelNightly:
		return ChannelNightly, nil
	case RustChannelBeta:
		return ChannelPreRolling, nil
	case RustChannelStable:
		return ChannelRolling, nil
	default:
		return "", &UnknownChannelError{Field: "rust channel", Value: rustChannel}
	}
}

// majorVersion returns the first two components of a ferrocene version.
func majorVersion(ferroceneVersion string) string {
	if ferroceneVersion == FerroceneVersionRolling {
		return ferroceneVersion
	}

	components := strings.Split(ferroceneVersion, ".")
	if len(components) > 2 {
		components = components[:2]
	}

	return strings.Join(components, ".")
}
