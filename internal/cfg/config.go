package cfg

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml"
)

const (
	DefRepository      = "ferrocene/ferrocene"
	DefMetadataBucket  = "ferrocene-ci-artifacts"
	DefMetadataPrefix  = "ferrocene/dist"
	DefPublishCommand  = "ferrocene/ci/scripts/publish-release.sh"
	DefLogFormat       = "logfmt"
	DefLogTimeKey      = "time_iso8601"
	DefLogLevel        = "info"
	DefRetryTimeoutSec = 300
)

const (
	MetadataStoreGCS = "gcs"
	MetadataStoreDir = "dir"
)

type Config struct {
	GithubAPIToken        string   `toml:"github_api_token"`
	GithubAPIURL          string   `toml:"github_api_url"`
	Repository            string   `toml:"github_repository"`
	GithubOutput          string   `toml:"github_output"`
	LogFormat             string   `toml:"log_format"`
	LogTimeKey            string   `toml:"log_time_key"`
	LogLevel              string   `toml:"log_level"`
	PublishCommand        string   `toml:"publish_command"`
	MetricsPushgatewayURL string   `toml:"metrics_pushgateway_url"`
	RetryTimeoutSec       int      `toml:"retry_timeout_sec"`
	Metadata              Metadata `toml:"metadata"`
}

// Metadata configures where the per-commit build metadata is read from.
type Metadata struct {
	// Store is either "gcs" or "dir".
	Store     string `toml:"store"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	Endpoint  string `toml:"endpoint"`
	Anonymous bool   `toml:"anonymous"`
	Dir       string `toml:"dir"`
}

func Default() *Config {
	return &Config{
		Repository:      DefRepository,
		LogFormat:       DefLogFormat,
		LogTimeKey:      DefLogTimeKey,
		LogLevel:        DefLogLevel,
		PublishCommand:  DefPublishCommand,
		RetryTimeoutSec: DefRetryTimeoutSec,
		Metadata: Metadata{
			Store:  MetadataStoreGCS,
			Bucket: DefMetadataBucket,
			Prefix: DefMetadataPrefix,
		},
	}
}

// Load reads a TOML configuration. Settings missing in the file keep their
// default values.
func Load(reader io.Reader) (*Config, error) {
	var result Config

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	result.setDefaults()

	return &result, nil
}

func (r *Config) setDefaults() {
	def := Default()

	setIfEmpty(&r.Repository, def.Repository)
	setIfEmpty(&r.LogFormat, def.LogFormat)
	setIfEmpty(&r.LogTimeKey, def.LogTimeKey)
	setIfEmpty(&r.LogLevel, def.LogLevel)
	setIfEmpty(&r.PublishCommand, def.PublishCommand)
	setIfEmpty(&r.Metadata.Store, def.Metadata.Store)
	setIfEmpty(&r.Metadata.Prefix, def.Metadata.Prefix)

	if r.Metadata.Store == MetadataStoreGCS {
		setIfEmpty(&r.Metadata.Bucket, def.Metadata.Bucket)
	}

	if r.RetryTimeoutSec == 0 {
		r.RetryTimeoutSec = def.RetryTimeoutSec
	}
}

func setIfEmpty(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// ApplyEnv overwrites settings with the values of the environment variables
// that GitHub Actions provides. Empty variables are ignored.
func (r *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("GITHUB_TOKEN"); v != "" {
		r.GithubAPIToken = v
	}

	if v := getenv("GITHUB_REPOSITORY"); v != "" {
		r.Repository = v
	}

	if v := getenv("GITHUB_OUTPUT"); v != "" {
		r.GithubOutput = v
	}
}

// RepositoryOwnerAndName splits the Repository setting into owner and
// repository name.
func (r *Config) RepositoryOwnerAndName() (owner, repo string, err error) {
	owner, repo, found := strings.Cut(r.Repository, "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("repository %q is not in the format <owner>/<name>", r.Repository)
	}

	return owner, repo, nil
}

func (r *Config) Validate() error {
	if _, _, err := r.RepositoryOwnerAndName(); err != nil {
		return err
	}

	switch r.Metadata.Store {
	case MetadataStoreGCS:
		if r.Metadata.Bucket == "" {
			return errors.New("metadata.bucket must be set when the gcs store is used")
		}
	case MetadataStoreDir:
		if r.Metadata.Dir == "" {
			return errors.New("metadata.dir must be set when the dir store is used")
		}
	default:
		return fmt.Errorf("unsupported metadata.store %q, expected %q or %q", r.Metadata.Store, MetadataStoreGCS, MetadataStoreDir)
	}

	if r.RetryTimeoutSec < 0 {
		return errors.New("retry_timeout_sec must not be negative")
	}

	return nil
}

func (r *Config) Marshal(writer io.Writer) error {
	return toml.NewEncoder(writer).Encode(r)
}
