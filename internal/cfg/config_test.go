package cfg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCfg = `
github_repository = "octo/cat"
log_format = "console"
publish_command = "publish-release"

[metadata]
store = "dir"
dir = "/tmp/metadata"
`

func TestLoadKeepsDefaults(t *testing.T) {
	config, err := Load(strings.NewReader(testCfg))
	require.NoError(t, err)

	assert.Equal(t, "octo/cat", config.Repository)
	assert.Equal(t, "console", config.LogFormat)
	assert.Equal(t, "publish-release", config.PublishCommand)
	assert.Equal(t, MetadataStoreDir, config.Metadata.Store)
	assert.Equal(t, "/tmp/metadata", config.Metadata.Dir)

	assert.Equal(t, DefLogLevel, config.LogLevel)
	assert.Equal(t, DefMetadataPrefix, config.Metadata.Prefix)
	assert.NoError(t, config.Validate())
}

func TestLoadInvalidToml(t *testing.T) {
	_, err := Load(strings.NewReader("github_repository = "))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GITHUB_TOKEN":      "secret",
		"GITHUB_REPOSITORY": "octo/dog",
	}

	config := Default()
	config.GithubOutput = "/out"
	config.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "secret", config.GithubAPIToken)
	assert.Equal(t, "octo/dog", config.Repository)
	assert.Equal(t, "/out", config.GithubOutput)
}

func TestRepositoryOwnerAndName(t *testing.T) {
	config := Default()

	owner, repo, err := config.RepositoryOwnerAndName()
	require.NoError(t, err)
	assert.Equal(t, "ferrocene", owner)
	assert.Equal(t, "ferrocene", repo)

	for _, invalid := range []string{"", "ferrocene", "/x", "x/", "a/b/c"} {
		config.Repository = invalid
		_, _, err := config.RepositoryOwnerAndName()
		assert.Errorf(t, err, "repository: %q", invalid)
	}
}

func TestValidate(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())

	config.Metadata.Store = "s3"
	assert.Error(t, config.Validate())

	config.Metadata.Store = MetadataStoreDir
	assert.Error(t, config.Validate())

	config = Default()
	config.Metadata.Bucket = ""
	assert.Error(t, config.Validate())
}

func TestMarshalRoundtripsRepository(t *testing.T) {
	var buf bytes.Buffer

	config := Default()
	config.Repository = "octo/cat"
	require.NoError(t, config.Marshal(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, "octo/cat", loaded.Repository)
}
