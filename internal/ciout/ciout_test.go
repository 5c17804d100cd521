package ciout

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type job struct {
	Name    string `json:"name"`
	Command string `json:"command"`
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer

	err := Write(&buf, "jobs", []job{{Name: "nightly (automated)", Command: "publish aaa"}})
	require.NoError(t, err)

	assert.Equal(t, `jobs=[{"name":"nightly (automated)","command":"publish aaa"}]`+"\n", buf.String())
}

func TestWriteEmptyList(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Write(&buf, "jobs", []job{}))
	assert.Equal(t, "jobs=[]\n", buf.String())
}

func TestFormatInvalidKey(t *testing.T) {
	for _, key := range []string{"", "a=b", "a\nb"} {
		_, err := Format(key, 1)
		assert.Errorf(t, err, "key: %q", key)
	}
}

func TestAppendToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.WriteFile(path, []byte("other=1\n"), 0o644))

	require.NoError(t, AppendToFile(path, "jobs", []job{}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "other=1\njobs=[]\n", string(content))
}
