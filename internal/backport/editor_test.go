package backport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const todo = `pick 1f2e3d4 Fix the frobnicator
pick 5a6b7c8 Add frobnicator test

# Rebase 0a1b2c3..5a6b7c8 onto 9d8e7f6 (2 commands)
#
# Commands:
# p, pick <commit> = use commit
`

func TestEditTodo(t *testing.T) {
	edited, err := EditTodo([]byte(todo), "42", "release/1.0")
	require.NoError(t, err)

	assert.Equal(t,
		"# backport of #42\n"+
			"pick 1f2e3d4 Fix the frobnicator\n"+
			"pick 5a6b7c8 Add frobnicator test\n"+
			"exec git checkout --quiet -B 'release/1.0'\n",
		string(edited),
	)
}

func TestEditTodoWithoutBranch(t *testing.T) {
	edited, err := EditTodo([]byte(todo), "42", "")
	require.NoError(t, err)

	assert.NotContains(t, string(edited), "exec")
	assert.Contains(t, string(edited), "pick 5a6b7c8 Add frobnicator test\n")
}

func TestEditTodoKeepsNoop(t *testing.T) {
	edited, err := EditTodo([]byte("noop\n\n# nothing to do\n"), "1", "main")
	require.NoError(t, err)

	assert.Equal(t, "# backport of #1\nnoop\nexec git checkout --quiet -B 'main'\n", string(edited))
}

func TestEditTodoRejectsUnknownCommands(t *testing.T) {
	_, err := EditTodo([]byte("pick 1f2e3d4 ok\nfrobnicate 5a6b7c8 not ok\n"), "42", "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestEditTodoQuotesBranch(t *testing.T) {
	edited, err := EditTodo([]byte("pick 1f2e3d4 x\n"), "42", "it's")
	require.NoError(t, err)

	assert.Contains(t, string(edited), `exec git checkout --quiet -B 'it'\''s'`)
}

func TestEditTodoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "git-rebase-todo")
	require.NoError(t, os.WriteFile(path, []byte(todo), 0o600))

	env := map[string]string{
		EnvPRNumber:      "7",
		EnvCurrentBranch: "main",
	}

	err := EditTodoFile(path, func(k string) string { return env[k] })
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(content), "# backport of #7\n")
	assert.Contains(t, string(content), "exec git checkout --quiet -B 'main'\n")
	assert.NotContains(t, string(content), "# Commands:")
}

func TestEditTodoFileRequiresPRNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "git-rebase-todo")
	require.NoError(t, os.WriteFile(path, []byte(todo), 0o600))

	err := EditTodoFile(path, func(string) string { return "" })
	require.Error(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, todo, string(content))
}
