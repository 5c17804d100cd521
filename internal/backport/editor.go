package backport

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

var todoCommands = map[string]struct{}{
	"pick": {}, "p": {},
	"reword": {}, "r": {},
	"edit": {}, "e": {},
	"squash": {}, "s": {},
	"fixup": {}, "f": {},
	"exec": {}, "x": {},
	"break": {}, "b": {},
	"drop": {}, "d": {},
	"label": {}, "l": {},
	"reset": {}, "t": {},
	"merge": {}, "m": {},
	"update-ref": {}, "u": {},
	"noop": {},
}

// EditTodo rewrites a rebase todo list for a backport.
// Comments and empty lines are removed. If branch is not empty, an exec
// command is appended that points branch to the rebased commits and checks
// it out, otherwise the rebase ends with a detached HEAD.
func EditTodo(todo []byte, prNumber, branch string) ([]byte, error) {
	var result bytes.Buffer

	fmt.Fprintf(&result, "# backport of #%s\n", prNumber)

	sc := bufio.NewScanner(bytes.NewReader(todo))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cmd, _, _ := strings.Cut(line, " ")
		if _, exists := todoCommands[cmd]; !exists {
			return nil, fmt.Errorf("unsupported command in rebase todo list: %q", line)
		}

		result.WriteString(line)
		result.WriteByte('\n')
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	if branch != "" {
		fmt.Fprintf(&result, "exec git checkout --quiet -B %s\n", shellQuote(branch))
	}

	return result.Bytes(), nil
}

// EditTodoFile rewrites the todo list file at path in place, the PR number
// and branch are read from the environment that Backport sets.
func EditTodoFile(path string, getenv func(string) string) error {
	prNumber := getenv(EnvPRNumber)
	if prNumber == "" {
		return fmt.Errorf("environment variable %s is not set, the editor must be run by git rebase", EnvPRNumber)
	}

	todo, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	edited, err := EditTodo(todo, prNumber, getenv(EnvCurrentBranch))
	if err != nil {
		return err
	}

	return os.WriteFile(path, edited, 0o644)
}
