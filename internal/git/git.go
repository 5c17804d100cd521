// Package git provides access to the git CLI for a repository in an explicit
// directory.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Repository is a git working tree. All commands are run with "git -C
// <dir>", the working directory of the process is never used.
type Repository struct {
	dir string
}

func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

func (r *Repository) Dir() string {
	return r.dir
}

// Run executes a git command and returns its stdout.
// Stderr is captured and included in the error on failure.
func (r *Repository) Run(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := r.Command(ctx, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// Command returns an *exec.Cmd for a git command without running it.
func (r *Repository) Command(ctx context.Context, args ...string) *exec.Cmd {
	fullArgs := append([]string{"-C", r.dir}, args...)
	return exec.CommandContext(ctx, "git", fullArgs...)
}

// CurrentBranch returns the name of the checked out branch.
// If HEAD is detached, an empty string is returned.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}

	branch := strings.TrimSpace(out)
	if branch == "HEAD" {
		return "", nil
	}

	return branch, nil
}

// RebaseOpts are the parameters of an interactive rebase.
type RebaseOpts struct {
	// Onto is the new base, it is passed to --onto if it is not empty.
	Onto     string
	Upstream string
	Branch   string
	// SequenceEditor is the command that git runs to edit the todo list.
	SequenceEditor string
	// Env contains additional environment variables in "key=value" form.
	Env []string
}

// RebaseInteractive runs "git rebase --interactive" with stdin, stdout and
// stderr connected to the ones of the current process, conflicts are
// resolved by the user.
// The exit code of git is returned, err is only set if git could not be
// executed.
func (r *Repository) RebaseInteractive(ctx context.Context, opts *RebaseOpts) (exitCode int, err error) {
	args := []string{
		"rebase",
		"--interactive",
		// the exec line added by the sequence editor has to succeed
		"--reschedule-failed-exec",
	}

	if opts.Onto != "" {
		args = append(args, "--onto", opts.Onto)
	}

	args = append(args, opts.Upstream, opts.Branch)

	cmd := r.Command(ctx, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), opts.Env...)

	if opts.SequenceEditor != "" {
		cmd.Env = append(cmd.Env, "GIT_SEQUENCE_EDITOR="+opts.SequenceEditor)
	}

	err = cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}

		return -1, fmt.Errorf("running git rebase in %s failed: %w", r.dir, err)
	}

	return 0, nil
}
