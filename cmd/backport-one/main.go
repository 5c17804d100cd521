package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/thecodeteam/goodbye"
	"go.uber.org/zap"

	"github.com/ferrocene/releasetools/internal/backport"
	"github.com/ferrocene/releasetools/internal/cmdutil"
	"github.com/ferrocene/releasetools/internal/git"
	"github.com/ferrocene/releasetools/internal/githubclt"
	"github.com/ferrocene/releasetools/internal/logfields"
)

const appName = "backport-one"

var logger *zap.Logger

// Version is set via a ldflag on compilation
var Version = "unknown"

type arguments struct {
	Verbose     *bool
	ConfigFile  *string
	RepoDir     *string
	ShowVersion *bool
}

var args arguments

func mustParseCommandlineParams() {
	args = arguments{
		Verbose: pflag.BoolP(
			"verbose",
			"v",
			false,
			"enable verbose logging",
		),
		ConfigFile: pflag.StringP(
			"cfg-file",
			"c",
			"",
			"path to an optional configuration file",
		),
		RepoDir: pflag.String(
			"repo-dir",
			".",
			"path to the git repository",
		),
		ShowVersion: pflag.Bool(
			"version",
			false,
			"print the version and exit",
		),
	}

	pflag.Usage = cmdutil.PrintUsage(
		os.Stderr,
		appName+" [OPTION]... <pr-number>",
		"Rebase the commits of a pull request onto the current branch.",
		pflag.PrintDefaults,
	)

	pflag.Parse()
}

// runRebaseEditor is executed by git as sequence editor.
func runRebaseEditor(todoFile string) {
	err := backport.EditTodoFile(todoFile, os.Getenv)
	cmdutil.ExitOnErr("editing rebase todo list failed", err)

	os.Exit(0)
}

func mustParsePRNumber() int {
	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(1)
	}

	nr, err := strconv.Atoi(pflag.Arg(0))
	if err == nil && nr <= 0 {
		err = errors.New("must be positive")
	}
	cmdutil.ExitOnErr(fmt.Sprintf("invalid pull request number %q", pflag.Arg(0)), err)

	return nr
}

func mustExecutablePath() string {
	path, err := os.Executable()
	cmdutil.ExitOnErr("could not determine path of the executable", err)

	path, err = filepath.EvalSymlinks(path)
	cmdutil.ExitOnErr("could not resolve path of the executable", err)

	return path
}

func main() {
	// git runs: <editor> <todo-file>
	if len(os.Args) == 3 && os.Args[1] == backport.EditorSubcommand {
		runRebaseEditor(os.Args[2])
	}

	defer cmdutil.PanicHandler()

	defer goodbye.Exit(context.Background(), 1)
	goodbye.Notify(context.Background())

	mustParseCommandlineParams()

	if *args.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		os.Exit(0) // nolint:gocritic // defer functions won't run
	}

	prNumber := mustParsePRNumber()

	config := cmdutil.MustLoadCfg(*args.ConfigFile)
	logger = cmdutil.MustInitLogger(config, *args.Verbose)

	if config.GithubAPIToken == "" {
		cmdutil.ExitOnErr(
			"missing api token",
			errors.New("a GitHub API token needs to be set in the GITHUB_TOKEN environment variable"),
		)
	}

	owner, repo, err := config.RepositoryOwnerAndName()
	cmdutil.ExitOnErr("invalid repository", err)

	var clt *githubclt.Client
	if config.GithubAPIURL == "" {
		clt = githubclt.New(config.GithubAPIToken)
	} else {
		clt, err = githubclt.NewEnterprise(config.GithubAPIURL, config.GithubAPIToken)
		cmdutil.ExitOnErr("could not create github client", err)
	}

	repoDir, err := filepath.Abs(*args.RepoDir)
	cmdutil.ExitOnErr("could not determine repository directory", err)

	bp := backport.NewBackporter(clt, git.NewRepository(repoDir), owner, repo, mustExecutablePath())

	ctx := context.Background()

	exitCode, err := bp.Backport(ctx, prNumber)
	if err != nil {
		logger.Error(
			"backport failed",
			logfields.Event("backport_failed"),
			logfields.PullRequest(prNumber),
			zap.Error(err),
		)
		goodbye.Exit(ctx, 1)
	}

	if exitCode != 0 {
		logger.Info(
			"git rebase did not complete",
			logfields.Event("backport_rebase_incomplete"),
			logfields.PullRequest(prNumber),
			zap.Int("exit_code", exitCode),
		)
	}

	goodbye.Exit(ctx, exitCode)
}
