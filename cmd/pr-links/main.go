package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/thecodeteam/goodbye"
	"go.uber.org/zap"

	"github.com/ferrocene/releasetools/internal/cfg"
	"github.com/ferrocene/releasetools/internal/cmdutil"
	"github.com/ferrocene/releasetools/internal/githubclt"
	"github.com/ferrocene/releasetools/internal/logfields"
	"github.com/ferrocene/releasetools/internal/prlink"
	"github.com/ferrocene/releasetools/internal/retryer"
)

const appName = "pr-links"

var logger *zap.Logger

// Version is set via a ldflag on compilation
var Version = "unknown"

type arguments struct {
	Verbose     *bool
	ConfigFile  *string
	Repository  *string
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
		Repository: pflag.StringP(
			"repo",
			"r",
			"",
			"repository of the pull requests (<owner>/<name>), defaults to the configured repository",
		),
		ShowVersion: pflag.Bool(
			"version",
			false,
			"print the version and exit",
		),
	}

	pflag.Usage = cmdutil.PrintUsage(
		os.Stderr,
		appName+" [OPTION]... <pr-ref>...",
		"Print markdown links to pull requests that do not create backlinks.\n"+
			"A reference is a pull request number or <anything>#<number>.",
		pflag.PrintDefaults,
	)

	pflag.Parse()
}

func newGithubClient(config *cfg.Config) (*githubclt.Client, error) {
	if config.GithubAPIURL == "" {
		return githubclt.New(config.GithubAPIToken), nil
	}

	return githubclt.NewEnterprise(config.GithubAPIURL, config.GithubAPIToken)
}

func main() {
	defer cmdutil.PanicHandler()

	defer goodbye.Exit(context.Background(), 1)
	goodbye.Notify(context.Background())

	mustParseCommandlineParams()

	if *args.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		os.Exit(0) // nolint:gocritic // defer functions won't run
	}

	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	config := cmdutil.MustLoadCfg(*args.ConfigFile)
	logger = cmdutil.MustInitLogger(config, *args.Verbose)

	repository := config.Repository
	if *args.Repository != "" {
		repository = *args.Repository
	}

	clt, err := newGithubClient(config)
	cmdutil.ExitOnErr("could not create github client", err)

	rt := retryer.New(time.Duration(config.RetryTimeoutSec) * time.Second)
	goodbye.Register(func(context.Context, os.Signal) {
		rt.Stop()
	})

	linker := prlink.NewLinker(clt, rt)

	ctx := context.Background()

	links, err := linker.LinkAll(ctx, repository, pflag.Args())
	if err != nil {
		logger.Error(
			"generating pull request links failed",
			logfields.Event("pr_links_failed"),
			zap.String("repository", repository),
			zap.Error(err),
		)
		goodbye.Exit(ctx, 1)
	}

	for _, link := range links {
		fmt.Println(link)
	}

	goodbye.Exit(ctx, 0)
}
