package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/thecodeteam/goodbye"
	"go.uber.org/zap"

	"github.com/ferrocene/releasetools/internal/cfg"
	"github.com/ferrocene/releasetools/internal/ciout"
	"github.com/ferrocene/releasetools/internal/cmdutil"
	"github.com/ferrocene/releasetools/internal/githubclt"
	"github.com/ferrocene/releasetools/internal/logfields"
	"github.com/ferrocene/releasetools/internal/metadata"
	"github.com/ferrocene/releasetools/internal/release"
)

const appName = "release-job-matrix"

// outputKey is the name of the step output that contains the job list.
const outputKey = "jobs"

const metricsPushTimeout = 30 * time.Second

var logger *zap.Logger

// Version is set via a ldflag on compilation
var Version = "unknown"

type arguments struct {
	Verbose     *bool
	ConfigFile  *string
	EventName   *string
	EventPath   *string
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
		EventName: pflag.String(
			"event-name",
			os.Getenv("GITHUB_EVENT_NAME"),
			"name of the triggering event (schedule or workflow_dispatch)",
		),
		EventPath: pflag.String(
			"event-path",
			os.Getenv("GITHUB_EVENT_PATH"),
			"path to the JSON payload of the triggering event",
		),
		ShowVersion: pflag.Bool(
			"version",
			false,
			"print the version and exit",
		),
	}

	pflag.Usage = cmdutil.PrintUsage(
		os.Stderr,
		appName+" [OPTION]...",
		"Calculate the release jobs for a CI run and write them as \"jobs\" step output.",
		pflag.PrintDefaults,
	)

	pflag.Parse()
}

func mustReadEvent() *release.Event {
	if *args.EventName == "" {
		cmdutil.ExitOnErr("could not determine event", errors.New("--event-name or GITHUB_EVENT_NAME must be set"))
	}

	var payload []byte
	if *args.EventPath != "" {
		var err error

		payload, err = os.ReadFile(*args.EventPath)
		cmdutil.ExitOnErr("could not read event payload", err)
	}

	ev, err := release.ParseEvent(*args.EventName, payload)
	cmdutil.ExitOnErr("could not parse event", err)

	return ev
}

func mustInitGithubClient(config *cfg.Config) *githubclt.Client {
	if config.GithubAPIURL == "" {
		return githubclt.New(config.GithubAPIToken)
	}

	clt, err := githubclt.NewEnterprise(config.GithubAPIURL, config.GithubAPIToken)
	cmdutil.ExitOnErr("could not create github client", err)

	return clt
}

func mustInitMetadataStore(ctx context.Context, config *cfg.Config) metadata.Store {
	if config.Metadata.Store == cfg.MetadataStoreDir {
		return metadata.NewDirStore(config.Metadata.Dir, config.Metadata.Prefix)
	}

	var opts []metadata.GCSOption
	if config.Metadata.Endpoint != "" {
		opts = append(opts, metadata.WithEndpoint(config.Metadata.Endpoint))
	}
	if config.Metadata.Anonymous {
		opts = append(opts, metadata.WithoutAuthentication())
	}

	store, err := metadata.NewGCSStore(ctx, config.Metadata.Bucket, config.Metadata.Prefix, opts...)
	cmdutil.ExitOnErr("could not create metadata store", err)

	goodbye.Register(func(context.Context, os.Signal) {
		if err := store.Close(); err != nil {
			logger.Debug(
				"closing metadata store failed",
				logfields.Event("metadata_store_close_failed"),
				zap.Error(err),
			)
		}
	})

	return store
}

func writeOutput(config *cfg.Config, jobs []*release.JobDescriptor) {
	err := ciout.Write(os.Stdout, outputKey, jobs)
	cmdutil.ExitOnErr("could not write jobs to stdout", err)

	if config.GithubOutput == "" {
		return
	}

	err = ciout.AppendToFile(config.GithubOutput, outputKey, jobs)
	cmdutil.ExitOnErr(fmt.Sprintf("could not write jobs to %s", config.GithubOutput), err)

	logger.Debug(
		"wrote jobs to github output file",
		logfields.Event("github_output_written"),
		zap.String("path", config.GithubOutput),
	)
}

func pushMetrics(config *cfg.Config, kind release.EventKind, stats *release.RunStats) {
	if config.MetricsPushgatewayURL == "" {
		return
	}

	ctx, cancelFn := context.WithTimeout(context.Background(), metricsPushTimeout)
	defer cancelFn()

	// metrics are optional, a failed push does not fail the run
	if err := release.PushMetrics(ctx, config.MetricsPushgatewayURL, kind, stats); err != nil {
		logger.Warn(
			"pushing metrics failed",
			logfields.Event("metrics_push_failed"),
			zap.Error(err),
		)
	}
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

	config := cmdutil.MustLoadCfg(*args.ConfigFile)
	logger = cmdutil.MustInitLogger(config, *args.Verbose)

	ev := mustReadEvent()

	owner, repo, err := config.RepositoryOwnerAndName()
	cmdutil.ExitOnErr("invalid repository", err)

	logger.Info(
		"loaded cfg",
		logfields.Event("cfg_loaded"),
		zap.String("cfg_file", *args.ConfigFile),
		logfields.TriggerKind(string(ev.Kind)),
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		zap.String("github_api_token", cmdutil.Hide(config.GithubAPIToken)),
		zap.String("metadata_store", config.Metadata.Store),
		zap.String("metadata_bucket", config.Metadata.Bucket),
		zap.String("metadata_prefix", config.Metadata.Prefix),
		zap.String("publish_command", config.PublishCommand),
	)

	ctx := context.Background()

	pipeline := release.NewPipeline(
		release.NewCollector(mustInitGithubClient(config), owner, repo),
		metadata.NewResolver(mustInitMetadataStore(ctx, config)),
		release.NewEmitter(config.PublishCommand),
	)

	jobs, stats, err := pipeline.Run(ctx, ev)
	if err != nil {
		logger.Error(
			"calculating release jobs failed",
			logfields.Event("release_jobs_calculation_failed"),
			zap.Error(err),
		)
		goodbye.Exit(ctx, 1)
	}

	writeOutput(config, jobs)
	pushMetrics(config, ev.Kind, stats)

	goodbye.Exit(ctx, 0)
}
