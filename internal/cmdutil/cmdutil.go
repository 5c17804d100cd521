// Package cmdutil contains the initialization code that is shared by the
// commands: configuration loading, logger setup and termination handling.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	zaplogfmt "github.com/sykesm/zap-logfmt"
	"github.com/thecodeteam/goodbye"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ferrocene/releasetools/internal/cfg"
)

// ExitOnErr prints msg and err to stderr and terminates the process with
// exit code 1 if err is not nil.
// It is used before the logger is initialized.
func ExitOnErr(msg string, err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "ERROR:", msg+", error:", err.Error())
	os.Exit(1)
}

// PanicHandler logs a recovered panic and terminates the process via
// goodbye, registered termination handlers are run.
// It must be called via defer.
func PanicHandler() {
	if r := recover(); r != nil {
		zap.L().Info(
			"panic caught, terminating gracefully",
			zap.String("panic", fmt.Sprintf("%v", r)),
			zap.StackSkip("stacktrace", 1),
		)

		ctx, cancelFn := context.WithTimeout(context.Background(), time.Minute)
		defer cancelFn()

		goodbye.Exit(ctx, 1)
	}
}

// MustLoadCfg loads the configuration file at path, if path is empty the
// default configuration is used. The GitHub Actions environment variables
// overwrite settings from the file.
func MustLoadCfg(path string) *cfg.Config {
	var config *cfg.Config

	if path == "" {
		config = cfg.Default()
	} else {
		file, err := os.Open(path)
		ExitOnErr("could not open configuration file", err)
		defer file.Close()

		config, err = cfg.Load(file)
		ExitOnErr(fmt.Sprintf("could not load configuration file: %s", path), err)
	}

	config.ApplyEnv(os.Getenv)

	ExitOnErr("invalid configuration", config.Validate())

	return config
}

func zapEncoderConfig(config *cfg.Config) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()

	cfg.LevelKey = "loglevel"
	cfg.TimeKey = config.LogTimeKey
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder

	return cfg
}

func newLogger(config *cfg.Config, logLevel zapcore.Level, out zapcore.WriteSyncer) (*zap.Logger, error) {
	var enc zapcore.Encoder

	switch config.LogFormat {
	case "logfmt":
		enc = zaplogfmt.NewEncoder(zapEncoderConfig(config))
	case "console":
		enc = zapcore.NewConsoleEncoder(zapEncoderConfig(config))
	case "json":
		enc = zapcore.NewJSONEncoder(zapEncoderConfig(config))
	default:
		return nil, fmt.Errorf("unsupported log format: %q", config.LogFormat)
	}

	return zap.New(zapcore.NewCore(enc, out, logLevel)), nil
}

// MustInitLogger creates the logger, installs it as global zap logger and
// returns it.
// Logs are written to stderr, stdout is reserved for the output of the
// commands.
func MustInitLogger(config *cfg.Config, verbose bool) *zap.Logger {
	logger, err := initLogger(config, verbose, zapcore.Lock(os.Stderr))
	ExitOnErr("could not initialize logger", err)

	zap.ReplaceGlobals(logger)

	goodbye.Register(func(context.Context, os.Signal) {
		if err := logger.Sync(); err != nil {
			// syncing stderr fails on some platforms
			fmt.Fprintf(os.Stderr, "flushing logs failed: %s\n", err)
		}
	})

	return logger
}

func initLogger(config *cfg.Config, verbose bool, out zapcore.WriteSyncer) (*zap.Logger, error) {
	var logLevel zapcore.Level
	if verbose {
		logLevel = zapcore.DebugLevel
	} else if err := (&logLevel).Set(config.LogLevel); err != nil {
		return nil, fmt.Errorf("can not set log level to %q: %w", config.LogLevel, err)
	}

	logger, err := newLogger(config, logLevel, out)
	if err != nil {
		return nil, err
	}

	return logger.Named("main"), nil
}

// Hide returns a placeholder for non-empty secrets, for logging
// configuration values.
func Hide(in string) string {
	if in == "" {
		return in
	}

	return "**hidden**"
}

// PrintUsage returns a function for pflag.Usage that prints the usage line
// and the flag defaults.
func PrintUsage(w io.Writer, usage, description string, printDefaults func()) func() {
	return func() {
		fmt.Fprintf(w, "Usage: %s\n%s\n", usage, description)
		fmt.Fprintf(w, "\nOptions:\n")
		printDefaults()
	}
}
