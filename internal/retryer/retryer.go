// Package retryer runs operations repeatedly until they succeed or fail with
// an error that is not retryable.
package retryer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/ferrocene/releasetools/internal/logfields"
	"github.com/ferrocene/releasetools/internal/toolerr"
)

const (
	defBackoffInitialInterval     = 5 * time.Second
	defBackoffRandomizationFactor = 0.5
)

// Retryer executes a function repeatedly until it was successful or cancel
// condition happened.
type Retryer struct {
	logger                     *zap.Logger
	maxRetryTimeout            time.Duration
	backoffInitialInterval     time.Duration
	backoffRandomizationFactor float64
	shutdownChan               chan struct{}
}

// New returns a Retryer that gives up retrying after maxRetryTimeout.
func New(maxRetryTimeout time.Duration) *Retryer {
	return &Retryer{
		logger:                     zap.L().Named("retryer"),
		maxRetryTimeout:            maxRetryTimeout,
		backoffInitialInterval:     defBackoffInitialInterval,
		backoffRandomizationFactor: defBackoffRandomizationFactor,
		shutdownChan:               make(chan struct{}),
	}
}

// ErrStopped is returned by Run when Stop was called before the operation
// succeeded.
var ErrStopped = errors.New("retryer stopped")

// Run executes fn until it was successful, it returned an error that
// does not wrap toolerr.RetryableError, the retry timeout expired or the
// execution was aborted via the context.
// When the timeout expires or ctx is cancelled, the returned error wraps the
// context error and the last error returned by fn.
func (r *Retryer) Run(ctx context.Context, fn func(context.Context) error, logF []zap.Field) error {
	var tryCnt uint
	var lastErr error

	ctx, cancelFn := context.WithTimeout(ctx, r.maxRetryTimeout)
	defer cancelFn()

	endTime := time.Now().Add(r.maxRetryTimeout)

	retryTimer := time.NewTimer(0)
	defer retryTimer.Stop()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.backoffInitialInterval
	bo.RandomizationFactor = r.backoffRandomizationFactor
	bo.MaxElapsedTime = 0
	bo.Reset()

	for {
		tryCnt++
		logger := r.logger.With(logF...).With(zap.Uint("try_count", tryCnt))

		select {
		case <-ctx.Done():
			logger.Info(
				"giving up retrying operation",
				logfields.Event("operation_retry_aborted"),
				zap.Duration("retry_timeout", r.maxRetryTimeout),
				zap.NamedError("last_error", lastErr),
			)

			if lastErr == nil {
				return ctx.Err()
			}

			return fmt.Errorf("%w, last error: %w", ctx.Err(), lastErr)

		case <-r.shutdownChan:
			logger.Info(
				"retryer terminating, operation not executed",
				logfields.Event("operation_cancelled_retryer_terminated"),
			)

			return ErrStopped

		case <-retryTimer.C:
			err := fn(ctx)
			if err == nil {
				logger.Debug(
					"operation executed successfully",
					logfields.Event("operation_executed_successfully"),
				)

				return nil
			}

			lastErr = err
			logger = logger.With(zap.Error(err))

			var retryError *toolerr.RetryableError
			if !errors.As(err, &retryError) {
				logger.Debug(
					"operation failed, not retryable",
					logfields.Event("operation_failed"),
				)

				return err
			}

			if retryError.After.After(endTime) {
				logger.Warn(
					"operation failed, next possible retry time is after timeout expiration",
					logfields.Event("operation_failed"),
					zap.Time("earliest_allowed_retry", retryError.After),
				)

				return err
			}

			var retryIn time.Duration
			if retryError.After.IsZero() {
				retryIn = bo.NextBackOff()
			} else {
				retryIn = time.Until(retryError.After)
				if minRetryIn := bo.NextBackOff(); retryIn < minRetryIn {
					retryIn = minRetryIn
				}
			}

			retryTimer.Reset(retryIn)

			logger.Info(
				"operation failed, retry scheduled",
				logfields.Event("operation_retry_scheduled"),
				zap.Duration("retry_in", retryIn),
			)
		}
	}
}

// Stop notifies all Run() methods to terminate.
// It does not wait for their termination.
func (r *Retryer) Stop() {
	r.logger.Debug("retryer terminating", logfields.Event("retryer_terminating"))

	select {
	case <-r.shutdownChan:
		return // already closed
	default:
		close(r.shutdownChan)
	}
}
