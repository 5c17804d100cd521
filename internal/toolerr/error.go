// Package toolerr contains error types shared by the release tooling packages.
package toolerr

import (
	"fmt"
	"time"
)

type RetryableError struct {
	// Err is the wrapped original error
	Err error
	// After is the earliest point in time that the operation can be retried
	After time.Time
}

func NewRetryableError(originalErr error, retryAfter time.Time) *RetryableError {
	return &RetryableError{
		Err:   originalErr,
		After: retryAfter,
	}
}

func NewRetryableAnytimeError(originalErr error) *RetryableError {
	return &RetryableError{
		Err: originalErr,
	}
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

func (e *RetryableError) Error() string {
	if e.After.IsZero() {
		return fmt.Sprintf("retryable error: %s", e.Err)
	}

	return fmt.Sprintf("retryable error (after %s): %s", e.After, e.Err)
}

// RemoteRequestFailedError is returned when a request to the forge API or
// the metadata store did not succeed.
// StatusCode is 0 when no HTTP response was received.
type RemoteRequestFailedError struct {
	Service    string
	Operation  string
	StatusCode int
	Err        error
}

func NewRemoteRequestFailedError(service, operation string, statusCode int, err error) *RemoteRequestFailedError {
	return &RemoteRequestFailedError{
		Service:    service,
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}

func (e *RemoteRequestFailedError) Unwrap() error {
	return e.Err
}

func (e *RemoteRequestFailedError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s failed: %s", e.Service, e.Operation, e.Err)
	}

	return fmt.Sprintf("%s: %s failed with status %d: %s", e.Service, e.Operation, e.StatusCode, e.Err)
}
