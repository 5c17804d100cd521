package toolerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryableErrorUnwrap(t *testing.T) {
	origErr := errors.New("boom")
	err := fmt.Errorf("fetching branches: %w", NewRetryableAnytimeError(origErr))

	var retryErr *RetryableError
	assert.ErrorAs(t, err, &retryErr)
	assert.True(t, retryErr.After.IsZero())
	assert.ErrorIs(t, err, origErr)
}

func TestRetryableErrorStringContainsRetryTime(t *testing.T) {
	after := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	err := NewRetryableError(errors.New("rate limited"), after)

	assert.Contains(t, err.Error(), after.String())
	assert.Contains(t, err.Error(), "rate limited")
}

func TestRemoteRequestFailedError(t *testing.T) {
	origErr := errors.New("not found")
	err := NewRemoteRequestFailedError("github", "resolving ref main", http.StatusNotFound, origErr)

	assert.Equal(t, "github: resolving ref main failed with status 404: not found", err.Error())
	assert.ErrorIs(t, err, origErr)

	err = NewRemoteRequestFailedError("gcs", "reading object", 0, origErr)
	assert.Equal(t, "gcs: reading object failed: not found", err.Error())
}
