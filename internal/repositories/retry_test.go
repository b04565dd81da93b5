package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/apperr"
)

func fastOptions() Options {
	return Options{Timeout: time.Second, RetryAttempts: 3, RetryBaseDelay: time.Millisecond}
}

func TestWithRetryRetriesTransientFailures(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastOptions(), "test.op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return apperr.Store(errors.New("connection reset"), "flaky op")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastOptions(), "test.op", func(ctx context.Context) error {
		calls++
		return apperr.Store(errors.New("still down"), "flaky op")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, apperr.KindStore, apperr.KindOf(err))
}

func TestWithRetryDoesNotRetryNotFound(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastOptions(), "test.op", func(ctx context.Context) error {
		calls++
		return apperr.NotFound("user not found with username: ghost")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestWithRetryStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, Options{Timeout: time.Second, RetryAttempts: 5, RetryBaseDelay: time.Minute}, "test.op", func(ctx context.Context) error {
		calls++
		cancel()
		return apperr.Store(errors.New("down"), "flaky op")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryBoundsEachAttempt(t *testing.T) {
	err := withRetry(context.Background(), Options{Timeout: 5 * time.Millisecond, RetryAttempts: 1, RetryBaseDelay: time.Millisecond}, "test.op", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return apperr.Store(ctx.Err(), "timed out")
		case <-time.After(time.Second):
			return nil
		}
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindStore, apperr.KindOf(err))
}
