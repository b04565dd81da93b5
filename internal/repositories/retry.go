package repositories

import (
	"context"
	"time"

	"microblog/internal/apperr"
	"microblog/internal/metrics"
)

// withRetry runs fn with a per-attempt timeout, retrying transient store
// failures with exponential backoff. fn is expected to classify its own
// errors: NotFound/Unauthorized/Validation are returned immediately, only
// apperr.KindStore is retried.
func withRetry(ctx context.Context, opts Options, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			metrics.IncStoreRetry(op)
			delay := opts.RetryBaseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return apperr.Store(ctx.Err(), "%s canceled while backing off", op)
			}
		}
		attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		err = fn(attemptCtx)
		cancel()
		if err == nil || !apperr.Retryable(err) {
			return err
		}
	}
	metrics.IncStoreFailure(op)
	return err
}
