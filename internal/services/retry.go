package services

import (
	"context"
	"errors"
	"time"

	"centesimi/internal/core"
)

const (
	readAttempts = 3
	retryBackoff = 150 * time.Millisecond
)

// withReadRetry reruns an idempotent read when the store reports itself
// unavailable. Writes never go through here; retrying a write could record
// an entry twice.
func withReadRetry[T any](ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= readAttempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, core.ErrStoreUnavailable) {
			return zero, err
		}
		lastErr = err
		if attempt < readAttempts {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}
	}
	return zero, lastErr
}
