// Package timeout bounds persistence calls with a deadline and converts an
// expired deadline into a retryable ErrUnavailable.
package timeout

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned when a backing store did not answer within its deadline.
// Callers may retry the operation.
var ErrUnavailable = errors.New("service temporarily unavailable")

// Call runs fn with a context that expires after d. A zero or negative d leaves ctx untouched.
func Call[T any](ctx context.Context, d time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	v, err := fn(ctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return v, err
}

// Do is Call for functions that only return an error.
func Do(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	_, err := Call(ctx, d, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
