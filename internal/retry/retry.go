// Package retry provides a small retry-policy abstraction for upstream
// calls. Policies are parameterized per call site: the bulk fetch retries
// with linearly increasing backoff, attachment downloads with a fixed delay.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Transient is implemented by errors that classify whether retrying can help.
type Transient interface {
	Transient() bool
}

// IsTransient reports whether err is worth retrying. Errors that do not
// classify themselves are treated as transport failures, which are.
func IsTransient(err error) bool {
	var t Transient
	if errors.As(err, &t) {
		return t.Transient()
	}
	return err != nil
}

// Backoff computes the sleep before retry attempt n (1-based, i.e. the delay
// after the n-th failure).
type Backoff func(attempt int) time.Duration

// Linear returns a backoff of delay * attempt.
func Linear(delay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return delay * time.Duration(attempt)
	}
}

// Fixed returns a constant backoff.
func Fixed(delay time.Duration) Backoff {
	return func(int) time.Duration {
		return delay
	}
}

// Policy bounds how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Backoff computes the sleep between attempts.
	Backoff Backoff
}

// Do runs op until it succeeds, the policy is exhausted, or ctx is done.
// Errors that classify themselves as non-transient stop the loop immediately
// and are returned as-is. Backoff sleeps block the calling flow; the
// pipeline's throughput needs do not justify scheduling retries
// independently. The last error is returned wrapped with the attempt count.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff(attempt)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
