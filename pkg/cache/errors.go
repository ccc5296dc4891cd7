package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports a remote store that could not be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// RetryableError marks a transient failure.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, was marked
// with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff schedule for remote calls: three attempts, doubling the wait
// from retryDelay.
const retryAttempts = 3

var retryDelay = 100 * time.Millisecond

// RetryWithBackoff calls fn until it succeeds, returns a non-retryable
// error, or runs out of attempts. Cancelling ctx aborts the wait between
// attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	wait := retryDelay
	for attempt := range retryAttempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == retryAttempts-1 {
			break
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
	return err
}
