package fn

import (
	"context"
	"time"
)

// RetryOpts configures retry behavior. The wait doubles after each failed
// attempt and never exceeds MaxWait.
type RetryOpts struct {
	Attempts int
	BaseWait time.Duration
	MaxWait  time.Duration
}

// DefaultRetry matches the pipeline's HTTP defaults.
var DefaultRetry = RetryOpts{
	Attempts: 3,
	BaseWait: time.Second,
	MaxWait:  10 * time.Second,
}

// Retry runs f up to opts.Attempts times with exponential backoff, stopping
// early on success or context cancellation.
func Retry[T any](ctx context.Context, opts RetryOpts, f func(context.Context) Result[T]) Result[T] {
	var result Result[T]
	wait := opts.BaseWait

	for attempt := 0; attempt < opts.Attempts; attempt++ {
		result = f(ctx)
		if result.IsOk() {
			return result
		}
		if attempt == opts.Attempts-1 {
			break
		}

		sleep := wait
		if sleep > opts.MaxWait {
			sleep = opts.MaxWait
		}

		select {
		case <-ctx.Done():
			return Err[T](ctx.Err())
		case <-time.After(sleep):
		}

		wait *= 2
		if wait > opts.MaxWait {
			wait = opts.MaxWait
		}
	}
	return result
}
