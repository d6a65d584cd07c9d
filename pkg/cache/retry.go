package cache

import (
	"context"
	"errors"
	"net"
	"time"
)

// Connection retry settings for [NewRedisCache].
const (
	connectAttempts = 3
	connectDelay    = 100 * time.Millisecond
)

// retry calls fn until it succeeds, fails with an error that is not
// transient, or runs out of attempts. The delay doubles after each
// failure. Returns the last error, or ctx.Err() if ctx ends while waiting.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if !transient(lastErr) {
			return lastErr
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// transient reports whether err is a network failure worth retrying,
// such as a refused connection while the server starts up.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne)
}
