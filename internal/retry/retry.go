// Package retry runs an operation again with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

const maxBackoff = 8 * time.Second

// WithBackoff runs op up to maxAttempts times. The sleep between
// attempts starts at baseSleep, doubles each time up to 8s and carries
// ±25% jitter. Cancelling ctx stops the loop with ctx.Err().
func WithBackoff(ctx context.Context, maxAttempts int, baseSleep time.Duration, op func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(baseSleep, attempt)):
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, err)
}

func backoff(base time.Duration, attempt int) time.Duration {
	sleep := base * time.Duration(1<<uint(attempt))
	if sleep > maxBackoff || sleep <= 0 {
		sleep = maxBackoff
	}
	if half := int64(sleep) / 2; half > 0 {
		sleep += time.Duration(rand.Int63n(half)) - sleep/4
	}
	return sleep
}
