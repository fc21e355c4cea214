package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithBackoff(t *testing.T) {
	t.Run("stops on first success", func(t *testing.T) {
		calls := 0
		err := WithBackoff(context.Background(), 5, time.Millisecond, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error after max attempts", func(t *testing.T) {
		calls := 0
		err := WithBackoff(context.Background(), 2, time.Millisecond, func(context.Context) error {
			calls++
			return errors.New("unreachable")
		})
		assert.ErrorContains(t, err, "unreachable")
		assert.Equal(t, 2, calls)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := WithBackoff(ctx, 10, time.Hour, func(context.Context) error {
			calls++
			cancel()
			return errors.New("down")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
