package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDelay(t *testing.T) {
	r := RetryPolicy{InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, r.NextDelay(0))
	assert.Equal(t, time.Second, r.NextDelay(1))
	assert.Equal(t, 2*time.Second, r.NextDelay(2))
	assert.Equal(t, 4*time.Second, r.NextDelay(3))
	assert.Equal(t, 5*time.Second, r.NextDelay(4))

	assert.Equal(t, 2*time.Second, RetryPolicy{}.NextDelay(2))
}

func TestRetryDo(t *testing.T) {
	fast := RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
	ctx := context.Background()

	t.Run("EventualSuccess", func(t *testing.T) {
		calls := 0
		err := fast.Do(ctx, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Exhausted", func(t *testing.T) {
		calls := 0
		err := fast.Do(ctx, func(context.Context) error {
			calls++
			return errors.New("down")
		})
		assert.EqualError(t, err, "down")
		assert.Equal(t, 4, calls)
	})

	t.Run("Permanent", func(t *testing.T) {
		calls := 0
		sentinel := errors.New("not found")
		err := fast.Do(ctx, func(context.Context) error {
			calls++
			return Permanent(sentinel)
		})
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1, calls)
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		slow := RetryPolicy{MaxRetries: 5, InitialDelay: time.Hour}
		err := slow.Do(cctx, func(context.Context) error { return errors.New("fail") })
		assert.ErrorIs(t, err, context.Canceled)
	})

	assert.NoError(t, Permanent(nil))
}
