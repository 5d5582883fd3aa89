//go:build unit

package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrierDo(t *testing.T) {
	t.Run("succeeds without retrying", func(t *testing.T) {
		r := &retrier{maxRetries: 3, base: time.Millisecond}
		calls := 0

		err := r.Do(context.Background(), func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient failures until success", func(t *testing.T) {
		r := &retrier{maxRetries: 3, base: time.Millisecond}
		calls := 0

		err := r.Do(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &ProviderError{StatusCode: 503}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after the attempt ceiling", func(t *testing.T) {
		r := &retrier{maxRetries: 2, base: time.Millisecond}
		calls := 0

		err := r.Do(context.Background(), func() error {
			calls++
			return &ProviderError{StatusCode: 502}
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls) // initial attempt + 2 retries
	})

	t.Run("terminal errors are not retried", func(t *testing.T) {
		r := &retrier{maxRetries: 3, base: time.Millisecond}
		calls := 0

		err := r.Do(context.Background(), func() error {
			calls++
			return &ProviderError{StatusCode: 422}
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		r := &retrier{maxRetries: 5, base: 50 * time.Millisecond}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := r.Do(ctx, func() error {
			return &ProviderError{StatusCode: 500}
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCalculateBackoffGrows(t *testing.T) {
	base := 100 * time.Millisecond
	for attempt := 0; attempt < 4; attempt++ {
		wait := calculateBackoff(attempt, base)
		floor := time.Duration(1<<attempt) * base
		assert.GreaterOrEqual(t, wait, floor)
		assert.Less(t, wait, floor+floor/5+time.Millisecond)
	}
}
