package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = RetryOptions{InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("busy")
		}
		return nil
	}, fast)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_Exhausted(t *testing.T) {
	busy := errors.New("busy")
	calls := 0
	opts := fast
	opts.MaxAttempts = 2

	err := WithRetry(context.Background(), func() error {
		calls++
		return busy
	}, opts)

	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, busy)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_Permanent(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return Permanent(ErrNotFound)
	}, fast)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 1, calls)
	assert.NoError(t, Permanent(nil))
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return errors.New("busy")
	}, RetryOptions{InitialDelay: time.Hour})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
