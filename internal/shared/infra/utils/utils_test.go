package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return errors.New("always")
	})
	assert.EqualError(t, err, "always")
	assert.Equal(t, 2, calls)
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 5, time.Second, func() error { return errors.New("x") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryIf_PermanentErrorNotRetried(t *testing.T) {
	permanent := errors.New("not found")
	calls := 0
	err := RetryIf(context.Background(), 5, time.Millisecond,
		func(err error) bool { return !errors.Is(err, permanent) },
		func() error { calls++; return permanent })
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestClampAndTernary(t *testing.T) {
	assert.Equal(t, 50, Clamp(999, 1, 50))
	assert.Equal(t, 1, Clamp(-3, 1, 50))
	assert.Equal(t, 7, Clamp(7, 1, 50))
	assert.Equal(t, "DESC", Ternary(true, "DESC", "ASC"))
}
