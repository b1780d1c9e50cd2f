package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledgervox/internal/service"
)

func fastOpts() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, fastOpts())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustsBudget(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return errors.New("still broken")
	}, fastOpts())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 3, calls)
}

func TestWithRetryFailsFastOnNonRetryable(t *testing.T) {
	calls := 0
	marked := &RetryableError{Err: errors.New("bad input"), Retryable: false}
	err := WithRetry(context.Background(), func() error {
		calls++
		return marked
	}, fastOpts())

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, marked.Err)
}

func TestWithRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return errors.New("transient")
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: 10 * time.Millisecond})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "plain error", err: errors.New("boom"), want: true},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: false},
		{name: "marked retryable", err: &RetryableError{Err: errors.New("x"), Retryable: true}, want: true},
		{name: "marked non-retryable", err: &RetryableError{Err: errors.New("x"), Retryable: false}, want: false},
		{name: "wrapped non-retryable", err: errors.Join(errors.New("outer"), &RetryableError{Err: errors.New("x")}), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	inner := errors.New("db locked")
	err := NewUserError("Sorry, I had trouble saving that.", inner)

	assert.Contains(t, err.Error(), "Sorry, I had trouble saving that.")
	assert.ErrorIs(t, err, inner)

	bare := NewUserError("Just a message.", nil)
	assert.Equal(t, "Just a message.", bare.Error())
}

func TestSetupLogger(t *testing.T) {
	require.NoError(t, SetupLogger("debug", "json"))
	require.NoError(t, SetupLogger("", ""))
	assert.Error(t, SetupLogger("loud", "console"))
	assert.Error(t, SetupLogger("info", "xml"))
}
