package apperr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_RetryableExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return NewRemoteOperationFailed("earn coins", errors.New("unavailable"))
	})

	require.Error(t, err)
	assert.Equal(t, MaxRetries+1, calls)
	assert.True(t, IsRetryable(err))
}

func TestWithRetry_NonRetryableFailsFast(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return NewInsufficientFunds(0, 100)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_SucceedsAfterFailure(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 2 {
			return NewStorageError(errors.New("transient"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return NewRemoteOperationFailed("spend coins", errors.New("unavailable"))
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestErrorTaxonomy(t *testing.T) {
	testCases := []struct {
		name      string
		err       *AppError
		code      string
		retryable bool
	}{
		{"insufficient funds", NewInsufficientFunds(10, 100), CodeInsufficientFunds, false},
		{"not registered", NewNotRegistered(), CodeNotRegistered, false},
		{"validation", NewValidationError("bad input"), CodeValidation, false},
		{"remote failure", NewRemoteOperationFailed("earn coins", errors.New("down")), CodeRemoteOperationFailed, true},
		{"storage", NewStorageError(errors.New("io")), CodeStorage, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.retryable, tc.err.Retryable)
			assert.NotEmpty(t, tc.err.UserMessage)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewRemoteOperationFailed("verify activity", cause)

	assert.ErrorIs(t, err, cause)
}
