package reindex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryFirstTrySucceeds(t *testing.T) {
	tries := 0
	err := Retry(context.Background(), 3, 10*time.Millisecond, func() error {
		tries++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tries)
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	tries := 0
	err := Retry(context.Background(), 5, 10*time.Millisecond, func() error {
		tries++
		if tries < 3 {
			return errors.New("model reloading")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, tries)
}

func TestRetryExhaustsBudget(t *testing.T) {
	tries := 0
	opErr := errors.New("persistent failure")
	err := Retry(context.Background(), 3, 10*time.Millisecond, func() error {
		tries++
		return opErr
	})
	require.Error(t, err)
	assert.Equal(t, opErr, err)
	assert.Equal(t, 3, tries)
}

func TestRetryStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tries := 0
	err := Retry(ctx, 10, 10*time.Millisecond, func() error {
		tries++
		if tries == 2 {
			cancel()
		}
		return errors.New("keep failing")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, tries)
}

func TestRetryRejectsZeroAttempts(t *testing.T) {
	err := Retry(context.Background(), 0, 10*time.Millisecond, func() error { return nil })
	assert.ErrorIs(t, err, ErrInvalidAttempts)
}
