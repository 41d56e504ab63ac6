package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsBusy(t *testing.T) {
	require.True(t, isBusy(errors.New("database is locked")))
	require.True(t, isBusy(errors.New("exec: SQLITE_BUSY (5)")))
	require.False(t, isBusy(errors.New("UNIQUE constraint failed: publishes.id")))
	require.False(t, isBusy(errors.New("no such table")))
}

func TestRetryBusy_RetriesLockContention(t *testing.T) {
	calls := 0
	err := retryBusy(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryBusy_StopsOnOtherErrors(t *testing.T) {
	calls := 0
	want := errors.New("UNIQUE constraint failed")
	err := retryBusy(context.Background(), func() error {
		calls++
		return want
	})
	require.ErrorIs(t, err, want)
	require.Equal(t, 1, calls)
}

func TestRetryBusy_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retryBusy(ctx, func() error {
		calls++
		return errors.New("database is locked")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
