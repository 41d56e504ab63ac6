package store

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// busyBackOff bounds how long a history call waits out another arkham
// process holding the database.
func busyBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 5 * time.Second
	b.RandomizationFactor = 0.1
	return backoff.WithContext(b, ctx)
}

// retryBusy runs op until it succeeds, fails with a non-busy error, or the
// backoff gives up.
func retryBusy(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil || isBusy(err) {
			return err
		}
		return backoff.Permanent(err)
	}, busyBackOff(ctx))
}

// isBusy matches modernc.org/sqlite lock contention messages.
func isBusy(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "constraint failed") {
		return false
	}
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
