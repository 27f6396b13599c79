package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/mattn/go-sqlite3"
)

// writeRetry covers another sortinghat process holding the write lock
// for longer than the driver's busy timeout.
var writeRetry = common.RetryOptions{
	MaxAttempts:  4,
	InitialDelay: 250 * time.Millisecond,
	MaxDelay:     2 * time.Second,
}

// withBusyRetry retries fn while SQLite reports the database busy or locked.
func withBusyRetry(ctx context.Context, fn func() error) error {
	return common.WithRetry(ctx, func() error {
		err := fn()
		if err == nil || isBusy(err) {
			return err
		}
		return common.Permanent(err)
	}, writeRetry)
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}
