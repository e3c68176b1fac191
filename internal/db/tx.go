package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

const txMaxAttempts = 3

// WithTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise. InnoDB deadlocks (1213) and lock-wait timeouts (1205) are
// transient under concurrent seat reconciliation, so the whole function is
// retried up to txMaxAttempts before the error surfaces.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	if db == nil {
		return fmt.Errorf("db not available")
	}

	var lastErr error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			if isRetryable(err) && attempt < txMaxAttempts {
				lastErr = err
				continue
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			if isRetryable(err) && attempt < txMaxAttempts {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return lastErr
}

func isRetryable(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1213 || myErr.Number == 1205
	}
	return false
}
