package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrBusy is returned when the database stayed locked through every attempt.
var ErrBusy = errors.New("database busy")

// retryPolicy retries work that failed on a locked database, doubling the
// wait between attempts.
type retryPolicy struct {
	attempts int
	backoff  time.Duration
}

func newRetryPolicy(attempts int, backoff time.Duration) retryPolicy {
	if attempts <= 0 {
		attempts = 3
	}
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}
	return retryPolicy{attempts: attempts, backoff: backoff}
}

// TransactionWithRetry runs fn in a transaction, starting over while another
// writer holds the lock.
func (db *DB) TransactionWithRetry(ctx context.Context, fn func(*sql.Tx) error) error {
	return db.retry.run(ctx, db.logger, func() error {
		return db.Transaction(ctx, fn)
	})
}

func (p retryPolicy) run(ctx context.Context, logger zerolog.Logger, fn func() error) error {
	wait := p.backoff
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn()
		if !isBusy(err) {
			return err
		}
		if attempt >= p.attempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrBusy, attempt, err)
		}
		logger.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("database busy, retrying")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}

// isBusy reports whether err means another connection holds the lock.
func isBusy(err error) bool {
	if err == nil || errors.Is(err, ErrBusy) {
		return false
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy")
}
