package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	sqlite3 "modernc.org/sqlite/lib"

	"home_energy/internal/apperr"
)

// sqliteCoded matches *sqlite.Error from modernc.org/sqlite without
// depending on its concrete type.
type sqliteCoded interface {
	Code() int
}

func sqliteCode(err error) (int, bool) {
	var coded sqliteCoded
	if errors.As(err, &coded) {
		// extended result codes keep the primary code in the low byte
		return coded.Code() & 0xff, true
	}
	return 0, false
}

// isTransient reports driver failures that may succeed on retry.
func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if code, ok := sqliteCode(err); ok {
		return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
	}
	return false
}

func isConstraint(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code == sqlite3.SQLITE_CONSTRAINT
}

// wrap classifies err for callers: transient driver failures become
// apperr.Transient, everything else is annotated with op.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return apperr.Transient(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
