package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	driver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
)

// MapError converts database/sql and SQLite driver errors to domain errors.
// context.DeadlineExceeded and context.Canceled are NOT mapped; they pass through.
func MapError(err error, entity, op string) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, op, err)
	}

	// sql.ErrNoRows → domain.ErrNotFound
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, op, domain.ErrNotFound)
	}

	var sqliteErr *driver.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%s %s: %w: %v", entity, op, domain.ErrAlreadyExists, err)
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
			return fmt.Errorf("%s %s: %w: %v", entity, op, domain.ErrValidation, err)
		}
		// Primary result code lives in the low byte of the extended code.
		switch code & 0xff {
		case sqlite3.SQLITE_ERROR:
			if strings.Contains(sqliteErr.Error(), "no such table") {
				return fmt.Errorf("%s %s: %w: %v", entity, op, domain.ErrNotFound, err)
			}
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%s %s: %w: %v", entity, op, domain.ErrValidation, err)
		}
	}

	// Everything else: wrap with context
	return fmt.Errorf("%s %s: %w", entity, op, err)
}
