// Package sqlite provides the SQLite storage layer of the dictionary database:
// connection setup, the context-based transaction manager and the embedded schema.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure-Go driver with FTS5 compiled in

	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
)

const driverName = "sqlite"

// Open opens (creating if needed) the SQLite database at path and returns a
// handle limited to a single connection. The parent directory is created.
// Every connection gets journal_mode=<journalMode> and synchronous=OFF; the
// file is a build artifact, so durability on crash is not required.
// Paths containing '?' are rejected: the driver reads everything after it
// as connection parameters.
func Open(ctx context.Context, path, journalMode string) (*sql.DB, error) {
	if strings.ContainsRune(path, '?') {
		return nil, domain.NewValidationError("path", fmt.Sprintf("%q must not contain '?'", path))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	db, err := sql.Open(driverName, dsn(path, journalMode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	return db, nil
}

func dsn(path, journalMode string) string {
	mode := strings.ToUpper(strings.TrimSpace(journalMode))
	if mode == "" {
		mode = "WAL"
	}
	return fmt.Sprintf("%s?_pragma=journal_mode(%s)&_pragma=synchronous(OFF)", path, mode)
}
