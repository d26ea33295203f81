package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Table names created by the schema.
const (
	EntriesTable    = "entries"
	EntriesFTSTable = "entries_fts"
)

// ApplySchema drops and recreates the dictionary schema.
// Versioning is disabled: no goose_db_version table is written to the output
// file and every migration runs on every call.
// Returns the number of applied migrations.
func ApplySchema(ctx context.Context, db *sql.DB) (int, error) {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys,
		goose.WithDisableVersioning(true),
	)
	if err != nil {
		return 0, fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}

	return len(results), nil
}
