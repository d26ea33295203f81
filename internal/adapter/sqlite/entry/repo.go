// Package entry implements the dictionary entry store on top of SQLite.
// Rows are written once per build; nothing is updated or deleted in place.
package entry

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/myenglish-dictdb/internal/adapter/sqlite"
	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
)

var (
	builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

	entryColumns = []string{"word", "pos", "sense", "definition", "examples"}
	ftsColumns   = []string{"word", "definition", "examples"}
)

// Repo provides entry persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a new entry repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// BulkInsertEntries inserts entries with a single multi-row INSERT.
// Row IDs are assigned by SQLite in insertion order.
// Returns the number of inserted rows.
func (r *Repo) BulkInsertEntries(ctx context.Context, entries []domain.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	insert := builder.Insert(sqlite.EntriesTable).Columns(entryColumns...)
	for _, e := range entries {
		examples, err := EncodeExamples(e.Examples)
		if err != nil {
			return 0, fmt.Errorf("encode examples for %s: %w", e.Key(), err)
		}
		insert = insert.Values(e.Word, string(e.POS), e.Sense, e.Definition, examples)
	}

	return r.exec(ctx, insert, sqlite.EntriesTable, "bulk insert")
}

// PopulateFTS copies every entries row into the external-content FTS index,
// keeping rowid equal to entries.id.
func (r *Repo) PopulateFTS(ctx context.Context) (int, error) {
	selectCols := append([]string{"id"}, ftsColumns...)

	insert := builder.Insert(sqlite.EntriesFTSTable).
		Columns(append([]string{"rowid"}, ftsColumns...)...).
		Select(builder.Select(selectCols...).From(sqlite.EntriesTable).OrderBy("id"))

	return r.exec(ctx, insert, sqlite.EntriesFTSTable, "populate")
}

// CountEntries returns the number of rows in the entries table.
func (r *Repo) CountEntries(ctx context.Context) (int, error) {
	return r.count(ctx, sqlite.EntriesTable)
}

// CountFTS returns the number of documents held by the full-text index.
// The docsize shadow table has exactly one row per indexed document;
// counting entries_fts itself would read through to the content table.
func (r *Repo) CountFTS(ctx context.Context) (int, error) {
	return r.count(ctx, sqlite.EntriesFTSTable+"_docsize")
}

// MissingTables returns the schema tables that do not exist in the database.
func (r *Repo) MissingTables(ctx context.Context) ([]string, error) {
	names := []string{sqlite.EntriesTable, sqlite.EntriesFTSTable}

	query, args, err := builder.Select("name").
		From("sqlite_master").
		Where(sq.Eq{"type": "table", "name": names}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapError(err, "sqlite_master", "list tables")
	}
	defer rows.Close()

	found := make(map[string]bool, len(names))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.MapError(err, "sqlite_master", "list tables")
	}

	var missing []string
	for _, n := range names {
		if !found[n] {
			missing = append(missing, n)
		}
	}
	return missing, nil
}

func (r *Repo) exec(ctx context.Context, stmt sq.Sqlizer, table, op string) (int, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s: %w", op, err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, sqlite.MapError(err, table, op)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return int(n), nil
}

func (r *Repo) count(ctx context.Context, table string) (int, error) {
	query, args, err := builder.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s: %w", table, err)
	}

	var n int
	if err := sqlite.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, sqlite.MapError(err, table, "count")
	}
	return n, nil
}

// EncodeExamples serializes an example list as a compact JSON array.
// HTML characters are left unescaped; an empty list encodes as "[]".
func EncodeExamples(examples []string) (string, error) {
	if examples == nil {
		examples = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(examples); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
