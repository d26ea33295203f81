// Package dictbuild orchestrates the dictionary database build: corpus,
// supplementary examples, schema, bulk write and verification.
package dictbuild

import (
	"context"

	"github.com/heartmarshall/myenglish-dictdb/internal/domain"
)

// EntryStore defines the repository contract consumed by the build pipeline.
// All methods use only domain types, no adapter imports.
// Implemented by entry.Repo.
type EntryStore interface {
	// Batch insert; row IDs follow insertion order.
	BulkInsertEntries(ctx context.Context, entries []domain.Entry) (int, error)

	// Full-text index population from the base table.
	PopulateFTS(ctx context.Context) (int, error)

	// Verification.
	CountEntries(ctx context.Context) (int, error)
	CountFTS(ctx context.Context) (int, error)
	MissingTables(ctx context.Context) ([]string, error)
}

// TxRunner runs fn inside a single transaction carried by ctx.
// Implemented by sqlite.TxManager.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SchemaFunc drops and recreates the output schema, returning the number of
// applied migrations.
type SchemaFunc func(ctx context.Context) (int, error)
