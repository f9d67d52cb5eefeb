package catalog

import (
	"context"
	"fmt"

	"github.com/pgscope/pgscope/internal/database"
	"github.com/pgscope/pgscope/internal/errs"
)

// DefaultSampleLimit is used when a caller does not specify a row limit.
const DefaultSampleLimit = 10

// Sample returns up to limit rows from schema.table in server-determined
// order (no ORDER BY — results are not deterministic across calls). Both
// names are engine-quoted before splicing; the limit is a bound parameter.
// A limit of 0 yields an empty slice. Existence is not checked up front: a
// nonexistent relation surfaces as the database's own error.
func (s *Store) Sample(ctx context.Context, schema, table string, limit int) ([]map[string]any, error) {
	if limit < 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "sample limit must not be negative")
	}

	schemaIdent, err := QuoteIdent(ctx, s.db, schema)
	if err != nil {
		return nil, err
	}
	tableIdent, err := QuoteIdent(ctx, s.db, table)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT * FROM %s.%s LIMIT $1", schemaIdent, tableIdent)

	rows, err := s.db.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("sampling %s.%s: %w", schema, table, err)
	}
	return database.ScanRows(rows)
}
