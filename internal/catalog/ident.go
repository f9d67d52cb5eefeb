package catalog

import (
	"context"
	"fmt"

	"github.com/pgscope/pgscope/internal/database"
)

// Ident is a SQL identifier that is safe to splice into a statement.
//
// PostgreSQL cannot bind identifiers (schema, table, column names) as query
// parameters — only literal values. Any name that must appear in a FROM
// clause therefore goes through QuoteIdent first, and query builders accept
// Ident rather than string so an unsanitized name cannot reach the SQL text.
type Ident struct {
	quoted string
}

// String returns the quoted identifier for splicing into SQL.
func (i Ident) String() string {
	return i.quoted
}

// QuoteIdent quotes name as a SQL identifier by asking the server itself
// (quote_ident doubles embedded quotes and wraps in double quotes when
// needed). Delegating to the engine avoids re-implementing its quoting
// rules locally.
func QuoteIdent(ctx context.Context, db database.DB, name string) (Ident, error) {
	row, err := db.QueryRow(ctx, "SELECT quote_ident($1)", name)
	if err != nil {
		return Ident{}, fmt.Errorf("quoting identifier %q: %w", name, err)
	}

	var quoted string
	if err := row.Scan(&quoted); err != nil {
		return Ident{}, fmt.Errorf("quoting identifier %q: %w", name, err)
	}
	return Ident{quoted: quoted}, nil
}
