package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgscope/pgscope/internal/errs"
)

// quoteIdentFake mimics the server-side quote_ident: wrap in double quotes
// when the name is not a plain lower-case identifier.
func quoteIdentFake(name string) string {
	if name == strings.ToLower(name) && !strings.ContainsAny(name, `" .;`) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func TestSample(t *testing.T) {
	db := &fakeDB{
		onQueryRow: func(sql string, args ...any) ([]any, error) {
			require.Equal(t, "SELECT quote_ident($1)", sql)
			return []any{quoteIdentFake(args[0].(string))}, nil
		},
		onQuery: func(sql string, args ...any) ([][]any, error) {
			require.Equal(t, "SELECT * FROM public.users LIMIT $1", sql)
			require.Equal(t, []any{2}, args)
			return [][]any{
				{any(int64(1)), any("a@example.com")},
				{any(int64(2)), any("b@example.com")},
			}, nil
		},
	}
	// Sample scans through database.ScanRows, which needs column names.
	withColumns(db, []string{"id", "email"})

	rows, err := NewStore(db).Sample(context.Background(), "public", "users", 2)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, "b@example.com", rows[1]["email"])
}

func TestSample_QuotesIdentifiers(t *testing.T) {
	var gotSQL string
	db := &fakeDB{
		onQueryRow: func(_ string, args ...any) ([]any, error) {
			return []any{quoteIdentFake(args[0].(string))}, nil
		},
		onQuery: func(sql string, args ...any) ([][]any, error) {
			gotSQL = sql
			return [][]any{}, nil
		},
	}
	withColumns(db, nil)

	_, err := NewStore(db).Sample(context.Background(), "Public", `users"; DROP TABLE x; --`, 10)
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM "Public"."users""; DROP TABLE x; --" LIMIT $1`, gotSQL,
		"both identifiers must be engine-quoted before splicing")
}

func TestSample_ZeroLimit(t *testing.T) {
	db := &fakeDB{
		onQueryRow: func(_ string, args ...any) ([]any, error) {
			return []any{quoteIdentFake(args[0].(string))}, nil
		},
		onQuery: func(_ string, args ...any) ([][]any, error) {
			require.Equal(t, []any{0}, args)
			return [][]any{}, nil
		},
	}
	withColumns(db, []string{"id"})

	rows, err := NewStore(db).Sample(context.Background(), "public", "users", 0)
	require.NoError(t, err, "limit 0 is an empty result, never an error")
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSample_NegativeLimit(t *testing.T) {
	db := &fakeDB{}

	_, err := NewStore(db).Sample(context.Background(), "public", "users", -1)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
	assert.Empty(t, db.queries, "no query may run for invalid input")
}

func TestSample_UnknownRelation(t *testing.T) {
	db := &fakeDB{
		onQueryRow: func(_ string, args ...any) ([]any, error) {
			return []any{quoteIdentFake(args[0].(string))}, nil
		},
		onQuery: func(string, ...any) ([][]any, error) {
			return nil, errs.New(errs.ErrKindQueryFailed, `relation "public.nope" does not exist`)
		},
	}

	_, err := NewStore(db).Sample(context.Background(), "public", "nope", 10)
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err), "the engine's error must surface unchanged in kind")
}
