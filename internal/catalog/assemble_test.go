package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// documentFake scripts a small two-table database: public.users and
// public.orders with a foreign key between them.
func documentFake() *fakeDB {
	return &fakeDB{
		onQuery: func(sql string, args ...any) ([][]any, error) {
			switch {
			case strings.Contains(sql, "information_schema.schemata"):
				return [][]any{{"public", nil}}, nil

			case strings.Contains(sql, "information_schema.tables"):
				return [][]any{
					{"orders", nil, ptr(int64(7))},
					{"users", ptr("registered users"), ptr(int64(3))},
				}, nil

			case strings.Contains(sql, "information_schema.columns"):
				if args[1] == "users" {
					return [][]any{
						{"id", "integer", false, ptr("nextval('users_id_seq'::regclass)"), nil},
						{"email", "text", false, nil, nil},
					}, nil
				}
				return [][]any{
					{"id", "integer", false, nil, nil},
					{"user_id", "integer", false, nil, nil},
				}, nil

			case strings.Contains(sql, "confkey"):
				if args[1] == "orders" {
					return [][]any{
						{"orders_user_fk", strPtrs("user_id"), "public", "users", strPtrs("id")},
					}, nil
				}
				return [][]any{}, nil

			case strings.Contains(sql, "pg_constraint"):
				if args[1] == "users" {
					return [][]any{
						{"users_pkey", "PRIMARY KEY", nil, "PRIMARY KEY (id)", nil, strPtrs("id")},
						{"users_email_key", "UNIQUE", nil, "UNIQUE (email)", nil, strPtrs("email")},
					}, nil
				}
				return [][]any{
					{"orders_pkey", "PRIMARY KEY", nil, "PRIMARY KEY (id)", nil, strPtrs("id")},
					{"orders_user_fk", "FOREIGN KEY", nil,
						"FOREIGN KEY (user_id) REFERENCES users(id)",
						ptr("public.users"), strPtrs("user_id")},
				}, nil

			default:
				return nil, errors.New("unexpected query: " + sql)
			}
		},
	}
}

func TestDescribe(t *testing.T) {
	store := NewStore(documentFake())

	db, err := store.Describe(context.Background())
	require.NoError(t, err)

	require.Len(t, db.Schemas, 1)
	public := db.Schemas[0]
	assert.Equal(t, "public", public.Name)
	assert.Nil(t, public.Description)

	require.Len(t, public.Tables, 2)
	orders, users := public.Tables[0], public.Tables[1]

	assert.Equal(t, "orders", orders.Name)
	assert.Equal(t, int64(7), *orders.RowCount)
	assert.Equal(t, "users", users.Name)
	assert.Equal(t, "registered users", *users.Description)

	// users: id carries PRIMARY KEY, email carries UNIQUE.
	require.Len(t, users.Columns, 2)
	assert.Equal(t, []string{"PRIMARY KEY"}, users.Columns[0].Constraints)
	assert.Equal(t, []string{"UNIQUE"}, users.Columns[1].Constraints)
	assert.False(t, users.Columns[1].Nullable)

	// orders.user_id is a FK member; the label comes from the constraint scan.
	assert.Equal(t, []string{"FOREIGN KEY"}, orders.Columns[1].Constraints)

	// Foreign keys stay a separate list on the owning table.
	require.Len(t, orders.ForeignKeys, 1)
	fk := orders.ForeignKeys[0]
	assert.Equal(t, "orders_user_fk", fk.Name)
	assert.Equal(t, "public", fk.ReferencedSchema)
	assert.Equal(t, "users", fk.ReferencedTable)
	assert.Equal(t, []string{"id"}, fk.ReferencedColumns)
	assert.Empty(t, users.ForeignKeys)
}

func TestDescribe_MatchesFacetQueries(t *testing.T) {
	// The document must carry exactly what the direct facet calls return
	// for the same table, since both share one query implementation.
	store := NewStore(documentFake())
	ctx := context.Background()

	db, err := store.Describe(ctx)
	require.NoError(t, err)
	users := db.Schemas[0].Tables[1]

	cols, err := store.ListColumns(ctx, "public", "users")
	require.NoError(t, err)
	require.Len(t, users.Columns, len(cols))
	for i, cr := range cols {
		assert.Equal(t, cr.Name, users.Columns[i].Name)
		assert.Equal(t, cr.DataType, users.Columns[i].Type)
		assert.Equal(t, cr.Nullable, users.Columns[i].Nullable)
	}

	fks, err := store.ListForeignKeys(ctx, "public", "orders")
	require.NoError(t, err)
	assert.Equal(t, fks, db.Schemas[0].Tables[0].ForeignKeys)
}

func TestDescribe_JSONShape(t *testing.T) {
	store := NewStore(documentFake())

	db, err := store.Describe(context.Background())
	require.NoError(t, err)

	raw, err := json.Marshal(db)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	schemas := doc["schemas"].([]any)
	public := schemas[0].(map[string]any)

	// Nullable fields are present with an explicit null, not absent.
	desc, present := public["description"]
	assert.True(t, present)
	assert.Nil(t, desc)

	users := public["tables"].([]any)[1].(map[string]any)
	assert.Equal(t, float64(3), users["row_count"])

	// Empty collections render as [], not null.
	assert.Equal(t, []any{}, users["foreign_keys"])
}

func TestDescribe_PropagatesTableError(t *testing.T) {
	db := documentFake()
	inner := db.onQuery
	db.onQuery = func(sql string, args ...any) ([][]any, error) {
		if strings.Contains(sql, "information_schema.columns") {
			return nil, errors.New("boom")
		}
		return inner(sql, args...)
	}

	_, err := NewStore(db).Describe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "describing public.")
}
