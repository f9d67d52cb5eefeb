// Package catalog reconstructs PostgreSQL relational structure (schemas,
// tables, columns, constraints, indexes) from the system catalogs and
// information_schema views. All queries are read-only, parameterized, and
// scoped to a single database.DB; names are bound as parameters except
// where they must appear as identifiers, which go through QuoteIdent.
package catalog

import (
	"context"
	"fmt"

	"github.com/pgscope/pgscope/internal/database"
)

// Store executes the catalog queries against one connection.
type Store struct {
	db database.DB
}

// NewStore binds a Store to a connection pool.
func NewStore(db database.DB) *Store {
	return &Store{db: db}
}

// ListSchemas returns all non-system schemas with their comments.
// pg_catalog, information_schema, pg_toast, and pg_-prefixed schemas are
// excluded.
func (s *Store) ListSchemas(ctx context.Context) ([]SchemaRow, error) {
	const q = `
		SELECT
			schema_name,
			obj_description(pg_namespace.oid) AS description
		FROM information_schema.schemata
		JOIN pg_namespace ON pg_namespace.nspname = schema_name
		WHERE
			schema_name NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
			AND schema_name NOT LIKE 'pg_%'
		ORDER BY schema_name`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing schemas: %w", err)
	}
	defer rows.Close()

	schemas := make([]SchemaRow, 0)
	for rows.Next() {
		var sr SchemaRow
		if err := rows.Scan(&sr.Name, &sr.Description); err != nil {
			return nil, fmt.Errorf("scanning schema row: %w", err)
		}
		schemas = append(schemas, sr)
	}
	return schemas, rows.Err()
}

// ListTables returns all base tables in schema with their comments and the
// insert-tuple row statistic.
func (s *Store) ListTables(ctx context.Context, schema string) ([]TableRow, error) {
	const q = `
		SELECT
			t.table_name,
			obj_description(format('%I.%I', t.table_schema, t.table_name)::regclass::oid) AS description,
			pg_stat_get_tuples_inserted(format('%I.%I', t.table_schema, t.table_name)::regclass::oid) AS total_rows
		FROM information_schema.tables t
		WHERE
			t.table_schema = $1
			AND t.table_type = 'BASE TABLE'
		ORDER BY t.table_name`

	rows, err := s.db.Query(ctx, q, schema)
	if err != nil {
		return nil, fmt.Errorf("listing tables in %q: %w", schema, err)
	}
	defer rows.Close()

	tables := make([]TableRow, 0)
	for rows.Next() {
		var tr TableRow
		if err := rows.Scan(&tr.Name, &tr.Description, &tr.TotalRows); err != nil {
			return nil, fmt.Errorf("scanning table row: %w", err)
		}
		tables = append(tables, tr)
	}
	return tables, rows.Err()
}

// ListColumns returns the columns of schema.table ordered by ordinal
// position, with per-column comments.
func (s *Store) ListColumns(ctx context.Context, schema, table string) ([]ColumnRow, error) {
	const q = `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES' AS nullable,
			c.column_default,
			col_description(format('%I.%I', c.table_schema, c.table_name)::regclass::oid, c.ordinal_position) AS description
		FROM information_schema.columns c
		WHERE
			c.table_schema = $1
			AND c.table_name = $2
		ORDER BY c.ordinal_position`

	rows, err := s.db.Query(ctx, q, schema, table)
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	cols := make([]ColumnRow, 0)
	for rows.Next() {
		var cr ColumnRow
		if err := rows.Scan(&cr.Name, &cr.DataType, &cr.Nullable, &cr.Default, &cr.Description); err != nil {
			return nil, fmt.Errorf("scanning column row: %w", err)
		}
		cols = append(cols, cr)
	}
	return cols, rows.Err()
}

// constraintTypeCase maps pg_constraint.contype codes to labels.
const constraintTypeCase = `
		CASE
			WHEN c.contype = 'p' THEN 'PRIMARY KEY'
			WHEN c.contype = 'u' THEN 'UNIQUE'
			WHEN c.contype = 'f' THEN 'FOREIGN KEY'
			WHEN c.contype = 'c' THEN 'CHECK'
			WHEN c.contype = 't' THEN 'TRIGGER'
			WHEN c.contype = 'x' THEN 'EXCLUSION'
			ELSE 'OTHER'
		END`

// ListConstraints returns all constraints of schema.table. Member columns
// are aggregated in conkey ordinal order by unnesting the key array WITH
// ORDINALITY and left-joining to pg_attribute; a constraint without key
// columns aggregates to an empty list.
func (s *Store) ListConstraints(ctx context.Context, schema, table string) ([]ConstraintRow, error) {
	const q = `
		SELECT
			c.conname AS constraint_name,
			` + constraintTypeCase + ` AS constraint_type,
			obj_description(c.oid) AS description,
			pg_get_constraintdef(c.oid) AS definition,
			CASE
				WHEN c.contype = 'f' THEN
					(SELECT nspname FROM pg_namespace WHERE oid = ref_table.relnamespace) || '.' || ref_table.relname
				ELSE NULL
			END AS referenced_table,
			ARRAY_AGG(col.attname ORDER BY u.attposition) AS column_names
		FROM pg_constraint c
		JOIN pg_namespace n ON n.oid = c.connamespace
		JOIN pg_class t ON t.oid = c.conrelid
		LEFT JOIN pg_class ref_table ON ref_table.oid = c.confrelid
		LEFT JOIN LATERAL unnest(c.conkey) WITH ORDINALITY AS u(attnum, attposition) ON TRUE
		LEFT JOIN pg_attribute col ON col.attrelid = t.oid AND col.attnum = u.attnum
		WHERE
			n.nspname = $1
			AND t.relname = $2
		GROUP BY
			c.conname, c.contype, c.oid, ref_table.relname, ref_table.relnamespace
		ORDER BY
			c.contype, c.conname`

	rows, err := s.db.Query(ctx, q, schema, table)
	if err != nil {
		return nil, fmt.Errorf("listing constraints of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	constraints := make([]ConstraintRow, 0)
	for rows.Next() {
		var (
			cr    ConstraintRow
			names []*string
		)
		if err := rows.Scan(&cr.Name, &cr.Type, &cr.Description, &cr.Definition,
			&cr.ReferencedTable, &names); err != nil {
			return nil, fmt.Errorf("scanning constraint row: %w", err)
		}
		cr.Columns = compactNames(names)
		constraints = append(constraints, cr)
	}
	return constraints, rows.Err()
}

// GetConstraint returns the named constraint of schema.table, or nil when
// it does not exist. Constraint names are unique only within a table, so
// the lookup is scoped by all three names.
func (s *Store) GetConstraint(ctx context.Context, schema, table, constraint string) (*ConstraintDetail, error) {
	const q = `
		SELECT
			c.conname AS constraint_name,
			` + constraintTypeCase + ` AS constraint_type,
			obj_description(c.oid) AS description,
			pg_get_constraintdef(c.oid) AS definition,
			CASE
				WHEN c.contype = 'f' THEN
					(SELECT nspname FROM pg_namespace WHERE oid = ref_table.relnamespace) || '.' || ref_table.relname
				ELSE NULL
			END AS referenced_table,
			ARRAY_AGG(col.attname ORDER BY u.attposition) AS column_names,
			CASE
				WHEN c.contype = 'f' THEN
					ARRAY_AGG(ref_col.attname ORDER BY u.attposition)
				ELSE NULL
			END AS referenced_columns
		FROM pg_constraint c
		JOIN pg_namespace n ON n.oid = c.connamespace
		JOIN pg_class t ON t.oid = c.conrelid
		LEFT JOIN pg_class ref_table ON ref_table.oid = c.confrelid
		LEFT JOIN LATERAL unnest(c.conkey) WITH ORDINALITY AS u(attnum, attposition) ON TRUE
		LEFT JOIN pg_attribute col ON col.attrelid = t.oid AND col.attnum = u.attnum
		LEFT JOIN LATERAL unnest(c.confkey) WITH ORDINALITY AS u2(attnum, attposition)
			ON u2.attposition = u.attposition
		LEFT JOIN pg_attribute ref_col ON ref_col.attrelid = c.confrelid AND ref_col.attnum = u2.attnum
		WHERE
			n.nspname = $1
			AND t.relname = $2
			AND c.conname = $3
		GROUP BY
			c.conname, c.contype, c.oid, ref_table.relname, ref_table.relnamespace`

	rows, err := s.db.Query(ctx, q, schema, table, constraint)
	if err != nil {
		return nil, fmt.Errorf("fetching constraint %s.%s.%s: %w", schema, table, constraint, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var (
		detail   ConstraintDetail
		names    []*string
		refNames []*string
	)
	if err := rows.Scan(&detail.Name, &detail.Type, &detail.Description, &detail.Definition,
		&detail.ReferencedTable, &names, &refNames); err != nil {
		return nil, fmt.Errorf("scanning constraint detail: %w", err)
	}
	detail.Columns = compactNames(names)
	if refNames != nil {
		detail.ReferencedColumns = compactNames(refNames)
	}
	return &detail, rows.Err()
}

// ListForeignKeys returns the foreign keys of schema.table. The local and
// referenced column lists are built from two WITH ORDINALITY unnests over
// conkey and confkey joined position-for-position, so both lists always
// have equal length and pair up index-for-index.
func (s *Store) ListForeignKeys(ctx context.Context, schema, table string) ([]ForeignKeyRow, error) {
	const q = `
		SELECT
			c.conname AS constraint_name,
			ARRAY_AGG(col.attname ORDER BY u.attposition) AS column_names,
			nr.nspname AS referenced_schema,
			ref_table.relname AS referenced_table,
			ARRAY_AGG(ref_col.attname ORDER BY u.attposition) AS referenced_columns
		FROM pg_constraint c
		JOIN pg_namespace n ON n.oid = c.connamespace
		JOIN pg_class t ON t.oid = c.conrelid
		JOIN pg_class ref_table ON ref_table.oid = c.confrelid
		JOIN pg_namespace nr ON nr.oid = ref_table.relnamespace
		LEFT JOIN LATERAL unnest(c.conkey) WITH ORDINALITY AS u(attnum, attposition) ON TRUE
		LEFT JOIN pg_attribute col ON col.attrelid = t.oid AND col.attnum = u.attnum
		LEFT JOIN LATERAL unnest(c.confkey) WITH ORDINALITY AS u2(attnum, attposition)
			ON u2.attposition = u.attposition
		LEFT JOIN pg_attribute ref_col ON ref_col.attrelid = c.confrelid AND ref_col.attnum = u2.attnum
		WHERE
			n.nspname = $1
			AND t.relname = $2
			AND c.contype = 'f'
		GROUP BY
			c.conname, nr.nspname, ref_table.relname
		ORDER BY
			c.conname`

	rows, err := s.db.Query(ctx, q, schema, table)
	if err != nil {
		return nil, fmt.Errorf("listing foreign keys of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	fks := make([]ForeignKeyRow, 0)
	for rows.Next() {
		var (
			fk       ForeignKeyRow
			names    []*string
			refNames []*string
		)
		if err := rows.Scan(&fk.Name, &names, &fk.ReferencedSchema,
			&fk.ReferencedTable, &refNames); err != nil {
			return nil, fmt.Errorf("scanning foreign key row: %w", err)
		}
		fk.Columns = compactNames(names)
		fk.ReferencedColumns = compactNames(refNames)
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

// ListIndexes returns the indexes of schema.table. Member columns are
// aggregated in the storage-defined key order of indkey; expression keys
// have no backing attribute and drop out of the name list (use GetIndex
// for the rendered expressions).
func (s *Store) ListIndexes(ctx context.Context, schema, table string) ([]IndexRow, error) {
	const q = `
		SELECT
			i.relname AS index_name,
			pg_get_indexdef(i.oid) AS index_definition,
			obj_description(i.oid) AS description,
			am.amname AS index_type,
			ARRAY_AGG(a.attname ORDER BY k.i) AS column_names,
			ix.indisunique AS is_unique,
			ix.indisprimary AS is_primary,
			ix.indisexclusion AS is_exclusion
		FROM pg_index ix
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_am am ON i.relam = am.oid
		LEFT JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, i) ON TRUE
		LEFT JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE
			n.nspname = $1
			AND t.relname = $2
		GROUP BY
			i.relname, i.oid, am.amname, ix.indisunique, ix.indisprimary, ix.indisexclusion
		ORDER BY
			i.relname`

	rows, err := s.db.Query(ctx, q, schema, table)
	if err != nil {
		return nil, fmt.Errorf("listing indexes of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	indexes := make([]IndexRow, 0)
	for rows.Next() {
		var (
			ir    IndexRow
			names []*string
		)
		if err := rows.Scan(&ir.Name, &ir.Definition, &ir.Description, &ir.Type,
			&names, &ir.IsUnique, &ir.IsPrimary, &ir.IsExclusion); err != nil {
			return nil, fmt.Errorf("scanning index row: %w", err)
		}
		ir.Columns = compactNames(names)
		indexes = append(indexes, ir)
	}
	return indexes, rows.Err()
}

// GetIndex returns the named index of schema.table, or nil when it does
// not exist. The detail adds planner statistics and the per-position
// rendered key expressions.
func (s *Store) GetIndex(ctx context.Context, schema, table, index string) (*IndexDetail, error) {
	const q = `
		SELECT
			i.relname AS index_name,
			pg_get_indexdef(i.oid) AS index_definition,
			obj_description(i.oid) AS description,
			am.amname AS index_type,
			ix.indisunique AS is_unique,
			ix.indisprimary AS is_primary,
			ix.indisexclusion AS is_exclusion,
			ix.indimmediate AS is_immediate,
			ix.indisclustered AS is_clustered,
			ix.indisvalid AS is_valid,
			i.relpages AS pages,
			i.reltuples AS rows,
			ARRAY_AGG(a.attname ORDER BY k.i) AS column_names,
			ARRAY_AGG(pg_get_indexdef(i.oid, k.i::int, false) ORDER BY k.i) AS column_expressions
		FROM pg_index ix
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_am am ON i.relam = am.oid
		LEFT JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, i) ON TRUE
		LEFT JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE
			n.nspname = $1
			AND t.relname = $2
			AND i.relname = $3
		GROUP BY
			i.relname, i.oid, am.amname, ix.indisunique, ix.indisprimary,
			ix.indisexclusion, ix.indimmediate, ix.indisclustered, ix.indisvalid,
			i.relpages, i.reltuples`

	rows, err := s.db.Query(ctx, q, schema, table, index)
	if err != nil {
		return nil, fmt.Errorf("fetching index %s.%s.%s: %w", schema, table, index, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var (
		detail      IndexDetail
		pages       int32
		tuples      float32
		names       []*string
		expressions []*string
	)
	if err := rows.Scan(&detail.Name, &detail.Definition, &detail.Description, &detail.Type,
		&detail.IsUnique, &detail.IsPrimary, &detail.IsExclusion,
		&detail.IsImmediate, &detail.IsClustered, &detail.IsValid,
		&pages, &tuples, &names, &expressions); err != nil {
		return nil, fmt.Errorf("scanning index detail: %w", err)
	}

	detail.Pages = int64(pages)
	// reltuples is a float estimate; -1 means never analyzed.
	detail.Rows = int64(tuples)
	if detail.Rows < 0 {
		detail.Rows = 0
	}
	detail.Columns = compactNames(names)
	detail.ColumnExpressions = compactNames(expressions)
	return &detail, rows.Err()
}

// compactNames drops the NULL members that LEFT JOIN aggregation produces
// for keys without a backing attribute (empty key arrays, expression keys).
func compactNames(names []*string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != nil {
			out = append(out, *n)
		}
	}
	return out
}
