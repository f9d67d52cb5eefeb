package catalog

// Result types for the catalog facet queries and the assembled database
// document. Nullable catalog values (comments, defaults, planner stats) are
// pointer fields that render as JSON null — the field is always present.

// SchemaRow is one entry of the schema listing.
type SchemaRow struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// TableRow is one entry of the per-schema table listing. TotalRows is the
// cumulative insert-tuple statistic, not a live COUNT.
type TableRow struct {
	Name        string  `json:"table_name"`
	Description *string `json:"description"`
	TotalRows   *int64  `json:"total_rows"`
}

// ColumnRow is one entry of the per-table column listing, ordered by
// ordinal position.
type ColumnRow struct {
	Name        string  `json:"name"`
	DataType    string  `json:"data_type"`
	Nullable    bool    `json:"nullable"`
	Default     *string `json:"default"`
	Description *string `json:"description"`
}

// ConstraintRow is one entry of the per-table constraint listing.
// Columns preserves the constraint's key ordinal order and is empty for
// constraints with no key columns (e.g. some exclusion constraints).
// ReferencedTable is "schema.table" for foreign keys, null otherwise.
type ConstraintRow struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Description     *string  `json:"description"`
	Definition      string   `json:"definition"`
	ReferencedTable *string  `json:"referenced_table"`
	Columns         []string `json:"columns"`
}

// ConstraintDetail is the single-constraint view. ReferencedColumns is
// positionally paired with Columns for foreign keys and null otherwise.
type ConstraintDetail struct {
	ConstraintRow
	ReferencedColumns []string `json:"referenced_columns"`
}

// ForeignKeyRow describes one foreign key with its local and referenced
// column lists paired index-for-index.
type ForeignKeyRow struct {
	Name              string   `json:"name"`
	Columns           []string `json:"columns"`
	ReferencedSchema  string   `json:"referenced_schema"`
	ReferencedTable   string   `json:"referenced_table"`
	ReferencedColumns []string `json:"referenced_columns"`
}

// IndexRow is one entry of the per-table index listing. Type is the access
// method name (btree, gin, …); Columns preserves the index key order.
type IndexRow struct {
	Name        string   `json:"name"`
	Definition  string   `json:"definition"`
	Description *string  `json:"description"`
	Type        string   `json:"type"`
	Columns     []string `json:"columns"`
	IsUnique    bool     `json:"is_unique"`
	IsPrimary   bool     `json:"is_primary"`
	IsExclusion bool     `json:"is_exclusion"`
}

// IndexDetail is the single-index view, adding validity flags, planner
// statistics, and per-position rendered expressions (which cover
// expression indexes where a key has no backing column).
type IndexDetail struct {
	IndexRow
	IsImmediate       bool     `json:"is_immediate"`
	IsClustered       bool     `json:"is_clustered"`
	IsValid           bool     `json:"is_valid"`
	Pages             int64    `json:"pages"`
	Rows              int64    `json:"rows"`
	ColumnExpressions []string `json:"column_expressions"`
}

// --- Assembled database document ---

// Database is the full nested metadata document for one connection.
type Database struct {
	Schemas []Schema `json:"schemas"`
}

// Schema is one schema with all its base tables.
type Schema struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Tables      []Table `json:"tables"`
}

// Table is one table with its ordered columns and foreign keys.
// Foreign keys stay a separate list even though each is also a constraint.
type Table struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	RowCount    *int64          `json:"row_count"`
	Columns     []Column        `json:"columns"`
	ForeignKeys []ForeignKeyRow `json:"foreign_keys"`
}

// Column is a table column plus the type labels of every constraint whose
// column list contains it.
type Column struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Nullable    bool     `json:"nullable"`
	Default     *string  `json:"default"`
	Description *string  `json:"description"`
	Constraints []string `json:"constraints"`
}
