package catalog

import (
	"context"
	"fmt"
	"slices"
)

// Describe builds the full nested database document: every non-system
// schema, each schema's base tables, and each table's columns and foreign
// keys. It composes the facet queries in dependency order on a single
// connection pool; no snapshot isolation is requested, so a concurrent
// schema migration can yield internally inconsistent cross-references.
func (s *Store) Describe(ctx context.Context) (*Database, error) {
	schemas, err := s.ListSchemas(ctx)
	if err != nil {
		return nil, err
	}

	db := &Database{Schemas: make([]Schema, 0, len(schemas))}

	for _, sr := range schemas {
		sch := Schema{
			Name:        sr.Name,
			Description: sr.Description,
			Tables:      make([]Table, 0),
		}

		tables, err := s.ListTables(ctx, sr.Name)
		if err != nil {
			return nil, err
		}

		for _, tr := range tables {
			table, err := s.describeTable(ctx, sr.Name, tr)
			if err != nil {
				return nil, fmt.Errorf("describing %s.%s: %w", sr.Name, tr.Name, err)
			}
			sch.Tables = append(sch.Tables, *table)
		}

		db.Schemas = append(db.Schemas, sch)
	}

	return db, nil
}

// describeTable fetches columns, constraints, and foreign keys for one
// table and attaches the constraint-type labels to each member column.
func (s *Store) describeTable(ctx context.Context, schema string, tr TableRow) (*Table, error) {
	columns, err := s.ListColumns(ctx, schema, tr.Name)
	if err != nil {
		return nil, err
	}

	constraints, err := s.ListConstraints(ctx, schema, tr.Name)
	if err != nil {
		return nil, err
	}

	fks, err := s.ListForeignKeys(ctx, schema, tr.Name)
	if err != nil {
		return nil, err
	}

	table := &Table{
		Name:        tr.Name,
		Description: tr.Description,
		RowCount:    tr.TotalRows,
		Columns:     make([]Column, 0, len(columns)),
		ForeignKeys: fks,
	}

	// A name-membership scan over catalog-sized inputs; no index needed.
	for _, cr := range columns {
		labels := make([]string, 0)
		for _, con := range constraints {
			if slices.Contains(con.Columns, cr.Name) {
				labels = append(labels, con.Type)
			}
		}

		table.Columns = append(table.Columns, Column{
			Name:        cr.Name,
			Type:        cr.DataType,
			Nullable:    cr.Nullable,
			Default:     cr.Default,
			Description: cr.Description,
			Constraints: labels,
		})
	}

	return table, nil
}
