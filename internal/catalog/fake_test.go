package catalog

import (
	"context"
	"fmt"
	"reflect"

	"github.com/pgscope/pgscope/internal/database"
)

// fakeDB scripts query results for store tests. onQuery and onQueryRow
// receive the SQL text and bound args and return the rows to serve.
type fakeDB struct {
	onQuery    func(sql string, args ...any) ([][]any, error)
	onQueryRow func(sql string, args ...any) ([]any, error)
	cols       []string // column names served by Rows.Columns
	queries    []string // SQL texts seen, in order
}

// withColumns sets the column names the fake's result sets report, which
// map-scanning through database.ScanRows requires.
func withColumns(f *fakeDB, cols []string) {
	f.cols = cols
}

func (f *fakeDB) Ping(context.Context) error { return nil }
func (f *fakeDB) Close()                     {}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (database.Rows, error) {
	f.queries = append(f.queries, sql)
	data, err := f.onQuery(sql, args...)
	if err != nil {
		return nil, err
	}
	return &scriptedRows{cols: f.cols, data: data}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) (database.Row, error) {
	f.queries = append(f.queries, sql)
	values, err := f.onQueryRow(sql, args...)
	if err != nil {
		return nil, err
	}
	return &scriptedRow{values: values}, nil
}

type scriptedRows struct {
	cols []string
	data [][]any
	pos  int
}

func (r *scriptedRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *scriptedRows) Scan(dest ...any) error {
	return assignRow(r.data[r.pos-1], dest)
}

func (r *scriptedRows) Columns() ([]string, error) { return r.cols, nil }
func (r *scriptedRows) Close()                     {}
func (r *scriptedRows) Err() error                 { return nil }

type scriptedRow struct {
	values []any
}

func (r *scriptedRow) Scan(dest ...any) error {
	return assignRow(r.values, dest)
}

// assignRow copies scripted values into scan destinations, zeroing the
// destination for nil values so pointer fields come out as Go nil.
func assignRow(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scripted row has %d values, scan wants %d", len(values), len(dest))
	}
	for i, val := range values {
		dv := reflect.ValueOf(dest[i]).Elem()
		if val == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		sv := reflect.ValueOf(val)
		if !sv.Type().AssignableTo(dv.Type()) {
			return fmt.Errorf("cannot assign %T to %s at position %d", val, dv.Type(), i)
		}
		dv.Set(sv)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

// strPtrs converts plain strings into the []*string shape the array
// aggregation queries scan into.
func strPtrs(names ...string) []*string {
	out := make([]*string, len(names))
	for i := range names {
		out[i] = &names[i]
	}
	return out
}
