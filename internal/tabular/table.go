package tabular

import "fmt"

// Row is one record, positional against its Table's Schema.
type Row []Value

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Table is an ordered schema plus a row multiset conforming to it. Row order
// is not semantically significant - two Tables produced by the same
// transformation may differ in row order and still be considered equal by
// callers that compare as multisets.
type Table struct {
	schema Schema
	rows   []Row
}

// New builds a Table, validating that every row has one value per schema
// column and that non-null values match their column's declared type.
func New(schema Schema, rows []Row) (Table, error) {
	cols := schema.Columns()
	for ri, row := range rows {
		if len(row) != len(cols) {
			return Table{}, fmt.Errorf("tabular: row %d has %d values, schema has %d columns", ri, len(row), len(cols))
		}
		for ci, v := range row {
			if err := v.CheckType(cols[ci].Type); err != nil {
				return Table{}, fmt.Errorf("tabular: row %d column %q: %w", ri, cols[ci].Name, err)
			}
			if v.IsNull() && !cols[ci].Nullable {
				return Table{}, fmt.Errorf("tabular: row %d column %q is null but column is not nullable", ri, cols[ci].Name)
			}
		}
	}
	return Table{schema: schema, rows: rows}, nil
}

// Schema returns the table's schema.
func (t Table) Schema() Schema { return t.schema }

// Rows returns the table's rows. Callers must treat the returned slice as
// read-only; Table methods never mutate it in place.
func (t Table) Rows() []Row { return t.rows }

// NumRows returns the row count.
func (t Table) NumRows() int { return len(t.rows) }

// Filter returns a new Table holding the rows for which pred returns true.
func (t Table) Filter(pred func(Row) bool) Table {
	out := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return Table{schema: t.schema, rows: out}
}

// WithNullColumn returns a new Table with col appended to the schema and
// every existing row extended with a null value in that position. Per the
// schema-alignment contract, the appended column is always nullable
// regardless of col.Nullable.
func (t Table) WithNullColumn(col Column) Table {
	col.Nullable = true
	newSchema := t.schema.WithColumn(col)
	newRows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		nr := make(Row, len(r)+1)
		copy(nr, r)
		nr[len(r)] = Null()
		newRows[i] = nr
	}
	return Table{schema: newSchema, rows: newRows}
}

// Project returns a new Table with columns reordered/subset to match
// schema, which must name only columns present in t (by name and type).
func (t Table) Project(schema Schema) (Table, error) {
	idx := make([]int, schema.Len())
	for i, c := range schema.Columns() {
		srcCol, ok := t.schema.Column(c.Name)
		if !ok {
			return Table{}, fmt.Errorf("tabular: project: column %q not found in source schema", c.Name)
		}
		if srcCol.Type != c.Type {
			return Table{}, fmt.Errorf("tabular: project: column %q type mismatch (%v vs %v)", c.Name, srcCol.Type, c.Type)
		}
		idx[i] = t.schema.IndexOf(c.Name)
	}
	newRows := make([]Row, len(t.rows))
	for ri, r := range t.rows {
		nr := make(Row, len(idx))
		for i, si := range idx {
			nr[i] = r[si]
		}
		newRows[ri] = nr
	}
	return Table{schema: schema, rows: newRows}, nil
}

// Union returns the concatenation of t and other, which must share an
// identical schema (column names, types, nullability, and order). Row order
// in the result is t's rows followed by other's; callers must compare
// results as multisets per the engine's determinism contract.
func (t Table) Union(other Table) (Table, error) {
	if !t.schema.Equal(other.schema) {
		return Table{}, fmt.Errorf("tabular: union: schemas are not identical")
	}
	out := make([]Row, 0, len(t.rows)+len(other.rows))
	out = append(out, t.rows...)
	out = append(out, other.rows...)
	return Table{schema: t.schema, rows: out}, nil
}

// Get returns the value of column name in row r against schema s.
func Get(s Schema, r Row, name string) (Value, error) {
	i := s.IndexOf(name)
	if i < 0 {
		return Value{}, fmt.Errorf("tabular: column %q not found", name)
	}
	return r[i], nil
}
