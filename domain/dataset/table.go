package dataset

import (
	"fmt"

	"segstats/domain/core"
)

// Table is an immutable, column-oriented dataset. Derived tables produced by
// Select, Filter, Take and GroupBy never share mutable state with the source.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// Group is the set of row positions sharing one grouping key
type Group struct {
	Key  string
	Rows []int
}

// Size returns the number of rows in the group
func (g Group) Size() int { return len(g.Rows) }

// NewTable validates column lengths and name uniqueness
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col.Name() == "" {
			return nil, fmt.Errorf("%w: column %d has no name", core.ErrInvalidTable, i)
		}
		if _, dup := t.index[col.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate column %s", core.ErrInvalidTable, col.Name())
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("%w: column %s has %d rows, expected %d", core.ErrInvalidTable, col.Name(), col.Len(), t.rows)
		}
		t.index[col.Name()] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustNewTable is NewTable that panics on error; intended for fixtures.
func MustNewTable(columns ...Column) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the column count
func (t *Table) NumColumns() int { return len(t.columns) }

// Names returns column names in table order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name()
	}
	return names
}

// Columns returns the columns in table order
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks up a column by name
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, core.NewColumnNotFoundError(name)
	}
	return t.columns[i], nil
}

// Select returns a table with the named columns in the given order
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return NewTable(cols...)
}

// Drop returns a table without the named columns; unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		skip[name] = true
	}
	var cols []Column
	for _, col := range t.columns {
		if !skip[col.Name()] {
			cols = append(cols, col)
		}
	}
	return t.derive(cols, t.rows)
}

// OfKind returns the columns of one kind, preserving order
func (t *Table) OfKind(kind ColumnKind) *Table {
	var cols []Column
	for _, col := range t.columns {
		if col.Kind() == kind {
			cols = append(cols, col)
		}
	}
	return t.derive(cols, t.rows)
}

// NumericColumns is OfKind(KindNumeric)
func (t *Table) NumericColumns() *Table { return t.OfKind(KindNumeric) }

// CategoricalColumns is OfKind(KindCategorical)
func (t *Table) CategoricalColumns() *Table { return t.OfKind(KindCategorical) }

// Take returns the given rows, in order, as a new table
func (t *Table) Take(rows []int) *Table {
	cols := make([]Column, len(t.columns))
	for i, col := range t.columns {
		cols[i] = col.take(rows)
	}
	return t.derive(cols, len(rows))
}

// Filter keeps the rows whose key in column equals value
func (t *Table) Filter(column, value string) (*Table, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	var rows []int
	for i := 0; i < col.Len(); i++ {
		if col.Key(i) == value {
			rows = append(rows, i)
		}
	}
	return t.Take(rows), nil
}

// GroupBy partitions row positions by the column's levels. Declared levels
// that never occur produce groups with no rows.
func (t *Table) GroupBy(column string) ([]Group, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, err
	}

	levels := col.Levels()
	groups := make([]Group, len(levels))
	pos := make(map[string]int, len(levels))
	for i, level := range levels {
		groups[i] = Group{Key: level}
		pos[level] = i
	}
	for r := 0; r < col.Len(); r++ {
		g := pos[col.Key(r)]
		groups[g].Rows = append(groups[g].Rows, r)
	}
	return groups, nil
}

func (t *Table) derive(cols []Column, rows int) *Table {
	out := &Table{
		columns: cols,
		index:   make(map[string]int, len(cols)),
		rows:    rows,
	}
	for i, col := range cols {
		out.index[col.Name()] = i
	}
	return out
}
