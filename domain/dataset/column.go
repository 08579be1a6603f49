package dataset

import (
	"fmt"
	"strconv"
)

// ColumnKind tags a column as numeric or categorical
type ColumnKind int

const (
	KindNumeric ColumnKind = iota + 1
	KindCategorical
)

// String returns the kind name
func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is a named, typed, immutable vector of observations.
// Numeric columns hold float64 values; categorical columns hold labels and
// optionally a declared level set that may include unobserved categories.
type Column struct {
	name    string
	kind    ColumnKind
	numbers []float64
	labels  []string
	levels  []string
}

// NewNumericColumn copies values into a numeric column
func NewNumericColumn(name string, values []float64) Column {
	return Column{
		name:    name,
		kind:    KindNumeric,
		numbers: append([]float64(nil), values...),
	}
}

// NewCategoricalColumn copies values into a categorical column whose levels
// are the distinct values in first-appearance order.
func NewCategoricalColumn(name string, values []string) Column {
	return Column{
		name:   name,
		kind:   KindCategorical,
		labels: append([]string(nil), values...),
	}
}

// NewCategoricalColumnWithLevels declares the full level set. Every value must
// be one of the levels and levels must be unique.
func NewCategoricalColumnWithLevels(name string, values, levels []string) (Column, error) {
	seen := make(map[string]bool, len(levels))
	for _, level := range levels {
		if seen[level] {
			return Column{}, fmt.Errorf("column %s: duplicate level %q", name, level)
		}
		seen[level] = true
	}
	for i, v := range values {
		if !seen[v] {
			return Column{}, fmt.Errorf("column %s: row %d value %q is not a declared level", name, i, v)
		}
	}

	col := NewCategoricalColumn(name, values)
	col.levels = append([]string(nil), levels...)
	return col, nil
}

// Name returns the column name
func (c Column) Name() string { return c.name }

// Kind returns the column kind
func (c Column) Kind() ColumnKind { return c.kind }

// IsNumeric reports whether the column holds numbers
func (c Column) IsNumeric() bool { return c.kind == KindNumeric }

// IsCategorical reports whether the column holds labels
func (c Column) IsCategorical() bool { return c.kind == KindCategorical }

// Len returns the number of rows
func (c Column) Len() int {
	if c.kind == KindNumeric {
		return len(c.numbers)
	}
	return len(c.labels)
}

// Float64s returns a copy of the numeric values; nil for categorical columns.
func (c Column) Float64s() []float64 {
	if c.kind != KindNumeric {
		return nil
	}
	return append([]float64(nil), c.numbers...)
}

// Float returns the numeric value at row i
func (c Column) Float(i int) float64 { return c.numbers[i] }

// Key returns the grouping key of row i: the label for categorical columns,
// the shortest round-trip formatting for numeric ones.
func (c Column) Key(i int) string {
	if c.kind == KindNumeric {
		return strconv.FormatFloat(c.numbers[i], 'g', -1, 64)
	}
	return c.labels[i]
}

// Strings returns every row's key
func (c Column) Strings() []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.Key(i)
	}
	return out
}

// Levels returns the declared levels, or the distinct keys in first-appearance order.
func (c Column) Levels() []string {
	if c.levels != nil {
		return append([]string(nil), c.levels...)
	}
	seen := make(map[string]bool)
	var levels []string
	for i := 0; i < c.Len(); i++ {
		k := c.Key(i)
		if !seen[k] {
			seen[k] = true
			levels = append(levels, k)
		}
	}
	return levels
}

// Distinct returns the number of distinct observed keys
func (c Column) Distinct() int {
	seen := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		seen[c.Key(i)] = struct{}{}
	}
	return len(seen)
}

// take builds a derived column holding the given rows
func (c Column) take(rows []int) Column {
	out := Column{name: c.name, kind: c.kind, levels: c.levels}
	switch c.kind {
	case KindNumeric:
		out.numbers = make([]float64, len(rows))
		for i, r := range rows {
			out.numbers[i] = c.numbers[r]
		}
	default:
		out.labels = make([]string, len(rows))
		for i, r := range rows {
			out.labels[i] = c.labels[r]
		}
	}
	return out
}
