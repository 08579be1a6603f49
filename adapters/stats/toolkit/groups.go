package toolkit

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"segstats/domain/core"
	"segstats/domain/dataset"
)

// partition groups the table by column and rejects fewer than two populated
// groups or any declared level without rows.
func partition(table *dataset.Table, groupColumn string) ([]dataset.Group, error) {
	groups, err := table.GroupBy(groupColumn)
	if err != nil {
		return nil, err
	}

	populated := 0
	for _, g := range groups {
		if g.Size() > 0 {
			populated++
		}
	}
	if populated < 2 {
		return nil, core.NewInsufficientGroupsError(groupColumn, populated)
	}
	for _, g := range groups {
		if g.Size() == 0 {
			return nil, core.NewEmptyGroupError(groupColumn, g.Key)
		}
	}
	return groups, nil
}

// testedColumns removes the grouping column and resolves the rest as numeric columns
func testedColumns(table *dataset.Table, groupColumn string, names []string) ([]dataset.Column, error) {
	var cols []dataset.Column
	for _, name := range names {
		if name == groupColumn {
			continue
		}
		col, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		if !col.IsNumeric() {
			return nil, core.NewTypeMismatchError(name, col.Kind().String())
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: nothing left after excluding %s", core.ErrNoVarianceColumns, groupColumn)
	}
	return cols, nil
}

// groupValues gathers the column's values for each group's rows
func groupValues(col dataset.Column, rows [][]int) [][]float64 {
	out := make([][]float64, len(rows))
	for i, idx := range rows {
		out[i] = make([]float64, len(idx))
		for j, r := range idx {
			out[i][j] = col.Float(r)
		}
	}
	return out
}

func groupRows(groups []dataset.Group) [][]int {
	rows := make([][]int, len(groups))
	for i, g := range groups {
		rows[i] = g.Rows
	}
	return rows
}

// BalancedSample draws size rows without replacement from every group.
// Groups are visited in order so a given rng state always yields the same draw.
func BalancedSample(groups []dataset.Group, size int, rng *rand.Rand) [][]int {
	out := make([][]int, len(groups))
	for i, g := range groups {
		perm := rng.Perm(g.Size())[:size]
		picked := make([]int, size)
		for j, p := range perm {
			picked[j] = g.Rows[p]
		}
		sort.Ints(picked)
		out[i] = picked
	}
	return out
}

func minGroupSize(groups []dataset.Group) int {
	smallest := math.MaxInt
	for _, g := range groups {
		if g.Size() < smallest {
			smallest = g.Size()
		}
	}
	return smallest
}

func checkFinite(name string, x []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.NewNonFiniteValueError(name, i)
		}
	}
	return nil
}
