package toolkit

import (
	"sort"

	"segstats/domain/dataset"
)

// Contingency is a cross-tabulation of two categorical columns.
// Rows and columns are the observed categories in sorted order.
type Contingency struct {
	RowLabels []string
	ColLabels []string
	Counts    [][]int
	N         int
}

// CrossTabulate counts co-occurrences of rows × cols. Both columns must have
// the same length.
func CrossTabulate(rows, cols dataset.Column) Contingency {
	rowLabels := observedLabels(rows)
	colLabels := observedLabels(cols)
	rowPos := positions(rowLabels)
	colPos := positions(colLabels)

	counts := make([][]int, len(rowLabels))
	for i := range counts {
		counts[i] = make([]int, len(colLabels))
	}
	for r := 0; r < rows.Len(); r++ {
		counts[rowPos[rows.Key(r)]][colPos[cols.Key(r)]]++
	}

	return Contingency{
		RowLabels: rowLabels,
		ColLabels: colLabels,
		Counts:    counts,
		N:         rows.Len(),
	}
}

// Margins returns row and column totals
func (c Contingency) Margins() (rowTotals, colTotals []int) {
	rowTotals = make([]int, len(c.RowLabels))
	colTotals = make([]int, len(c.ColLabels))
	for i, row := range c.Counts {
		for j, v := range row {
			rowTotals[i] += v
			colTotals[j] += v
		}
	}
	return rowTotals, colTotals
}

// Expected returns the frequencies expected under independence
func (c Contingency) Expected() [][]float64 {
	rowTotals, colTotals := c.Margins()
	expected := make([][]float64, len(rowTotals))
	for i := range expected {
		expected[i] = make([]float64, len(colTotals))
		for j := range colTotals {
			expected[i][j] = float64(rowTotals[i]) * float64(colTotals[j]) / float64(c.N)
		}
	}
	return expected
}

// DegreesOfFreedom is (r-1)(k-1)
func (c Contingency) DegreesOfFreedom() int {
	return (len(c.RowLabels) - 1) * (len(c.ColLabels) - 1)
}

func observedLabels(col dataset.Column) []string {
	seen := make(map[string]bool)
	var labels []string
	for i := 0; i < col.Len(); i++ {
		k := col.Key(i)
		if !seen[k] {
			seen[k] = true
			labels = append(labels, k)
		}
	}
	sort.Strings(labels)
	return labels
}

func positions(labels []string) map[string]int {
	pos := make(map[string]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	return pos
}
