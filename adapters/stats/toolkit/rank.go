package toolkit

import (
	"sort"

	"segstats/domain/core"
	"segstats/domain/dataset"
	"segstats/domain/stats"
)

// GroupRankTester runs the Kruskal-Wallis H test on the raw, unbalanced groups.
type GroupRankTester struct{}

// NewGroupRankTester creates a rank-sum tester
func NewGroupRankTester() *GroupRankTester {
	return &GroupRankTester{}
}

// TestRankDifferences emits one result per numeric column other than groupColumn
func (t *GroupRankTester) TestRankDifferences(table *dataset.Table, groupColumn string, numericColumns []string) ([]stats.GroupTestResult, error) {
	groups, err := partition(table, groupColumn)
	if err != nil {
		return nil, err
	}
	cols, err := testedColumns(table, groupColumn, numericColumns)
	if err != nil {
		return nil, err
	}

	rows := groupRows(groups)
	results := make([]stats.GroupTestResult, 0, len(cols))
	for _, col := range cols {
		samples := groupValues(col, rows)
		for _, s := range samples {
			if err := checkFinite(col.Name(), s); err != nil {
				return nil, err
			}
		}

		h, p, ok := kruskalWallis(samples)
		if !ok {
			return nil, core.NewDegenerateColumnError(col.Name(), "all values are identical")
		}
		results = append(results, stats.GroupTestResult{
			GroupColumn: groupColumn,
			Column:      col.Name(),
			Statistic:   h,
			PValue:      p,
			Groups:      len(samples),
			N:           table.NumRows(),
		})
	}
	return results, nil
}

// kruskalWallis returns the tie-corrected H statistic and its chi-square p-value.
// ok is false when every observation is tied.
func kruskalWallis(groups [][]float64) (h, p float64, ok bool) {
	var all []float64
	for _, g := range groups {
		all = append(all, g...)
	}
	n := float64(len(all))
	ranks := averageRanks(all)

	correction := 1 - tieSum(all)/(n*n*n-n)
	if correction == 0 {
		return 0, 1, false
	}

	sum := 0.0
	offset := 0
	for _, g := range groups {
		r := 0.0
		for i := range g {
			r += ranks[offset+i]
		}
		offset += len(g)
		sum += r * r / float64(len(g))
	}

	h = (12/(n*(n+1))*sum - 3*(n+1)) / correction
	return h, ChiSquarePValue(h, len(groups)-1), true
}

// averageRanks assigns 1-based ranks, averaging over ties
func averageRanks(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	ranks := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// tieSum returns the sum of t^3 - t over runs of tied values
func tieSum(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	sum := 0.0
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[i] {
			j++
		}
		t := float64(j - i + 1)
		sum += t*t*t - t
		i = j + 1
	}
	return sum
}
