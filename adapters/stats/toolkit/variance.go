package toolkit

import (
	"math"
	"math/rand"

	"segstats/domain/core"
	"segstats/domain/dataset"
	"segstats/domain/stats"
)

// minBalancedGroupSize keeps N-k positive in the F reference distribution
const minBalancedGroupSize = 2

// GroupVarianceTester runs the median-centred Levene (Brown-Forsythe) test on
// group samples balanced down to the smallest group's size.
type GroupVarianceTester struct{}

// NewGroupVarianceTester creates a variance-equality tester
func NewGroupVarianceTester() *GroupVarianceTester {
	return &GroupVarianceTester{}
}

// TestVarianceEquality emits one result per numeric column other than
// groupColumn. The balanced draw is seeded by seed alone: the same seed and
// table always give the same statistics, different seeds may not.
func (t *GroupVarianceTester) TestVarianceEquality(table *dataset.Table, groupColumn string, numericColumns []string, seed int64) ([]stats.GroupTestResult, error) {
	groups, err := partition(table, groupColumn)
	if err != nil {
		return nil, err
	}
	cols, err := testedColumns(table, groupColumn, numericColumns)
	if err != nil {
		return nil, err
	}

	minSize := minGroupSize(groups)
	if minSize < minBalancedGroupSize {
		return nil, core.NewInsufficientSampleError(groupColumn+" (smallest group)", minSize, minBalancedGroupSize)
	}

	rng := rand.New(rand.NewSource(seed))
	balanced := BalancedSample(groups, minSize, rng)

	results := make([]stats.GroupTestResult, 0, len(cols))
	for _, col := range cols {
		samples := groupValues(col, balanced)
		for _, s := range samples {
			if err := checkFinite(col.Name(), s); err != nil {
				return nil, err
			}
		}

		w, p, ok := brownForsythe(samples)
		if !ok {
			return nil, core.NewDegenerateColumnError(col.Name(), "no dispersion around group medians")
		}
		results = append(results, stats.GroupTestResult{
			GroupColumn: groupColumn,
			Column:      col.Name(),
			Statistic:   w,
			PValue:      p,
			Groups:      len(samples),
			N:           minSize * len(samples),
		})
	}
	return results, nil
}

// brownForsythe computes Levene's W on absolute deviations from group medians.
// ok is false when the within-group dispersion is zero.
func brownForsythe(groups [][]float64) (w, p float64, ok bool) {
	k := len(groups)
	total := 0
	z := make([][]float64, k)
	zbar := make([]float64, k)
	for i, g := range groups {
		med := median(g)
		z[i] = make([]float64, len(g))
		for j, v := range g {
			z[i][j] = math.Abs(v - med)
		}
		zbar[i] = mean(z[i])
		total += len(g)
	}

	grand := 0.0
	for i, g := range groups {
		grand += zbar[i] * float64(len(g))
	}
	grand /= float64(total)

	between, within := 0.0, 0.0
	for i, g := range groups {
		d := zbar[i] - grand
		between += float64(len(g)) * d * d
		for _, zij := range z[i] {
			e := zij - zbar[i]
			within += e * e
		}
	}
	if within == 0 {
		return math.NaN(), math.NaN(), false
	}

	dfBetween, dfWithin := k-1, total-k
	w = float64(dfWithin) * between / (float64(dfBetween) * within)
	return w, FTestPValue(w, dfBetween, dfWithin), true
}
