package toolkit

import (
	"errors"
	"fmt"
	"testing"

	"segstats/domain/core"
	"segstats/domain/dataset"
	"segstats/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expandCounts builds two categorical columns whose cross-tabulation is counts
func expandCounts(target, feature string, counts [][]int) (dataset.Column, dataset.Column) {
	var t, f []string
	for i, row := range counts {
		for j, c := range row {
			for k := 0; k < c; k++ {
				t = append(t, fmt.Sprintf("t%d", i))
				f = append(f, fmt.Sprintf("f%d", j))
			}
		}
	}
	return dataset.NewCategoricalColumn(target, t), dataset.NewCategoricalColumn(feature, f)
}

func TestAssociation_ReferenceTable(t *testing.T) {
	target, feature := expandCounts("cluster", "preferred_category", [][]int{{10, 10, 20}, {20, 20, 20}})

	results, err := NewAssociationTester().TestAssociation(target, dataset.MustNewTable(feature))
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "preferred_category", res.Column)
	assert.InDelta(t, 2.7777777778, res.ChiSquare, 1e-9)
	assert.InDelta(t, 0.2493522088, res.RawPValue, 1e-9)
	assert.Equal(t, "2.5e-01", res.PValue)
	assert.Equal(t, 2, res.DegreesOfFreedom)
	assert.InDelta(t, 1.0/6, res.CramersV, 1e-9)
	assert.Equal(t, stats.Weak, res.Interpretation)
	assert.Equal(t, 100, res.N)

	want := [][]float64{{12, 12, 16}, {18, 18, 24}}
	for i := range want {
		for j := range want[i] {
			assert.InDelta(t, want[i][j], res.Expected[i][j], 1e-9)
		}
	}
}

func TestAssociation_ContinuityCorrection(t *testing.T) {
	target, feature := expandCounts("gender", "membership", [][]int{{30, 10}, {10, 30}})
	features := dataset.MustNewTable(feature)

	corrected, err := NewAssociationTester().TestAssociation(target, features)
	require.NoError(t, err)
	assert.InDelta(t, 18.05, corrected[0].ChiSquare, 1e-9)
	assert.InDelta(t, 2.151786437812016e-05, corrected[0].RawPValue, 1e-12)
	assert.InDelta(t, 0.475, corrected[0].CramersV, 1e-9)
	assert.Equal(t, stats.RelativelyStrong, corrected[0].Interpretation)

	plain, err := (&AssociationTester{Correction: false}).TestAssociation(target, features)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, plain[0].ChiSquare, 1e-9)
	assert.InDelta(t, 7.744216431044074e-06, plain[0].RawPValue, 1e-12)
	assert.InDelta(t, 0.5, plain[0].CramersV, 1e-9)
	assert.Equal(t, stats.RelativelyStrong, plain[0].Interpretation)
}

func TestAssociation_StrengthExtremes(t *testing.T) {
	target, independent := expandCounts("cluster", "independent", [][]int{{25, 25}, {25, 25}})
	_, perfect := expandCounts("cluster", "perfect", [][]int{{50, 0}, {0, 50}})

	results, err := NewAssociationTester().TestAssociation(target, dataset.MustNewTable(independent, perfect))
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "independent", results[0].Column)
	assert.InDelta(t, 0, results[0].ChiSquare, 1e-12)
	assert.InDelta(t, 1, results[0].RawPValue, 1e-12)
	assert.Equal(t, stats.VeryWeak, results[0].Interpretation)

	assert.Equal(t, "perfect", results[1].Column)
	assert.InDelta(t, 0.98, results[1].CramersV, 1e-9, "Yates shrinks the statistic slightly")
	assert.Equal(t, stats.VeryStrong, results[1].Interpretation)
	for _, res := range results {
		assert.GreaterOrEqual(t, res.CramersV, 0.0)
		assert.LessOrEqual(t, res.CramersV, 1.0)
	}
}

func TestAssociation_SkipsTargetAndKeepsOrder(t *testing.T) {
	target := dataset.NewCategoricalColumn("cluster", []string{"0", "0", "1", "1", "2", "2"})
	features := dataset.MustNewTable(
		dataset.NewCategoricalColumn("preferred_category", []string{"Books", "Books", "Sports", "Home", "Home", "Sports"}),
		target,
		dataset.NewCategoricalColumn("gender", []string{"Male", "Female", "Female", "Male", "Male", "Female"}),
	)

	results, err := NewAssociationTester().TestAssociation(target, features)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "preferred_category", results[0].Column)
	assert.Equal(t, "gender", results[1].Column)
}

func TestAssociation_Errors(t *testing.T) {
	target := dataset.NewCategoricalColumn("cluster", []string{"0", "1", "0", "1"})

	tests := []struct {
		name     string
		target   dataset.Column
		features *dataset.Table
		want     error
	}{
		{"numeric feature", target, dataset.MustNewTable(
			dataset.NewCategoricalColumn("gender", []string{"F", "M", "M", "F"}),
			dataset.NewNumericColumn("age", []float64{20, 30, 40, 50}),
		), core.ErrTypeMismatch},
		{"numeric target", dataset.NewNumericColumn("cluster", []float64{0, 1, 0, 1}), dataset.MustNewTable(
			dataset.NewCategoricalColumn("gender", []string{"F", "M", "M", "F"}),
		), core.ErrTypeMismatch},
		{"single category feature", target, dataset.MustNewTable(
			dataset.NewCategoricalColumn("country", []string{"NZ", "NZ", "NZ", "NZ"}),
		), core.ErrDegenerateAssociation},
		{"row mismatch", target, dataset.MustNewTable(
			dataset.NewCategoricalColumn("gender", []string{"F", "M"}),
		), core.ErrInvalidTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := NewAssociationTester().TestAssociation(tt.target, tt.features)
			assert.Nil(t, results)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCrossTabulateSortsLabels(t *testing.T) {
	rows := dataset.NewCategoricalColumn("r", []string{"b", "a", "b"})
	cols := dataset.NewCategoricalColumn("c", []string{"y", "x", "x"})

	ct := CrossTabulate(rows, cols)
	assert.Equal(t, []string{"a", "b"}, ct.RowLabels)
	assert.Equal(t, []string{"x", "y"}, ct.ColLabels)
	assert.Equal(t, [][]int{{1, 0}, {1, 1}}, ct.Counts)
	assert.Equal(t, 1, ct.DegreesOfFreedom())

	rowTotals, colTotals := ct.Margins()
	assert.Equal(t, []int{1, 2}, rowTotals)
	assert.Equal(t, []int{2, 1}, colTotals)
}

func TestToolkitOptions(t *testing.T) {
	tk := New(WithDegeneratePolicy(DegenerateMark), WithYatesCorrection(false))

	report, err := tk.Shape(dataset.MustNewTable(dataset.NewNumericColumn("flat", []float64{1, 1, 1, 1, 1, 1, 1, 1})), stats.TwoSided)
	require.NoError(t, err)
	flat, _ := report.Get("flat")
	assert.True(t, flat.Degenerate)

	target, feature := expandCounts("gender", "membership", [][]int{{30, 10}, {10, 30}})
	results, err := tk.TestAssociation(target, dataset.MustNewTable(feature))
	require.NoError(t, err)
	assert.InDelta(t, 20.0, results[0].ChiSquare, 1e-9)
}
