package toolkit

import (
	"errors"
	"testing"

	"segstats/domain/core"
	"segstats/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankDifferences_ReferenceValues(t *testing.T) {
	tests := []struct {
		name    string
		samples map[string][]float64
		order   []string
		wantH   float64
		wantP   float64
	}{
		{
			name:    "interleaved groups",
			samples: map[string][]float64{"x": {1, 3, 5, 7, 9}, "y": {2, 4, 6, 8, 10}},
			order:   []string{"x", "y"},
			wantH:   0.2727272727,
			wantP:   0.6015081344,
		},
		{
			name:    "heavy ties",
			samples: map[string][]float64{"x": {1, 1, 1}, "y": {2, 2, 2}, "z": {2, 2}},
			order:   []string{"x", "y", "z"},
			wantH:   7.0,
			wantP:   0.0301973834,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := groupedTable(t, "cluster", tt.samples, tt.order)

			results, err := NewGroupRankTester().TestRankDifferences(tbl, "cluster", []string{"value"})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.InDelta(t, tt.wantH, results[0].Statistic, 1e-9)
			assert.InDelta(t, tt.wantP, results[0].PValue, 1e-9)
			assert.Equal(t, len(tt.order), results[0].Groups)
			assert.Equal(t, tbl.NumRows(), results[0].N)
		})
	}
}

func TestRankDifferences_SkipsGroupingColumn(t *testing.T) {
	tbl := dataset.MustNewTable(
		dataset.NewNumericColumn("cluster", []float64{0, 0, 0, 1, 1, 1}),
		dataset.NewNumericColumn("age", []float64{21, 25, 23, 50, 61, 55}),
		dataset.NewNumericColumn("income", []float64{30, 32, 31, 90, 95, 99}),
	)

	results, err := NewGroupRankTester().TestRankDifferences(tbl, "cluster", tbl.Names())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "age", results[0].Column)
	assert.Equal(t, "income", results[1].Column)
	for _, res := range results {
		assert.Equal(t, "cluster", res.GroupColumn)
		assert.Less(t, res.PValue, 0.1)
	}
}

func TestRankDifferences_Errors(t *testing.T) {
	tests := []struct {
		name  string
		table *dataset.Table
		want  error
	}{
		{"single group", dataset.MustNewTable(
			dataset.NewCategoricalColumn("cluster", []string{"a", "a"}),
			dataset.NewNumericColumn("value", []float64{1, 2}),
		), core.ErrInsufficientGroups},
		{"all tied", dataset.MustNewTable(
			dataset.NewCategoricalColumn("cluster", []string{"a", "a", "b", "b"}),
			dataset.NewNumericColumn("value", []float64{5, 5, 5, 5}),
		), core.ErrDegenerateColumn},
		{"categorical tested column", dataset.MustNewTable(
			dataset.NewCategoricalColumn("cluster", []string{"a", "b"}),
			dataset.NewCategoricalColumn("value", []string{"x", "y"}),
		), core.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGroupRankTester().TestRankDifferences(tt.table, "cluster", []string{"value"})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAverageRanks(t *testing.T) {
	got := averageRanks([]float64{10, 20, 10, 30, 20, 20})
	assert.Equal(t, []float64{1.5, 4, 1.5, 6, 4, 4}, got)
	assert.Equal(t, 30.0, tieSum([]float64{10, 20, 10, 30, 20, 20}))
}
