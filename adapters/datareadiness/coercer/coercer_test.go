package coercer

import (
	"testing"

	"segstats/domain/dataset"

	"github.com/stretchr/testify/assert"
)

func TestParseNumeric(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.5 ", 3.5, true},
		{"$1,250.00", 1250, true},
		{"(12)", -12, true},
		{"15%", 15, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"Male", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		got, ok := c.ParseNumeric(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

func TestAnalyzeColumn(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	numeric := c.AnalyzeColumn([]string{"1", "2", "", "4"})
	assert.Equal(t, dataset.KindNumeric, numeric.RecommendedKind)
	assert.Equal(t, 3, numeric.ValidCount)
	assert.Equal(t, 1.0, numeric.NumericRatio)

	mixed := c.AnalyzeColumn([]string{"1", "2", "three"})
	assert.Equal(t, dataset.KindCategorical, mixed.RecommendedKind)
	assert.Equal(t, 3, mixed.DistinctCount)

	blank := c.AnalyzeColumn([]string{"", " "})
	assert.Equal(t, dataset.KindCategorical, blank.RecommendedKind)

	lenient := NewTypeCoercer(CoercionConfig{NumericThreshold: 0.5})
	assert.Equal(t, dataset.KindNumeric, lenient.AnalyzeColumn([]string{"1", "2", "three"}).RecommendedKind)
}

func TestNormalizeLabel(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	assert.Equal(t, "Home & Garden", c.NormalizeLabel("  Home   &\tGarden "))

	raw := NewTypeCoercer(CoercionConfig{NumericThreshold: 1})
	assert.Equal(t, "Home   Garden", raw.NormalizeLabel(" Home   Garden "))
}
