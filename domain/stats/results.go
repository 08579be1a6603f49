package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"segstats/domain/core"
)

// Alternative selects the directionality of the skew and kurtosis tests
type Alternative string

const (
	TwoSided Alternative = "two-sided"
	Less     Alternative = "less"
	Greater  Alternative = "greater"
)

// ParseAlternative accepts "two-sided", "less" or "greater"; empty means two-sided.
func ParseAlternative(s string) (Alternative, error) {
	switch Alternative(strings.ToLower(strings.TrimSpace(s))) {
	case "", TwoSided:
		return TwoSided, nil
	case Less:
		return Less, nil
	case Greater:
		return Greater, nil
	}
	return "", fmt.Errorf("%w: %q (want two-sided, less or greater)", core.ErrInvalidAlternative, s)
}

// ColumnResult is the shape battery outcome for one numeric column.
// Statistics of a degenerate (zero-variance) column are NaN and marshal as null.
type ColumnResult struct {
	Column         string  `json:"column"`
	N              int     `json:"n"`
	Skew           float64 `json:"skew"`
	SkewPValue     float64 `json:"skew_pval"`
	Kurtosis       float64 `json:"kurtosis"`
	KurtosisPValue float64 `json:"kurt_pval"`
	ShapiroPValue  float64 `json:"shap_wilks_norm_pval"`
	NormalPValue   float64 `json:"normaltest_pval"`
	Degenerate     bool    `json:"degenerate,omitempty"`
}

// MarshalJSON renders NaN statistics as null
func (r ColumnResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column         string   `json:"column"`
		N              int      `json:"n"`
		Skew           *float64 `json:"skew"`
		SkewPValue     *float64 `json:"skew_pval"`
		Kurtosis       *float64 `json:"kurtosis"`
		KurtosisPValue *float64 `json:"kurt_pval"`
		ShapiroPValue  *float64 `json:"shap_wilks_norm_pval"`
		NormalPValue   *float64 `json:"normaltest_pval"`
		Degenerate     bool     `json:"degenerate,omitempty"`
	}{
		Column:         r.Column,
		N:              r.N,
		Skew:           finite(r.Skew),
		SkewPValue:     finite(r.SkewPValue),
		Kurtosis:       finite(r.Kurtosis),
		KurtosisPValue: finite(r.KurtosisPValue),
		ShapiroPValue:  finite(r.ShapiroPValue),
		NormalPValue:   finite(r.NormalPValue),
		Degenerate:     r.Degenerate,
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ShapeReport holds one ColumnResult per column, indexed by column name
type ShapeReport struct {
	results []ColumnResult
	index   map[string]int
}

// NewShapeReport indexes results by column; duplicate columns are rejected.
func NewShapeReport(results []ColumnResult) (ShapeReport, error) {
	r := ShapeReport{
		results: append([]ColumnResult(nil), results...),
		index:   make(map[string]int, len(results)),
	}
	for i, res := range results {
		if _, dup := r.index[res.Column]; dup {
			return ShapeReport{}, fmt.Errorf("duplicate shape result for column %s", res.Column)
		}
		r.index[res.Column] = i
	}
	return r, nil
}

// Len returns the number of columns in the report
func (r ShapeReport) Len() int { return len(r.results) }

// Get looks up the result of a column
func (r ShapeReport) Get(column string) (ColumnResult, bool) {
	i, ok := r.index[column]
	if !ok {
		return ColumnResult{}, false
	}
	return r.results[i], true
}

// Results returns the rows in input column order
func (r ShapeReport) Results() []ColumnResult {
	return append([]ColumnResult(nil), r.results...)
}

// MarshalJSON renders the rows as an ordered array
func (r ShapeReport) MarshalJSON() ([]byte, error) {
	if r.results == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.results)
}

// GroupTestResult is one k-group test of a numeric column across the groups
// of a grouping column.
type GroupTestResult struct {
	GroupColumn string  `json:"group_column"`
	Column      string  `json:"column"`
	Statistic   float64 `json:"statistic"`
	PValue      float64 `json:"p_value"`
	Groups      int     `json:"groups"`
	N           int     `json:"n"`
}

// Interpretation is the qualitative strength of a Cramér's V value
type Interpretation string

const (
	VeryWeak         Interpretation = "Very weak"
	Weak             Interpretation = "Weak"
	Moderate         Interpretation = "Moderate"
	RelativelyStrong Interpretation = "Relatively strong"
	Strong           Interpretation = "Strong"
	VeryStrong       Interpretation = "Very strong"
)

var interpretationBands = []struct {
	below float64
	label Interpretation
}{
	{0.1, VeryWeak},
	{0.2, Weak},
	{0.4, Moderate},
	{0.6, RelativelyStrong},
	{0.8, Strong},
}

// Interpret maps Cramér's V onto its band; each bound is exclusive.
func Interpret(v float64) Interpretation {
	for _, band := range interpretationBands {
		if v < band.below {
			return band.label
		}
	}
	return VeryStrong
}

// AssociationResult is the chi-square test of one feature against the target
type AssociationResult struct {
	Column           string         `json:"column"`
	ChiSquare        float64        `json:"chi2"`
	PValue           string         `json:"p_value"`
	RawPValue        float64        `json:"p_value_raw"`
	DegreesOfFreedom int            `json:"dof"`
	Expected         [][]float64    `json:"expected"`
	CramersV         float64        `json:"cramers_v"`
	Interpretation   Interpretation `json:"interpretation"`
	N                int            `json:"n"`
}

// FormatPValue renders p in scientific notation with two significant digits
func FormatPValue(p float64) string {
	return strconv.FormatFloat(p, 'e', 1, 64)
}

// SortByStrength returns a copy ordered by descending Cramér's V, ties kept in input order.
func SortByStrength(results []AssociationResult) []AssociationResult {
	out := append([]AssociationResult(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CramersV > out[j].CramersV
	})
	return out
}
