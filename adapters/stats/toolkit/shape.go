package toolkit

import (
	"fmt"
	"math"
	"strings"

	"segstats/domain/core"
	"segstats/domain/dataset"
	"segstats/domain/stats"
)

// MinShapeSampleSize is the smallest column the skew test accepts; it
// dominates the kurtosis (5) and Shapiro-Wilk (3) minimums.
const MinShapeSampleSize = 8

// DegeneratePolicy decides what Shape does with a zero-variance column
type DegeneratePolicy int

const (
	// DegenerateFail aborts with core.ErrDegenerateColumn
	DegenerateFail DegeneratePolicy = iota
	// DegenerateMark emits a row of NaN statistics flagged Degenerate
	DegenerateMark
)

// ParseDegeneratePolicy accepts "fail" or "mark"; empty means fail.
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return DegenerateFail, nil
	case "mark":
		return DegenerateMark, nil
	}
	return DegenerateFail, fmt.Errorf("unknown degenerate policy %q (want fail or mark)", s)
}

func (p DegeneratePolicy) String() string {
	if p == DegenerateMark {
		return "mark"
	}
	return "fail"
}

// ShapeTester runs the skew, kurtosis, Shapiro-Wilk and omnibus normality
// battery on every column of an all-numeric table.
type ShapeTester struct {
	Degenerate DegeneratePolicy
}

// NewShapeTester creates a tester that fails on degenerate columns
func NewShapeTester() *ShapeTester {
	return &ShapeTester{Degenerate: DegenerateFail}
}

// Shape tests every column independently. Skew and kurtosis p-values follow
// alt; the Shapiro-Wilk and omnibus p-values are always two-sided.
func (s *ShapeTester) Shape(table *dataset.Table, alt stats.Alternative) (stats.ShapeReport, error) {
	if alt == "" {
		alt = stats.TwoSided
	}

	results := make([]stats.ColumnResult, 0, table.NumColumns())
	for _, col := range table.Columns() {
		if !col.IsNumeric() {
			return stats.ShapeReport{}, core.NewTypeMismatchError(col.Name(), col.Kind().String())
		}
		res, err := s.testColumn(col.Name(), col.Float64s(), alt)
		if err != nil {
			return stats.ShapeReport{}, err
		}
		results = append(results, res)
	}
	return stats.NewShapeReport(results)
}

func (s *ShapeTester) testColumn(name string, x []float64, alt stats.Alternative) (stats.ColumnResult, error) {
	n := len(x)
	if err := checkFinite(name, x); err != nil {
		return stats.ColumnResult{}, err
	}
	if n < MinShapeSampleSize {
		return stats.ColumnResult{}, core.NewInsufficientSampleError(name, n, MinShapeSampleSize)
	}
	if isConstant(x) {
		return s.degenerate(name, n, "zero variance")
	}

	skew := skewness(x)
	zSkew := skewTestZ(skew, n)

	kurt := excessKurtosis(x)
	zKurt := kurtosisTestZ(kurt+3, n)
	if math.IsNaN(zKurt) {
		return s.degenerate(name, n, "kurtosis test undefined")
	}

	_, pShapiro, err := ShapiroWilk(x)
	if err != nil {
		return s.degenerate(name, n, err.Error())
	}

	k2 := zSkew*zSkew + zKurt*zKurt

	return stats.ColumnResult{
		Column:         name,
		N:              n,
		Skew:           skew,
		SkewPValue:     NormalPValue(zSkew, alt),
		Kurtosis:       kurt,
		KurtosisPValue: NormalPValue(zKurt, alt),
		ShapiroPValue:  pShapiro,
		NormalPValue:   ChiSquarePValue(k2, 2),
	}, nil
}

func (s *ShapeTester) degenerate(name string, n int, reason string) (stats.ColumnResult, error) {
	if s.Degenerate != DegenerateMark {
		return stats.ColumnResult{}, core.NewDegenerateColumnError(name, reason)
	}
	nan := math.NaN()
	return stats.ColumnResult{
		Column:         name,
		N:              n,
		Skew:           nan,
		SkewPValue:     nan,
		Kurtosis:       nan,
		KurtosisPValue: nan,
		ShapiroPValue:  nan,
		NormalPValue:   nan,
		Degenerate:     true,
	}, nil
}

// skewTestZ is D'Agostino's transformation of sample skewness to a normal deviate
func skewTestZ(g1 float64, n int) float64 {
	nf := float64(n)
	y := g1 * math.Sqrt(((nf+1)*(nf+3))/(6*(nf-2)))
	beta2 := (3 * (nf*nf + 27*nf - 70) * (nf + 1) * (nf + 3)) /
		((nf - 2) * (nf + 5) * (nf + 7) * (nf + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	return delta * math.Asinh(y/alpha)
}

// kurtosisTestZ is the Anscombe-Glynn transformation of Pearson kurtosis b2.
// It returns NaN when the transformation is undefined.
func kurtosisTestZ(b2 float64, n int) float64 {
	nf := float64(n)
	e := 3 * (nf - 1) / (nf + 1)
	varb2 := 24 * nf * (nf - 2) * (nf - 3) / ((nf + 1) * (nf + 1) * (nf + 3) * (nf + 5))
	x := (b2 - e) / math.Sqrt(varb2)

	sqrtBeta1 := 6 * (nf*nf - 5*nf + 2) / ((nf + 7) * (nf + 9)) *
		math.Sqrt((6*(nf+3)*(nf+5))/(nf*(nf-2)*(nf-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))

	term1 := 1 - 2/(9*a)
	denom := 1 + x*math.Sqrt(2/(a-4))
	if denom == 0 {
		return math.NaN()
	}
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}
