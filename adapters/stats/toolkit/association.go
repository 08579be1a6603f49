package toolkit

import (
	"fmt"
	"math"

	"segstats/domain/core"
	"segstats/domain/dataset"
	"segstats/domain/stats"
)

// AssociationTester runs chi-square tests of independence between a
// categorical target and each categorical feature, with Cramér's V.
type AssociationTester struct {
	// Correction applies Yates' continuity correction when dof == 1
	Correction bool
}

// NewAssociationTester creates a tester with Yates' correction enabled
func NewAssociationTester() *AssociationTester {
	return &AssociationTester{Correction: true}
}

// TestAssociation returns one result per feature other than the target, in
// feature order. Every column is checked before any test runs, so a numeric
// column anywhere fails the whole call.
func (a *AssociationTester) TestAssociation(target dataset.Column, features *dataset.Table) ([]stats.AssociationResult, error) {
	if !target.IsCategorical() {
		return nil, core.NewTypeMismatchError(target.Name(), target.Kind().String())
	}
	for _, col := range features.Columns() {
		if !col.IsCategorical() {
			return nil, core.NewTypeMismatchError(col.Name(), col.Kind().String())
		}
	}
	if features.NumColumns() > 0 && features.NumRows() != target.Len() {
		return nil, fmt.Errorf("%w: target %s has %d rows, features have %d", core.ErrInvalidTable, target.Name(), target.Len(), features.NumRows())
	}

	var results []stats.AssociationResult
	for _, col := range features.Columns() {
		if col.Name() == target.Name() {
			continue
		}
		res, err := a.testPair(target, col)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (a *AssociationTester) testPair(target, feature dataset.Column) (stats.AssociationResult, error) {
	ct := CrossTabulate(target, feature)

	minDim := min(len(ct.RowLabels)-1, len(ct.ColLabels)-1)
	if minDim <= 0 {
		return stats.AssociationResult{}, core.NewDegenerateAssociationError(target.Name(), feature.Name())
	}

	chi2, p, expected := a.chiSquare(ct)
	v := math.Sqrt(chi2 / float64(ct.N) / float64(minDim))
	if v > 1 {
		v = 1
	}

	return stats.AssociationResult{
		Column:           feature.Name(),
		ChiSquare:        chi2,
		PValue:           stats.FormatPValue(p),
		RawPValue:        p,
		DegreesOfFreedom: ct.DegreesOfFreedom(),
		Expected:         expected,
		CramersV:         v,
		Interpretation:   stats.Interpret(v),
		N:                ct.N,
	}, nil
}

func (a *AssociationTester) chiSquare(ct Contingency) (chi2, p float64, expected [][]float64) {
	expected = ct.Expected()
	dof := ct.DegreesOfFreedom()
	yates := a.Correction && dof == 1

	for i, row := range ct.Counts {
		for j, observed := range row {
			e := expected[i][j]
			d := math.Abs(float64(observed) - e)
			if yates {
				d -= math.Min(0.5, d)
			}
			chi2 += d * d / e
		}
	}
	return chi2, ChiSquarePValue(chi2, dof), expected
}
