// Package toolkit implements the customer-segmentation hypothesis tests:
// the per-column shape battery, balanced Brown-Forsythe variance equality,
// Kruskal-Wallis rank differences and chi-square association with Cramér's V.
//
// Every function is pure over a caller-owned dataset.Table. The only source of
// randomness is the balanced draw in TestVarianceEquality, which is driven by
// the caller's seed.
package toolkit

import (
	"segstats/domain/dataset"
	"segstats/domain/stats"
)

// Toolkit bundles the four testers behind one value
type Toolkit struct {
	shape       *ShapeTester
	variance    *GroupVarianceTester
	rank        *GroupRankTester
	association *AssociationTester
}

// Option configures a Toolkit
type Option func(*Toolkit)

// WithDegeneratePolicy sets how Shape treats zero-variance columns
func WithDegeneratePolicy(policy DegeneratePolicy) Option {
	return func(t *Toolkit) { t.shape.Degenerate = policy }
}

// WithYatesCorrection toggles the continuity correction for 2x2 tables
func WithYatesCorrection(enabled bool) Option {
	return func(t *Toolkit) { t.association.Correction = enabled }
}

// New creates a toolkit with default testers
func New(opts ...Option) *Toolkit {
	t := &Toolkit{
		shape:       NewShapeTester(),
		variance:    NewGroupVarianceTester(),
		rank:        NewGroupRankTester(),
		association: NewAssociationTester(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Toolkit) Shape(table *dataset.Table, alt stats.Alternative) (stats.ShapeReport, error) {
	return t.shape.Shape(table, alt)
}

func (t *Toolkit) TestVarianceEquality(table *dataset.Table, groupColumn string, numericColumns []string, seed int64) ([]stats.GroupTestResult, error) {
	return t.variance.TestVarianceEquality(table, groupColumn, numericColumns, seed)
}

func (t *Toolkit) TestRankDifferences(table *dataset.Table, groupColumn string, numericColumns []string) ([]stats.GroupTestResult, error) {
	return t.rank.TestRankDifferences(table, groupColumn, numericColumns)
}

func (t *Toolkit) TestAssociation(target dataset.Column, features *dataset.Table) ([]stats.AssociationResult, error) {
	return t.association.TestAssociation(target, features)
}
