package ports

import (
	"segstats/domain/dataset"
	"segstats/domain/stats"
)

// StatsToolkit runs the four segment analyses over a caller-owned table.
// Implementations are pure: they never retain or mutate the table.
type StatsToolkit interface {
	Shape(table *dataset.Table, alt stats.Alternative) (stats.ShapeReport, error)
	TestVarianceEquality(table *dataset.Table, groupColumn string, numericColumns []string, seed int64) ([]stats.GroupTestResult, error)
	TestRankDifferences(table *dataset.Table, groupColumn string, numericColumns []string) ([]stats.GroupTestResult, error)
	TestAssociation(target dataset.Column, features *dataset.Table) ([]stats.AssociationResult, error)
}
