package toolkit

import (
	"math"

	"segstats/domain/stats"

	"gonum.org/v1/gonum/stat/distuv"
)

// NormalPValue converts a standard-normal statistic into a p-value under the
// given alternative.
func NormalPValue(z float64, alt stats.Alternative) float64 {
	switch alt {
	case stats.Less:
		return distuv.UnitNormal.CDF(z)
	case stats.Greater:
		return distuv.UnitNormal.Survival(z)
	default:
		return clampProbability(2 * distuv.UnitNormal.Survival(math.Abs(z)))
	}
}

// ChiSquarePValue computes the upper tail of the chi-square distribution
func ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}

	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return clampProbability(chiDist.Survival(chiSquare))
}

// FTestPValue computes the upper tail of the F distribution
func FTestPValue(fStatistic float64, df1, df2 int) float64 {
	if df1 <= 0 || df2 <= 0 {
		return 1.0
	}

	fDist := distuv.F{D1: float64(df1), D2: float64(df2)}
	return clampProbability(fDist.Survival(fStatistic))
}

// normalSurvival is the standard-normal upper tail
func normalSurvival(z float64) float64 {
	return distuv.UnitNormal.Survival(z)
}

// normalQuantile is the inverse standard-normal CDF
func normalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return p
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
