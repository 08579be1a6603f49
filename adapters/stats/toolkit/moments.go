package toolkit

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// skewness returns the biased sample skewness g1 = m3 / m2^1.5
func skewness(x []float64) float64 {
	m2 := stat.Moment(2, x, nil)
	m3 := stat.Moment(3, x, nil)
	return m3 / math.Pow(m2, 1.5)
}

// excessKurtosis returns the biased Fisher kurtosis m4 / m2^2 - 3
func excessKurtosis(x []float64) float64 {
	m2 := stat.Moment(2, x, nil)
	m4 := stat.Moment(4, x, nil)
	return m4/(m2*m2) - 3
}

// isConstant reports whether every value is identical
func isConstant(x []float64) bool {
	lo, err := mstats.Min(x)
	if err != nil {
		return true
	}
	hi, _ := mstats.Max(x)
	return lo == hi
}

func median(x []float64) float64 {
	m, err := mstats.Median(x)
	if err != nil {
		return math.NaN()
	}
	return m
}

func mean(x []float64) float64 {
	m, err := mstats.Mean(x)
	if err != nil {
		return math.NaN()
	}
	return m
}

// poly evaluates cc[0] + cc[1]*x + cc[2]*x^2 + ...
func poly(cc []float64, x float64) float64 {
	result := 0.0
	for i := len(cc) - 1; i >= 0; i-- {
		result = result*x + cc[i]
	}
	return result
}
