package toolkit

import (
	"fmt"
	"math"
	"sort"
)

// Royston (1995) AS R94 polynomial approximations
var (
	swC1 = []float64{0.0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0.0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

const (
	minShapiroSampleSize = 3
	swSmallP             = 1e-99
)

// ShapiroWilk returns the W statistic and its p-value. x is not modified.
func ShapiroWilk(x []float64) (w, p float64, err error) {
	n := len(x)
	if n < minShapiroSampleSize {
		return math.NaN(), math.NaN(), fmt.Errorf("shapiro-wilk needs at least %d observations, got %d", minShapiroSampleSize, n)
	}

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	spread := sorted[n-1] - sorted[0]
	if spread == 0 {
		return math.NaN(), math.NaN(), fmt.Errorf("shapiro-wilk undefined for identical values")
	}

	// Scale by the range so the sums stay well conditioned.
	scaled := make([]float64, n)
	for i, v := range sorted {
		scaled[i] = (v - sorted[0]) / spread
	}
	mu := mean(scaled)
	ssq := 0.0
	for _, v := range scaled {
		d := v - mu
		ssq += d * d
	}

	a := shapiroCoefficients(n)
	num := 0.0
	for i := range a {
		num += a[i] * (scaled[n-1-i] - scaled[i])
	}

	w = num * num / ssq
	if w > 1 {
		w = 1
	}
	return w, shapiroPValue(w, n), nil
}

// shapiroCoefficients returns the first n/2 weights; the remainder are their negatives.
func shapiroCoefficients(n int) []float64 {
	nn2 := n / 2
	a := make([]float64, nn2)
	if n == 3 {
		a[0] = math.Sqrt2 / 2
		return a
	}

	an25 := float64(n) + 0.25
	m := make([]float64, nn2)
	summ2 := 0.0
	for i := range m {
		m[i] = normalQuantile((float64(i+1) - 0.375) / an25)
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(float64(n))
	a1 := poly(swC1, rsn) - m[0]/ssumm2

	start := 1
	var fac float64
	if n > 5 {
		start = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := start; i < nn2; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func shapiroPValue(w float64, n int) float64 {
	an := float64(n)
	if n == 3 {
		if w < 0.75 {
			w = 0.75
		}
		p := 1.90985931710274 * (math.Asin(math.Sqrt(w)) - 1.04719755119660)
		return clampProbability(p)
	}

	y := math.Log(1 - w)
	var m, s float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return swSmallP
		}
		y = -math.Log(gamma - y)
		m = poly(swC3, an)
		s = math.Exp(poly(swC4, an))
	} else {
		xx := math.Log(an)
		m = poly(swC5, xx)
		s = math.Exp(poly(swC6, xx))
	}
	return clampProbability(normalSurvival((y - m) / s))
}
