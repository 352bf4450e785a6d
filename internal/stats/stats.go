// Package stats wraps the numeric and statistical primitives the
// cleaning pipeline consumes: central tendency, quantiles, skew,
// correlation, and the two scaler transforms. Inputs are the
// non-missing values of a single column.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// Median returns the 0.5 quantile.
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// Quantile returns the p-quantile using linear interpolation between
// order statistics, matching the convention of the replay toolchain
// the log entries target. Returns NaN for an empty slice.
func Quantile(xs []float64, p float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Skew returns the adjusted Fisher-Pearson sample skewness. Fewer
// than three values have no defined skew; zero is returned so the
// |skew| rule tables treat them as symmetric.
func Skew(xs []float64) float64 {
	if len(xs) < 3 {
		return 0
	}
	s := stat.Skew(xs, nil)
	if math.IsNaN(s) {
		return 0
	}
	return s
}

// Correlation returns the Pearson correlation coefficient of two
// equal-length samples, or NaN when either side is constant.
func Correlation(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Std returns the sample (unbiased) standard deviation reported in
// describe-style summaries, or NaN for fewer than two values.
func Std(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(xs, nil)
}

// PopStd returns the population (biased) standard deviation, the
// statistic the standard scaler uses.
func PopStd(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := stat.Mean(xs, nil)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// MinMax returns the smallest and largest values.
func MinMax(xs []float64) (min, max float64) {
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	min, max = xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}

// Mode returns the most frequent value; ties resolve to the
// lexicographically smallest, giving a stable deterministic result.
func Mode(xs []string) (string, bool) {
	if len(xs) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(xs))
	for _, x := range xs {
		counts[x]++
	}
	best, bestN := "", -1
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, true
}

// ModeFloat returns the most frequent numeric value; ties resolve to
// the smallest value.
func ModeFloat(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	counts := make(map[float64]int, len(xs))
	for _, x := range xs {
		counts[x]++
	}
	best, bestN := math.Inf(1), -1
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, true
}
