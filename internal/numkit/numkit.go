// Package numkit provides the pure numeric primitives shared by every
// analyzer. All functions treat empty input explicitly instead of raising:
// mean/median/stddev of nothing are 0, mode of nothing does not exist.
package numkit

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mean returns the arithmetic mean, 0 for an empty series.
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	m, _ := stats.Mean(series)
	return m
}

// Median returns the middle order statistic, 0 for an empty series.
func Median(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	m, _ := stats.Median(series)
	return m
}

// Min returns the smallest value, 0 for an empty series.
func Min(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	m, _ := stats.Min(series)
	return m
}

// Max returns the largest value, 0 for an empty series.
func Max(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	m, _ := stats.Max(series)
	return m
}

// StdDev returns the population standard deviation (divide by N). Fewer
// than two values yield 0.
func StdDev(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	sd, _ := stats.StandardDeviationPopulation(series)
	return sd
}

// Mode returns the most frequent value; ties resolve to the value seen
// first. The second return is false when the series is empty.
func Mode(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	counts := make(map[float64]int, len(series))
	best := series[0]
	bestCount := 0
	for _, v := range series {
		counts[v]++
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best, true
}

// Percentile returns the p-th percentile (p in [0,100]) by linear
// interpolation between the two bracketing order statistics, so that
// Percentile(s, 50) == Median(s). Empty input yields 0.
func Percentile(series []float64, p float64) float64 {
	if len(series) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Regression holds an ordinary least squares fit of value versus index.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r_squared"`
}

// LinearRegression fits value against index (x = 0..N-1) by OLS. R2 is
// 1 - SSresidual/SStotal, defined as 0 when SStotal is 0.
func LinearRegression(series []float64) Regression {
	n := len(series)
	if n == 0 {
		return Regression{}
	}
	if n == 1 {
		return Regression{Intercept: series[0]}
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, series, nil, false)
	r2 := stat.RSquared(xs, series, nil, alpha, beta)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	if math.IsNaN(beta) {
		beta = 0
	}
	if math.IsNaN(alpha) {
		alpha = 0
	}
	return Regression{Slope: beta, Intercept: alpha, R2: r2}
}

// MovingAverage returns the N-window+1 simple averages of each sliding
// window. A window larger than the series (or smaller than 1) returns a
// copy of the input unchanged; that fallback is documented behavior, not
// an error.
func MovingAverage(series []float64, window int) []float64 {
	if window < 1 || window > len(series) {
		out := make([]float64, len(series))
		copy(out, series)
		return out
	}
	out := make([]float64, 0, len(series)-window+1)
	var sum float64
	for i, v := range series {
		sum += v
		if i >= window {
			sum -= series[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}

// ExponentialSmoothing applies standard EWMA seeded with the first value.
func ExponentialSmoothing(series []float64, alpha float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	out := make([]float64, len(series))
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out
}

// PearsonCorrelation computes Pearson's r over the first min(|a|,|b|)
// paired elements. Fewer than two pairs or a zero denominator yield 0.
func PearsonCorrelation(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0
	}
	r := stat.Correlation(a[:n], b[:n], nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// CorrelationPValue computes the two-tailed p-value of a Pearson
// coefficient via the t-transform and Student's t CDF.
func CorrelationPValue(r float64, sampleSize int) float64 {
	if sampleSize < 3 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(sampleSize - 2)
	t := r * math.Sqrt(df/(1-r*r))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - tDist.CDF(math.Abs(t)))
}

// CramersV computes the chi-squared-based association of two categorical
// sequences over the contingency table of their distinct labels,
// normalized by N*(min(k1,k2)-1). A non-positive denominator yields 0.
func CramersV(a, b []string) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	rowIndex := map[string]int{}
	colIndex := map[string]int{}
	for i := 0; i < n; i++ {
		if _, ok := rowIndex[a[i]]; !ok {
			rowIndex[a[i]] = len(rowIndex)
		}
		if _, ok := colIndex[b[i]]; !ok {
			colIndex[b[i]] = len(colIndex)
		}
	}
	k1, k2 := len(rowIndex), len(colIndex)
	minDim := k1
	if k2 < minDim {
		minDim = k2
	}
	denom := float64(n) * float64(minDim-1)
	if denom <= 0 {
		return 0
	}

	observed := make([][]float64, k1)
	for i := range observed {
		observed[i] = make([]float64, k2)
	}
	rowTotals := make([]float64, k1)
	colTotals := make([]float64, k2)
	for i := 0; i < n; i++ {
		r, c := rowIndex[a[i]], colIndex[b[i]]
		observed[r][c]++
		rowTotals[r]++
		colTotals[c]++
	}

	var chi2 float64
	for r := 0; r < k1; r++ {
		for c := 0; c < k2; c++ {
			expected := rowTotals[r] * colTotals[c] / float64(n)
			if expected > 0 {
				diff := observed[r][c] - expected
				chi2 += diff * diff / expected
			}
		}
	}
	return math.Sqrt(chi2 / denom)
}

// Skewness returns the third standardized moment (population form).
// Fewer than two values or zero spread yield 0.
func Skewness(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	mean := Mean(series)
	sd := StdDev(series)
	if sd == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		z := (v - mean) / sd
		sum += z * z * z
	}
	return sum / float64(len(series))
}

// CoefficientOfVariation returns stddev divided by the absolute mean,
// 0 when the mean is 0.
func CoefficientOfVariation(series []float64) float64 {
	mean := Mean(series)
	if mean == 0 {
		return 0
	}
	return StdDev(series) / math.Abs(mean)
}

// AutoCorrelation computes the normalized lag autocorrelation of a
// mean-centered series. Out-of-range lags or zero variance yield 0.
func AutoCorrelation(series []float64, lag int) float64 {
	n := len(series)
	if lag <= 0 || lag >= n {
		return 0
	}
	mean := Mean(series)
	var num, den float64
	for i := 0; i < n; i++ {
		d := series[i] - mean
		den += d * d
	}
	if den == 0 {
		return 0
	}
	for i := 0; i < n-lag; i++ {
		num += (series[i] - mean) * (series[i+lag] - mean)
	}
	return num / den
}
