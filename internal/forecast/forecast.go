// Package forecast predicts future values of numeric columns using linear
// extrapolation, exponential smoothing, or rolling averages, with an
// automatic method selector.
package forecast

import (
	"fmt"
	"math"

	"tablens/domain/core"
	"tablens/domain/table"
	"tablens/internal/numkit"
)

// Forecast methods.
const (
	MethodAuto        = "auto"
	MethodLinear      = "linear"
	MethodExponential = "exponential"
	MethodRolling     = "rolling"
)

const (
	// DefaultPeriods is the horizon used when the caller does not choose one.
	DefaultPeriods = 7

	minSamples         = 5
	autoLinearR2       = 0.7
	autoExponentialCV  = 0.3
	smoothingAlpha     = 0.3
	linearStablePct    = 0.01
	expStablePct       = 0.05
	rollingStablePct   = 0.03
	significantChange  = 0.10
	exponentialTailFit = 10
)

// Interval is a 95% confidence band around a predicted value.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Prediction is one future value with its confidence interval.
type Prediction struct {
	Period     int      `json:"period"`
	Value      float64  `json:"value"`
	Confidence Interval `json:"confidence"`
}

// Result is the forecast of a single column.
type Result struct {
	Column           string       `json:"column"`
	Method           string       `json:"method"`
	Predictions      []Prediction `json:"predictions"`
	TrendDescription string       `json:"trend_description"`
	Interpretation   string       `json:"interpretation"`
}

// Forecast predicts the next periods values of a numeric column. Invalid
// explicit parameters fail fast; insufficient data degrades to an empty,
// explained result.
func Forecast(ds table.Dataset, column string, periods int, method string) (Result, error) {
	if periods <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", core.ErrInvalidPeriods, periods)
	}
	switch method {
	case MethodAuto, MethodLinear, MethodExponential, MethodRolling:
	default:
		return Result{}, fmt.Errorf("%w: %q", core.ErrUnknownMethod, method)
	}

	series := table.NumericColumn(ds, column)
	if len(series) < minSamples {
		return Result{
			Column:         column,
			Method:         method,
			Predictions:    []Prediction{},
			Interpretation: fmt.Sprintf("insufficient data points in %q for forecasting (need at least %d numeric values)", column, minSamples),
		}, nil
	}

	if method == MethodAuto {
		method = selectMethod(series)
	}

	var result Result
	switch method {
	case MethodLinear:
		result = forecastLinear(series, periods)
	case MethodExponential:
		result = forecastExponential(series, periods)
	case MethodRolling:
		result = forecastRolling(series, periods)
	}
	result.Column = column
	result.Interpretation = interpret(series, result)
	return result, nil
}

// selectMethod picks the forecasting method from the fit quality and
// dispersion of the series: a strong linear fit extrapolates, a noisy
// series smooths, a calm one averages.
func selectMethod(series []float64) string {
	reg := numkit.LinearRegression(series)
	if reg.R2 > autoLinearR2 {
		return MethodLinear
	}
	if numkit.CoefficientOfVariation(series) > autoExponentialCV {
		return MethodExponential
	}
	return MethodRolling
}

// forecastLinear extends the OLS fit. The confidence half-width widens by
// 10% per period to reflect growing uncertainty.
func forecastLinear(series []float64, periods int) Result {
	n := len(series)
	reg := numkit.LinearRegression(series)
	sd := numkit.StdDev(series)
	baseWidth := 1.96 * sd * math.Sqrt(1+1/float64(n))

	predictions := make([]Prediction, 0, periods)
	for i := 1; i <= periods; i++ {
		value := reg.Intercept + reg.Slope*float64(n-1+i)
		halfWidth := baseWidth * (1 + 0.1*float64(i))
		predictions = append(predictions, Prediction{
			Period:     i,
			Value:      value,
			Confidence: Interval{Lower: value - halfWidth, Upper: value + halfWidth},
		})
	}

	mean := numkit.Mean(series)
	description := "stable"
	if mean != 0 && math.Abs(reg.Slope) >= linearStablePct*math.Abs(mean) {
		pct := math.Abs(reg.Slope) / math.Abs(mean) * 100
		if reg.Slope > 0 {
			description = fmt.Sprintf("increasing by %.1f%% per period", pct)
		} else {
			description = fmt.Sprintf("decreasing by %.1f%% per period", pct)
		}
	}
	return Result{Method: MethodLinear, Predictions: predictions, TrendDescription: description}
}

// forecastExponential smooths with EWMA and projects the slope of the last
// few smoothed points. The half-width grows with the square root of the
// period.
func forecastExponential(series []float64, periods int) Result {
	smoothed := numkit.ExponentialSmoothing(series, smoothingAlpha)
	last := smoothed[len(smoothed)-1]

	tail := smoothed
	if len(tail) > exponentialTailFit {
		tail = tail[len(tail)-exponentialTailFit:]
	}
	slope := numkit.LinearRegression(tail).Slope
	sd := numkit.StdDev(series)

	predictions := make([]Prediction, 0, periods)
	for i := 1; i <= periods; i++ {
		value := last + slope*float64(i)
		halfWidth := 1.96 * sd * math.Sqrt(float64(i))
		predictions = append(predictions, Prediction{
			Period:     i,
			Value:      value,
			Confidence: Interval{Lower: value - halfWidth, Upper: value + halfWidth},
		})
	}

	description := "stable"
	if last != 0 {
		relative := slope * float64(periods) / math.Abs(last)
		if math.Abs(relative) >= expStablePct {
			if relative > 0 {
				description = fmt.Sprintf("increasing by %.1f%% over the horizon", relative*100)
			} else {
				description = fmt.Sprintf("decreasing by %.1f%% over the horizon", math.Abs(relative)*100)
			}
		}
	}
	return Result{Method: MethodExponential, Predictions: predictions, TrendDescription: description}
}

// forecastRolling projects the trend of the moving-average series with a
// window of max(3, N/5).
func forecastRolling(series []float64, periods int) Result {
	window := len(series) / 5
	if window < 3 {
		window = 3
	}
	ma := numkit.MovingAverage(series, window)
	last := ma[len(ma)-1]
	slope := numkit.LinearRegression(ma).Slope
	sd := numkit.StdDev(series)

	predictions := make([]Prediction, 0, periods)
	for i := 1; i <= periods; i++ {
		value := last + slope*float64(i)
		halfWidth := 1.5 * sd * math.Sqrt(float64(i)/float64(window))
		predictions = append(predictions, Prediction{
			Period:     i,
			Value:      value,
			Confidence: Interval{Lower: value - halfWidth, Upper: value + halfWidth},
		})
	}

	description := "stable"
	if last != 0 {
		relative := slope * float64(periods) / math.Abs(last)
		if math.Abs(relative) >= rollingStablePct {
			if relative > 0 {
				description = fmt.Sprintf("increasing by %.1f%% over the horizon", relative*100)
			} else {
				description = fmt.Sprintf("decreasing by %.1f%% over the horizon", math.Abs(relative)*100)
			}
		}
	}
	return Result{Method: MethodRolling, Predictions: predictions, TrendDescription: description}
}

// interpret reports the method, the short- and long-horizon predictions
// with their intervals, and flags projected changes above 10%.
func interpret(series []float64, r Result) string {
	if len(r.Predictions) == 0 {
		return r.Interpretation
	}
	first := r.Predictions[0]
	lastPred := r.Predictions[len(r.Predictions)-1]
	text := fmt.Sprintf(
		"%s forecast for %q: next period %.2f (95%% CI %.2f to %.2f), period %d %.2f (95%% CI %.2f to %.2f); trend %s",
		r.Method, r.Column,
		first.Value, first.Confidence.Lower, first.Confidence.Upper,
		lastPred.Period, lastPred.Value, lastPred.Confidence.Lower, lastPred.Confidence.Upper,
		r.TrendDescription)

	lastActual := series[len(series)-1]
	if lastActual != 0 {
		change := (lastPred.Value - lastActual) / math.Abs(lastActual)
		if math.Abs(change) > significantChange {
			text += fmt.Sprintf("; projected change of %.1f%% is significant", change*100)
		}
	}
	return text
}
