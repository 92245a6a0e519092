// Package trend detects per-column direction, strength, seasonality, and
// level shifts in numeric series.
package trend

import (
	"fmt"
	"math"
	"sort"

	"tablens/domain/table"
	"tablens/internal/numkit"
)

// Trend directions.
const (
	DirectionStable     = "stable"
	DirectionIncreasing = "increasing"
	DirectionDecreasing = "decreasing"
	DirectionVolatile   = "volatile"
)

const (
	minSamples          = 3
	minSeasonalSamples  = 12
	stableSlopeBound    = 0.01
	volatileCVBound     = 0.5
	volatileR2Bound     = 0.3
	seasonalACBound     = 0.5
	shiftDeviationBound = 2.0
	maxShifts           = 5
)

// candidatePeriods are tested for seasonality in priority order.
var candidatePeriods = []int{7, 12, 4, 24, 30}

// Seasonality describes a detected repeating period.
type Seasonality struct {
	Period          int     `json:"period"`
	Autocorrelation float64 `json:"autocorrelation"`
}

// Shift marks a sustained change of level at a row position.
type Shift struct {
	Index     int     `json:"index"`
	Before    float64 `json:"before"`
	After     float64 `json:"after"`
	Magnitude float64 `json:"magnitude"`
}

// Result is the trend analysis of a single column.
type Result struct {
	Column        string       `json:"column"`
	Direction     string       `json:"direction"`
	Strength      float64      `json:"strength"`
	Slope         float64      `json:"slope"`
	Seasonality   *Seasonality `json:"seasonality,omitempty"`
	Shifts        []Shift      `json:"shifts"`
	MovingAverage []float64    `json:"moving_average"`
	Explanation   string       `json:"explanation"`
}

// Analyze computes the trend of one numeric column. Fewer than three
// numeric values degrade to a stable result with an explanation, never an
// error.
func Analyze(ds table.Dataset, column string) Result {
	series := table.NumericColumn(ds, column)
	if len(series) < minSamples {
		return Result{
			Column:        column,
			Direction:     DirectionStable,
			Shifts:        []Shift{},
			MovingAverage: []float64{},
			Explanation:   fmt.Sprintf("insufficient data points in %q for trend analysis (need at least %d numeric values)", column, minSamples),
		}
	}

	reg := numkit.LinearRegression(series)
	mean := numkit.Mean(series)
	base := mean
	if base == 0 {
		base = 1
	}
	normalizedSlope := reg.Slope / base

	direction := DirectionStable
	if math.Abs(normalizedSlope) >= stableSlopeBound {
		if normalizedSlope > 0 {
			direction = DirectionIncreasing
		} else {
			direction = DirectionDecreasing
		}
	}
	cv := numkit.CoefficientOfVariation(series)
	if cv > volatileCVBound && reg.R2 < volatileR2Bound {
		direction = DirectionVolatile
	}

	window := shiftWindow(len(series))
	result := Result{
		Column:        column,
		Direction:     direction,
		Strength:      math.Min(math.Abs(reg.R2), 1),
		Slope:         reg.Slope,
		Seasonality:   detectSeasonality(series, mean),
		Shifts:        detectShifts(series, window),
		MovingAverage: numkit.MovingAverage(series, window),
	}
	result.Explanation = explain(result)
	return result
}

func shiftWindow(n int) int {
	window := n / 10
	if window < 3 {
		window = 3
	}
	return window
}

// detectSeasonality tests the candidate periods against the mean-centered
// series and returns the first whose lag autocorrelation clears the bound.
func detectSeasonality(series []float64, mean float64) *Seasonality {
	if len(series) < minSeasonalSamples {
		return nil
	}
	detrended := make([]float64, len(series))
	for i, v := range series {
		detrended[i] = v - mean
	}
	for _, period := range candidatePeriods {
		if len(series) < 2*period {
			continue
		}
		ac := numkit.AutoCorrelation(detrended, period)
		if ac > seasonalACBound {
			return &Seasonality{Period: period, Autocorrelation: ac}
		}
	}
	return nil
}

// detectShifts slides paired pre/post windows across the series and flags
// positions where the level moves by more than two pre-window deviations.
// The five largest shifts are kept.
func detectShifts(series []float64, window int) []Shift {
	shifts := []Shift{}
	for i := window; i+window <= len(series); i++ {
		before := series[i-window : i]
		after := series[i : i+window]
		sd := numkit.StdDev(before)
		if sd == 0 {
			continue
		}
		beforeMean := numkit.Mean(before)
		afterMean := numkit.Mean(after)
		magnitude := math.Abs(afterMean-beforeMean) / sd
		if magnitude > shiftDeviationBound {
			shifts = append(shifts, Shift{
				Index:     i,
				Before:    beforeMean,
				After:     afterMean,
				Magnitude: magnitude,
			})
		}
	}
	sort.SliceStable(shifts, func(i, j int) bool { return shifts[i].Magnitude > shifts[j].Magnitude })
	if len(shifts) > maxShifts {
		shifts = shifts[:maxShifts]
	}
	return shifts
}

func explain(r Result) string {
	var explanation string
	switch r.Direction {
	case DirectionVolatile:
		explanation = fmt.Sprintf("%q is volatile: values swing widely without a consistent direction.", r.Column)
	case DirectionStable:
		explanation = fmt.Sprintf("%q is stable with no meaningful trend.", r.Column)
	default:
		explanation = fmt.Sprintf("%q is %s (trend strength %.2f).", r.Column, r.Direction, r.Strength)
	}
	if r.Seasonality != nil {
		explanation += fmt.Sprintf(" A repeating pattern with period %d was detected (autocorrelation %.2f).", r.Seasonality.Period, r.Seasonality.Autocorrelation)
	}
	if len(r.Shifts) > 0 {
		explanation += fmt.Sprintf(" %d level shift(s) were detected.", len(r.Shifts))
	}
	return explanation
}
