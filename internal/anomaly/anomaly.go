// Package anomaly flags unusual values in numeric columns using three
// independent detectors (z-score, IQR, rolling window) merged per row by
// the highest score.
package anomaly

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"tablens/domain/table"
	"tablens/internal/numkit"
)

// Detection methods. The rolling detector reports spike or drop depending
// on the direction of the excursion.
const (
	MethodZScore = "zscore"
	MethodIQR    = "iqr"
	MethodSpike  = "spike"
	MethodDrop   = "drop"
)

const (
	minSamples       = 10
	zScoreBound      = 3.0
	rollingWindow    = 5
	rollingBound     = 2.0
	maxDatasetSize   = 100
	highSeverity     = 0.8
	topColumnsListed = 3
)

// Anomaly is a single flagged (row, column, value) triple.
type Anomaly struct {
	Row          int     `json:"row"`
	Column       string  `json:"column"`
	Value        float64 `json:"value"`
	Method       string  `json:"method"`
	Score        float64 `json:"score"`
	ExpectedLow  float64 `json:"expected_low"`
	ExpectedHigh float64 `json:"expected_high"`
}

// Report aggregates anomalies across every numeric column of a dataset.
type Report struct {
	Anomalies    []Anomaly `json:"anomalies"`
	TotalCount   int       `json:"total_count"`
	AnomalyScore float64   `json:"anomaly_score"`
	Explanation  string    `json:"explanation"`
}

// DetectColumn runs all three detectors over one column and merges their
// findings. Result is sorted by score, highest first.
func DetectColumn(ds table.Dataset, column string) []Anomaly {
	series, indices := table.NumericColumnIndexed(ds, column)

	candidates := detectZScore(series, indices, column)
	candidates = append(candidates, detectIQR(series, indices, column)...)
	candidates = append(candidates, detectRolling(series, indices, column)...)

	return merge(candidates)
}

// DetectDataset scans every numeric column, keeps the 100 highest-scoring
// anomalies, and explains the findings. Columns are scanned concurrently
// into indexed slots so output stays deterministic.
func DetectDataset(ds table.Dataset) Report {
	report := Report{Anomalies: []Anomaly{}}
	if len(ds) == 0 {
		report.Explanation = "no data available for anomaly detection"
		return report
	}

	var numericCols []string
	for _, name := range ds.Columns() {
		if len(table.NumericColumn(ds, name)) >= minSamples {
			numericCols = append(numericCols, name)
		}
	}

	perColumn := make([][]Anomaly, len(numericCols))
	var group errgroup.Group
	for i, name := range numericCols {
		group.Go(func() error {
			perColumn[i] = DetectColumn(ds, name)
			return nil
		})
	}
	_ = group.Wait()

	var all []Anomaly
	for _, anomalies := range perColumn {
		all = append(all, anomalies...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		if all[i].Column != all[j].Column {
			return all[i].Column < all[j].Column
		}
		return all[i].Row < all[j].Row
	})

	report.TotalCount = len(all)
	if len(all) > maxDatasetSize {
		all = all[:maxDatasetSize]
	}
	report.Anomalies = all
	report.AnomalyScore = math.Min(float64(report.TotalCount)/float64(len(ds)), 1)
	report.Explanation = explain(ds, report)
	return report
}

// ColumnReport wraps a single column's anomalies in report form.
func ColumnReport(ds table.Dataset, column string) Report {
	report := Report{Anomalies: []Anomaly{}}
	if len(ds) == 0 {
		report.Explanation = "no data available for anomaly detection"
		return report
	}
	report.Anomalies = DetectColumn(ds, column)
	report.TotalCount = len(report.Anomalies)
	report.AnomalyScore = math.Min(float64(report.TotalCount)/float64(len(ds)), 1)
	report.Explanation = explain(ds, report)
	return report
}

// detectZScore flags values more than three population deviations from the
// mean. A zero-deviation series produces nothing.
func detectZScore(series []float64, indices []int, column string) []Anomaly {
	if len(series) < minSamples {
		return nil
	}
	mean := numkit.Mean(series)
	sd := numkit.StdDev(series)
	if sd == 0 {
		return nil
	}
	var out []Anomaly
	for i, v := range series {
		z := (v - mean) / sd
		if math.Abs(z) > zScoreBound {
			out = append(out, Anomaly{
				Row:          indices[i],
				Column:       column,
				Value:        v,
				Method:       MethodZScore,
				Score:        math.Min(math.Abs(z)/5, 1),
				ExpectedLow:  mean - 2*sd,
				ExpectedHigh: mean + 2*sd,
			})
		}
	}
	return out
}

// detectIQR flags values outside the 1.5*IQR fences. The IQR is floored at
// 1 when zero so the score stays defined.
func detectIQR(series []float64, indices []int, column string) []Anomaly {
	if len(series) < minSamples {
		return nil
	}
	q1 := numkit.Percentile(series, 25)
	q3 := numkit.Percentile(series, 75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr
	scoreIQR := iqr
	if scoreIQR == 0 {
		scoreIQR = 1
	}
	var out []Anomaly
	for i, v := range series {
		if v >= lower && v <= upper {
			continue
		}
		distance := lower - v
		if v > upper {
			distance = v - upper
		}
		out = append(out, Anomaly{
			Row:          indices[i],
			Column:       column,
			Value:        v,
			Method:       MethodIQR,
			Score:        math.Min(distance/scoreIQR, 1),
			ExpectedLow:  lower,
			ExpectedHigh: upper,
		})
	}
	return out
}

// detectRolling compares each value to the mean and deviation of the five
// preceding values and classifies excursions as spikes or drops.
func detectRolling(series []float64, indices []int, column string) []Anomaly {
	if len(series) < minSamples {
		return nil
	}
	var out []Anomaly
	for i := rollingWindow; i < len(series); i++ {
		window := series[i-rollingWindow : i]
		mean := numkit.Mean(window)
		sd := numkit.StdDev(window)
		if sd == 0 {
			continue
		}
		deviation := math.Abs(series[i]-mean) / sd
		if deviation <= rollingBound {
			continue
		}
		method := MethodSpike
		if series[i] < mean {
			method = MethodDrop
		}
		out = append(out, Anomaly{
			Row:          indices[i],
			Column:       column,
			Value:        series[i],
			Method:       method,
			Score:        math.Min(deviation/5, 1),
			ExpectedLow:  mean - rollingBound*sd,
			ExpectedHigh: mean + rollingBound*sd,
		})
	}
	return out
}

// merge reduces candidates to one anomaly per row, keeping the highest
// score, and orders the result by score descending.
func merge(candidates []Anomaly) []Anomaly {
	byRow := map[int]Anomaly{}
	var rows []int
	for _, a := range candidates {
		existing, seen := byRow[a.Row]
		if !seen {
			rows = append(rows, a.Row)
			byRow[a.Row] = a
			continue
		}
		if a.Score > existing.Score {
			byRow[a.Row] = a
		}
	}
	merged := make([]Anomaly, 0, len(rows))
	for _, row := range rows {
		merged = append(merged, byRow[row])
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Row < merged[j].Row
	})
	return merged
}

// explain composes the multi-part dataset narrative: counts, method
// breakdown, most affected columns, and high-severity tally.
func explain(ds table.Dataset, report Report) string {
	if report.TotalCount == 0 {
		return "no anomalies detected across the dataset's numeric columns"
	}

	percentage := float64(report.TotalCount) / float64(len(ds)) * 100
	parts := []string{fmt.Sprintf("%d anomalies detected (%.1f%% of %d rows)",
		report.TotalCount, percentage, len(ds))}

	methodCounts := map[string]int{}
	columnCounts := map[string]int{}
	var columns []string
	highSeverityCount := 0
	for _, a := range report.Anomalies {
		methodCounts[a.Method]++
		if columnCounts[a.Column] == 0 {
			columns = append(columns, a.Column)
		}
		columnCounts[a.Column]++
		if a.Score > highSeverity {
			highSeverityCount++
		}
	}

	var methodParts []string
	for _, method := range []string{MethodZScore, MethodIQR, MethodSpike, MethodDrop} {
		if methodCounts[method] > 0 {
			methodParts = append(methodParts, fmt.Sprintf("%s: %d", method, methodCounts[method]))
		}
	}
	parts = append(parts, "by method "+strings.Join(methodParts, ", "))

	sort.SliceStable(columns, func(i, j int) bool {
		if columnCounts[columns[i]] != columnCounts[columns[j]] {
			return columnCounts[columns[i]] > columnCounts[columns[j]]
		}
		return columns[i] < columns[j]
	})
	if len(columns) > topColumnsListed {
		columns = columns[:topColumnsListed]
	}
	parts = append(parts, "most affected columns: "+strings.Join(columns, ", "))

	if highSeverityCount > 0 {
		parts = append(parts, fmt.Sprintf("%d high-severity anomalies (score > %.1f)", highSeverityCount, highSeverity))
	}
	return strings.Join(parts, "; ")
}
