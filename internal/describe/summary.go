// Package describe builds the dataset-level statistical summary: key
// metrics, distribution shapes, outlier counts, correlation highlights,
// and a narrative rendering of all of it.
package describe

import (
	"fmt"
	"math"
	"strings"

	"tablens/domain/table"
	"tablens/internal/numkit"
	"tablens/internal/profile"
)

// Fixed analysis cutoffs. These are part of the engine contract, not
// configuration.
const (
	skewNormalBound   = 0.5
	skewHeavyBound    = 1.0
	bimodalIQRShare   = 0.3
	highlightCutoff   = 0.7
	minShapeSamples   = 10
	keyMetricColumns  = 5
	completenessGood  = 80
	completenessGreat = 95
)

// Distribution shape labels.
const (
	ShapeNormal       = "normal"
	ShapeRightSkewed  = "right_skewed"
	ShapeLeftSkewed   = "left_skewed"
	ShapeBimodal      = "bimodal"
	ShapeUnknown      = "unknown"
	ShapeInsufficient = "insufficient_data"
)

// KeyMetrics carries the headline numbers of a dataset.
type KeyMetrics struct {
	RowCount       int                `json:"row_count"`
	ColumnCount    int                `json:"column_count"`
	Completeness   float64            `json:"completeness"`
	NumericColumns int                `json:"numeric_columns"`
	ColumnMeans    map[string]float64 `json:"column_means"`
}

// Distribution labels the shape of one numeric column.
type Distribution struct {
	Column string `json:"column"`
	Shape  string `json:"shape"`
}

// OutlierCount reports IQR-rule outliers for one numeric column.
type OutlierCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// Highlight is a strong correlation between two numeric columns.
type Highlight struct {
	ColumnA     string  `json:"column_a"`
	ColumnB     string  `json:"column_b"`
	Coefficient float64 `json:"coefficient"`
}

// Summary is the full statistical summary of a dataset.
type Summary struct {
	Metrics       KeyMetrics     `json:"metrics"`
	Distributions []Distribution `json:"distributions"`
	Outliers      []OutlierCount `json:"outliers"`
	Correlations  []Highlight    `json:"correlations"`
	Narrative     string         `json:"narrative"`
}

// Summarize builds the statistical summary from a dataset and its profile.
func Summarize(ds table.Dataset, prof profile.DatasetProfile) Summary {
	numericCols := prof.ColumnsByType(table.TypeNumeric)

	metrics := KeyMetrics{
		RowCount:       prof.RowCount,
		ColumnCount:    prof.ColumnCount,
		Completeness:   prof.Completeness,
		NumericColumns: len(numericCols),
		ColumnMeans:    map[string]float64{},
	}
	for i, col := range numericCols {
		if i == keyMetricColumns {
			break
		}
		metrics.ColumnMeans[col.Name] = numkit.Mean(table.NumericColumn(ds, col.Name))
	}

	summary := Summary{
		Metrics:       metrics,
		Distributions: []Distribution{},
		Outliers:      []OutlierCount{},
		Correlations:  []Highlight{},
	}

	for _, col := range numericCols {
		series := table.NumericColumn(ds, col.Name)
		summary.Distributions = append(summary.Distributions, Distribution{
			Column: col.Name,
			Shape:  classifyShape(series),
		})
		summary.Outliers = append(summary.Outliers, OutlierCount{
			Column: col.Name,
			Count:  countIQROutliers(series),
		})
	}

	summary.Correlations = correlationHighlights(ds, numericCols)
	summary.Narrative = narrative(ds, prof, numericCols, summary)
	return summary
}

// classifyShape labels a numeric series by its third standardized moment,
// falling back to an IQR concentration probe for the ambiguous band.
func classifyShape(series []float64) string {
	if len(series) < minShapeSamples {
		return ShapeInsufficient
	}
	skew := numkit.Skewness(series)
	switch {
	case math.Abs(skew) < skewNormalBound:
		return ShapeNormal
	case skew > skewHeavyBound:
		return ShapeRightSkewed
	case skew < -skewHeavyBound:
		return ShapeLeftSkewed
	}
	// Moderate skew: a hollow middle suggests two modes.
	q1 := numkit.Percentile(series, 25)
	q3 := numkit.Percentile(series, 75)
	inIQR := 0
	for _, v := range series {
		if v >= q1 && v <= q3 {
			inIQR++
		}
	}
	if float64(inIQR)/float64(len(series)) < bimodalIQRShare {
		return ShapeBimodal
	}
	return ShapeUnknown
}

// countIQROutliers counts values outside [Q1-1.5*IQR, Q3+1.5*IQR].
func countIQROutliers(series []float64) int {
	if len(series) == 0 {
		return 0
	}
	q1 := numkit.Percentile(series, 25)
	q3 := numkit.Percentile(series, 75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr
	count := 0
	for _, v := range series {
		if v < lower || v > upper {
			count++
		}
	}
	return count
}

// correlationHighlights scans pairs among the first five numeric columns
// for |r| above the highlight cutoff.
func correlationHighlights(ds table.Dataset, numericCols []profile.ColumnProfile) []Highlight {
	limit := len(numericCols)
	if limit > keyMetricColumns {
		limit = keyMetricColumns
	}
	highlights := []Highlight{}
	for i := 0; i < limit; i++ {
		for j := i + 1; j < limit; j++ {
			a := table.NumericColumn(ds, numericCols[i].Name)
			b := table.NumericColumn(ds, numericCols[j].Name)
			r := numkit.PearsonCorrelation(a, b)
			if math.Abs(r) > highlightCutoff {
				highlights = append(highlights, Highlight{
					ColumnA:     numericCols[i].Name,
					ColumnB:     numericCols[j].Name,
					Coefficient: r,
				})
			}
		}
	}
	return highlights
}

// narrative composes the three-paragraph prose summary: dataset shape and
// completeness tier, the leading numeric column, and correlation findings.
func narrative(ds table.Dataset, prof profile.DatasetProfile, numericCols []profile.ColumnProfile, summary Summary) string {
	var paragraphs []string

	tier := "moderate"
	if prof.Completeness >= completenessGreat {
		tier = "excellent"
	} else if prof.Completeness >= completenessGood {
		tier = "good"
	}
	paragraphs = append(paragraphs, fmt.Sprintf(
		"The dataset contains %d rows and %d columns, %d of which are numeric. Data completeness is %.2f%%, which is %s.",
		prof.RowCount, prof.ColumnCount, len(numericCols), prof.Completeness, tier))

	if len(numericCols) > 0 {
		lead := numericCols[0]
		series := table.NumericColumn(ds, lead.Name)
		sentence := fmt.Sprintf(
			"The leading numeric column %q ranges from %.2f to %.2f with a mean of %.2f.",
			lead.Name, numkit.Min(series), numkit.Max(series), numkit.Mean(series))
		if outliers := summary.Outliers[0].Count; outliers > 0 {
			sentence += fmt.Sprintf(" It contains %d outlier value(s) outside the interquartile bounds.", outliers)
		} else {
			sentence += " No outliers were detected in it."
		}
		paragraphs = append(paragraphs, sentence)
	} else {
		paragraphs = append(paragraphs, "No numeric columns were found, so range and outlier statistics are unavailable.")
	}

	if len(summary.Correlations) > 0 {
		strongest := summary.Correlations[0]
		for _, h := range summary.Correlations[1:] {
			if math.Abs(h.Coefficient) > math.Abs(strongest.Coefficient) {
				strongest = h
			}
		}
		paragraphs = append(paragraphs, fmt.Sprintf(
			"The strongest relationship is between %q and %q (r = %.2f).",
			strongest.ColumnA, strongest.ColumnB, strongest.Coefficient))
	} else {
		paragraphs = append(paragraphs, "No strong correlations were found among the leading numeric columns.")
	}

	return strings.Join(paragraphs, "\n\n")
}
