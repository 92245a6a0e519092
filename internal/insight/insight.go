// Package insight aggregates every analyzer's output into prioritized
// findings, an executive narrative, recommendations, and chart-type
// suggestions.
package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"tablens/domain/table"
	"tablens/internal/anomaly"
	"tablens/internal/correlate"
	"tablens/internal/describe"
	"tablens/internal/forecast"
	"tablens/internal/numkit"
	"tablens/internal/profile"
	"tablens/internal/trend"
)

// Insight types.
const (
	TypeOpportunity = "opportunity"
	TypeWarning     = "warning"
	TypeObservation = "observation"
)

// Importance levels, ordered high first.
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

const (
	nullWarnRatio       = 0.1
	trendStrengthBound  = 0.5
	collinearBound      = 0.9
	highSeverityElevate = 5
	dispersionBound     = 1.0
	maxRecommendations  = 7
)

// Insight is a single prioritized finding.
type Insight struct {
	Type        string `json:"type"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Importance  string `json:"importance"`
	Column      string `json:"column,omitempty"`
}

// Inputs carries whichever analyzer outputs were computed; nil fields are
// skipped.
type Inputs struct {
	Dataset      table.Dataset
	Profile      *profile.DatasetProfile
	Statistics   *describe.Summary
	Trends       []trend.Result
	Anomalies    *anomaly.Report
	Forecasts    []forecast.Result
	Correlations *correlate.Result
}

// Synthesize derives the prioritized insight list. Ordering is high
// importance first and stable within a level.
func Synthesize(in Inputs) []Insight {
	var insights []Insight

	if in.Profile != nil {
		for _, col := range in.Profile.NullHeavyColumns(nullWarnRatio) {
			insights = append(insights, Insight{
				Type:        TypeWarning,
				Category:    "data_quality",
				Title:       fmt.Sprintf("Missing values in %q", col.Name),
				Description: fmt.Sprintf("%.1f%% of %q is null; analyses over it use only the remaining values.", col.NullRatio()*100, col.Name),
				Importance:  ImportanceMedium,
				Column:      col.Name,
			})
		}
		for _, col := range in.Profile.IdentifierCandidates() {
			insights = append(insights, Insight{
				Type:        TypeObservation,
				Category:    "identifier",
				Title:       fmt.Sprintf("%q looks like an identifier", col.Name),
				Description: fmt.Sprintf("%q is unique for over 95%% of rows and is unlikely to carry analytical signal.", col.Name),
				Importance:  ImportanceLow,
				Column:      col.Name,
			})
		}
	}

	if in.Anomalies != nil && in.Anomalies.TotalCount > 0 {
		severe := 0
		for _, a := range in.Anomalies.Anomalies {
			if a.Score > 0.8 {
				severe++
			}
		}
		anomalyType := TypeObservation
		importance := ImportanceMedium
		if severe > highSeverityElevate {
			anomalyType = TypeWarning
			importance = ImportanceHigh
		}
		insights = append(insights, Insight{
			Type:        anomalyType,
			Category:    "anomaly",
			Title:       fmt.Sprintf("%d anomalous values detected", in.Anomalies.TotalCount),
			Description: in.Anomalies.Explanation,
			Importance:  importance,
		})
	}

	for _, t := range in.Trends {
		if math.Abs(t.Strength) <= trendStrengthBound {
			continue
		}
		switch t.Direction {
		case trend.DirectionIncreasing:
			insights = append(insights, Insight{
				Type:        TypeOpportunity,
				Category:    "trend",
				Title:       fmt.Sprintf("%q is trending up", t.Column),
				Description: t.Explanation,
				Importance:  ImportanceMedium,
				Column:      t.Column,
			})
		case trend.DirectionDecreasing:
			insights = append(insights, Insight{
				Type:        TypeWarning,
				Category:    "trend",
				Title:       fmt.Sprintf("%q is trending down", t.Column),
				Description: t.Explanation,
				Importance:  ImportanceMedium,
				Column:      t.Column,
			})
		}
	}

	if in.Correlations != nil {
		for _, p := range in.Correlations.Pairs {
			if p.Kind == correlate.KindNumeric && math.Abs(p.Coefficient) > collinearBound {
				insights = append(insights, Insight{
					Type:        TypeWarning,
					Category:    "correlation",
					Title:       fmt.Sprintf("%q and %q are nearly collinear", p.ColumnA, p.ColumnB),
					Description: fmt.Sprintf("Correlation of %.2f suggests the columns carry the same signal; consider dropping one.", p.Coefficient),
					Importance:  ImportanceMedium,
				})
			} else if p.Strength == correlate.StrengthStrong {
				insights = append(insights, Insight{
					Type:        TypeObservation,
					Category:    "correlation",
					Title:       fmt.Sprintf("%q and %q move together", p.ColumnA, p.ColumnB),
					Description: fmt.Sprintf("Association of %.2f (%s).", p.Coefficient, p.Kind),
					Importance:  ImportanceLow,
				})
			}
		}
	}

	if in.Profile != nil && in.Dataset != nil {
		for _, col := range in.Profile.ColumnsByType(table.TypeNumeric) {
			series := table.NumericColumn(in.Dataset, col.Name)
			mean := numkit.Mean(series)
			if mean == 0 {
				continue
			}
			if numkit.StdDev(series)/math.Abs(mean) > dispersionBound {
				insights = append(insights, Insight{
					Type:        TypeObservation,
					Category:    "distribution",
					Title:       fmt.Sprintf("%q is highly dispersed", col.Name),
					Description: fmt.Sprintf("The spread of %q exceeds its mean; summary statistics may be misleading.", col.Name),
					Importance:  ImportanceLow,
					Column:      col.Name,
				})
			}
		}
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return importanceRank(insights[i].Importance) < importanceRank(insights[j].Importance)
	})
	return insights
}

func importanceRank(importance string) int {
	switch importance {
	case ImportanceHigh:
		return 0
	case ImportanceMedium:
		return 1
	default:
		return 2
	}
}

// ExecutiveSummary renders the dataset shape, the high-importance findings
// by title, and the opportunity/warning tallies as short prose.
func ExecutiveSummary(prof *profile.DatasetProfile, insights []Insight) string {
	var b strings.Builder
	if prof != nil {
		fmt.Fprintf(&b, "Analyzed %d rows across %d columns with %.2f%% completeness. ",
			prof.RowCount, prof.ColumnCount, prof.Completeness)
	}

	var highTitles []string
	opportunities, warnings := 0, 0
	for _, ins := range insights {
		if ins.Importance == ImportanceHigh {
			highTitles = append(highTitles, ins.Title)
		}
		switch ins.Type {
		case TypeOpportunity:
			opportunities++
		case TypeWarning:
			warnings++
		}
	}

	if len(highTitles) > 0 {
		fmt.Fprintf(&b, "%d high-priority finding(s): %s. ", len(highTitles), strings.Join(highTitles, "; "))
	} else {
		b.WriteString("No high-priority findings. ")
	}
	fmt.Fprintf(&b, "%d opportunity(ies) and %d warning(s) identified overall.", opportunities, warnings)
	return b.String()
}

// Recommendations derives category-specific advice from the insight list,
// capped at seven entries and always ending with the monitoring line.
func Recommendations(insights []Insight) []string {
	templates := map[string]string{
		"data_quality": "Backfill or exclude columns with heavy missing data before drawing conclusions.",
		"identifier":   "Exclude identifier-like columns from statistical models.",
		"anomaly":      "Review the flagged anomalous rows for data errors or genuine events.",
		"trend":        "Investigate the drivers behind the detected trends before extrapolating them.",
		"correlation":  "Validate strong correlations with domain knowledge; correlation is not causation.",
		"distribution": "Prefer median-based statistics for highly dispersed columns.",
	}

	var recs []string
	seen := map[string]bool{}
	for _, ins := range insights {
		text, ok := templates[ins.Category]
		if !ok || seen[ins.Category] {
			continue
		}
		seen[ins.Category] = true
		recs = append(recs, text)
	}

	if len(recs) > maxRecommendations-1 {
		recs = recs[:maxRecommendations-1]
	}
	return append(recs, "Establish ongoing monitoring to catch changes in data quality and key metrics early.")
}

// SuggestCharts proposes chart types from the column-type mix and the
// insight list, deduplicated in suggestion order.
func SuggestCharts(prof *profile.DatasetProfile, insights []Insight) []string {
	if prof == nil {
		return []string{}
	}
	numeric := len(prof.ColumnsByType(table.TypeNumeric))
	categorical := len(prof.ColumnsByType(table.TypeCategorical))
	datetime := len(prof.ColumnsByType(table.TypeDatetime))

	var charts []string
	if datetime > 0 && numeric > 0 {
		charts = append(charts, "line")
	}
	if numeric > 0 {
		charts = append(charts, "histogram", "box")
	}
	if categorical > 0 {
		charts = append(charts, "bar", "pie")
	}
	if numeric >= 2 {
		charts = append(charts, "scatter", "heatmap")
	}
	for _, ins := range insights {
		switch ins.Category {
		case "anomaly":
			charts = append(charts, "scatter")
		case "trend":
			charts = append(charts, "line")
		}
	}

	deduped := []string{}
	seen := map[string]bool{}
	for _, c := range charts {
		if seen[c] {
			continue
		}
		seen[c] = true
		deduped = append(deduped, c)
	}
	return deduped
}
