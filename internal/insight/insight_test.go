package insight

import (
	"strings"
	"testing"

	"tablens/domain/table"
	"tablens/internal/anomaly"
	"tablens/internal/correlate"
	"tablens/internal/profile"
	"tablens/internal/trend"
)

func qualityDataset() (table.Dataset, profile.DatasetProfile) {
	ds := make(table.Dataset, 20)
	for i := range ds {
		row := table.Row{
			"user_id": "u-" + strings.Repeat("x", i+1),
			"sales":   float64(100 + i*10),
			"rating":  nil,
		}
		if i >= 5 {
			row["rating"] = float64(i % 5)
		}
		ds[i] = row
	}
	prof := profile.Dataset(ds)
	return ds, prof
}

func TestSynthesize_DataQualityAndIdentifier(t *testing.T) {
	ds, prof := qualityDataset()
	insights := Synthesize(Inputs{Dataset: ds, Profile: &prof})

	var sawQuality, sawIdentifier bool
	for _, ins := range insights {
		switch ins.Category {
		case "data_quality":
			sawQuality = true
			if ins.Column != "rating" {
				t.Errorf("quality warning column = %s, want rating", ins.Column)
			}
			if ins.Type != TypeWarning {
				t.Errorf("quality insight type = %s, want warning", ins.Type)
			}
		case "identifier":
			sawIdentifier = true
			if ins.Column != "user_id" {
				t.Errorf("identifier column = %s, want user_id", ins.Column)
			}
		}
	}
	if !sawQuality {
		t.Error("expected a data-quality warning for the 25% null rating column")
	}
	if !sawIdentifier {
		t.Error("expected an identifier observation for user_id")
	}
}

func TestSynthesize_AnomalyElevation(t *testing.T) {
	severe := make([]anomaly.Anomaly, 7)
	for i := range severe {
		severe[i] = anomaly.Anomaly{Row: i, Column: "sales", Score: 0.95, Method: anomaly.MethodZScore}
	}
	report := &anomaly.Report{Anomalies: severe, TotalCount: 7, Explanation: "7 anomalies detected"}

	insights := Synthesize(Inputs{Anomalies: report})
	if len(insights) != 1 {
		t.Fatalf("insights = %+v, want a single anomaly insight", insights)
	}
	if insights[0].Type != TypeWarning || insights[0].Importance != ImportanceHigh {
		t.Errorf("anomaly insight = %s/%s, want warning/high with >5 severe anomalies",
			insights[0].Type, insights[0].Importance)
	}

	mild := &anomaly.Report{
		Anomalies:  []anomaly.Anomaly{{Row: 1, Column: "sales", Score: 0.5}},
		TotalCount: 1,
	}
	insights = Synthesize(Inputs{Anomalies: mild})
	if insights[0].Type != TypeObservation || insights[0].Importance != ImportanceMedium {
		t.Errorf("mild anomaly insight = %s/%s, want observation/medium",
			insights[0].Type, insights[0].Importance)
	}
}

func TestSynthesize_TrendsAndSorting(t *testing.T) {
	trends := []trend.Result{
		{Column: "sales", Direction: trend.DirectionIncreasing, Strength: 0.9, Explanation: "sales up"},
		{Column: "churn", Direction: trend.DirectionDecreasing, Strength: 0.8, Explanation: "churn down"},
		{Column: "flat", Direction: trend.DirectionIncreasing, Strength: 0.2, Explanation: "weak"},
	}
	severe := make([]anomaly.Anomaly, 6)
	for i := range severe {
		severe[i] = anomaly.Anomaly{Row: i, Score: 0.9}
	}
	report := &anomaly.Report{Anomalies: severe, TotalCount: 6, Explanation: "six severe"}

	insights := Synthesize(Inputs{Trends: trends, Anomalies: report})

	if insights[0].Category != "anomaly" {
		t.Errorf("first insight = %s, want the high-importance anomaly", insights[0].Category)
	}
	var trendInsights []Insight
	for _, ins := range insights {
		if ins.Category == "trend" {
			trendInsights = append(trendInsights, ins)
		}
	}
	if len(trendInsights) != 2 {
		t.Fatalf("trend insights = %d, want 2 (weak trend skipped)", len(trendInsights))
	}
	if trendInsights[0].Type != TypeOpportunity || trendInsights[1].Type != TypeWarning {
		t.Errorf("trend insight types = %s, %s", trendInsights[0].Type, trendInsights[1].Type)
	}
}

func TestSynthesize_CorrelationInsights(t *testing.T) {
	correlations := &correlate.Result{Pairs: []correlate.Pair{
		{ColumnA: "a", ColumnB: "b", Coefficient: 0.95, Kind: correlate.KindNumeric, Strength: correlate.StrengthStrong},
		{ColumnA: "c", ColumnB: "d", Coefficient: 0.75, Kind: correlate.KindNumeric, Strength: correlate.StrengthStrong},
		{ColumnA: "e", ColumnB: "f", Coefficient: 0.3, Kind: correlate.KindNumeric, Strength: correlate.StrengthWeak},
	}}
	insights := Synthesize(Inputs{Correlations: correlations})

	if len(insights) != 2 {
		t.Fatalf("insights = %+v, want collinearity warning plus one observation", insights)
	}
	if insights[0].Type != TypeWarning {
		t.Errorf("collinear pair should produce a warning, got %s", insights[0].Type)
	}
	if insights[1].Type != TypeObservation {
		t.Errorf("strong pair should produce an observation, got %s", insights[1].Type)
	}
}

func TestRecommendations(t *testing.T) {
	insights := []Insight{
		{Category: "data_quality"},
		{Category: "data_quality"},
		{Category: "trend"},
	}
	recs := Recommendations(insights)

	if len(recs) > 7 {
		t.Errorf("recommendations = %d, want at most 7", len(recs))
	}
	last := recs[len(recs)-1]
	if !strings.Contains(last, "monitoring") {
		t.Errorf("last recommendation %q should be the monitoring line", last)
	}
	// Duplicate categories collapse to one line each.
	if len(recs) != 3 {
		t.Errorf("recommendations = %v, want quality + trend + monitoring", recs)
	}
}

func TestRecommendations_CapIncludesMonitoring(t *testing.T) {
	insights := []Insight{
		{Category: "data_quality"},
		{Category: "identifier"},
		{Category: "anomaly"},
		{Category: "trend"},
		{Category: "correlation"},
		{Category: "distribution"},
	}
	recs := Recommendations(insights)
	if len(recs) != 7 {
		t.Errorf("recommendations = %d, want the 7-entry cap", len(recs))
	}
	if !strings.Contains(recs[len(recs)-1], "monitoring") {
		t.Error("monitoring line must survive the cap")
	}
}

func TestSuggestCharts(t *testing.T) {
	ds := make(table.Dataset, 15)
	for i := range ds {
		ds[i] = table.Row{
			"when":    "2024-01-01",
			"amount":  float64(i),
			"total":   float64(i * 2),
			"channel": "web",
		}
	}
	prof := profile.Dataset(ds)
	charts := SuggestCharts(&prof, []Insight{{Category: "anomaly"}})

	want := map[string]bool{"line": true, "histogram": true, "box": true, "bar": true, "pie": true, "scatter": true, "heatmap": true}
	seen := map[string]bool{}
	for _, c := range charts {
		if seen[c] {
			t.Errorf("chart %q suggested twice", c)
		}
		seen[c] = true
		if !want[c] {
			t.Errorf("unexpected chart %q", c)
		}
	}
	for c := range want {
		if !seen[c] {
			t.Errorf("missing chart %q", c)
		}
	}
}

func TestExecutiveSummary(t *testing.T) {
	_, prof := qualityDataset()
	insights := []Insight{
		{Type: TypeWarning, Importance: ImportanceHigh, Title: "Spike in refunds"},
		{Type: TypeOpportunity, Importance: ImportanceMedium, Title: "Sales trending up"},
	}
	summary := ExecutiveSummary(&prof, insights)
	if !strings.Contains(summary, "20 rows") {
		t.Errorf("summary %q should state the dataset shape", summary)
	}
	if !strings.Contains(summary, "Spike in refunds") {
		t.Errorf("summary %q should name high-priority findings", summary)
	}
	if !strings.Contains(summary, "1 opportunity(ies) and 1 warning(s)") {
		t.Errorf("summary %q should tally opportunities and warnings", summary)
	}
}
