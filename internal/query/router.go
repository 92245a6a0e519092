// Package query is the engine facade: it maps a free-text query to an
// intent and target column, dispatches the relevant analyzers, and returns
// a uniformly-shaped response.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"tablens/domain/table"
	"tablens/internal/anomaly"
	"tablens/internal/correlate"
	"tablens/internal/describe"
	"tablens/internal/forecast"
	"tablens/internal/insight"
	"tablens/internal/profile"
	"tablens/internal/trend"
)

// Intent is the classified purpose of a query.
type Intent string

// Intents in classification priority order; the first category whose
// keywords match wins, and summary is the default.
const (
	IntentProfile     Intent = "profile"
	IntentSummary     Intent = "summary"
	IntentAnomalies   Intent = "anomalies"
	IntentForecast    Intent = "forecast"
	IntentTrends      Intent = "trends"
	IntentCorrelation Intent = "correlation"
	IntentExplain     Intent = "explain"
)

// maxAutoForecasts bounds how many columns are forecast when no target
// column is named.
const maxAutoForecasts = 3

// featureCorrelationLimit caps the ranked list of a feature-correlation
// query.
const featureCorrelationLimit = 10

type intentRule struct {
	intent   Intent
	keywords []string
}

// intentRules is order-sensitive: a query containing both "trend" and
// "forecast" resolves to the earlier category.
var intentRules = []intentRule{
	{IntentProfile, []string{"profile", "schema", "structure", "column type", "data type", "field"}},
	{IntentSummary, []string{"summary", "summarize", "overview", "describe", "statistic"}},
	{IntentAnomalies, []string{"anomal", "outlier", "unusual", "spike", "drop"}},
	{IntentForecast, []string{"forecast", "predict", "projection", "future", "next week", "next month"}},
	{IntentTrends, []string{"trend", "pattern", "direction", "over time", "growing", "declining"}},
	{IntentCorrelation, []string{"correlat", "relationship", "related", "association", "depend"}},
	{IntentExplain, []string{"explain", "insight", "why", "analyze", "analysis", "tell me"}},
}

var columnPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcolumn\s+['"]?([\w ]+?)['"]?(?:\s*$|[,.?!])`),
	regexp.MustCompile(`(?i)['"]([\w ]+)['"]\s+column`),
	regexp.MustCompile(`(?i)\b(?:analyze|explain|what is)\s+['"]?([\w ]+?)['"]?(?:\s*$|[,.?!])`),
}

// Payload carries whichever analyzer outputs a handler computed.
type Payload struct {
	Profile      *profile.DatasetProfile `json:"profile,omitempty"`
	Statistics   *describe.Summary       `json:"statistics,omitempty"`
	Trends       []trend.Result          `json:"trends,omitempty"`
	Anomalies    *anomaly.Report         `json:"anomalies,omitempty"`
	Forecasts    []forecast.Result       `json:"forecasts,omitempty"`
	Correlations *correlate.Result       `json:"correlations,omitempty"`
	KeyInsights  []insight.Insight       `json:"keyInsights,omitempty"`
}

// Response is the stable contract returned to callers; field presence
// depends on the detected intent.
type Response struct {
	Query             string   `json:"query"`
	Intent            Intent   `json:"intent"`
	Insights          Payload  `json:"insights"`
	TextSummary       string   `json:"textSummary"`
	RecommendedCharts []string `json:"recommendedCharts"`
	ExecutiveSummary  string   `json:"executiveSummary,omitempty"`
	Recommendations   []string `json:"recommendations,omitempty"`
}

// Analyze is the engine's entry point: classify, dispatch, respond.
// An empty dataset short-circuits to an explanatory response.
func Analyze(queryText string, ds table.Dataset) Response {
	intent := classifyIntent(queryText)
	if len(ds) == 0 {
		return Response{
			Query:             queryText,
			Intent:            intent,
			TextSummary:       "no data available for analysis; provide a dataset with at least one row",
			RecommendedCharts: []string{},
		}
	}

	target := extractColumn(queryText, ds)
	response := Response{Query: queryText, Intent: intent}

	switch intent {
	case IntentProfile:
		handleProfile(&response, ds)
	case IntentSummary:
		handleSummary(&response, ds)
	case IntentAnomalies:
		handleAnomalies(&response, ds, target)
	case IntentForecast:
		handleForecast(&response, ds, target)
	case IntentTrends:
		handleTrends(&response, ds, target)
	case IntentCorrelation:
		handleCorrelation(&response, ds, target)
	case IntentExplain:
		handleExplain(&response, ds)
	}
	return response
}

// ClassifyIntent exposes the keyword classifier for callers that only need
// routing.
func ClassifyIntent(queryText string) Intent {
	return classifyIntent(queryText)
}

func classifyIntent(queryText string) Intent {
	lowered := strings.ToLower(queryText)
	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.intent
			}
		}
	}
	return IntentSummary
}

// extractColumn tries the capture patterns first and then scans query
// tokens against the dataset's column names. Only names actually present
// in the dataset bind.
func extractColumn(queryText string, ds table.Dataset) string {
	columns := ds.Columns()

	for _, pattern := range columnPatterns {
		match := pattern.FindStringSubmatch(queryText)
		if match == nil {
			continue
		}
		if name, ok := resolveColumn(strings.TrimSpace(match[1]), columns); ok {
			return name
		}
	}

	lowered := strings.ToLower(queryText)
	for _, name := range columns {
		if strings.Contains(lowered, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

func resolveColumn(candidate string, columns []string) (string, bool) {
	for _, name := range columns {
		if strings.EqualFold(name, candidate) {
			return name, true
		}
	}
	return "", false
}

func handleProfile(response *Response, ds table.Dataset) {
	prof := profile.Dataset(ds)
	response.Insights.Profile = &prof
	response.Insights.KeyInsights = insight.Synthesize(insight.Inputs{Dataset: ds, Profile: &prof})
	response.TextSummary = fmt.Sprintf(
		"Profiled %d rows and %d columns: %d numeric, %d categorical, %d datetime, %d boolean, %d text. Completeness %.2f%%.",
		prof.RowCount, prof.ColumnCount,
		len(prof.ColumnsByType(table.TypeNumeric)),
		len(prof.ColumnsByType(table.TypeCategorical)),
		len(prof.ColumnsByType(table.TypeDatetime)),
		len(prof.ColumnsByType(table.TypeBoolean)),
		len(prof.ColumnsByType(table.TypeText)),
		prof.Completeness)
	response.RecommendedCharts = insight.SuggestCharts(&prof, response.Insights.KeyInsights)
	response.ExecutiveSummary = insight.ExecutiveSummary(&prof, response.Insights.KeyInsights)
	response.Recommendations = insight.Recommendations(response.Insights.KeyInsights)
}

func handleSummary(response *Response, ds table.Dataset) {
	prof := profile.Dataset(ds)
	summary := describe.Summarize(ds, prof)
	response.Insights.Profile = &prof
	response.Insights.Statistics = &summary
	response.Insights.KeyInsights = insight.Synthesize(insight.Inputs{Dataset: ds, Profile: &prof, Statistics: &summary})
	response.TextSummary = summary.Narrative
	response.RecommendedCharts = insight.SuggestCharts(&prof, response.Insights.KeyInsights)
	response.ExecutiveSummary = insight.ExecutiveSummary(&prof, response.Insights.KeyInsights)
	response.Recommendations = insight.Recommendations(response.Insights.KeyInsights)
}

func handleAnomalies(response *Response, ds table.Dataset, target string) {
	var report anomaly.Report
	if target != "" {
		report = anomaly.ColumnReport(ds, target)
	} else {
		report = anomaly.DetectDataset(ds)
	}
	response.Insights.Anomalies = &report
	response.TextSummary = report.Explanation
	response.RecommendedCharts = []string{"scatter", "line"}
}

func handleForecast(response *Response, ds table.Dataset, target string) {
	var results []forecast.Result
	if target != "" {
		result, err := forecast.Forecast(ds, target, forecast.DefaultPeriods, forecast.MethodAuto)
		if err == nil {
			results = append(results, result)
		}
	} else {
		prof := profile.Dataset(ds)
		for i, col := range prof.ColumnsByType(table.TypeNumeric) {
			if i == maxAutoForecasts {
				break
			}
			result, err := forecast.Forecast(ds, col.Name, forecast.DefaultPeriods, forecast.MethodAuto)
			if err == nil {
				results = append(results, result)
			}
		}
	}
	response.Insights.Forecasts = results
	if len(results) > 0 {
		response.TextSummary = results[0].Interpretation
	} else {
		response.TextSummary = "no numeric columns available for forecasting"
	}
	response.RecommendedCharts = []string{"line"}
}

func handleTrends(response *Response, ds table.Dataset, target string) {
	var results []trend.Result
	if target != "" {
		results = append(results, trend.Analyze(ds, target))
	} else {
		prof := profile.Dataset(ds)
		for _, col := range prof.ColumnsByType(table.TypeNumeric) {
			results = append(results, trend.Analyze(ds, col.Name))
		}
	}
	response.Insights.Trends = results
	if len(results) == 1 {
		response.TextSummary = results[0].Explanation
	} else {
		var parts []string
		for _, r := range results {
			parts = append(parts, r.Explanation)
		}
		if len(parts) == 0 {
			parts = append(parts, "no numeric columns available for trend analysis")
		}
		response.TextSummary = strings.Join(parts, " ")
	}
	response.RecommendedCharts = []string{"line"}
}

func handleCorrelation(response *Response, ds table.Dataset, target string) {
	if target != "" {
		pairs := correlate.FeatureCorrelations(ds, target, featureCorrelationLimit)
		result := correlate.Result{Pairs: pairs}
		if len(pairs) == 0 {
			result.Explanation = fmt.Sprintf("no notable associations with %q were found", target)
		} else {
			result.Explanation = fmt.Sprintf("%d column(s) associate with %q; strongest is %q (%.2f)",
				len(pairs), target, pairs[0].ColumnB, pairs[0].Coefficient)
		}
		response.Insights.Correlations = &result
		response.TextSummary = result.Explanation
	} else {
		result := correlate.Analyze(ds)
		response.Insights.Correlations = &result
		response.TextSummary = result.Explanation
	}
	response.RecommendedCharts = []string{"heatmap", "scatter"}
}

// handleExplain runs every analyzer and assembles the complete synthesis.
func handleExplain(response *Response, ds table.Dataset) {
	prof := profile.Dataset(ds)
	summary := describe.Summarize(ds, prof)
	report := anomaly.DetectDataset(ds)
	correlations := correlate.Analyze(ds)

	var trends []trend.Result
	var forecasts []forecast.Result
	for i, col := range prof.ColumnsByType(table.TypeNumeric) {
		trends = append(trends, trend.Analyze(ds, col.Name))
		if i < maxAutoForecasts {
			if result, err := forecast.Forecast(ds, col.Name, forecast.DefaultPeriods, forecast.MethodAuto); err == nil {
				forecasts = append(forecasts, result)
			}
		}
	}

	inputs := insight.Inputs{
		Dataset:      ds,
		Profile:      &prof,
		Statistics:   &summary,
		Trends:       trends,
		Anomalies:    &report,
		Forecasts:    forecasts,
		Correlations: &correlations,
	}
	keyInsights := insight.Synthesize(inputs)

	response.Insights = Payload{
		Profile:      &prof,
		Statistics:   &summary,
		Trends:       trends,
		Anomalies:    &report,
		Forecasts:    forecasts,
		Correlations: &correlations,
		KeyInsights:  keyInsights,
	}
	response.ExecutiveSummary = insight.ExecutiveSummary(&prof, keyInsights)
	response.Recommendations = insight.Recommendations(keyInsights)
	response.TextSummary = response.ExecutiveSummary
	response.RecommendedCharts = insight.SuggestCharts(&prof, keyInsights)
}
