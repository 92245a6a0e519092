package describe

import (
	"strings"
	"testing"

	"tablens/domain/table"
	"tablens/internal/profile"
)

func summaryFor(ds table.Dataset) Summary {
	return Summarize(ds, profile.Dataset(ds))
}

func columnDataset(column string, values []float64) table.Dataset {
	ds := make(table.Dataset, len(values))
	for i, v := range values {
		ds[i] = table.Row{column: v}
	}
	return ds
}

func shapeOf(t *testing.T, values []float64) string {
	t.Helper()
	summary := summaryFor(columnDataset("metric", values))
	if len(summary.Distributions) != 1 {
		t.Fatalf("distributions = %+v", summary.Distributions)
	}
	return summary.Distributions[0].Shape
}

func TestClassifyShape(t *testing.T) {
	if got := shapeOf(t, []float64{1, 2, 3}); got != ShapeInsufficient {
		t.Errorf("short series shape = %s, want %s", got, ShapeInsufficient)
	}

	symmetric := make([]float64, 20)
	for i := range symmetric {
		symmetric[i] = float64(i % 10)
	}
	if got := shapeOf(t, symmetric); got != ShapeNormal {
		t.Errorf("symmetric shape = %s, want %s", got, ShapeNormal)
	}

	rightSkewed := []float64{1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 50}
	if got := shapeOf(t, rightSkewed); got != ShapeRightSkewed {
		t.Errorf("right-tailed shape = %s, want %s", got, ShapeRightSkewed)
	}

	leftSkewed := []float64{50, 50, 50, 50, 50, 50, 50, 50, 49, 49, 49, 1}
	if got := shapeOf(t, leftSkewed); got != ShapeLeftSkewed {
		t.Errorf("left-tailed shape = %s, want %s", got, ShapeLeftSkewed)
	}
}

func TestOutlierCounts(t *testing.T) {
	values := []float64{10, 11, 9, 10, 12, 10, 11, 9, 10, 11, 10, 9, 200}
	summary := summaryFor(columnDataset("metric", values))
	if len(summary.Outliers) != 1 {
		t.Fatalf("outliers = %+v", summary.Outliers)
	}
	if summary.Outliers[0].Count != 1 {
		t.Errorf("outlier count = %d, want 1 (the 200)", summary.Outliers[0].Count)
	}
}

func TestKeyMetrics(t *testing.T) {
	ds := make(table.Dataset, 10)
	for i := range ds {
		ds[i] = table.Row{
			"a":     float64(i),
			"b":     float64(i) * 2,
			"label": "x",
		}
	}
	summary := summaryFor(ds)

	if summary.Metrics.RowCount != 10 || summary.Metrics.ColumnCount != 3 {
		t.Errorf("shape = %dx%d", summary.Metrics.RowCount, summary.Metrics.ColumnCount)
	}
	if summary.Metrics.NumericColumns != 2 {
		t.Errorf("numeric columns = %d, want 2", summary.Metrics.NumericColumns)
	}
	if got := summary.Metrics.ColumnMeans["a"]; got != 4.5 {
		t.Errorf("mean of a = %f, want 4.5", got)
	}
	if got := summary.Metrics.ColumnMeans["b"]; got != 9 {
		t.Errorf("mean of b = %f, want 9", got)
	}
}

func TestCorrelationHighlights(t *testing.T) {
	ds := make(table.Dataset, 15)
	for i := range ds {
		ds[i] = table.Row{
			"x":     float64(i),
			"y":     float64(i) * 3,
			"noise": float64((i * 7919) % 13),
		}
	}
	summary := summaryFor(ds)

	foundXY := false
	for _, h := range summary.Correlations {
		if (h.ColumnA == "x" && h.ColumnB == "y") || (h.ColumnA == "y" && h.ColumnB == "x") {
			foundXY = true
		}
	}
	if !foundXY {
		t.Errorf("highlights = %+v, want the x/y pair", summary.Correlations)
	}
}

func TestNarrative_ThreeParagraphs(t *testing.T) {
	ds := make(table.Dataset, 12)
	for i := range ds {
		ds[i] = table.Row{"revenue": 100.0 + float64(i)}
	}
	summary := summaryFor(ds)

	paragraphs := strings.Split(summary.Narrative, "\n\n")
	if len(paragraphs) != 3 {
		t.Fatalf("narrative has %d paragraphs, want 3", len(paragraphs))
	}
	if !strings.Contains(paragraphs[0], "excellent") {
		t.Errorf("first paragraph %q should name the excellent completeness tier", paragraphs[0])
	}
	if !strings.Contains(paragraphs[1], "revenue") {
		t.Errorf("second paragraph %q should describe the leading numeric column", paragraphs[1])
	}
	if !strings.Contains(paragraphs[2], "correlation") {
		t.Errorf("third paragraph %q should mention correlations", paragraphs[2])
	}
}

func TestNarrative_CompletenessTiers(t *testing.T) {
	// 12 rows, one column, three nulls: 75% complete, the moderate tier.
	ds := make(table.Dataset, 12)
	for i := range ds {
		if i < 3 {
			ds[i] = table.Row{"metric": nil}
		} else {
			ds[i] = table.Row{"metric": float64(i)}
		}
	}
	summary := summaryFor(ds)
	if !strings.Contains(summary.Narrative, "moderate") {
		t.Errorf("narrative %q should name the moderate tier", summary.Narrative)
	}
}
