package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablens/domain/table"
)

func seriesDataset(column string, values []float64) table.Dataset {
	ds := make(table.Dataset, len(values))
	for i, v := range values {
		ds[i] = table.Row{column: v}
	}
	return ds
}

// risingWithOutlier builds the reference scenario: revenue rising linearly
// from 1000 to 2000 over 30 rows with one injected 10x outlier.
func risingWithOutlier(outlierRow int) table.Dataset {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 1000 + float64(i)*(1000.0/29.0)
	}
	values[outlierRow] *= 10
	return seriesDataset("revenue", values)
}

func TestDetectColumn_InjectedOutlier(t *testing.T) {
	outlierRow := 15
	ds := risingWithOutlier(outlierRow)

	anomalies := DetectColumn(ds, "revenue")
	require.NotEmpty(t, anomalies)

	var found *Anomaly
	for i := range anomalies {
		if anomalies[i].Row == outlierRow {
			found = &anomalies[i]
			break
		}
	}
	require.NotNil(t, found, "injected outlier row must be flagged")
	assert.Contains(t, []string{MethodZScore, MethodIQR, MethodSpike}, found.Method)
	assert.Greater(t, found.Score, 0.0)
	assert.LessOrEqual(t, found.Score, 1.0)
	assert.True(t, found.Value < found.ExpectedLow || found.Value > found.ExpectedHigh,
		"flagged value should sit outside its expected range")
}

func TestDetectColumn_ConstantSeries(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 42
	}
	anomalies := DetectColumn(seriesDataset("metric", values), "metric")
	assert.Empty(t, anomalies, "constant series has zero deviation and no anomalies")
}

func TestDetectColumn_BelowMinimum(t *testing.T) {
	anomalies := DetectColumn(seriesDataset("metric", []float64{1, 2, 100}), "metric")
	assert.Empty(t, anomalies, "fewer than 10 numeric values should produce nothing")
}

func TestDetectColumn_MergeKeepsHighestScore(t *testing.T) {
	ds := risingWithOutlier(20)
	anomalies := DetectColumn(ds, "revenue")

	seen := map[int]bool{}
	for _, a := range anomalies {
		if seen[a.Row] {
			t.Fatalf("row %d reported more than once after merge", a.Row)
		}
		seen[a.Row] = true
	}
	for i := 1; i < len(anomalies); i++ {
		if anomalies[i].Score > anomalies[i-1].Score {
			t.Fatal("anomalies must be sorted by score descending")
		}
	}
}

func TestDetectColumn_RowIndicesSurviveCoercion(t *testing.T) {
	// Non-numeric rows are excluded from the series but reported indices
	// must still point at dataset rows.
	ds := table.Dataset{}
	for i := 0; i < 6; i++ {
		ds = append(ds, table.Row{"metric": 10.0})
	}
	ds = append(ds, table.Row{"metric": "n/a"})
	for i := 0; i < 5; i++ {
		ds = append(ds, table.Row{"metric": 11.0})
	}
	ds = append(ds, table.Row{"metric": 500.0})

	anomalies := DetectColumn(ds, "metric")
	require.NotEmpty(t, anomalies)
	assert.Equal(t, 12, anomalies[0].Row, "row index must account for the skipped cell")
	assert.Equal(t, 500.0, anomalies[0].Value)
}

func TestDetectDataset(t *testing.T) {
	ds := risingWithOutlier(10)
	// Second column is flat noise with no anomalies.
	for i := range ds {
		ds[i]["baseline"] = 5.0
	}

	report := DetectDataset(ds)
	require.NotZero(t, report.TotalCount)
	assert.LessOrEqual(t, report.AnomalyScore, 1.0)
	assert.Greater(t, report.AnomalyScore, 0.0)
	assert.NotEmpty(t, report.Explanation)
	assert.Contains(t, report.Explanation, "revenue")

	for _, a := range report.Anomalies {
		assert.Equal(t, "revenue", a.Column, "flat column should contribute nothing")
	}
}

func TestDetectDataset_Empty(t *testing.T) {
	report := DetectDataset(table.Dataset{})
	assert.Zero(t, report.TotalCount)
	assert.Empty(t, report.Anomalies)
	assert.Equal(t, "no data available for anomaly detection", report.Explanation)
}

func TestDetectDataset_Deterministic(t *testing.T) {
	ds := risingWithOutlier(7)
	for i := range ds {
		ds[i]["second"] = float64(i % 4)
	}
	first := DetectDataset(ds)
	second := DetectDataset(ds)
	assert.Equal(t, first, second, "repeat runs must be identical")
}
