package trend

import (
	"math"
	"testing"

	"tablens/domain/table"
)

func seriesDataset(values []float64) table.Dataset {
	ds := make(table.Dataset, len(values))
	for i, v := range values {
		ds[i] = table.Row{"metric": v}
	}
	return ds
}

func TestAnalyze_InsufficientData(t *testing.T) {
	result := Analyze(seriesDataset([]float64{1, 2}), "metric")
	if result.Direction != DirectionStable {
		t.Errorf("direction = %s, want stable", result.Direction)
	}
	if result.Strength != 0 {
		t.Errorf("strength = %f, want 0", result.Strength)
	}
	if result.Explanation == "" {
		t.Error("expected an insufficient-data explanation")
	}
}

func TestAnalyze_Increasing(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 1000 + float64(i)*(1000.0/29.0)
	}
	result := Analyze(seriesDataset(values), "metric")

	if result.Direction != DirectionIncreasing {
		t.Errorf("direction = %s, want increasing", result.Direction)
	}
	if result.Strength < 0.99 {
		t.Errorf("strength = %f, want near 1 for a perfect line", result.Strength)
	}
	if result.Slope <= 0 {
		t.Errorf("slope = %f, want positive", result.Slope)
	}
}

func TestAnalyze_Decreasing(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 500 - float64(i)*10
	}
	result := Analyze(seriesDataset(values), "metric")
	if result.Direction != DirectionDecreasing {
		t.Errorf("direction = %s, want decreasing", result.Direction)
	}
}

func TestAnalyze_StableFlatSeries(t *testing.T) {
	values := make([]float64, 15)
	for i := range values {
		values[i] = 100
	}
	result := Analyze(seriesDataset(values), "metric")
	if result.Direction != DirectionStable {
		t.Errorf("direction = %s, want stable", result.Direction)
	}
	if len(result.Shifts) != 0 {
		t.Errorf("flat series should have no shifts, got %d", len(result.Shifts))
	}
}

func TestAnalyze_Volatile(t *testing.T) {
	// High dispersion, no linear structure: CV > 0.5 and R2 < 0.3.
	values := []float64{10, 200, 5, 180, 15, 190, 8, 210, 12, 175, 20, 195}
	result := Analyze(seriesDataset(values), "metric")
	if result.Direction != DirectionVolatile {
		t.Errorf("direction = %s, want volatile", result.Direction)
	}
}

func TestAnalyze_Seasonality(t *testing.T) {
	// Strong period-7 cycle over four full cycles.
	values := make([]float64, 28)
	for i := range values {
		values[i] = 100 + 50*math.Sin(2*math.Pi*float64(i)/7)
	}
	result := Analyze(seriesDataset(values), "metric")
	if result.Seasonality == nil {
		t.Fatal("expected seasonality to be detected")
	}
	if result.Seasonality.Period != 7 {
		t.Errorf("period = %d, want 7", result.Seasonality.Period)
	}
	if result.Seasonality.Autocorrelation <= 0.5 {
		t.Errorf("autocorrelation = %f, want > 0.5", result.Seasonality.Autocorrelation)
	}
}

func TestAnalyze_ShiftDetection(t *testing.T) {
	// Noisy low level jumping to a noisy high level halfway through.
	values := make([]float64, 40)
	for i := range values {
		base := 10.0
		if i >= 20 {
			base = 100.0
		}
		jitter := float64(i%3) - 1
		values[i] = base + jitter
	}
	result := Analyze(seriesDataset(values), "metric")
	if len(result.Shifts) == 0 {
		t.Fatal("expected at least one level shift")
	}
	top := result.Shifts[0]
	if top.Index < 17 || top.Index > 23 {
		t.Errorf("top shift at index %d, want near 20", top.Index)
	}
	if top.After <= top.Before {
		t.Errorf("shift levels before=%f after=%f, want upward", top.Before, top.After)
	}
	if len(result.Shifts) > 5 {
		t.Errorf("shifts capped at 5, got %d", len(result.Shifts))
	}
}

func TestAnalyze_MovingAverageWindow(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i)
	}
	result := Analyze(seriesDataset(values), "metric")
	// Window is max(3, 30/10) = 3, so the MA has N-window+1 points.
	if len(result.MovingAverage) != 28 {
		t.Errorf("moving average length = %d, want 28", len(result.MovingAverage))
	}
}

func TestAnalyze_CoercionExclusion(t *testing.T) {
	ds := table.Dataset{
		{"metric": 1.0}, {"metric": "broken"}, {"metric": 2.0},
		{"metric": 3.0}, {"metric": nil}, {"metric": 4.0},
	}
	result := Analyze(ds, "metric")
	// Four clean values remain, enough for analysis.
	if result.Direction != DirectionIncreasing {
		t.Errorf("direction = %s, want increasing after coercion filtering", result.Direction)
	}
}
