package analytics_test

import (
	"math"
	"testing"

	"github.com/kestrel-quant/stratcore/internal/analytics"
)

func TestComputeRiskMetricsBasic(t *testing.T) {
	curve := []float64{100, 110, 121}
	metrics, err := analytics.ComputeRiskMetrics(curve)
	if err != nil {
		t.Fatalf("ComputeRiskMetrics failed: %v", err)
	}
	if got, want := metrics.TotalReturn, 0.21; math.Abs(got-want) > 1e-9 {
		t.Errorf("TotalReturn = %v, want %v", got, want)
	}
	// Returns are constant 0.1, so sample stddev is 0 and Sharpe/Sortino
	// stay at their zero-guarded defaults.
	if metrics.Sharpe != 0.0 {
		t.Errorf("Sharpe = %v, want 0.0 (zero-variance returns)", metrics.Sharpe)
	}
}

func TestComputeRiskMetricsRejectsShortCurve(t *testing.T) {
	if _, err := analytics.ComputeRiskMetrics([]float64{100}); err == nil {
		t.Fatal("expected error for single-point curve")
	}
}

func TestComputeRiskMetricsRejectsNonPositive(t *testing.T) {
	if _, err := analytics.ComputeRiskMetrics([]float64{100, 0, 90}); err == nil {
		t.Fatal("expected error for non-positive equity value")
	}
}

func TestSampleStdDevBesselCorrection(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := analytics.SampleStdDev(xs)
	want := 2.138089935
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("SampleStdDev = %v, want %v", got, want)
	}
}

func TestSampleStdDevSinglePoint(t *testing.T) {
	if got := analytics.SampleStdDev([]float64{5}); got != 0 {
		t.Errorf("SampleStdDev of single point = %v, want 0", got)
	}
}
