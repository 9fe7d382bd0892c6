package regime_test

import (
	"testing"
	"time"

	"github.com/kestrel-quant/stratcore/internal/backtester"
	"github.com/kestrel-quant/stratcore/internal/regime"
	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/pkg/candle"
	"github.com/shopspring/decimal"
)

func closeCandle(close float64) candle.Candle {
	return candle.Candle{
		Timestamp: time.Now(),
		Open:      decimal.NewFromFloat(close),
		High:      decimal.NewFromFloat(close),
		Low:       decimal.NewFromFloat(close),
		Close:     decimal.NewFromFloat(close),
		Volume:    decimal.Zero,
	}
}

func closes(values ...float64) []candle.Candle {
	out := make([]candle.Candle, len(values))
	for i, v := range values {
		out[i] = closeCandle(v)
	}
	return out
}

func buyAndHold() strategy.Strategy { return nil }

func TestSplitDropsTrailingSingleton(t *testing.T) {
	candles := closes(1, 2, 3, 4, 5, 6, 7)
	windows, err := regime.Split(candles, 3)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("len(windows) = %d, want 2 (3+3, trailing 1 dropped)", len(windows))
	}
	if len(windows[0]) != 3 || len(windows[1]) != 3 {
		t.Errorf("window sizes = %d, %d, want 3, 3", len(windows[0]), len(windows[1]))
	}
}

func TestSplitKeepsShortTrailingWindow(t *testing.T) {
	candles := closes(1, 2, 3, 4, 5, 6, 7, 8)
	windows, err := regime.Split(candles, 3)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("len(windows) = %d, want 3 (3+3+2)", len(windows))
	}
	if len(windows[2]) != 2 {
		t.Errorf("len(windows[2]) = %d, want 2", len(windows[2]))
	}
}

func TestSplitRejectsSmallWindowSize(t *testing.T) {
	if _, err := regime.Split(closes(1, 2, 3), 1); err == nil {
		t.Fatal("expected error for window_size < 2")
	}
}

func TestStabilityAggregatesWindows(t *testing.T) {
	bt := backtester.New(nil)
	candles := closes(100, 110, 100, 120, 90, 130, 100, 140)
	result, err := regime.Stability(bt, buyAndHold, candles, 4, 1000)
	if err != nil {
		t.Fatalf("Stability failed: %v", err)
	}
	if len(result.RegimeMetrics) != 2 {
		t.Fatalf("len(RegimeMetrics) = %d, want 2", len(result.RegimeMetrics))
	}
}

func TestStabilityRejectsNoCompleteWindows(t *testing.T) {
	bt := backtester.New(nil)
	candles := closes(100)
	if _, err := regime.Stability(bt, buyAndHold, candles, 4, 1000); err == nil {
		t.Fatal("expected error when no complete window can be formed")
	}
}
