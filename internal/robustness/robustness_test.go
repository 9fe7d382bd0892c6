package robustness_test

import (
	"testing"
	"time"

	"github.com/kestrel-quant/stratcore/internal/backtester"
	"github.com/kestrel-quant/stratcore/internal/robustness"
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

func closes(n int) []candle.Candle {
	out := make([]candle.Candle, n)
	price := 100.0
	for i := range out {
		price += float64(i%7) - 3
		out[i] = closeCandle(price)
	}
	return out
}

func buyAndHold() strategy.Strategy { return nil }

func TestRunProducesOneScorePerFold(t *testing.T) {
	bt := backtester.New(nil)
	candles := closes(40)
	result, err := robustness.Run(bt, buyAndHold, candles, 10, 5, 5, 1000, 30, 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Folds) == 0 {
		t.Fatal("expected at least one fold score")
	}

	var sum float64
	for _, f := range result.Folds {
		sum += f.Score
	}
	want := sum / float64(len(result.Folds))
	if result.RobustnessScore != want {
		t.Errorf("RobustnessScore = %v, want %v", result.RobustnessScore, want)
	}
}

func TestRunPropagatesWalkForwardError(t *testing.T) {
	bt := backtester.New(nil)
	candles := closes(5)
	if _, err := robustness.Run(bt, buyAndHold, candles, 10, 5, 5, 1000, 30, 1); err == nil {
		t.Fatal("expected error when no walk-forward window can be formed")
	}
}

func TestRunIsDeterministicForEqualSeed(t *testing.T) {
	bt := backtester.New(nil)
	candles := closes(40)
	r1, err := robustness.Run(bt, buyAndHold, candles, 10, 5, 5, 1000, 30, 99)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	r2, err := robustness.Run(bt, buyAndHold, candles, 10, 5, 5, 1000, 30, 99)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if r1.RobustnessScore != r2.RobustnessScore {
		t.Errorf("RobustnessScore differs between equal-seed runs: %v vs %v", r1.RobustnessScore, r2.RobustnessScore)
	}
}
