package backtester_test

import (
	"testing"
	"time"

	"github.com/kestrel-quant/stratcore/internal/backtester"
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

func TestRunBuyAndHoldTwoCandles(t *testing.T) {
	bt := backtester.New(nil)
	report, err := bt.Run(closes(100, 110), nil, 1000, 0, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.FinalEquity != 1100 {
		t.Errorf("FinalEquity = %v, want 1100", report.FinalEquity)
	}
	if report.ReturnPct != 10.0 {
		t.Errorf("ReturnPct = %v, want 10.0", report.ReturnPct)
	}
	if report.MaxDrawdownPct != 0.0 {
		t.Errorf("MaxDrawdownPct = %v, want 0.0", report.MaxDrawdownPct)
	}
	// returns_series = [0.0, 0.1]; Bessel-corrected std dev over n=2
	// gives sharpe = mean/stdDev = 0.05/0.07071... = sqrt(2)/2.
	wantSharpe := 0.7071067811865476
	if abs(report.SharpeRatio-wantSharpe) > 1e-9 {
		t.Errorf("SharpeRatio = %v, want %v", report.SharpeRatio, wantSharpe)
	}
}

func TestRunDrawdownArithmetic(t *testing.T) {
	bt := backtester.New(nil)
	report, err := bt.Run(closes(100, 120, 90, 130), nil, 1000, 0, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	wantCurve := []float64{1000, 1200, 900, 1300}
	for i, v := range wantCurve {
		if report.EquityCurve[i] != v {
			t.Errorf("EquityCurve[%d] = %v, want %v", i, report.EquityCurve[i], v)
		}
	}
	if got, want := report.MaxDrawdownPct, -25.0; got != want {
		t.Errorf("MaxDrawdownPct = %v, want %v", got, want)
	}
	if got, want := report.CalmarRatio, 1.2; abs(got-want) > 1e-9 {
		t.Errorf("CalmarRatio = %v, want %v", got, want)
	}
}

func TestRunBuyAndHoldKeepsMarkToMarketCurveUnderCosts(t *testing.T) {
	bt := backtester.New(nil)
	report, err := bt.Run(closes(100, 110), nil, 1000, 1, 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	shares := (1000 * 0.99) / (100 * 1.01)
	wantCurve := []float64{shares * 100, shares * 110}
	for i, want := range wantCurve {
		if abs(report.EquityCurve[i]-want) > 1e-9 {
			t.Errorf("EquityCurve[%d] = %v, want %v", i, report.EquityCurve[i], want)
		}
	}

	// FinalEquity reflects exit slippage and transaction cost; the curve
	// stays pure mark-to-market.
	wantFinal := shares * (110 * 0.99) * 0.99
	if abs(report.FinalEquity-wantFinal) > 1e-9 {
		t.Errorf("FinalEquity = %v, want %v", report.FinalEquity, wantFinal)
	}
	if report.FinalEquity >= report.EquityCurve[1] {
		t.Errorf("FinalEquity = %v, want below mark-to-market close %v", report.FinalEquity, report.EquityCurve[1])
	}
}

func TestRunRejectsTooFewCandles(t *testing.T) {
	bt := backtester.New(nil)
	if _, err := bt.Run(closes(100), nil, 1000, 0, 0); err == nil {
		t.Fatal("expected error for single candle")
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
