package portfolioeng_test

import (
	"testing"
	"time"

	"github.com/kestrel-quant/stratcore/internal/portfolioeng"
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

func TestNewRejectsEmptyFactories(t *testing.T) {
	_, err := portfolioeng.New(nil, nil, nil, decimal.NewFromInt(1000), decimal.Zero, nil)
	if err == nil {
		t.Fatal("expected error for empty strategy set")
	}
}

func TestRunSplitsCapitalEqually(t *testing.T) {
	maFactory := func() strategy.Strategy { return strategy.NewMovingAverageCrossover(2, 3) }
	rsiFactory := func() strategy.Strategy { return strategy.NewRSI(5, 70, 30) }

	engine, err := portfolioeng.New(nil,
		[]strategy.Factory{maFactory, rsiFactory},
		[]string{"ma", "rsi"},
		decimal.NewFromInt(1000), decimal.Zero, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	candles := closes(100, 102, 101, 105, 103, 108, 107, 110)
	report, err := engine.Run(candles)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Strategies) != 2 {
		t.Fatalf("len(Strategies) = %d, want 2", len(report.Strategies))
	}
	if len(report.PortfolioEquityCurve) != len(candles) {
		t.Errorf("len(PortfolioEquityCurve) = %d, want %d", len(report.PortfolioEquityCurve), len(candles))
	}

	var sum decimal.Decimal
	for _, s := range report.Strategies {
		sum = sum.Add(s.Equity)
	}
	if !sum.Equal(report.PortfolioEquity) {
		t.Errorf("sum of strategy equities = %v, want portfolio equity %v", sum, report.PortfolioEquity)
	}
}

func TestRunRejectsMissingClose(t *testing.T) {
	maFactory := func() strategy.Strategy { return strategy.NewMovingAverageCrossover(2, 3) }
	engine, err := portfolioeng.New(nil, []strategy.Factory{maFactory}, []string{"ma"}, decimal.NewFromInt(1000), decimal.Zero, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	bad := candle.Candle{Timestamp: time.Now()}
	if _, err := engine.Run([]candle.Candle{bad}); err == nil {
		t.Fatal("expected error for a candle with a zero-value close")
	}
}
