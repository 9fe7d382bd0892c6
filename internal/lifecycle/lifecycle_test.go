package lifecycle_test

import (
	"testing"
	"time"

	"github.com/kestrel-quant/stratcore/internal/allocation"
	"github.com/kestrel-quant/stratcore/internal/lifecycle"
	"github.com/kestrel-quant/stratcore/internal/ranking"
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

func staticRanking(results []ranking.Result) lifecycle.RankingFunc {
	return func(_ []candle.Candle) ([]ranking.Result, error) {
		return results, nil
	}
}

func TestRunEmptyCandlesReturnsInitialCapital(t *testing.T) {
	policy, _ := allocation.NewRebalancePolicy(10)
	decay, _ := allocation.NewPerformanceDecayDetector(0, allocation.DecaySharpe)
	allocator, _ := allocation.NewCapitalAllocator(allocation.Equal)
	m := lifecycle.NewManager(nil, policy, decay, allocator, staticRanking(nil))

	report, err := m.Run(nil, nil, decimal.NewFromInt(10000), decimal.Zero)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.FinalPortfolioEquity.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("FinalPortfolioEquity = %v, want 10000", report.FinalPortfolioEquity)
	}
}

func TestRunRollsCapitalForwardAcrossSegments(t *testing.T) {
	candidates := []lifecycle.Candidate{
		{Name: "ma", Factory: func() strategy.Strategy { return strategy.NewMovingAverageCrossover(2, 4) }},
		{Name: "rsi", Factory: func() strategy.Strategy { return strategy.NewRSI(5, 70, 30) }},
	}
	results := []ranking.Result{
		{StrategyName: "ma", Backtest: ranking.BacktestSummary{SharpeRatio: 1.5}},
		{StrategyName: "rsi", Backtest: ranking.BacktestSummary{SharpeRatio: 1.0}},
	}

	policy, _ := allocation.NewRebalancePolicy(10)
	decay, _ := allocation.NewPerformanceDecayDetector(-100, allocation.DecaySharpe) // nobody decays
	allocator, _ := allocation.NewCapitalAllocator(allocation.Sharpe)
	m := lifecycle.NewManager(nil, policy, decay, allocator, staticRanking(results))

	candles := closes(25)
	report, err := m.Run(candles, candidates, decimal.NewFromInt(10000), decimal.Zero)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.EquityCurve) != len(candles) {
		t.Errorf("len(EquityCurve) = %d, want %d", len(report.EquityCurve), len(candles))
	}
	if report.FinalPortfolioEquity.LessThanOrEqual(decimal.Zero) {
		t.Errorf("FinalPortfolioEquity = %v, want positive", report.FinalPortfolioEquity)
	}
	if len(report.RebalanceSteps) == 0 || report.RebalanceSteps[0] != 0 {
		t.Errorf("RebalanceSteps = %v, want first entry 0", report.RebalanceSteps)
	}
}

func TestRunDisablesDecayedStrategies(t *testing.T) {
	candidates := []lifecycle.Candidate{
		{Name: "ma", Factory: func() strategy.Strategy { return strategy.NewMovingAverageCrossover(2, 4) }},
		{Name: "rsi", Factory: func() strategy.Strategy { return strategy.NewRSI(5, 70, 30) }},
	}
	results := []ranking.Result{
		{StrategyName: "ma", Backtest: ranking.BacktestSummary{SharpeRatio: -5.0}},
		{StrategyName: "rsi", Backtest: ranking.BacktestSummary{SharpeRatio: 2.0}},
	}

	policy, _ := allocation.NewRebalancePolicy(10)
	decay, _ := allocation.NewPerformanceDecayDetector(0, allocation.DecaySharpe)
	allocator, _ := allocation.NewCapitalAllocator(allocation.Equal)
	m := lifecycle.NewManager(nil, policy, decay, allocator, staticRanking(results))

	candles := closes(25)
	report, err := m.Run(candles, candidates, decimal.NewFromInt(10000), decimal.Zero)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	found := false
	for _, name := range report.DisabledStrategies {
		if name == "ma" {
			found = true
		}
	}
	if !found {
		t.Errorf("DisabledStrategies = %v, want to include ma", report.DisabledStrategies)
	}
}
