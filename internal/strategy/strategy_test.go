package strategy_test

import (
	"testing"
	"time"

	"github.com/kestrel-quant/stratcore/internal/genome"
	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/pkg/candle"
	"github.com/kestrel-quant/stratcore/pkg/signal"
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

func feed(strat strategy.Strategy, prices []float64) []signal.Signal {
	out := make([]signal.Signal, len(prices))
	for i, p := range prices {
		out[i] = strat.GenerateSignal(closeCandle(p))
	}
	return out
}

func TestMovingAverageCrossoverBuysOnCrossUp(t *testing.T) {
	strat := strategy.NewMovingAverageCrossover(2, 4)
	prices := []float64{10, 10, 10, 10, 20, 20}
	signals := feed(strat, prices)
	found := false
	for _, s := range signals {
		if s == signal.Buy {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a Buy signal once short MA crosses above long MA, got %v", signals)
	}
}

func TestMovingAverageCrossoverHoldsOnFlatPrices(t *testing.T) {
	strat := strategy.NewMovingAverageCrossover(2, 4)
	prices := make([]float64, 10)
	for i := range prices {
		prices[i] = 100
	}
	for _, s := range feed(strat, prices) {
		if s != signal.Hold {
			t.Errorf("expected Hold on constant prices, got %v", s)
		}
	}
}

func TestRSIBuysWhenOversold(t *testing.T) {
	strat := strategy.NewRSI(3, 70, 30)
	// Sharp decline drives RSI toward 0, below oversold=30.
	prices := []float64{100, 90, 80, 70, 60, 50}
	signals := feed(strat, prices)
	found := false
	for _, s := range signals {
		if s == signal.Buy {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a Buy signal on a sustained decline, got %v", signals)
	}
}

func TestBreakoutBuysAboveTrailingHigh(t *testing.T) {
	strat := strategy.NewBreakout(3)
	prices := []float64{10, 10, 10, 10, 50}
	signals := feed(strat, prices)
	if signals[len(signals)-1] != signal.Buy {
		t.Errorf("expected Buy on breakout above trailing high, got %v", signals[len(signals)-1])
	}
}

func TestFromGenomeRejectsInvalidGenome(t *testing.T) {
	g := genome.Genome{Family: genome.MovingAverage, Params: map[string]int{"short": 20, "long": 5}}
	if _, err := strategy.FromGenome(g); err == nil {
		t.Fatal("expected error for invalid genome")
	}
}

func TestFromGenomeBuildsMatchingFamily(t *testing.T) {
	g := genome.Genome{Family: genome.Breakout, Params: map[string]int{"window": 10}}
	factory, err := strategy.FromGenome(g)
	if err != nil {
		t.Fatalf("FromGenome failed: %v", err)
	}
	strat := factory()
	if strat.Name() != "Breakout_10" {
		t.Errorf("Name() = %q, want Breakout_10", strat.Name())
	}
}

func TestFactoryProducesIndependentInstances(t *testing.T) {
	g := genome.Genome{Family: genome.MovingAverage, Params: map[string]int{"short": 2, "long": 10}}
	factory, err := strategy.FromGenome(g)
	if err != nil {
		t.Fatalf("FromGenome failed: %v", err)
	}
	a := factory()
	b := factory()
	feed(a, []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 20, 20})
	// b must start from a fresh, un-mutated state.
	for _, s := range feed(b, []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100}) {
		if s != signal.Hold {
			t.Errorf("fresh factory instance not independent: got %v", s)
		}
	}
}
