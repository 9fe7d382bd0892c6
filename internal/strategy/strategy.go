// Package strategy implements the three genome-parameterized strategy
// families: moving-average crossover, RSI mean-reversion, and breakout.
// Every family is a stateful per-candle signal generator holding its own
// price history and FLAT/LONG position state.
package strategy

import (
	"fmt"

	"github.com/kestrel-quant/stratcore/internal/genome"
	"github.com/kestrel-quant/stratcore/pkg/candle"
	"github.com/kestrel-quant/stratcore/pkg/signal"
)

// position is the internal FLAT/LONG state machine every family shares.
type position int

const (
	flat position = iota
	long
)

// Strategy is a stateful per-candle signal generator. Instances are
// constructed with no external state beyond what Factory closed over at
// build time; the same instance must not be reused across two
// independent simulations; build a fresh one via Factory() instead.
type Strategy interface {
	Name() string
	GenerateSignal(c candle.Candle) signal.Signal
}

// Factory builds a fresh Strategy instance, used wherever a component
// needs to re-run a strategy over several disjoint candle slices
// (regime windows, walk-forward folds, lifecycle segments) without
// leaking state between runs.
type Factory func() Strategy

// FromGenome validates g and returns a Factory producing instances of
// the family it names.
func FromGenome(g genome.Genome) (Factory, error) {
	if err := genome.Validate(g); err != nil {
		return nil, err
	}
	switch g.Family {
	case genome.MovingAverage:
		short, long_ := g.Params["short"], g.Params["long"]
		return func() Strategy { return NewMovingAverageCrossover(short, long_) }, nil
	case genome.RSI:
		period, overbought, oversold := g.Params["period"], g.Params["overbought"], g.Params["oversold"]
		return func() Strategy { return NewRSI(period, overbought, oversold) }, nil
	case genome.Breakout:
		window := g.Params["window"]
		return func() Strategy { return NewBreakout(window) }, nil
	default:
		return nil, fmt.Errorf("unreachable genome family %q", g.Family)
	}
}

// ---------------------------------------------------------------------
// MovingAverageCrossover
// ---------------------------------------------------------------------

// MovingAverageCrossover buys on the first short-over-long crossover
// while flat, sells on the first short-under-long crossunder while long.
type MovingAverageCrossover struct {
	short, long int
	prices      []float64
	pos         position
}

func NewMovingAverageCrossover(short, long int) *MovingAverageCrossover {
	return &MovingAverageCrossover{short: short, long: long}
}

func (s *MovingAverageCrossover) Name() string {
	return fmt.Sprintf("MA_%d_%d", s.short, s.long)
}

func (s *MovingAverageCrossover) GenerateSignal(c candle.Candle) signal.Signal {
	s.prices = append(s.prices, c.CloseFloat64())
	n := len(s.prices)
	if n < s.long {
		return signal.Hold
	}

	shortMA := mean(s.prices[n-s.short:])
	longMA := mean(s.prices[n-s.long:])

	switch {
	case shortMA > longMA && s.pos == flat:
		s.pos = long
		return signal.Buy
	case shortMA < longMA && s.pos == long:
		s.pos = flat
		return signal.Sell
	default:
		return signal.Hold
	}
}

// ---------------------------------------------------------------------
// RSI
// ---------------------------------------------------------------------

// RSI is a relative-strength mean-reversion strategy. It uses the simple
// (unsmoothed) mean gain and mean loss over the last period price
// changes, not Wilder's smoothed averages.
type RSI struct {
	period, overbought, oversold int
	prices                       []float64
	pos                          position
}

func NewRSI(period, overbought, oversold int) *RSI {
	return &RSI{period: period, overbought: overbought, oversold: oversold}
}

func (s *RSI) Name() string {
	return fmt.Sprintf("RSI_%d_%d_%d", s.period, s.overbought, s.oversold)
}

func (s *RSI) rsi() float64 {
	start := len(s.prices) - (s.period + 1)
	if start < 0 {
		return 50.0
	}
	window := s.prices[start:]
	var gainSum, lossSum float64
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum += -delta
		}
	}
	n := float64(len(window) - 1)
	avgGain := gainSum / n
	avgLoss := lossSum / n
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

func (s *RSI) GenerateSignal(c candle.Candle) signal.Signal {
	s.prices = append(s.prices, c.CloseFloat64())
	r := s.rsi()

	switch {
	case r < float64(s.oversold) && s.pos == flat:
		s.pos = long
		return signal.Buy
	case r > float64(s.overbought) && s.pos == long:
		s.pos = flat
		return signal.Sell
	default:
		return signal.Hold
	}
}

// ---------------------------------------------------------------------
// Breakout
// ---------------------------------------------------------------------

// Breakout buys when price exceeds the trailing high (excluding the
// current candle) and sells when it falls below the trailing low.
type Breakout struct {
	window int
	prices []float64
	pos    position
}

func NewBreakout(window int) *Breakout {
	return &Breakout{window: window}
}

func (s *Breakout) Name() string {
	return fmt.Sprintf("Breakout_%d", s.window)
}

func (s *Breakout) GenerateSignal(c candle.Candle) signal.Signal {
	price := c.CloseFloat64()
	s.prices = append(s.prices, price)
	n := len(s.prices)
	if n <= s.window {
		return signal.Hold
	}

	trailing := s.prices[n-s.window-1 : n-1]
	high, low := trailing[0], trailing[0]
	for _, p := range trailing[1:] {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}

	switch {
	case price > high && s.pos == flat:
		s.pos = long
		return signal.Buy
	case price < low && s.pos == long:
		s.pos = flat
		return signal.Sell
	default:
		return signal.Hold
	}
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
