package genetic

import (
	"math"

	"github.com/kestrel-quant/stratcore/internal/backtester"
	"github.com/kestrel-quant/stratcore/internal/genome"
	"github.com/kestrel-quant/stratcore/internal/ranking"
	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/pkg/candle"
)

// FitnessMode selects between a cheap per-genome backtest-only fitness
// and the full composite ranking score.
type FitnessMode string

const (
	FastFitness FitnessMode = "fast"
	FullFitness FitnessMode = "full"
)

// noTradePenalty is the strongly negative sentinel applied to genomes
// that produce no trades, or whose backtester run fails, so a single bad
// genome cannot derail evolution.
const noTradePenalty = -100.0

// noTradeThreshold is the |return_pct| cutoff below which a genome is
// considered to have produced no trades.
const noTradeThreshold = 0.01

// FitnessEvaluator scores a genome against a fixed candle history.
type FitnessEvaluator struct {
	bt          *backtester.Backtester
	candles     []candle.Candle
	initialCash float64
	mode        FitnessMode
	rankingCfg  ranking.Config
}

// NewFitnessEvaluator builds an evaluator. rankingCfg is only consulted
// in FullFitness mode.
func NewFitnessEvaluator(bt *backtester.Backtester, candles []candle.Candle, initialCash float64, mode FitnessMode, rankingCfg ranking.Config) *FitnessEvaluator {
	return &FitnessEvaluator{bt: bt, candles: candles, initialCash: initialCash, mode: mode, rankingCfg: rankingCfg}
}

// Evaluate always returns a finite float: a backtester/ranking failure,
// or a no-trade genome, is mapped to the noTradePenalty sentinel rather
// than propagated.
func (f *FitnessEvaluator) Evaluate(g genome.Genome) float64 {
	factory, err := strategy.FromGenome(g)
	if err != nil {
		return noTradePenalty
	}

	switch f.mode {
	case FullFitness:
		return f.evaluateFull(g.Family, factory)
	default:
		return f.evaluateFast(factory)
	}
}

func (f *FitnessEvaluator) evaluateFast(factory strategy.Factory) float64 {
	report, err := f.bt.Run(f.candles, factory(), f.initialCash, 0, 0)
	if err != nil {
		return noTradePenalty
	}
	if math.Abs(report.ReturnPct) < noTradeThreshold {
		return noTradePenalty
	}

	fitness := report.SharpeRatio - 0.5*math.Abs(report.MaxDrawdownPct)
	return sanitize(fitness)
}

func (f *FitnessEvaluator) evaluateFull(family genome.Family, factory strategy.Factory) float64 {
	candidate := ranking.Candidate{Name: string(family), Factory: factory}
	results, err := ranking.Run(f.bt, []ranking.Candidate{candidate}, f.candles, f.rankingCfg)
	if err != nil || len(results) == 0 {
		return noTradePenalty
	}
	return sanitize(results[0].CompositeScore)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
