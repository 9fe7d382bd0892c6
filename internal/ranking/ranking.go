// Package ranking implements the composite strategy ranking engine:
// for each candidate strategy it runs the full backtest, stability,
// walk-forward, Monte Carlo and robustness pipeline and fuses them into
// a single composite score.
package ranking

import (
	"math"
	"sort"

	"github.com/kestrel-quant/stratcore/internal/backtester"
	"github.com/kestrel-quant/stratcore/internal/montecarlo"
	"github.com/kestrel-quant/stratcore/internal/regime"
	"github.com/kestrel-quant/stratcore/internal/robustness"
	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/internal/walkforward"
	"github.com/kestrel-quant/stratcore/internal/xerrors"
	"github.com/kestrel-quant/stratcore/pkg/candle"
)

// Config bundles the parameters the pipeline of sub-engines needs.
type Config struct {
	InitialCash    float64
	TrainSize      int
	TestSize       int
	Step           int
	MonteCarloSims int
	Seed           int64
}

// BacktestSummary is the subset of a full backtest report the ranking
// result carries.
type BacktestSummary struct {
	ReturnPct      float64
	SharpeRatio    float64
	CalmarRatio    float64
	MaxDrawdownPct float64
}

// StabilitySummary carries the stability engine's headline score.
type StabilitySummary struct {
	StabilityScore float64
}

// WalkForwardSummary carries the walk-forward engine's headline fields.
type WalkForwardSummary struct {
	MeanTestSharpe   float64
	PerformanceDecay float64
}

// MonteCarloSummary carries the Monte Carlo engine's headline fields.
type MonteCarloSummary struct {
	MeanSharpe        float64
	SharpeVariance    float64
	ProbabilityOfLoss float64
}

// Result is one strategy's full ranking entry.
type Result struct {
	StrategyName   string
	Backtest       BacktestSummary
	Stability      StabilitySummary
	WalkForward    WalkForwardSummary
	MonteCarlo     MonteCarloSummary
	Robustness     float64
	CompositeScore float64
	Rank           int
}

// Candidate names a strategy family instance to be ranked.
type Candidate struct {
	Name    string
	Factory strategy.Factory
}

// Run ranks every candidate over candles and returns results sorted
// (stably) descending by composite score with 1-based ranks assigned.
// candidates must be non-empty.
func Run(bt *backtester.Backtester, candidates []Candidate, candles []candle.Candle, cfg Config) ([]Result, error) {
	if len(candidates) == 0 {
		return nil, xerrors.New(xerrors.InvalidArgument, "at least one strategy is required").WithField("strategies")
	}

	results := make([]Result, len(candidates))
	for i, cand := range candidates {
		r, err := rankOne(bt, cand, candles, cfg)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompositeScore > results[j].CompositeScore
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

func rankOne(bt *backtester.Backtester, cand Candidate, candles []candle.Candle, cfg Config) (Result, error) {
	backtestReport, err := bt.Run(candles, cand.Factory(), cfg.InitialCash, 0, 0)
	if err != nil {
		return Result{}, err
	}

	stabilityResult, err := regime.Stability(bt, cand.Factory, candles, cfg.TrainSize, cfg.InitialCash)
	if err != nil {
		return Result{}, err
	}

	wfResult, err := walkforward.Run(bt, cand.Factory, candles, cfg.TrainSize, cfg.TestSize, cfg.Step, cfg.InitialCash)
	if err != nil {
		return Result{}, err
	}

	mcResult, err := montecarlo.Analyze(montecarlo.Params{
		Mode:        montecarlo.ReturnsMode,
		Series:      backtestReport.ReturnsSeries,
		Simulations: cfg.MonteCarloSims,
		Seed:        cfg.Seed,
		InitialCash: cfg.InitialCash,
	})
	if err != nil {
		return Result{}, err
	}

	robustnessResult, err := robustness.Run(bt, cand.Factory, candles, cfg.TrainSize, cfg.TestSize, cfg.Step, cfg.InitialCash, cfg.MonteCarloSims, cfg.Seed)
	if err != nil {
		return Result{}, err
	}

	composite := 1.0*backtestReport.SharpeRatio +
		0.8*backtestReport.CalmarRatio +
		1.2*stabilityResult.StabilityScore +
		1.5*robustnessResult.RobustnessScore -
		math.Abs(backtestReport.MaxDrawdownPct) -
		math.Abs(wfResult.PerformanceDecay)

	return Result{
		StrategyName: cand.Name,
		Backtest: BacktestSummary{
			ReturnPct:      backtestReport.ReturnPct,
			SharpeRatio:    backtestReport.SharpeRatio,
			CalmarRatio:    backtestReport.CalmarRatio,
			MaxDrawdownPct: backtestReport.MaxDrawdownPct,
		},
		Stability: StabilitySummary{StabilityScore: stabilityResult.StabilityScore},
		WalkForward: WalkForwardSummary{
			MeanTestSharpe:   wfResult.MeanTestSharpe,
			PerformanceDecay: wfResult.PerformanceDecay,
		},
		MonteCarlo: MonteCarloSummary{
			MeanSharpe:        mcResult.MeanSharpe,
			SharpeVariance:    mcResult.SharpeVariance,
			ProbabilityOfLoss: mcResult.ProbabilityOfLoss,
		},
		Robustness:     robustnessResult.RobustnessScore,
		CompositeScore: composite,
	}, nil
}
