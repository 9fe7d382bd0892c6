package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/kestrel-quant/stratcore/internal/allocation"
	"github.com/kestrel-quant/stratcore/internal/analytics"
	"github.com/kestrel-quant/stratcore/internal/backtester"
	"github.com/kestrel-quant/stratcore/internal/genetic"
	"github.com/kestrel-quant/stratcore/internal/genome"
	"github.com/kestrel-quant/stratcore/internal/lifecycle"
	"github.com/kestrel-quant/stratcore/internal/ranking"
	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/internal/telemetry"
	"github.com/kestrel-quant/stratcore/pkg/candle"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Report is the orchestrator's single output: everything a caller needs
// to render a research run, or an Error when the run could not produce
// one.
type Report struct {
	Symbol         string
	CandleCount    int
	BestGenome     genome.Genome
	BestFitness    float64
	RankingResults []ranking.Result
	EquityCurve    []float64
	Analytics      analytics.PortfolioAnalytics
	Error          string
}

// minEquityFloor is substituted for any non-positive lifecycle equity
// value before handing the curve to PortfolioAnalytics, which requires
// strictly positive equity.
const minEquityFloor = 1e-8

// Orchestrator threads the evolution, ranking, allocation and lifecycle
// engines together into the single research-pipeline entry point.
type Orchestrator struct {
	logger   *zap.Logger
	provider MarketDataProvider
	metrics  *telemetry.Metrics
	cfg      Config
}

// New builds an Orchestrator. logger and metrics may be nil.
func New(logger *zap.Logger, provider MarketDataProvider, metrics *telemetry.Metrics, cfg Config) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{logger: logger, provider: provider, metrics: metrics, cfg: cfg}
}

// Run executes the full pipeline for symbol over [start, end] at daily
// granularity.
func (o *Orchestrator) Run(symbol, start, end string) Report {
	started := time.Now()
	if o.metrics != nil {
		defer func() {
			o.metrics.PipelineDuration.Observe(time.Since(started).Seconds())
		}()
	}

	candles, err := o.provider.GetHistorical(symbol, start, end, "1d")
	if err != nil {
		return Report{Symbol: symbol, Error: err.Error()}
	}
	if len(candles) == 0 {
		return Report{Symbol: symbol, Error: "no candles returned for requested range"}
	}

	bt := backtester.New(o.logger)

	evoResult := o.evolve(bt, candles)
	if o.metrics != nil {
		o.metrics.GenerationsRun.Add(float64(o.cfg.Generations))
		o.metrics.GenomesEvaluated.Add(float64(len(evoResult.History)))
	}

	candidates := o.topUniqueCandidates(evoResult, 3)

	trainSize, testSize, step := adaptiveWalkForwardSizing(len(candles))

	rankingCfg := ranking.Config{
		InitialCash:    o.cfg.InitialCapital,
		TrainSize:      trainSize,
		TestSize:       testSize,
		Step:           step,
		MonteCarloSims: o.cfg.MonteCarloSims,
		Seed:           o.cfg.Seed,
	}

	fallback := o.fallbackRanking(bt, candidates, candles)
	rankingResults := fallback
	if full, err := ranking.Run(bt, candidates, candles, rankingCfg); err == nil && hasNonTrivialScore(full) {
		rankingResults = full
	}

	if o.metrics != nil && len(rankingResults) > 0 {
		o.metrics.CompositeScore.Set(rankingResults[0].CompositeScore)
	}

	policy, _ := allocation.NewRebalancePolicy(o.cfg.RebalanceInterval)
	decay, _ := allocation.NewPerformanceDecayDetector(o.cfg.DecayThreshold, allocation.DecaySharpe)
	allocator, err := allocation.NewCapitalAllocator(allocation.AllocatorMode(o.cfg.AllocatorMode))
	if err != nil {
		allocator, _ = allocation.NewCapitalAllocator(allocation.Equal)
	}

	staticRanking := staticRankingFunc(rankingResults)
	lifecycleCandidates := toLifecycleCandidates(candidates)

	manager := lifecycle.NewManager(o.logger, policy, decay, allocator, staticRanking)
	lifecycleReport, err := manager.Run(candles, lifecycleCandidates, decimal.NewFromFloat(o.cfg.InitialCapital), decimal.NewFromFloat(o.cfg.SlippagePct))
	if err != nil {
		return Report{
			Symbol:         symbol,
			CandleCount:    len(candles),
			BestGenome:     evoResult.BestGenome,
			BestFitness:    evoResult.BestFitness,
			RankingResults: rankingResults,
			Error:          err.Error(),
		}
	}

	equityCurve := clampedFloats(lifecycleReport.EquityCurve)

	analyticsResult, err := analytics.Compute(equityCurve)
	if err != nil {
		// Degrade gracefully: an analytics failure (e.g. too short a
		// curve) still returns the rest of the report.
		return Report{
			Symbol:         symbol,
			CandleCount:    len(candles),
			BestGenome:     evoResult.BestGenome,
			BestFitness:    evoResult.BestFitness,
			RankingResults: rankingResults,
			EquityCurve:    equityCurve,
		}
	}

	return Report{
		Symbol:         symbol,
		CandleCount:    len(candles),
		BestGenome:     evoResult.BestGenome,
		BestFitness:    evoResult.BestFitness,
		RankingResults: rankingResults,
		EquityCurve:    equityCurve,
		Analytics:      analyticsResult,
	}
}

func (o *Orchestrator) evolve(bt *backtester.Backtester, candles []candle.Candle) genetic.Result {
	evaluator := genetic.NewFitnessEvaluator(bt, candles, o.cfg.InitialCapital, genetic.FastFitness, ranking.Config{})
	engine, err := genetic.NewEvolutionEngine(genetic.Config{
		PopulationSize: o.cfg.PopulationSize,
		Generations:    o.cfg.Generations,
		MutationRate:   o.cfg.MutationRate,
		CrossoverRate:  o.cfg.CrossoverRate,
		Elitism:        o.cfg.Elitism,
		TournamentSize: o.cfg.TournamentSize,
		Seed:           o.cfg.Seed,
	}, evaluator)
	if err != nil {
		return genetic.Result{}
	}
	return engine.Run()
}

// topUniqueCandidates deduplicates the evolution history by (family,
// canonicalized parameter map) and materializes strategy factories for
// up to n top-fitness unique genomes.
func (o *Orchestrator) topUniqueCandidates(result genetic.Result, n int) []ranking.Candidate {
	sorted := append([]genetic.Evaluation(nil), result.History...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Fitness > sorted[j].Fitness })

	seen := map[string]bool{}
	var out []ranking.Candidate
	for _, e := range sorted {
		key := canonicalKey(e.Genome)
		if seen[key] {
			continue
		}
		seen[key] = true

		factory, err := strategy.FromGenome(e.Genome)
		if err != nil {
			continue
		}
		out = append(out, ranking.Candidate{Name: fmt.Sprintf("%s#%d", e.Genome.Family, len(out)), Factory: factory})
		if len(out) >= n {
			break
		}
	}
	return out
}

func canonicalKey(g genome.Genome) string {
	names := genome.ParamNames(g.Family)
	key := string(g.Family)
	for _, name := range names {
		key += fmt.Sprintf("|%s=%d", name, g.Params[name])
	}
	return key
}

// fallbackRanking always succeeds: a backtester-only ranking over each
// candidate, sorted descending by Sharpe ratio.
func (o *Orchestrator) fallbackRanking(bt *backtester.Backtester, candidates []ranking.Candidate, candles []candle.Candle) []ranking.Result {
	results := make([]ranking.Result, 0, len(candidates))
	for _, c := range candidates {
		report, err := bt.Run(candles, c.Factory(), o.cfg.InitialCapital, 0, 0)
		if err != nil {
			continue
		}
		results = append(results, ranking.Result{
			StrategyName: c.Name,
			Backtest: ranking.BacktestSummary{
				ReturnPct:      report.ReturnPct,
				SharpeRatio:    report.SharpeRatio,
				CalmarRatio:    report.CalmarRatio,
				MaxDrawdownPct: report.MaxDrawdownPct,
			},
			CompositeScore: report.SharpeRatio,
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].CompositeScore > results[j].CompositeScore })
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

func hasNonTrivialScore(results []ranking.Result) bool {
	for _, r := range results {
		if r.CompositeScore != 0 {
			return true
		}
	}
	return false
}

func staticRankingFunc(results []ranking.Result) lifecycle.RankingFunc {
	return func(_ []candle.Candle) ([]ranking.Result, error) {
		return results, nil
	}
}

func toLifecycleCandidates(candidates []ranking.Candidate) []lifecycle.Candidate {
	out := make([]lifecycle.Candidate, len(candidates))
	for i, c := range candidates {
		out[i] = lifecycle.Candidate{Name: c.Name, Factory: c.Factory}
	}
	return out
}

func clampedFloats(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		f, _ := v.Float64()
		if f <= 0 {
			f = minEquityFloor
		}
		out[i] = f
	}
	return out
}

// adaptiveWalkForwardSizing picks walk-forward sizes for an n-candle
// history: train = clamp(n/5, 10, 50), test = clamp(n/10, 5, 25),
// step = test; shrink while train + test > n, by 5/2 respectively,
// until it fits or train hits the floor.
func adaptiveWalkForwardSizing(n int) (train, test, step int) {
	train = clampInt(n/5, 10, 50)
	test = clampInt(n/10, 5, 25)

	for train+test > n && train > 10 {
		train -= 5
		if test > 5 {
			test -= 2
		}
	}
	if train < 2 {
		train = 2
	}
	if test < 2 {
		test = 2
	}
	step = test
	return train, test, step
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
