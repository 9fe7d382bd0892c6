// Package montecarlo implements the three-mode Monte Carlo engine:
// bootstrap resampling of a returns series, shuffling of a trade list,
// and returns resampling augmented with multiplicative shock and
// additive slippage noise.
//
// With both shock_std and slippage_std at zero, "execution" mode draws
// no normal variates at all, so its output is bit-identical to
// "returns" mode under the same seed.
package montecarlo

import (
	"math"
	"math/rand"
	"sort"

	"github.com/kestrel-quant/stratcore/internal/xerrors"
)

// Mode selects the resampling regime.
type Mode string

const (
	ReturnsMode   Mode = "returns"
	TradesMode    Mode = "trades"
	ExecutionMode Mode = "execution"
)

// SimulationRun is one simulated equity path's summary.
type SimulationRun struct {
	FinalEquity    float64
	ReturnPct      float64
	SharpeRatio    float64
	MaxDrawdownPct float64
}

// Result aggregates every simulation run.
type Result struct {
	Runs              []SimulationRun
	MeanSharpe        float64
	SharpeVariance    float64
	MeanReturnPct     float64
	ProbabilityOfLoss float64
	WorstDrawdown     float64
}

// ConfidenceInterval returns the [lower, upper] percentile bounds of the
// per-simulation return_pct distribution for the given two-sided
// coverage (e.g. 0.90 for a 90% interval), a read-only view over the
// already-collected sample.
func (r Result) ConfidenceInterval(pct float64) (float64, float64) {
	if len(r.Runs) == 0 {
		return 0, 0
	}
	returns := make([]float64, len(r.Runs))
	for i, run := range r.Runs {
		returns[i] = run.ReturnPct
	}
	sort.Float64s(returns)

	tail := (1 - pct) / 2
	lowIdx := int(math.Floor(tail * float64(len(returns))))
	highIdx := int(math.Ceil((1 - tail) * float64(len(returns)))) - 1
	if lowIdx < 0 {
		lowIdx = 0
	}
	if highIdx >= len(returns) {
		highIdx = len(returns) - 1
	}
	if highIdx < lowIdx {
		highIdx = lowIdx
	}
	return returns[lowIdx], returns[highIdx]
}

// Params bundles the Monte Carlo engine's inputs.
type Params struct {
	Mode        Mode
	Series      []float64 // returns (ReturnsMode/ExecutionMode) or per-trade returns (TradesMode)
	Simulations int
	Seed        int64
	InitialCash float64
	ShockStd    float64
	SlippageStd float64
}

// Analyze runs Params.Simulations independent simulations against an
// RNG constructed solely from Params.Seed, never a shared global RNG,
// so the result is fully determined by its inputs.
func Analyze(p Params) (Result, error) {
	if p.Simulations < 1 {
		return Result{}, xerrors.New(xerrors.InvalidArgument, "simulations must be >= 1").WithField("simulations")
	}
	if p.InitialCash <= 0 {
		return Result{}, xerrors.New(xerrors.InvalidArgument, "initial_cash must be > 0").WithField("initial_cash")
	}
	if p.ShockStd < 0 {
		return Result{}, xerrors.New(xerrors.InvalidArgument, "shock_std must be >= 0").WithField("shock_std")
	}
	if p.SlippageStd < 0 {
		return Result{}, xerrors.New(xerrors.InvalidArgument, "slippage_std must be >= 0").WithField("slippage_std")
	}
	if len(p.Series) < 2 {
		return Result{}, xerrors.New(xerrors.InvalidArgument, "input series requires at least 2 points").WithField("series")
	}
	switch p.Mode {
	case ReturnsMode, TradesMode, ExecutionMode:
	default:
		return Result{}, xerrors.New(xerrors.InvalidArgument, "unknown mode").WithField("mode")
	}

	rng := rand.New(rand.NewSource(p.Seed))
	n := len(p.Series)

	runs := make([]SimulationRun, p.Simulations)
	for s := 0; s < p.Simulations; s++ {
		sample := make([]float64, n)

		switch p.Mode {
		case TradesMode:
			perm := rng.Perm(n)
			for i, idx := range perm {
				sample[i] = p.Series[idx]
			}
		case ReturnsMode, ExecutionMode:
			for i := 0; i < n; i++ {
				sample[i] = p.Series[rng.Intn(n)]
			}
			if p.Mode == ExecutionMode && (p.ShockStd != 0 || p.SlippageStd != 0) {
				for i, r := range sample {
					if p.ShockStd != 0 {
						r *= 1 + rng.NormFloat64()*p.ShockStd
					}
					if p.SlippageStd != 0 {
						r -= rng.NormFloat64() * p.SlippageStd
					}
					sample[i] = r
				}
			}
		}

		runs[s] = simulate(sample, p.InitialCash)
	}

	return aggregate(runs), nil
}

func simulate(sample []float64, initialCash float64) SimulationRun {
	equity := make([]float64, len(sample)+1)
	equity[0] = initialCash
	for i, r := range sample {
		equity[i+1] = equity[i] * (1 + r)
	}
	finalEquity := equity[len(equity)-1]
	returnPct := (finalEquity - initialCash) / initialCash * 100

	peak := equity[0]
	maxDrawdownPct := 0.0
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		dd := (v - peak) / peak * 100
		if dd < maxDrawdownPct {
			maxDrawdownPct = dd
		}
	}

	// The Sharpe series is [0.0] ++ sample, matching the backtester's
	// returns_series convention.
	sharpeSeries := make([]float64, len(sample)+1)
	copy(sharpeSeries[1:], sample)
	meanReturn := mean(sharpeSeries)
	stdDev := sampleStdDev(sharpeSeries, meanReturn)
	sharpeRatio := 0.0
	if stdDev != 0 {
		sharpeRatio = meanReturn / stdDev
	}

	return SimulationRun{
		FinalEquity:    finalEquity,
		ReturnPct:      returnPct,
		SharpeRatio:    sharpeRatio,
		MaxDrawdownPct: maxDrawdownPct,
	}
}

func aggregate(runs []SimulationRun) Result {
	sharpes := make([]float64, len(runs))
	returnPcts := make([]float64, len(runs))
	worstDrawdown := 0.0
	var lossCount int

	for i, r := range runs {
		sharpes[i] = r.SharpeRatio
		returnPcts[i] = r.ReturnPct
		if r.MaxDrawdownPct < worstDrawdown {
			worstDrawdown = r.MaxDrawdownPct
		}
		if r.ReturnPct < 0 {
			lossCount++
		}
	}

	meanSharpe := mean(sharpes)
	sharpeVariance := 0.0
	if len(runs) > 1 {
		sharpeVariance = sampleVariance(sharpes, meanSharpe)
	}

	return Result{
		Runs:              runs,
		MeanSharpe:        meanSharpe,
		SharpeVariance:    sharpeVariance,
		MeanReturnPct:     mean(returnPcts),
		ProbabilityOfLoss: float64(lossCount) / float64(len(runs)),
		WorstDrawdown:     worstDrawdown,
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleVariance(xs []float64, mu float64) float64 {
	if len(xs) <= 1 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - mu
		sumSq += d * d
	}
	return sumSq / float64(len(xs)-1)
}

func sampleStdDev(xs []float64, mu float64) float64 {
	return math.Sqrt(sampleVariance(xs, mu))
}
