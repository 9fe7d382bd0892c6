// Package allocation implements the three stateless policy primitives
// the portfolio lifecycle manager composes: a capital allocator, a
// performance-decay detector, and a rebalance-interval policy.
package allocation

import (
	"github.com/kestrel-quant/stratcore/internal/ranking"
	"github.com/kestrel-quant/stratcore/internal/xerrors"
)

// AllocatorMode selects how CapitalAllocator weighs strategies.
type AllocatorMode string

const (
	Equal      AllocatorMode = "equal"
	Sharpe     AllocatorMode = "sharpe"
	Robustness AllocatorMode = "robustness"
)

// CapitalAllocator computes a name->weight mapping from ranking results.
// Weights always sum to 1 over a non-empty input.
type CapitalAllocator struct {
	mode AllocatorMode
}

// NewCapitalAllocator validates mode.
func NewCapitalAllocator(mode AllocatorMode) (*CapitalAllocator, error) {
	switch mode {
	case Equal, Sharpe, Robustness:
	default:
		return nil, xerrors.New(xerrors.InvalidArgument, "unknown allocator mode").WithField("mode")
	}
	return &CapitalAllocator{mode: mode}, nil
}

// ComputeWeights maps each result's StrategyName to its weight. results
// must be non-empty.
func (a *CapitalAllocator) ComputeWeights(results []ranking.Result) (map[string]float64, error) {
	if len(results) == 0 {
		return nil, xerrors.New(xerrors.InvalidArgument, "at least one ranking result is required").WithField("ranking_results")
	}

	switch a.mode {
	case Sharpe:
		return weightByPositive(results, func(r ranking.Result) float64 { return r.Backtest.SharpeRatio }), nil
	case Robustness:
		return weightByPositive(results, func(r ranking.Result) float64 { return r.Robustness }), nil
	default:
		return equalWeights(results), nil
	}
}

func equalWeights(results []ranking.Result) map[string]float64 {
	w := make(map[string]float64, len(results))
	share := 1.0 / float64(len(results))
	for _, r := range results {
		w[r.StrategyName] = share
	}
	return w
}

func weightByPositive(results []ranking.Result, metric func(ranking.Result) float64) map[string]float64 {
	var total float64
	values := make([]float64, len(results))
	for i, r := range results {
		v := metric(r)
		if v > 0 {
			values[i] = v
			total += v
		}
	}
	if total <= 0 {
		return equalWeights(results)
	}
	w := make(map[string]float64, len(results))
	for i, r := range results {
		w[r.StrategyName] = values[i] / total
	}
	return w
}

// DecayMetric selects which ranking field a PerformanceDecayDetector
// compares against its threshold.
type DecayMetric string

const (
	DecaySharpe     DecayMetric = "sharpe"
	DecayRobustness DecayMetric = "robustness"
)

// PerformanceDecayDetector flags a ranking result as decayed when its
// chosen metric falls strictly below Threshold.
type PerformanceDecayDetector struct {
	Threshold float64
	Metric    DecayMetric
}

// NewPerformanceDecayDetector validates metric.
func NewPerformanceDecayDetector(threshold float64, metric DecayMetric) (*PerformanceDecayDetector, error) {
	switch metric {
	case DecaySharpe, DecayRobustness:
	default:
		return nil, xerrors.New(xerrors.InvalidArgument, "unknown decay metric").WithField("metric")
	}
	return &PerformanceDecayDetector{Threshold: threshold, Metric: metric}, nil
}

// IsDecayed reports whether result's metric value is strictly below the
// detector's threshold. Equality is not decayed.
func (d *PerformanceDecayDetector) IsDecayed(result ranking.Result) bool {
	var value float64
	switch d.Metric {
	case DecayRobustness:
		value = result.Robustness
	default:
		value = result.Backtest.SharpeRatio
	}
	return value < d.Threshold
}

// RebalancePolicy fires every Interval candles.
type RebalancePolicy struct {
	Interval int
}

// NewRebalancePolicy requires interval >= 1.
func NewRebalancePolicy(interval int) (*RebalancePolicy, error) {
	if interval < 1 {
		return nil, xerrors.New(xerrors.InvalidArgument, "interval must be >= 1").WithField("interval")
	}
	return &RebalancePolicy{Interval: interval}, nil
}

// ShouldRebalance reports whether step is a rebalance point.
func (p *RebalancePolicy) ShouldRebalance(step int) bool {
	return step%p.Interval == 0
}
