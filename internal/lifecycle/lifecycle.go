// Package lifecycle implements the portfolio lifecycle manager: a
// segmented simulation that periodically re-ranks strategies, disables
// decayed ones, rebalances capital weights, and rolls capital forward
// across segments.
package lifecycle

import (
	"sort"

	"github.com/kestrel-quant/stratcore/internal/allocation"
	"github.com/kestrel-quant/stratcore/internal/portfolioeng"
	"github.com/kestrel-quant/stratcore/internal/ranking"
	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/pkg/candle"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RankingFunc re-ranks the given strategy candidates over a candle
// prefix. It may fail (e.g. too little history); the manager keeps the
// previous active set and weights when it does.
type RankingFunc func(candles []candle.Candle) ([]ranking.Result, error)

// Candidate is one strategy the lifecycle manager may run and disable.
type Candidate struct {
	Name    string
	Factory strategy.Factory
}

// Report is the full lifecycle simulation output.
type Report struct {
	FinalPortfolioEquity decimal.Decimal
	RebalanceSteps       []int
	DisabledStrategies   []string
	EquityCurve          []decimal.Decimal
}

// Manager runs the segmented rebalancing simulation.
type Manager struct {
	logger    *zap.Logger
	policy    *allocation.RebalancePolicy
	decay     *allocation.PerformanceDecayDetector // nil disables decay detection
	allocator *allocation.CapitalAllocator
	rankingFn RankingFunc
}

// NewManager builds a Manager. decay may be nil to disable decay-based
// strategy disabling.
func NewManager(logger *zap.Logger, policy *allocation.RebalancePolicy, decay *allocation.PerformanceDecayDetector, allocator *allocation.CapitalAllocator, rankingFn RankingFunc) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger, policy: policy, decay: decay, allocator: allocator, rankingFn: rankingFn}
}

// Run executes the lifecycle simulation over candles for the given
// original strategy candidates, starting with initialCapital. An empty
// candle list returns {initialCapital, nil, nil, nil}.
func (m *Manager) Run(candles []candle.Candle, candidates []Candidate, initialCapital decimal.Decimal, slippagePct decimal.Decimal) (*Report, error) {
	n := len(candles)
	if n == 0 {
		return &Report{FinalPortfolioEquity: initialCapital}, nil
	}

	rebalancePoints := m.collectRebalancePoints(n)

	capital := initialCapital
	activeNames := candidateNameSet(candidates)
	disabled := map[string]bool{}
	weights := equalWeightsOver(candidates, activeNames)

	equityCurve := make([]decimal.Decimal, 0, n)

	for segIdx := 0; segIdx < len(rebalancePoints)-1; segIdx++ {
		segStart := rebalancePoints[segIdx]
		segEnd := rebalancePoints[segIdx+1]

		results, err := m.rankingFn(candles[:segStart+1])
		if err == nil {
			if m.decay != nil {
				for _, r := range results {
					if activeNames[r.StrategyName] && m.decay.IsDecayed(r) {
						disabled[r.StrategyName] = true
					}
				}
			}

			newActive := map[string]bool{}
			for _, c := range candidates {
				if !disabled[c.Name] {
					newActive[c.Name] = true
				}
			}
			if len(newActive) == 0 {
				newActive = candidateNameSet(candidates)
			}
			activeNames = newActive

			filtered := filterResults(results, activeNames)
			if len(filtered) > 0 {
				w, werr := m.allocator.ComputeWeights(filtered)
				if werr == nil {
					weights = w
				} else {
					weights = equalWeightsOver(candidates, activeNames)
				}
			} else {
				weights = equalWeightsOver(candidates, activeNames)
			}
		}
		// else: keep current active set and weights unchanged.

		segCandles := candles[segStart:segEnd]
		segCurve, err := m.runSegment(candidates, activeNames, weights, segCandles, capital, slippagePct)
		if err != nil {
			return nil, err
		}

		equityCurve = append(equityCurve, segCurve...)
		if len(segCurve) > 0 {
			capital = segCurve[len(segCurve)-1]
		}
	}

	var disabledList []string
	for name := range disabled {
		disabledList = append(disabledList, name)
	}
	sort.Strings(disabledList)

	final := capital
	if len(equityCurve) > 0 {
		final = equityCurve[len(equityCurve)-1]
	}

	return &Report{
		FinalPortfolioEquity: final,
		RebalanceSteps:       rebalancePoints[:len(rebalancePoints)-1],
		DisabledStrategies:   disabledList,
		EquityCurve:          equityCurve,
	}, nil
}

// collectRebalancePoints gathers every policy-matched step in [0, n),
// guarantees 0 is present, and appends n as the sentinel end boundary.
func (m *Manager) collectRebalancePoints(n int) []int {
	var points []int
	seen := map[int]bool{}
	for i := 0; i < n; i++ {
		if m.policy.ShouldRebalance(i) {
			points = append(points, i)
			seen[i] = true
		}
	}
	if !seen[0] {
		points = append([]int{0}, points...)
	}
	points = append(points, n)
	return points
}

func (m *Manager) runSegment(candidates []Candidate, activeNames map[string]bool, weights map[string]float64, segCandles []candle.Candle, capital decimal.Decimal, slippagePct decimal.Decimal) ([]decimal.Decimal, error) {
	if len(segCandles) == 0 {
		return nil, nil
	}

	var sum []decimal.Decimal
	for _, c := range candidates {
		if !activeNames[c.Name] {
			continue
		}
		w := weights[c.Name]
		share := capital.Mul(decimal.NewFromFloat(w))
		if share.LessThanOrEqual(decimal.Zero) {
			// Zero-weighted strategies hold no capital this segment and
			// contribute nothing to the curve.
			continue
		}

		engine, err := portfolioeng.New(m.logger, []strategy.Factory{c.Factory}, []string{c.Name}, share, slippagePct, nil)
		if err != nil {
			return nil, err
		}
		report, err := engine.Run(segCandles)
		if err != nil {
			return nil, err
		}

		if sum == nil {
			sum = make([]decimal.Decimal, len(report.PortfolioEquityCurve))
			copy(sum, report.PortfolioEquityCurve)
		} else {
			for i, v := range report.PortfolioEquityCurve {
				sum[i] = sum[i].Add(v)
			}
		}
	}
	return sum, nil
}

func candidateNameSet(candidates []Candidate) map[string]bool {
	s := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		s[c.Name] = true
	}
	return s
}

func equalWeightsOver(candidates []Candidate, activeNames map[string]bool) map[string]float64 {
	var count int
	for _, c := range candidates {
		if activeNames[c.Name] {
			count++
		}
	}
	w := make(map[string]float64, count)
	if count == 0 {
		return w
	}
	share := 1.0 / float64(count)
	for _, c := range candidates {
		if activeNames[c.Name] {
			w[c.Name] = share
		}
	}
	return w
}

func filterResults(results []ranking.Result, activeNames map[string]bool) []ranking.Result {
	out := make([]ranking.Result, 0, len(results))
	for _, r := range results {
		if activeNames[r.StrategyName] {
			out = append(out, r)
		}
	}
	return out
}
