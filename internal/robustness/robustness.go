// Package robustness runs Monte Carlo analysis over each walk-forward
// fold's test slice and fuses the per-fold outcomes into a single
// robustness score.
package robustness

import (
	"github.com/kestrel-quant/stratcore/internal/backtester"
	"github.com/kestrel-quant/stratcore/internal/montecarlo"
	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/internal/walkforward"
	"github.com/kestrel-quant/stratcore/internal/xerrors"
	"github.com/kestrel-quant/stratcore/pkg/candle"
)

// FoldScore is one walk-forward fold's Monte Carlo-derived robustness
// contribution.
type FoldScore struct {
	MonteCarlo montecarlo.Result
	Score      float64
}

// Result is the full robustness analysis.
type Result struct {
	Folds           []FoldScore
	RobustnessScore float64
}

// Run re-slices candles into walk-forward folds (same slicing as
// walkforward.Run), then for each fold's test slice runs the backtester
// followed by a "returns"-mode Monte Carlo over its returns series.
// Per-fold score = mc.MeanSharpe - mc.SharpeVariance - mc.ProbabilityOfLoss;
// the overall RobustnessScore is the mean across folds.
func Run(bt *backtester.Backtester, factory strategy.Factory, candles []candle.Candle, trainSize, testSize, step int, initialCash float64, simulations int, seed int64) (Result, error) {
	wf, err := walkforward.Run(bt, factory, candles, trainSize, testSize, step, initialCash)
	if err != nil {
		return Result{}, err
	}
	if len(wf.Folds) == 0 {
		return Result{}, xerrors.New(xerrors.InvalidArgument, "no walk-forward folds produced").WithField("candles")
	}

	scores := make([]FoldScore, 0, len(wf.Folds))
	for _, fold := range wf.Folds {
		mc, err := montecarlo.Analyze(montecarlo.Params{
			Mode:        montecarlo.ReturnsMode,
			Series:      fold.TestReport.ReturnsSeries,
			Simulations: simulations,
			Seed:        seed,
			InitialCash: initialCash,
		})
		if err != nil {
			return Result{}, err
		}
		score := mc.MeanSharpe - mc.SharpeVariance - mc.ProbabilityOfLoss
		scores = append(scores, FoldScore{MonteCarlo: mc, Score: score})
	}

	var sum float64
	for _, s := range scores {
		sum += s.Score
	}

	return Result{
		Folds:           scores,
		RobustnessScore: sum / float64(len(scores)),
	}, nil
}
