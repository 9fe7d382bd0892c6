// Package regime implements non-overlapping window splitting of a candle
// sequence and the stability engine that aggregates per-window backtest
// performance into a single stability score.
package regime

import (
	"math"

	"github.com/kestrel-quant/stratcore/internal/backtester"
	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/internal/xerrors"
	"github.com/kestrel-quant/stratcore/pkg/candle"
)

// Split slices candles into sequential, non-overlapping windows of
// windowSize. A trailing remainder of length 1 is dropped; a trailing
// remainder of length >= 2 is kept as a final, shorter window. Each
// window is a fresh slice (shallow copy); the input is never mutated.
func Split(candles []candle.Candle, windowSize int) ([][]candle.Candle, error) {
	if windowSize < 2 {
		return nil, xerrors.New(xerrors.InvalidArgument, "window_size must be >= 2").WithField("window_size")
	}

	var windows [][]candle.Candle
	for start := 0; start < len(candles); start += windowSize {
		end := start + windowSize
		if end > len(candles) {
			end = len(candles)
		}
		if end-start < 2 {
			break
		}
		win := make([]candle.Candle, end-start)
		copy(win, candles[start:end])
		windows = append(windows, win)
	}
	return windows, nil
}

// WindowMetrics is one window's backtest summary.
type WindowMetrics struct {
	SharpeRatio    float64
	MaxDrawdownPct float64
}

// StabilityResult aggregates per-window metrics into a single score.
type StabilityResult struct {
	RegimeMetrics  []WindowMetrics
	MeanSharpe     float64
	SharpeVariance float64
	WorstDrawdown  float64
	StabilityScore float64
}

// Stability runs factory's strategy over every non-overlapping window of
// candles and combines the per-window Sharpe ratios and drawdowns into a
// stability score: mean_sharpe - sharpe_variance - |worst_drawdown|/100.
func Stability(bt *backtester.Backtester, factory strategy.Factory, candles []candle.Candle, windowSize int, initialCash float64) (StabilityResult, error) {
	windows, err := Split(candles, windowSize)
	if err != nil {
		return StabilityResult{}, err
	}
	if len(windows) == 0 {
		return StabilityResult{}, xerrors.New(xerrors.InvalidArgument, "no complete windows produced").WithField("window_size")
	}

	metrics := make([]WindowMetrics, 0, len(windows))
	for _, win := range windows {
		report, err := bt.Run(win, factory(), initialCash, 0, 0)
		if err != nil {
			return StabilityResult{}, err
		}
		metrics = append(metrics, WindowMetrics{
			SharpeRatio:    report.SharpeRatio,
			MaxDrawdownPct: report.MaxDrawdownPct,
		})
	}

	sharpes := make([]float64, len(metrics))
	worstDrawdown := 0.0
	for i, m := range metrics {
		sharpes[i] = m.SharpeRatio
		if m.MaxDrawdownPct < worstDrawdown {
			worstDrawdown = m.MaxDrawdownPct
		}
	}

	meanSharpe := mean(sharpes)
	sharpeVariance := sampleVariance(sharpes, meanSharpe)
	stabilityScore := meanSharpe - sharpeVariance - math.Abs(worstDrawdown)/100

	return StabilityResult{
		RegimeMetrics:  metrics,
		MeanSharpe:     meanSharpe,
		SharpeVariance: sharpeVariance,
		WorstDrawdown:  worstDrawdown,
		StabilityScore: stabilityScore,
	}, nil
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
