package analytics

import "github.com/kestrel-quant/stratcore/internal/xerrors"

// DrawdownMetrics is the full drawdown profile of an equity curve.
type DrawdownMetrics struct {
	DrawdownSeries      []float64
	MaxDrawdown         float64
	MaxDrawdownDuration int
	RecoveryTime        int
	AverageDrawdown     float64
}

// ComputeDrawdownMetrics computes the running peak-to-trough drawdown
// series (non-positive fractions) and its summary statistics. Unlike the
// other analytics, this accepts curves of length >= 1.
func ComputeDrawdownMetrics(equityCurve []float64) (DrawdownMetrics, error) {
	if len(equityCurve) < 1 {
		return DrawdownMetrics{}, xerrors.New(xerrors.InvalidArgument, "equity curve requires at least 1 point").WithField("equity_curve")
	}
	for _, v := range equityCurve {
		if v <= 0 {
			return DrawdownMetrics{}, xerrors.New(xerrors.InvalidArgument, "equity curve values must be strictly positive").WithField("equity_curve")
		}
	}

	n := len(equityCurve)
	series := make([]float64, n)
	peak := equityCurve[0]

	maxDrawdown := 0.0
	troughIdx := 0
	troughPeakIdx := 0

	for i, v := range equityCurve {
		if v > peak {
			peak = v
		}
		dd := (v - peak) / peak
		series[i] = dd
		if dd < maxDrawdown {
			maxDrawdown = dd
			troughIdx = i
		}
	}

	// Re-derive the peak index that precedes the global trough: the first
	// index at or before troughIdx at which the running peak in effect at
	// the trough is reached.
	peakAtTrough := equityCurve[0]
	for i := 0; i <= troughIdx; i++ {
		if equityCurve[i] > peakAtTrough {
			peakAtTrough = equityCurve[i]
			troughPeakIdx = i
		}
	}

	maxDuration := 0
	recoveryTime := 0
	if maxDrawdown < 0 {
		recoveryIdx := -1
		for i := troughIdx + 1; i < n; i++ {
			if equityCurve[i] >= peakAtTrough {
				recoveryIdx = i
				break
			}
		}
		if recoveryIdx >= 0 {
			maxDuration = recoveryIdx - troughPeakIdx
			recoveryTime = recoveryIdx - troughIdx
		} else {
			maxDuration = (n - 1) - troughPeakIdx
			recoveryTime = 0
		}
	}

	var negSum float64
	var negCount int
	for _, dd := range series {
		if dd < 0 {
			negSum += dd
			negCount++
		}
	}
	avgDrawdown := 0.0
	if negCount > 0 {
		avgDrawdown = negSum / float64(negCount)
	}

	return DrawdownMetrics{
		DrawdownSeries:      series,
		MaxDrawdown:         maxDrawdown,
		MaxDrawdownDuration: maxDuration,
		RecoveryTime:        recoveryTime,
		AverageDrawdown:     avgDrawdown,
	}, nil
}
