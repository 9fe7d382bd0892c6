package analytics

import (
	"math"

	"github.com/kestrel-quant/stratcore/internal/xerrors"
)

// Unavailable marks a rolling-window entry for which too little history
// has accumulated yet. Callers distinguish it from a real 0.0 value.
const Unavailable = math.MaxFloat64

// RollingMetrics is a set of fixed-window statistics aligned to the
// equity curve's index.
type RollingMetrics struct {
	RollingVolatility  []float64
	RollingSharpe      []float64
	RollingMaxDrawdown []float64
}

// ComputeRollingMetrics computes rolling volatility/Sharpe (aligned to
// equity-curve index i+1 of the window's last return) and rolling max
// drawdown (aligned to index i), window >= 2.
func ComputeRollingMetrics(equityCurve []float64, window int) (RollingMetrics, error) {
	if window < 2 {
		return RollingMetrics{}, xerrors.New(xerrors.InvalidArgument, "rolling window must be >= 2").WithField("window")
	}
	if err := validateCurve(equityCurve); err != nil {
		return RollingMetrics{}, err
	}

	returns := Returns(equityCurve)
	n := len(equityCurve)

	vol := make([]float64, n)
	sharpe := make([]float64, n)
	for i := range vol {
		vol[i] = Unavailable
		sharpe[i] = Unavailable
	}
	for i := window; i < n; i++ {
		// window returns ending at returns[i-1], i.e. equity index i
		w := returns[i-window : i]
		stdDev := SampleStdDev(w)
		meanReturn := Mean(w)
		vol[i] = stdDev
		if stdDev != 0 {
			sharpe[i] = meanReturn / stdDev
		} else {
			sharpe[i] = 0
		}
	}

	maxDD := make([]float64, n)
	for i := 0; i < window-1 && i < n; i++ {
		maxDD[i] = Unavailable
	}
	for i := window - 1; i < n; i++ {
		start := i - window + 1
		slice := equityCurve[start : i+1]
		dm, err := ComputeDrawdownMetrics(slice)
		if err != nil {
			return RollingMetrics{}, err
		}
		maxDD[i] = dm.MaxDrawdown
	}

	return RollingMetrics{
		RollingVolatility:  vol,
		RollingSharpe:      sharpe,
		RollingMaxDrawdown: maxDD,
	}, nil
}
