// Package analytics implements pure, stateless statistics over an equity
// curve: risk/return ratios, drawdown, rolling windows, Value-at-Risk,
// and per-strategy performance attribution.
package analytics

import (
	"math"

	"github.com/kestrel-quant/stratcore/internal/xerrors"
)

// periodsPerYear is the annualization constant used throughout: 252
// trading periods/year, volatility scales by its square root, mean
// return scales linearly.
const periodsPerYear = 252.0

// RiskMetrics is the return/risk-adjusted-ratio summary of an equity
// curve.
type RiskMetrics struct {
	TotalReturn       float64
	CAGR              float64
	Volatility        float64
	Sharpe            float64
	DownsideDeviation float64
	Sortino           float64
}

func validateCurve(equityCurve []float64) error {
	if len(equityCurve) < 2 {
		return xerrors.New(xerrors.InvalidArgument, "equity curve requires at least 2 points").WithField("equity_curve")
	}
	for _, v := range equityCurve {
		if v <= 0 {
			return xerrors.New(xerrors.InvalidArgument, "equity curve values must be strictly positive").WithField("equity_curve")
		}
	}
	return nil
}

// Returns converts an equity curve into a simple per-period return
// series, one entry shorter than the curve.
func Returns(equityCurve []float64) []float64 {
	out := make([]float64, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		out[i-1] = (equityCurve[i] - equityCurve[i-1]) / equityCurve[i-1]
	}
	return out
}

// Mean is the arithmetic mean of a series, 0 for an empty series.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStdDev is the Bessel-corrected (n-1) sample standard deviation;
// 0 for n <= 1.
func SampleStdDev(xs []float64) float64 {
	n := len(xs)
	if n <= 1 {
		return 0
	}
	mu := Mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - mu
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// ComputeRiskMetrics computes total return, CAGR, annualized volatility,
// Sharpe and Sortino ratios from an equity curve.
func ComputeRiskMetrics(equityCurve []float64) (RiskMetrics, error) {
	if err := validateCurve(equityCurve); err != nil {
		return RiskMetrics{}, err
	}

	initial, final := equityCurve[0], equityCurve[len(equityCurve)-1]
	totalReturn := (final - initial) / initial

	n := float64(len(equityCurve) - 1)
	cagr := 0.0
	if n > 0 {
		years := n / periodsPerYear
		if years > 0 {
			cagr = math.Pow(final/initial, 1/years) - 1
		}
	}

	returns := Returns(equityCurve)
	meanReturn := Mean(returns)
	stdDev := SampleStdDev(returns)
	volatility := stdDev * math.Sqrt(periodsPerYear)

	sharpe := 0.0
	if stdDev != 0 {
		sharpe = (meanReturn * periodsPerYear) / volatility
	}

	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	downsideDev := SampleStdDev(negative) * math.Sqrt(periodsPerYear)

	sortino := 0.0
	if downsideDev != 0 {
		sortino = (meanReturn * periodsPerYear) / downsideDev
	}

	return RiskMetrics{
		TotalReturn:       totalReturn,
		CAGR:              cagr,
		Volatility:        volatility,
		Sharpe:            sharpe,
		DownsideDeviation: downsideDev,
		Sortino:           sortino,
	}, nil
}
