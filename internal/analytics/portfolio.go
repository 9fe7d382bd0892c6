package analytics

// PortfolioAnalytics composes risk, drawdown, rolling and VaR analytics
// over a single equity curve. The rolling window is min(20, len-1),
// clamped to at least 2.
type PortfolioAnalytics struct {
	Risk     RiskMetrics
	Drawdown DrawdownMetrics
	Rolling  RollingMetrics
	VaR95    float64
	VaR99    float64
}

// Compute runs the full analytics suite over equityCurve.
func Compute(equityCurve []float64) (PortfolioAnalytics, error) {
	risk, err := ComputeRiskMetrics(equityCurve)
	if err != nil {
		return PortfolioAnalytics{}, err
	}
	drawdown, err := ComputeDrawdownMetrics(equityCurve)
	if err != nil {
		return PortfolioAnalytics{}, err
	}

	window := len(equityCurve) - 1
	if window > 20 {
		window = 20
	}
	if window < 2 {
		window = 2
	}
	rolling, err := ComputeRollingMetrics(equityCurve, window)
	if err != nil {
		return PortfolioAnalytics{}, err
	}

	returns := Returns(equityCurve)
	var95, err := HistoricalVaR(returns, 0.95)
	if err != nil {
		return PortfolioAnalytics{}, err
	}
	var99, err := HistoricalVaR(returns, 0.99)
	if err != nil {
		return PortfolioAnalytics{}, err
	}

	return PortfolioAnalytics{
		Risk:     risk,
		Drawdown: drawdown,
		Rolling:  rolling,
		VaR95:    var95,
		VaR99:    var99,
	}, nil
}
