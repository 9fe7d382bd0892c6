// Package backtester implements the deterministic event-driven
// backtester: it turns one strategy's (or no strategy's, for
// buy-and-hold) per-candle behavior over a candle slice into an equity
// curve and summary statistics.
//
// The report's Sharpe ratio is per-candle, not annualized; the
// analytics package is the layer that annualizes.
package backtester

import (
	"math"

	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/internal/xerrors"
	"github.com/kestrel-quant/stratcore/pkg/candle"
	"github.com/kestrel-quant/stratcore/pkg/signal"
	"go.uber.org/zap"
)

// Report is the full output of a single backtest run.
type Report struct {
	FinalEquity    float64
	ReturnPct      float64
	EquityCurve    []float64
	MaxDrawdownPct float64
	ReturnsSeries  []float64
	VolatilityPct  float64
	SharpeRatio    float64
	CalmarRatio    float64
}

// Backtester executes strategies over a candle slice. It carries no
// per-run state; a single instance may be reused across many Run calls.
type Backtester struct {
	logger *zap.Logger
}

// New builds a Backtester. logger may be nil (tests use zap.NewNop()).
func New(logger *zap.Logger) *Backtester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backtester{logger: logger}
}

// Run executes one backtest. strat == nil selects the buy-and-hold mode;
// a non-nil strat drives the signal-based all-in entry/exit flow.
// transactionCostPct and slippagePct are percentages (0.1 means 0.1%),
// applied multiplicatively on entry and exit.
func (b *Backtester) Run(candles []candle.Candle, strat strategy.Strategy, initialCash, transactionCostPct, slippagePct float64) (*Report, error) {
	if len(candles) < 2 {
		return nil, xerrors.New(xerrors.InvalidArgument, "backtester requires at least 2 candles").WithField("candles")
	}

	var equityCurve []float64
	var finalEquity float64
	if strat == nil {
		equityCurve, finalEquity = runBuyAndHold(candles, initialCash, transactionCostPct, slippagePct)
	} else {
		equityCurve = runSignalDriven(candles, strat, initialCash, transactionCostPct, slippagePct)
		finalEquity = equityCurve[len(equityCurve)-1]
	}

	return buildReport(equityCurve, finalEquity, initialCash), nil
}

// runBuyAndHold returns the mark-to-market equity curve (shares times
// each close, untouched by exit costs) and, separately, the final equity
// after exit slippage and transaction cost. All curve-derived statistics
// are computed over the unmodified curve.
func runBuyAndHold(candles []candle.Candle, initialCash, transactionCostPct, slippagePct float64) ([]float64, float64) {
	buyPrice := candles[0].CloseFloat64() * (1 + slippagePct/100)
	sellPrice := candles[len(candles)-1].CloseFloat64() * (1 - slippagePct/100)
	cashAfterEntryCost := initialCash * (1 - transactionCostPct/100)
	shares := cashAfterEntryCost / buyPrice

	equityCurve := make([]float64, len(candles))
	for i, c := range candles {
		equityCurve[i] = shares * c.CloseFloat64()
	}

	grossExit := shares * sellPrice
	finalEquity := grossExit * (1 - transactionCostPct/100)
	return equityCurve, finalEquity
}

func runSignalDriven(candles []candle.Candle, strat strategy.Strategy, initialCash, transactionCostPct, slippagePct float64) []float64 {
	cash := initialCash
	shares := 0.0

	equityCurve := make([]float64, len(candles))
	for i, c := range candles {
		price := c.CloseFloat64()
		sig := strat.GenerateSignal(c)

		switch {
		case sig == signal.Buy && shares == 0:
			buyPrice := price * (1 + slippagePct/100)
			cashAfterCost := cash * (1 - transactionCostPct/100)
			shares = cashAfterCost / buyPrice
			cash = 0
		case sig == signal.Sell && shares > 0:
			sellPrice := price * (1 - slippagePct/100)
			proceeds := shares * sellPrice
			cash = proceeds * (1 - transactionCostPct/100)
			shares = 0
		}

		equityCurve[i] = cash + shares*price
	}
	return equityCurve
}

func buildReport(equityCurve []float64, finalEquity, initialCash float64) *Report {
	returnPct := (finalEquity - initialCash) / initialCash * 100

	peak := equityCurve[0]
	maxDrawdownPct := 0.0
	for _, v := range equityCurve {
		if v > peak {
			peak = v
		}
		dd := (v - peak) / peak * 100
		if dd < maxDrawdownPct {
			maxDrawdownPct = dd
		}
	}

	returnsSeries := make([]float64, len(equityCurve))
	for i := 1; i < len(equityCurve); i++ {
		returnsSeries[i] = (equityCurve[i] - equityCurve[i-1]) / equityCurve[i-1]
	}

	n := len(returnsSeries)
	meanReturn := mean(returnsSeries)
	volatilityPct := 0.0
	if n >= 2 {
		variance := sumSquaredDeviations(returnsSeries, meanReturn) / float64(n-1)
		volatilityPct = math.Sqrt(variance) * 100
	}
	stdDev := volatilityPct / 100
	sharpeRatio := 0.0
	if stdDev != 0.0 {
		sharpeRatio = meanReturn / stdDev
	}

	calmarRatio := 0.0
	if maxDrawdownPct != 0.0 {
		calmarRatio = returnPct / math.Abs(maxDrawdownPct)
	}

	return &Report{
		FinalEquity:    finalEquity,
		ReturnPct:      returnPct,
		EquityCurve:    equityCurve,
		MaxDrawdownPct: maxDrawdownPct,
		ReturnsSeries:  returnsSeries,
		VolatilityPct:  volatilityPct,
		SharpeRatio:    sharpeRatio,
		CalmarRatio:    calmarRatio,
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

func sumSquaredDeviations(xs []float64, mu float64) float64 {
	var sum float64
	for _, x := range xs {
		d := x - mu
		sum += d * d
	}
	return sum
}
