// Package portfolioeng implements the multi-strategy portfolio engine:
// one broker and one gateway per strategy, an equal split of initial
// capital, dispatched over the same candle stream.
package portfolioeng

import (
	"github.com/kestrel-quant/stratcore/internal/execution"
	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/internal/xerrors"
	"github.com/kestrel-quant/stratcore/pkg/candle"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StrategyReport is one constituent strategy's final state within the
// portfolio run.
type StrategyReport struct {
	Name         string
	Cash         decimal.Decimal
	Position     decimal.Decimal
	Equity       decimal.Decimal
	EquityCurve  []decimal.Decimal
	TradeHistory []execution.TradeRecord
}

// Report is the full multi-strategy portfolio run output.
type Report struct {
	PortfolioEquity      decimal.Decimal
	PortfolioEquityCurve []decimal.Decimal
	Strategies           []StrategyReport
}

// Engine builds one PaperBroker + ExecutionGateway pair per strategy,
// each capitalized with initialCapital/N, and drives them in lock-step
// over a single candle stream. Only the "equal" allocation is supported
// internally; weighted allocation is achieved by the caller instantiating
// one single-strategy Engine per weight (see internal/lifecycle).
type Engine struct {
	logger   *zap.Logger
	gateways []*execution.ExecutionGateway
	names    []string
}

// New builds an Engine over factories, splitting initialCapital equally.
// factories must be non-empty.
func New(logger *zap.Logger, factories []strategy.Factory, names []string, initialCapital decimal.Decimal, slippagePct decimal.Decimal, riskManager *execution.RiskManager) (*Engine, error) {
	if len(factories) == 0 {
		return nil, xerrors.New(xerrors.InvalidArgument, "at least one strategy is required").WithField("strategies")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	share := initialCapital.Div(decimal.NewFromInt(int64(len(factories))))
	gateways := make([]*execution.ExecutionGateway, len(factories))
	for i, factory := range factories {
		broker, err := execution.NewPaperBroker(logger, share, slippagePct)
		if err != nil {
			return nil, err
		}
		gateways[i] = execution.NewExecutionGateway(logger, factory(), broker, riskManager)
	}

	return &Engine{logger: logger, gateways: gateways, names: names}, nil
}

// Run dispatches every candle to every gateway in lock-step and returns
// the combined portfolio equity curve alongside each strategy's final
// snapshot.
func (e *Engine) Run(candles []candle.Candle) (*Report, error) {
	portfolioCurve := make([]decimal.Decimal, len(candles))

	for i, c := range candles {
		var sum decimal.Decimal
		for _, gw := range e.gateways {
			if err := gw.OnCandle(c); err != nil {
				return nil, err
			}
		}
		for _, gw := range e.gateways {
			sum = sum.Add(gw.Snapshot().Equity)
		}
		portfolioCurve[i] = sum
	}

	reports := make([]StrategyReport, len(e.gateways))
	var portfolioEquity decimal.Decimal
	for i, gw := range e.gateways {
		snap := gw.Snapshot()
		reports[i] = StrategyReport{
			Name:         e.names[i],
			Cash:         snap.Cash,
			Position:     snap.PositionSize,
			Equity:       snap.Equity,
			EquityCurve:  snap.EquityCurve,
			TradeHistory: snap.TradeHistory,
		}
		portfolioEquity = portfolioEquity.Add(snap.Equity)
	}

	return &Report{
		PortfolioEquity:      portfolioEquity,
		PortfolioEquityCurve: portfolioCurve,
		Strategies:           reports,
	}, nil
}
