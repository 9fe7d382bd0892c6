package execution

import (
	"github.com/kestrel-quant/stratcore/internal/strategy"
	"github.com/kestrel-quant/stratcore/internal/xerrors"
	"github.com/kestrel-quant/stratcore/pkg/candle"
	tsignal "github.com/kestrel-quant/stratcore/pkg/signal"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GatewayState is the gateway's FLAT/LONG position state.
type GatewayState int

const (
	Flat GatewayState = iota
	Long
)

// TradeRecord is one executed trade logged by the gateway.
type TradeRecord struct {
	Type      Side
	Price     decimal.Decimal
	Shares    decimal.Decimal
	CashAfter decimal.Decimal
}

// Snapshot is a point-in-time view of gateway state.
type Snapshot struct {
	Cash         decimal.Decimal
	PositionSize decimal.Decimal
	Equity       decimal.Decimal
	EquityCurve  []decimal.Decimal
	TradeHistory []TradeRecord
	State        GatewayState
}

// ExecutionGateway is the per-candle forward driver: on every candle it
// asks the strategy for a signal, all-in buys/sells through the broker
// (optionally risk-capped), and records mark-to-market equity. It is not
// a backtester; it processes one candle at a time and keeps live state.
type ExecutionGateway struct {
	strategy     strategy.Strategy
	broker       Broker
	riskManager  *RiskManager
	currentPrice decimal.Decimal
	state        GatewayState
	equityCurve  []decimal.Decimal
	tradeHistory []TradeRecord
	logger       *zap.Logger
}

// NewExecutionGateway wires a strategy instance to a broker, with an
// optional risk manager (nil disables capping).
func NewExecutionGateway(logger *zap.Logger, strat strategy.Strategy, broker Broker, riskManager *RiskManager) *ExecutionGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecutionGateway{strategy: strat, broker: broker, riskManager: riskManager, logger: logger}
}

func (g *ExecutionGateway) equity() decimal.Decimal {
	return g.broker.Cash().Add(g.broker.PositionSize().Mul(g.currentPrice))
}

// OnCandle processes a single candle: requires Close, asks the strategy
// for a signal, executes a BUY when FLAT or a SELL when LONG, ignores
// redundant/HOLD signals, and appends the mark-to-market equity.
func (g *ExecutionGateway) OnCandle(c candle.Candle) error {
	if c.Close.IsZero() {
		return xerrors.New(xerrors.MissingField, "candle is missing close").WithField("close")
	}
	price := c.Close
	g.currentPrice = price

	sig := g.strategy.GenerateSignal(c)

	switch {
	case sig == tsignal.Buy && g.state == Flat:
		if err := g.executeBuy(price, c.Timestamp.Unix()); err != nil {
			return err
		}
	case sig == tsignal.Sell && g.state == Long:
		if err := g.executeSell(price, c.Timestamp.Unix()); err != nil {
			return err
		}
	}

	g.equityCurve = append(g.equityCurve, g.equity())
	return nil
}

func (g *ExecutionGateway) executeBuy(price decimal.Decimal, ts int64) error {
	cash := g.broker.Cash()
	if cash.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	// Size the all-in order at the broker's slippage-adjusted execution
	// price, truncating the quotient so the resulting cost never exceeds
	// available cash.
	execPrice := price.Mul(decimal.NewFromInt(1).Add(g.broker.SlippagePct()))
	shares, _ := cash.QuoRem(execPrice, 16)
	order := NewOrder(Buy, shares, price, ts)
	if g.riskManager != nil {
		adjusted, err := g.riskManager.AdjustOrder(order, g.equity())
		if err != nil {
			return err
		}
		order = adjusted
	}
	fill, err := g.broker.Execute(order)
	if err != nil {
		return err
	}
	g.state = Long
	g.tradeHistory = append(g.tradeHistory, TradeRecord{Type: Buy, Price: fill.Price, Shares: fill.Quantity, CashAfter: g.broker.Cash()})
	return nil
}

func (g *ExecutionGateway) executeSell(price decimal.Decimal, ts int64) error {
	position := g.broker.PositionSize()
	if position.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	order := NewOrder(Sell, position, price, ts)
	fill, err := g.broker.Execute(order)
	if err != nil {
		return err
	}
	g.state = Flat
	g.tradeHistory = append(g.tradeHistory, TradeRecord{Type: Sell, Price: fill.Price, Shares: decimal.Zero, CashAfter: g.broker.Cash()})
	return nil
}

// State returns the gateway's current position state.
func (g *ExecutionGateway) State() GatewayState { return g.state }

// Snapshot returns a defensive copy of the gateway's current state.
func (g *ExecutionGateway) Snapshot() Snapshot {
	curve := make([]decimal.Decimal, len(g.equityCurve))
	copy(curve, g.equityCurve)
	trades := make([]TradeRecord, len(g.tradeHistory))
	copy(trades, g.tradeHistory)
	return Snapshot{
		Cash:         g.broker.Cash(),
		PositionSize: g.broker.PositionSize(),
		Equity:       g.equity(),
		EquityCurve:  curve,
		TradeHistory: trades,
		State:        g.state,
	}
}

// MarketLoop feeds every candle in sequence to a gateway and returns its
// final snapshot. Sequential, deterministic, no concurrency.
type MarketLoop struct {
	gateway *ExecutionGateway
}

func NewMarketLoop(gateway *ExecutionGateway) *MarketLoop {
	return &MarketLoop{gateway: gateway}
}

func (l *MarketLoop) Run(candles []candle.Candle) (Snapshot, error) {
	for _, c := range candles {
		if err := l.gateway.OnCandle(c); err != nil {
			return Snapshot{}, err
		}
	}
	return l.gateway.Snapshot(), nil
}
