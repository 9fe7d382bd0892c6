package execution

import (
	"github.com/kestrel-quant/stratcore/internal/xerrors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Broker executes an Order and returns the resulting Fill.
type Broker interface {
	Execute(order Order) (Fill, error)
	Cash() decimal.Decimal
	PositionSize() decimal.Decimal
	SlippagePct() decimal.Decimal
}

// PaperBroker is a deterministic simulated broker: given the same order
// sequence it always produces the same fills and final state. Cash and
// position mutate atomically: either both update or neither does.
type PaperBroker struct {
	cash         decimal.Decimal
	positionSize decimal.Decimal
	slippagePct  decimal.Decimal
	logger       *zap.Logger
}

// NewPaperBroker builds a broker with initialCash and a fractional
// slippagePct applied to every execution price (0 means no slippage).
func NewPaperBroker(logger *zap.Logger, initialCash, slippagePct decimal.Decimal) (*PaperBroker, error) {
	if initialCash.LessThanOrEqual(decimal.Zero) {
		return nil, xerrors.New(xerrors.InvalidArgument, "initial_cash must be > 0").WithField("initial_cash")
	}
	if slippagePct.LessThan(decimal.Zero) {
		return nil, xerrors.New(xerrors.InvalidArgument, "slippage_pct must be >= 0").WithField("slippage_pct")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaperBroker{cash: initialCash, slippagePct: slippagePct, logger: logger}, nil
}

func (b *PaperBroker) Cash() decimal.Decimal { return b.cash }
func (b *PaperBroker) PositionSize() decimal.Decimal { return b.positionSize }
func (b *PaperBroker) SlippagePct() decimal.Decimal { return b.slippagePct }

// Execute fills order against the broker's current state.
func (b *PaperBroker) Execute(order Order) (Fill, error) {
	switch order.Side() {
	case Buy:
		return b.executeBuy(order)
	case Sell:
		return b.executeSell(order)
	default:
		return Fill{}, xerrors.New(xerrors.InvalidArgument, "unknown order side").WithField("side")
	}
}

func (b *PaperBroker) executeBuy(order Order) (Fill, error) {
	execPrice := order.Price().Mul(decimal.NewFromInt(1).Add(b.slippagePct))
	cost := execPrice.Mul(order.Quantity())
	if cost.GreaterThan(b.cash) {
		return Fill{}, xerrors.New(xerrors.InsufficientFunds, "insufficient funds for buy order").WithField("quantity")
	}
	b.cash = b.cash.Sub(cost)
	b.positionSize = b.positionSize.Add(order.Quantity())
	return Fill{
		OrderID:        order.ID(),
		Side:           Buy,
		Quantity:       order.Quantity(),
		Price:          execPrice,
		CashChange:     cost.Neg(),
		PositionChange: order.Quantity(),
	}, nil
}

func (b *PaperBroker) executeSell(order Order) (Fill, error) {
	if order.Quantity().GreaterThan(b.positionSize) {
		return Fill{}, xerrors.New(xerrors.InsufficientPosition, "insufficient position for sell order").WithField("quantity")
	}
	execPrice := order.Price().Mul(decimal.NewFromInt(1).Sub(b.slippagePct))
	proceeds := execPrice.Mul(order.Quantity())
	b.positionSize = b.positionSize.Sub(order.Quantity())
	b.cash = b.cash.Add(proceeds)
	return Fill{
		OrderID:        order.ID(),
		Side:           Sell,
		Quantity:       order.Quantity(),
		Price:          execPrice,
		CashChange:     proceeds,
		PositionChange: order.Quantity().Neg(),
	}, nil
}
