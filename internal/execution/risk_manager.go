package execution

import (
	"github.com/kestrel-quant/stratcore/internal/xerrors"
	"github.com/shopspring/decimal"
)

// RiskManager caps a BUY order's quantity so the resulting position value
// does not exceed equity * MaxPositionPct. SELL orders pass through
// unchanged; closing a position is always permitted.
type RiskManager struct {
	maxPositionPct decimal.Decimal
}

// NewRiskManager requires 0 < maxPositionPct <= 1.
func NewRiskManager(maxPositionPct decimal.Decimal) (*RiskManager, error) {
	if maxPositionPct.LessThanOrEqual(decimal.Zero) || maxPositionPct.GreaterThan(decimal.NewFromInt(1)) {
		return nil, xerrors.New(xerrors.InvalidArgument, "max_position_pct must be in (0, 1]").WithField("max_position_pct")
	}
	return &RiskManager{maxPositionPct: maxPositionPct}, nil
}

// AdjustOrder returns order unchanged (same id) when it is a SELL, or
// when no cap applies; otherwise returns a new, smaller BUY order.
func (r *RiskManager) AdjustOrder(order Order, equity decimal.Decimal) (Order, error) {
	if equity.LessThan(decimal.Zero) {
		return Order{}, xerrors.New(xerrors.InvalidArgument, "equity must be >= 0").WithField("equity")
	}
	if order.Side() != Buy {
		return order, nil
	}

	maxValue := equity.Mul(r.maxPositionPct)
	var maxQuantity decimal.Decimal
	if order.Price().GreaterThan(decimal.Zero) {
		maxQuantity = maxValue.Div(order.Price())
	}

	adjustedQty := order.Quantity()
	if maxQuantity.LessThan(adjustedQty) {
		adjustedQty = maxQuantity
	}
	if adjustedQty.GreaterThanOrEqual(order.Quantity()) {
		return order, nil
	}

	return NewOrder(order.Side(), adjustedQty, order.Price(), order.Timestamp()), nil
}
