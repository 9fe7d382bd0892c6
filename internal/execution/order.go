// Package execution implements the forward, candle-by-candle execution
// layer: an immutable Order/Fill model, a slippage-aware paper broker,
// a position-size risk manager, a per-candle execution gateway, and a
// sequential market loop.
package execution

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side is the direction of an Order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Order is an immutable instruction to buy or sell Quantity at Price.
// There are no setters; every field is fixed at construction.
type Order struct {
	id        string
	side      Side
	quantity  decimal.Decimal
	price     decimal.Decimal
	timestamp int64
}

// NewOrder builds an Order with a fresh, process-wide unique id.
func NewOrder(side Side, quantity, price decimal.Decimal, timestamp int64) Order {
	return Order{
		id:        uuid.NewString(),
		side:      side,
		quantity:  quantity,
		price:     price,
		timestamp: timestamp,
	}
}

func (o Order) ID() string { return o.id }
func (o Order) Side() Side { return o.side }
func (o Order) Quantity() decimal.Decimal { return o.quantity }
func (o Order) Price() decimal.Decimal { return o.price }
func (o Order) Timestamp() int64 { return o.timestamp }

// Fill is the immutable result of executing an Order.
type Fill struct {
	OrderID        string
	Side           Side
	Quantity       decimal.Decimal
	Price          decimal.Decimal
	CashChange     decimal.Decimal
	PositionChange decimal.Decimal
}
