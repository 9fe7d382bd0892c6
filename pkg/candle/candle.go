// Package candle defines the chronological OHLCV record shared by every
// component in the research core.
package candle

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is a single chronologically ordered OHLCV record. Every component
// that accepts a []Candle treats it as a read-only input and must not
// mutate the slice or its elements.
type Candle struct {
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// CloseFloat64 returns the closing price as a float64, the representation
// used by every statistics/signal routine downstream of the data model.
func (c Candle) CloseFloat64() float64 {
	f, _ := c.Close.Float64()
	return f
}

// Closes converts a candle slice to its closing-price series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.CloseFloat64()
	}
	return out
}
