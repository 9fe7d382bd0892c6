package pipeline

import "github.com/kestrel-quant/stratcore/pkg/candle"

// MarketDataProvider is the external collaborator the pipeline fetches
// candles from. Implementations (HTTP fetch + cache) live outside this
// module's scope; the core only depends on this interface.
type MarketDataProvider interface {
	GetHistorical(symbol, start, end, interval string) ([]candle.Candle, error)
}

// CandleCache is the contract a caching MarketDataProvider implementation
// keys its responses by. MakeKey must be deterministic over
// (symbol, start, end, interval); the on-disk representation is
// implementation-defined. The core never constructs one; it is declared
// here so provider implementations outside the module agree on the shape.
type CandleCache interface {
	MakeKey(symbol, start, end, interval string) string
	Has(key string) bool
	Get(key string) ([]candle.Candle, error)
	Set(key string, candles []candle.Candle) error
	Clear(key string) error
	ClearAll() error
}
