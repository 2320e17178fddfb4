package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether the side is one of the known directions.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// PriceSample is a single observation from the live price feed.
// Produced only by the feed package; never mutated afterwards.
type PriceSample struct {
	Symbol        string          // Instrument symbol (e.g., "AAPL")
	Price         decimal.Decimal // Last traded price
	ChangePercent decimal.Decimal // Percent change reported by the feed
	Volume        int64           // Cumulative volume
	ReceivedAt    time.Time       // Local timestamp when the frame arrived
}

// Holding is one position in the server-held portfolio. The client copy
// is read-only and replaced wholesale on each reconciliation.
type Holding struct {
	ID       int64           // Server-assigned row id
	Symbol   string          // Instrument symbol
	Quantity int64           // Shares held, >= 0
	AvgPrice decimal.Decimal // Volume-weighted average entry price
}

// Trade is one entry of the server-held trade history, in the order the
// server returned it.
type Trade struct {
	ID        int64           // Server-assigned row id
	Symbol    string          // Instrument symbol
	Side      Side            // BUY or SELL
	Quantity  int64           // Shares traded, > 0
	Price     decimal.Decimal // Execution price
	Timestamp time.Time       // Server-reported execution time
}

// TradeOrder is a user-initiated order submission. Price must be the
// most recently observed sample's price for the symbol; the caller
// validates quantity and side before submission.
type TradeOrder struct {
	Symbol   string
	Side     Side
	Quantity int64
	Price    decimal.Decimal
}

func (o TradeOrder) String() string {
	return fmt.Sprintf("%s %d %s @ %s", o.Side, o.Quantity, o.Symbol, o.Price)
}
