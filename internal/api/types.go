package api

import (
	"time"

	"github.com/shopspring/decimal"

	"tradedesk/internal/model"
)

// User is the authenticated user's profile.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// holdingWire mirrors one element of the GET /portfolio response.
type holdingWire struct {
	ID       int64           `json:"id"`
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	AvgPrice decimal.Decimal `json:"avg_price"`
}

func (w holdingWire) toModel() model.Holding {
	return model.Holding{
		ID:       w.ID,
		Symbol:   w.Symbol,
		Quantity: w.Quantity,
		AvgPrice: w.AvgPrice,
	}
}

// tradeWire mirrors one element of the GET /trade-history response.
type tradeWire struct {
	ID        int64           `json:"id"`
	Symbol    string          `json:"symbol"`
	TradeType string          `json:"trade_type"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Timestamp string          `json:"timestamp"`
}

func (w tradeWire) toModel() model.Trade {
	return model.Trade{
		ID:        w.ID,
		Symbol:    w.Symbol,
		Side:      model.Side(w.TradeType),
		Quantity:  w.Quantity,
		Price:     w.Price,
		Timestamp: parseTimestamp(w.Timestamp),
	}
}

// tradeRequest is the POST /trade payload.
type tradeRequest struct {
	Symbol    string          `json:"symbol"`
	TradeType string          `json:"trade_type"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// timestampLayouts covers the backend's datetime rendering with and
// without a zone offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// parseTimestamp decodes a server timestamp, returning the zero time for
// unparseable input rather than failing the whole history fetch.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
