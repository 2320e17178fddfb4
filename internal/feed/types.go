package feed

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradedesk/internal/model"
)

// Errors
var (
	ErrRemoteClosed = errors.New("feed connection closed by remote")
	ErrStale        = errors.New("feed connection stale (no ping)")
)

// Config configures a feed session.
type Config struct {
	URL              string        // Base WebSocket URL; the instrument is appended as a path element
	HandshakeTimeout time.Duration // Dial handshake deadline
	PingTimeout      time.Duration // Max time without traffic before the connection is considered stale
	WriteTimeout     time.Duration // Write deadline for control frames
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		PingTimeout:      60 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// Events carries the session callbacks. Callbacks are invoked from the
// session's read goroutine, one at a time, each tagged with the
// generation the session was opened under. Nil callbacks are skipped.
type Events struct {
	OnSample       func(generation uint64, sample model.PriceSample)
	OnDisconnected func(generation uint64, err error)
}

// streamURL builds the per-instrument connection URL.
func streamURL(base, instrument string) string {
	return strings.TrimSuffix(base, "/") + "/" + url.PathEscape(instrument)
}

// sampleWire mirrors one feed frame.
type sampleWire struct {
	Stock         string          `json:"stock"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Volume        int64           `json:"volume"`
}

func (w sampleWire) validate() error {
	if w.Stock == "" {
		return fmt.Errorf("missing stock symbol")
	}
	if w.Price.IsNegative() {
		return fmt.Errorf("negative price %s", w.Price)
	}
	return nil
}

func (w sampleWire) toSample(receivedAt time.Time) model.PriceSample {
	return model.PriceSample{
		Symbol:        w.Stock,
		Price:         w.Price,
		ChangePercent: w.ChangePercent,
		Volume:        w.Volume,
		ReceivedAt:    receivedAt,
	}
}
