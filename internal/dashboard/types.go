package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tradedesk/internal/api"
	"tradedesk/internal/feed"
	"tradedesk/internal/model"
	"tradedesk/internal/portfolio"
)

// ConnState is the instrument connection state machine.
type ConnState string

const (
	StateIdle         ConnState = "idle"         // No instrument selected yet
	StateConnecting   ConnState = "connecting"   // Session opened, no sample yet
	StateLive         ConnState = "live"         // Samples flowing
	StateDisconnected ConnState = "disconnected" // Stream dropped; waits for reselection
)

// BootstrapState tracks the one-time profile + portfolio load,
// orthogonal to the instrument state machine.
type BootstrapState string

const (
	BootstrapLoading BootstrapState = "loading"
	BootstrapReady   BootstrapState = "ready"
	BootstrapFailed  BootstrapState = "failed"
)

// ErrNotLive rejects a trade submission made without a current price.
// Submission is permitted only in StateLive; anything else would trade
// on stale data.
var ErrNotLive = errors.New("no live price for the selected instrument")

// PostTradeReconcileError reports that a trade executed but the
// follow-up reconciliation failed: holdings and history are stale until
// the user retries. Distinct from a trade failure by type.
type PostTradeReconcileError struct {
	Err error
}

func (e *PostTradeReconcileError) Error() string {
	return fmt.Sprintf("trade executed but reconciliation failed: %v", e.Err)
}

func (e *PostTradeReconcileError) Unwrap() error { return e.Err }

// Snapshot is a self-contained copy of everything the presentation
// layer can observe.
type Snapshot struct {
	Conn       ConnState
	Bootstrap  BootstrapState
	Instrument string
	Generation uint64

	Latest *model.PriceSample  // nil until the first sample of the current generation
	Window []model.PriceSample // chart contents, arrival order

	UserEmail string
	Holdings  []model.Holding
	History   []model.Trade

	BootstrapErr error // fatal to the dashboard view until retried
	ConnErr      error // why the stream dropped, nil while live
	TradeErr     error // last failed submission
	ReconcileErr error // last failed reconciliation (post-trade or retry)
}

// ProfileFetcher is the slice of the REST client used at bootstrap.
type ProfileFetcher interface {
	Me(ctx context.Context) (api.User, error)
}

// PortfolioStore is the reconciled holdings/history cache.
type PortfolioStore interface {
	Reconcile(ctx context.Context) (portfolio.Result, error)
	Holdings() []model.Holding
	History() []model.Trade
}

// Trader submits orders.
type Trader interface {
	Submit(ctx context.Context, order model.TradeOrder) error
}

// SessionHandle is the part of a feed session the controller manages.
type SessionHandle interface {
	Close() error
}

// SessionOpener opens a feed session for an instrument under a
// generation. Injected so tests can drive the controller with synthetic
// events.
type SessionOpener func(ctx context.Context, instrument string, generation uint64, events feed.Events) SessionHandle

// FeedOpener returns a SessionOpener backed by real WebSocket sessions.
func FeedOpener(cfg feed.Config, logger *slog.Logger) SessionOpener {
	return func(ctx context.Context, instrument string, generation uint64, events feed.Events) SessionHandle {
		return feed.Open(ctx, cfg, instrument, generation, events, logger)
	}
}
