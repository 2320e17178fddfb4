package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"tradedesk/internal/api"
	"tradedesk/internal/feed"
	"tradedesk/internal/model"
	"tradedesk/internal/portfolio"
	"tradedesk/internal/window"
)

// Controller drives the dashboard. All state mutation happens under one
// mutex in reaction to discrete events: user actions, feed callbacks,
// and fetch completions. Generation tokens make events from superseded
// sessions and reconciliations inert, so overlapping asynchronous work
// can never corrupt current state.
type Controller struct {
	profile ProfileFetcher
	store   PortfolioStore
	exec    Trader
	open    SessionOpener
	logger  *slog.Logger

	mu         sync.Mutex
	conn       ConnState
	bootstrap  BootstrapState
	instrument string
	generation uint64
	session    SessionHandle
	latest     *model.PriceSample
	window     *window.SampleWindow
	user       api.User

	bootstrapErr error
	connErr      error
	tradeErr     error
	reconcileErr error

	subs []chan struct{}
}

// New creates a controller. Nothing connects until Start and
// SelectInstrument are called.
func New(profile ProfileFetcher, store PortfolioStore, exec Trader, open SessionOpener, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		profile:   profile,
		store:     store,
		exec:      exec,
		open:      open,
		logger:    logger,
		conn:      StateIdle,
		bootstrap: BootstrapLoading,
		window:    window.New(),
	}
}

// Start runs the bootstrap sequence: profile fetch and initial
// portfolio reconciliation, concurrently. Bootstrap failure is fatal to
// the dashboard view; the user retries via RetryReconcile after fixing
// whatever broke.
func (c *Controller) Start(ctx context.Context) error {
	var user api.User

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := c.profile.Me(gctx)
		if err != nil {
			return &portfolio.FetchError{Op: "profile", Err: err}
		}
		user = u
		return nil
	})
	g.Go(func() error {
		_, err := c.store.Reconcile(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		c.mu.Lock()
		c.bootstrap = BootstrapFailed
		c.bootstrapErr = err
		c.mu.Unlock()
		c.notify()

		c.logger.Error("bootstrap failed", "error", err)
		return err
	}

	c.mu.Lock()
	c.bootstrap = BootstrapReady
	c.bootstrapErr = nil
	c.user = user
	c.mu.Unlock()
	c.notify()

	c.logger.Info("bootstrap complete", "user", user.Email)
	return nil
}

// SelectInstrument switches the live stream to a new instrument. The
// previous session is torn down before the new one opens, the sample
// window is cleared, and the generation is bumped so any event still in
// flight from the old session is discarded on arrival.
func (c *Controller) SelectInstrument(ctx context.Context, symbol string) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	old := c.session
	c.session = nil
	c.instrument = symbol
	c.conn = StateConnecting
	c.connErr = nil
	c.latest = nil
	c.window.Clear()
	c.mu.Unlock()

	// Close outside the lock: a callback already holding the session
	// mutex may be waiting for ours, and the generation bump above has
	// already made it harmless.
	if old != nil {
		old.Close()
	}

	c.logger.Info("selecting instrument", "instrument", symbol, "generation", gen)

	session := c.open(ctx, symbol, gen, feed.Events{
		OnSample:       c.handleSample,
		OnDisconnected: c.handleDisconnect,
	})

	c.mu.Lock()
	if gen != c.generation {
		// Superseded while dialing; drop the session we just opened.
		c.mu.Unlock()
		session.Close()
		return
	}
	c.session = session
	c.mu.Unlock()
	c.notify()
}

// handleSample applies one feed sample, promoting the connection to
// Live on the first sample of the current generation.
func (c *Controller) handleSample(gen uint64, sample model.PriceSample) {
	c.mu.Lock()
	if gen != c.generation {
		current := c.generation
		c.mu.Unlock()
		c.logger.Debug("dropping stale sample", "generation", gen, "current", current)
		return
	}

	s := sample
	c.latest = &s
	c.window.Push(sample)
	c.conn = StateLive
	c.connErr = nil
	c.mu.Unlock()
	c.notify()
}

// handleDisconnect marks the stream down. Disconnection is terminal:
// recovery happens only through a new SelectInstrument call.
func (c *Controller) handleDisconnect(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation {
		current := c.generation
		c.mu.Unlock()
		c.logger.Debug("dropping stale disconnect", "generation", gen, "current", current)
		return
	}

	c.conn = StateDisconnected
	c.connErr = err
	c.session = nil
	instrument := c.instrument
	c.mu.Unlock()
	c.notify()

	c.logger.Warn("stream disconnected", "instrument", instrument, "error", err)
}

// SubmitTrade submits an order at the most recently observed price.
// Permitted only while Live; otherwise ErrNotLive without any network
// call. On success the portfolio is reconciled immediately; a
// reconciliation failure after a successful trade surfaces as
// *PostTradeReconcileError, never as a trade failure.
func (c *Controller) SubmitTrade(ctx context.Context, side model.Side, quantity int64) error {
	c.mu.Lock()
	if c.conn != StateLive || c.latest == nil {
		c.mu.Unlock()
		return ErrNotLive
	}
	order := model.TradeOrder{
		Symbol:   c.instrument,
		Side:     side,
		Quantity: quantity,
		Price:    c.latest.Price,
	}
	c.mu.Unlock()

	if err := c.exec.Submit(ctx, order); err != nil {
		c.mu.Lock()
		c.tradeErr = err
		c.mu.Unlock()
		c.notify()
		return err
	}

	c.mu.Lock()
	c.tradeErr = nil
	c.mu.Unlock()

	// Trade confirmed; now fetch authoritative state. The order of
	// these two steps is fixed: never reconcile before confirmation.
	if _, err := c.store.Reconcile(ctx); err != nil {
		c.mu.Lock()
		c.reconcileErr = err
		c.mu.Unlock()
		c.notify()
		return &PostTradeReconcileError{Err: err}
	}

	c.mu.Lock()
	c.reconcileErr = nil
	c.mu.Unlock()
	c.notify()
	return nil
}

// RetryReconcile is the user-initiated refresh of holdings and history,
// used after a reconciliation failure or a failed bootstrap.
func (c *Controller) RetryReconcile(ctx context.Context) error {
	if _, err := c.store.Reconcile(ctx); err != nil {
		c.mu.Lock()
		c.reconcileErr = err
		c.mu.Unlock()
		c.notify()
		return err
	}

	c.mu.Lock()
	c.reconcileErr = nil
	c.mu.Unlock()
	c.notify()
	return nil
}

// Close tears down the active session, as on unmount. Idempotent.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.generation++ // stragglers from the closed session become inert
	old := c.session
	c.session = nil
	c.conn = StateIdle
	c.latest = nil
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// Snapshot returns a copy of all observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var latest *model.PriceSample
	if c.latest != nil {
		s := *c.latest
		latest = &s
	}

	return Snapshot{
		Conn:         c.conn,
		Bootstrap:    c.bootstrap,
		Instrument:   c.instrument,
		Generation:   c.generation,
		Latest:       latest,
		Window:       c.window.Samples(),
		UserEmail:    c.user.Email,
		Holdings:     c.store.Holdings(),
		History:      c.store.History(),
		BootstrapErr: c.bootstrapErr,
		ConnErr:      c.connErr,
		TradeErr:     c.tradeErr,
		ReconcileErr: c.reconcileErr,
	}
}

// Subscribe returns a channel that receives a coalesced signal whenever
// observable state changes. Consumers read a fresh Snapshot on each
// signal.
func (c *Controller) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

// notify signals all subscribers without blocking; a pending signal
// already covers the change.
func (c *Controller) notify() {
	c.mu.Lock()
	subs := make([]chan struct{}, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
