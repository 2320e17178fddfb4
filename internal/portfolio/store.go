// Package portfolio caches the server-held holdings and trade history.
// The cache is refreshed only by explicit reconciliation and is replaced
// wholesale: both feeds update together or not at all, so the UI never
// shows a new trade next to stale holdings.
package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"tradedesk/internal/model"
)

// Fetcher is the slice of the REST client the store depends on.
type Fetcher interface {
	Portfolio(ctx context.Context) ([]model.Holding, error)
	TradeHistory(ctx context.Context) ([]model.Trade, error)
}

// FetchError reports which fetch of a reconciliation failed.
type FetchError struct {
	Op  string // "portfolio" or "trade-history"
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Result is the outcome of one reconciliation. Stale marks a completion
// that was superseded by a newer call and therefore did not touch the
// cache.
type Result struct {
	Holdings []model.Holding
	History  []model.Trade
	Stale    bool
}

// Store holds the cached holdings and history.
type Store struct {
	client Fetcher
	logger *slog.Logger

	mu       sync.Mutex
	issued   uint64 // sequence handed to the most recent Reconcile call
	applied  uint64 // sequence of the call that last updated the cache
	holdings []model.Holding
	history  []model.Trade
}

// New creates an empty store.
func New(client Fetcher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		client: client,
		logger: logger,
	}
}

// Reconcile re-fetches holdings and history concurrently and replaces
// both caches atomically. If either fetch fails the reconciliation fails
// as a whole and the prior cache is retained. Overlapping calls are
// sequenced: a completion whose call was superseded by a later one
// returns its data flagged Stale and leaves the cache alone.
func (s *Store) Reconcile(ctx context.Context) (Result, error) {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	var (
		holdings []model.Holding
		history  []model.Trade
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := s.client.Portfolio(gctx)
		if err != nil {
			return &FetchError{Op: "portfolio", Err: err}
		}
		holdings = h
		return nil
	})
	g.Go(func() error {
		t, err := s.client.TradeHistory(gctx)
		if err != nil {
			return &FetchError{Op: "trade-history", Err: err}
		}
		history = t
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("reconciliation failed, cache retained", "seq", seq, "error", err)
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		s.logger.Debug("discarding superseded reconciliation", "seq", seq, "applied", s.applied)
		return Result{Holdings: holdings, History: history, Stale: true}, nil
	}

	s.applied = seq
	s.holdings = holdings
	s.history = history

	s.logger.Debug("reconciled",
		"seq", seq,
		"holdings", len(holdings),
		"trades", len(history),
	)

	return Result{Holdings: holdings, History: history}, nil
}

// Holdings returns a copy of the cached holdings.
func (s *Store) Holdings() []model.Holding {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Holding, len(s.holdings))
	copy(out, s.holdings)
	return out
}

// History returns a copy of the cached trade history in server order.
func (s *Store) History() []model.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Trade, len(s.history))
	copy(out, s.history)
	return out
}
