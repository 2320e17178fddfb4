package portfolio

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradedesk/internal/model"
)

// fakeFetcher lets each test script fetch outcomes as closures, so
// overlap scenarios can gate individual calls without data races.
type fakeFetcher struct {
	portfolioFn func(ctx context.Context) ([]model.Holding, error)
	historyFn   func(ctx context.Context) ([]model.Trade, error)
}

func (f *fakeFetcher) Portfolio(ctx context.Context) ([]model.Holding, error) {
	if f.portfolioFn == nil {
		return nil, nil
	}
	return f.portfolioFn(ctx)
}

func (f *fakeFetcher) TradeHistory(ctx context.Context) ([]model.Trade, error) {
	if f.historyFn == nil {
		return nil, nil
	}
	return f.historyFn(ctx)
}

// staticFetcher returns fixed data on every call.
func staticFetcher(holdings []model.Holding, history []model.Trade) *fakeFetcher {
	return &fakeFetcher{
		portfolioFn: func(context.Context) ([]model.Holding, error) { return holdings, nil },
		historyFn:   func(context.Context) ([]model.Trade, error) { return history, nil },
	}
}

func holdingsOf(symbol string, qty int64, avg string) []model.Holding {
	return []model.Holding{{
		ID:       1,
		Symbol:   symbol,
		Quantity: qty,
		AvgPrice: decimal.RequireFromString(avg),
	}}
}

func TestStore_ReconcileUpdatesBothCaches(t *testing.T) {
	fetcher := staticFetcher(
		holdingsOf("AAPL", 5, "99.8"),
		[]model.Trade{{
			ID:       1,
			Symbol:   "AAPL",
			Side:     model.SideBuy,
			Quantity: 5,
			Price:    decimal.RequireFromString("99.8"),
		}},
	)
	store := New(fetcher, nil)

	result, err := store.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if result.Stale {
		t.Error("result should not be stale")
	}

	holdings := store.Holdings()
	if len(holdings) != 1 || holdings[0].Symbol != "AAPL" || holdings[0].Quantity != 5 {
		t.Errorf("Holdings = %+v", holdings)
	}
	if !holdings[0].AvgPrice.Equal(decimal.RequireFromString("99.8")) {
		t.Errorf("AvgPrice = %s, want 99.8", holdings[0].AvgPrice)
	}
	if len(store.History()) != 1 {
		t.Errorf("History = %+v", store.History())
	}
}

func TestStore_PartialFailureRetainsCache(t *testing.T) {
	fetcher := staticFetcher(holdingsOf("AAPL", 5, "99.8"), nil)
	store := New(fetcher, nil)

	if _, err := store.Reconcile(context.Background()); err != nil {
		t.Fatalf("seed Reconcile failed: %v", err)
	}

	// History fetch now fails; the whole reconciliation must fail and
	// neither cache may change.
	fetcher.portfolioFn = func(context.Context) ([]model.Holding, error) {
		return holdingsOf("AAPL", 10, "101.0"), nil
	}
	fetcher.historyFn = func(context.Context) ([]model.Trade, error) {
		return nil, errors.New("500 from server")
	}

	_, err := store.Reconcile(context.Background())
	if err == nil {
		t.Fatal("expected reconciliation failure")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if fetchErr.Op != "trade-history" {
		t.Errorf("Op = %q, want trade-history", fetchErr.Op)
	}

	holdings := store.Holdings()
	if len(holdings) != 1 || holdings[0].Quantity != 5 {
		t.Errorf("Holdings changed on failed reconcile: %+v", holdings)
	}
}

func TestStore_SupersededCallDoesNotOverwrite(t *testing.T) {
	// Call 1 blocks on the gate and returns quantity 1; call 2 returns
	// quantity 9 immediately.
	gate := make(chan struct{})
	var calls atomic.Int32

	fetcher := &fakeFetcher{
		portfolioFn: func(ctx context.Context) ([]model.Holding, error) {
			if calls.Add(1) == 1 {
				select {
				case <-gate:
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				return holdingsOf("AAPL", 1, "50"), nil
			}
			return holdingsOf("AAPL", 9, "80"), nil
		},
		historyFn: func(context.Context) ([]model.Trade, error) { return nil, nil },
	}

	store := New(fetcher, nil)

	type outcome struct {
		result Result
		err    error
	}
	firstDone := make(chan outcome, 1)

	// First call blocks on the gate.
	go func() {
		r, err := store.Reconcile(context.Background())
		firstDone <- outcome{r, err}
	}()

	// Give the first call time to take its sequence number.
	time.Sleep(50 * time.Millisecond)

	// Second call completes immediately with newer data.
	second, err := store.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("second Reconcile failed: %v", err)
	}
	if second.Stale {
		t.Error("second (newer) call must not be stale")
	}

	// Now let the first call finish with its old data.
	close(gate)

	out := <-firstDone
	if out.err != nil {
		t.Fatalf("first Reconcile failed: %v", out.err)
	}
	if !out.result.Stale {
		t.Error("superseded call must report Stale")
	}

	// Cache reflects the later-initiated call.
	holdings := store.Holdings()
	if len(holdings) != 1 || holdings[0].Quantity != 9 {
		t.Errorf("Holdings = %+v, want the second call's data", holdings)
	}
}

func TestStore_EmptyBeforeFirstReconcile(t *testing.T) {
	store := New(&fakeFetcher{}, nil)

	if len(store.Holdings()) != 0 {
		t.Error("Holdings should start empty")
	}
	if len(store.History()) != 0 {
		t.Error("History should start empty")
	}
}

func TestStore_HoldingsReturnsCopy(t *testing.T) {
	fetcher := staticFetcher(holdingsOf("AAPL", 5, "99.8"), nil)
	store := New(fetcher, nil)
	if _, err := store.Reconcile(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := store.Holdings()
	snap[0].Quantity = 12345

	if store.Holdings()[0].Quantity != 5 {
		t.Error("mutating the returned slice must not affect the cache")
	}
}
