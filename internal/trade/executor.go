// Package trade submits orders against the trading API. An executor
// does exactly one thing per call: submit and report. It never retries
// and never touches the portfolio cache — reconciliation after a
// successful trade is the dashboard controller's job.
package trade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"tradedesk/internal/api"
	"tradedesk/internal/model"
)

// ErrInvalidOrder marks a caller bug: the dashboard validates quantity
// and side before submission, so an invalid order must never reach the
// server.
var ErrInvalidOrder = errors.New("invalid order")

// TradeError is a server-side rejection or transport failure. Reason
// carries the server's detail message when one was reported.
type TradeError struct {
	Reason string
	Err    error
}

func (e *TradeError) Error() string {
	return fmt.Sprintf("trade failed: %s", e.Reason)
}

func (e *TradeError) Unwrap() error { return e.Err }

// Submitter is the slice of the REST client the executor depends on.
type Submitter interface {
	SubmitTrade(ctx context.Context, order model.TradeOrder) error
}

// Executor submits orders.
type Executor struct {
	client Submitter
	logger *slog.Logger
}

// New creates an executor.
func New(client Submitter, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		client: client,
		logger: logger,
	}
}

// Submit sends one order for execution. Failures surface as *TradeError
// with the server-reported reason; a failed trade is reported once and
// requires a new user-initiated submission.
func (e *Executor) Submit(ctx context.Context, order model.TradeOrder) error {
	if order.Symbol == "" {
		return fmt.Errorf("%w: missing symbol", ErrInvalidOrder)
	}
	if !order.Side.Valid() {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, order.Side)
	}
	if order.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidOrder, order.Quantity)
	}

	logger := e.logger.With("order_id", uuid.NewString())
	logger.Info("submitting order", "order", order.String())

	if err := e.client.SubmitTrade(ctx, order); err != nil {
		reason := "trade failed"
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			reason = apiErr.Detail
		}

		logger.Warn("order failed", "reason", reason, "error", err)
		return &TradeError{Reason: reason, Err: err}
	}

	logger.Info("order executed")
	return nil
}
