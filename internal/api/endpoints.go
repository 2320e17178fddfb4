package api

import (
	"context"

	"tradedesk/internal/model"
)

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	if err := c.get(ctx, "/users/me", &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Portfolio fetches the user's current holdings.
func (c *Client) Portfolio(ctx context.Context) ([]model.Holding, error) {
	var wire []holdingWire
	if err := c.get(ctx, "/portfolio", &wire); err != nil {
		return nil, err
	}

	holdings := make([]model.Holding, 0, len(wire))
	for _, w := range wire {
		holdings = append(holdings, w.toModel())
	}
	return holdings, nil
}

// TradeHistory fetches the user's past trades in server order.
func (c *Client) TradeHistory(ctx context.Context) ([]model.Trade, error) {
	var wire []tradeWire
	if err := c.get(ctx, "/trade-history", &wire); err != nil {
		return nil, err
	}

	trades := make([]model.Trade, 0, len(wire))
	for _, w := range wire {
		trades = append(trades, w.toModel())
	}
	return trades, nil
}

// SubmitTrade submits an order for execution. A rejection surfaces as
// *APIError carrying the server's detail message.
func (c *Client) SubmitTrade(ctx context.Context, order model.TradeOrder) error {
	req := tradeRequest{
		Symbol:    order.Symbol,
		TradeType: string(order.Side),
		Quantity:  order.Quantity,
		Price:     order.Price,
	}
	return c.post(ctx, "/trade", req)
}
