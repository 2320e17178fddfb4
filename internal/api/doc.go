// Package api implements the REST client for the trading backend:
// profile, portfolio, trade history, and order submission. It translates
// HTTP failures into APIError values so callers never see raw transport
// errors, and it performs no automatic retries — recovery is always a
// user-initiated action at the dashboard level.
package api
