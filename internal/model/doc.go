// Package model defines the domain types shared across the dashboard
// engine: price samples from the live feed, portfolio holdings, and
// executed trades. Monetary values use shopspring/decimal throughout;
// floats never carry prices.
package model
