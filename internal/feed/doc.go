// Package feed owns the live WebSocket connection to the price stream.
// A Session is scoped to exactly one instrument and one controller
// generation; it parses feed frames into model.PriceSample values and
// delivers them through callbacks. Sessions never reconnect on their own:
// a dropped stream surfaces as a single OnDisconnected callback and stays
// down until the controller opens a new session.
package feed
