// Package dashboard orchestrates the live trading view: it owns the
// active feed session, the rolling sample window, and the sequencing of
// trade submission with portfolio reconciliation. It is the only
// component holding cross-cutting state; everything it exposes to a
// presentation layer goes through Snapshot and the Subscribe
// notification channel, so no rendering technology is assumed.
package dashboard
