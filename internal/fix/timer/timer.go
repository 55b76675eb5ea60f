// Package timer derives the tick resolution the session driver polls at
// (spec.md §4.6) from the negotiated HeartBtInt. Unlike the teacher's
// pkg/cache/flusher, which runs its ticker on its own goroutine, this
// ticker is read from a single select alongside I/O in the driver's event
// loop (spec.md §4.6 "they never run on a separate thread") — this package
// only hands back the *time.Ticker, it never spawns anything.
package timer

import "time"

// minResolution floors the tick interval so a very low HeartBtInt (tests,
// misconfiguration) doesn't spin the driver loop.
const minResolution = 250 * time.Millisecond

// Resolution returns the tick interval for a session's event loop: at most
// HeartBtInt/4, per spec.md §4.6.
func Resolution(heartBtInt time.Duration) time.Duration {
	if heartBtInt <= 0 {
		return minResolution
	}
	r := heartBtInt / 4
	if r < minResolution {
		return minResolution
	}
	return r
}

// NewTicker returns a ticker firing at Resolution(heartBtInt). Callers must
// Stop it when the session ends.
func NewTicker(heartBtInt time.Duration) *time.Ticker {
	return time.NewTicker(Resolution(heartBtInt))
}
