//go:build windows

package driver

import (
	"syscall"
	"time"
)

// pollReadable has no cheap non-blocking readiness check on Windows via
// this engine's dependency set; the pump goroutine falls back to a
// direct blocking Read, same as it does for any conn that doesn't
// implement syscall.Conn.
func pollReadable(conn syscall.Conn, timeout time.Duration) (bool, error) {
	return true, nil
}
