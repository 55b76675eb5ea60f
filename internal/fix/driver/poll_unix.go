//go:build !windows

package driver

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// pollReadable waits up to timeout for conn's underlying fd to become
// readable. The pump goroutine uses this ahead of the blocking conn.Read
// so it can notice ctx cancellation between polls instead of sitting in
// an uninterruptible syscall until the socket is closed out from under
// it. Returns false on timeout; true once data, EOF, or an error is
// ready to be read.
func pollReadable(conn syscall.Conn, timeout time.Duration) (bool, error) {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return false, err
	}

	var ready bool
	var pollErr error
	ctrlErr := rawConn.Read(func(fd uintptr) bool {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, perr := unix.Poll(fds, int(timeout.Milliseconds()))
		if perr != nil {
			pollErr = perr
			return true
		}
		ready = n > 0 && fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0
		return true
	})
	if ctrlErr != nil {
		return false, ctrlErr
	}
	return ready, pollErr
}
