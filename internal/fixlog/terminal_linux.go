//go:build linux

package fixlog

import "golang.org/x/sys/unix"

// isTerminal reports whether fd refers to a terminal on Linux, where the
// termios ioctl number differs from the BSD/macOS one used elsewhere.
func isTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}
