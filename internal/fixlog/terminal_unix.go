//go:build !windows && !linux

package fixlog

import "golang.org/x/sys/unix"

// isTerminal reports whether fd refers to a terminal, used to decide
// whether the text handler should emit ANSI color.
func isTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TIOCGETA)
	return err == nil
}
