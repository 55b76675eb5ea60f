//go:build windows

package fixlog

import "golang.org/x/sys/windows"

// isTerminal reports whether fd refers to a console on Windows.
func isTerminal(fd uintptr) bool {
	var mode uint32
	err := windows.GetConsoleMode(windows.Handle(fd), &mode)
	return err == nil
}
