// Package signame resolves an integer signal number to its symbolic
// POSIX name (e.g. 20 -> "SIGTSTP" on Linux), wrapping
// golang.org/x/sys/unix.SignalName as spec.md §6 requires ("Symbolic
// signal-name lookup for an integer signal number").
package signame

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Of returns the symbolic name of sig, e.g. "SIGTSTP". Signals unix
// doesn't have a name for (notably real-time signals) fall back to
// "SIG<n>" rather than an empty string, so callers never need a
// secondary nil-check.
func Of(sig int) string {
	name := unix.SignalName(unix.Signal(sig))
	if name == "" {
		return fmt.Sprintf("SIG%d", sig)
	}
	return name
}
