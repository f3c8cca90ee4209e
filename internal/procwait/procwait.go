// ============================================================================
// OS Wait Primitive — waitpid(2)-equivalent Collaborator
// ============================================================================
//
// Package: internal/procwait
// Purpose: Non-blocking query of child-status changes, wrapping
// golang.org/x/sys/unix.Wait4 the way
// _examples/other_examples/.../canonical-pebble reaper.go wraps it for
// zombie reaping (see SPEC_FULL.md §3.2).
//
// This is the "OS primitive waitpid-equivalent" external collaborator
// named in spec.md §6: non-blocking, reports exits/signals/stops and
// optionally continues, and distinguishes "no child ready" from "no
// children at all".
//
// ============================================================================

package procwait

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrNoChildren is returned when the calling process has no children
// at all (ECHILD) — distinct from "no child has changed state yet".
var ErrNoChildren = errors.New("procwait: no child processes")

// Change is one reported child-status change.
type Change struct {
	Pid    int
	Status unix.WaitStatus
}

// Source polls for child-status changes, negotiating WCONTINUED
// support on first use.
type Source struct {
	continuedSupported bool
	continuedDisabled  bool
}

// NewSource returns a Source that attempts to request WCONTINUED
// notifications until the kernel rejects the flag.
func NewSource() *Source {
	return &Source{continuedSupported: true}
}

// Poll performs one non-blocking wait4(2) call with WUNTRACED|WNOHANG,
// plus WCONTINUED while supported. It returns:
//
//   - (Change, true, nil)  if a child's status changed
//   - (Change{}, false, nil) if no child has anything to report right now
//   - (Change{}, false, ErrNoChildren) if the process has no children at all
//   - (Change{}, false, err) for any other unexpected errno
//
// EINTR is retried internally and never surfaces to the caller. EINVAL
// while WCONTINUED was requested permanently disables the flag for this
// Source and retries once (spec.md §4.2, "platform quirk").
func (s *Source) Poll() (Change, bool, error) {
	for {
		flags := unix.WUNTRACED | unix.WNOHANG
		if s.continuedSupported && !s.continuedDisabled {
			flags |= unix.WCONTINUED
		}

		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, flags, nil)
		switch {
		case err == nil:
			if pid <= 0 {
				return Change{}, false, nil
			}
			return Change{Pid: pid, Status: status}, true, nil

		case err == unix.EINTR:
			continue

		case err == unix.ECHILD:
			return Change{}, false, ErrNoChildren

		case err == unix.EINVAL && flags&unix.WCONTINUED != 0:
			s.continuedDisabled = true
			continue

		default:
			return Change{}, false, err
		}
	}
}
