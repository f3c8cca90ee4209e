// ============================================================================
// Signal Subsystem Collaborator
// ============================================================================
//
// Package: internal/sigbus
// Purpose: Implements the "signal subsystem" external collaborator
// spec.md §6 requires: atomic block/unblock of child-status and hangup
// signals, and a "wait for child-status signal" primitive that
// atomically releases blocking and resumes.
//
// Go has no user-space sigprocmask/sigsuspend equivalent — the runtime
// owns signal delivery. The idiomatic substitute (used by
// _examples/other_examples/.../canonical-pebble reaper.go's
// reapChildren) is a buffered channel fed by os/signal.Notify: delivery
// before Notify is a no-op, but once registered the channel can never
// lose a wakeup between a caller's state check and its receive, which
// is exactly the race property spec.md's design notes call for (see
// SPEC_FULL.md §3.3).
//
// ============================================================================

package sigbus

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Bus delivers a wakeup whenever SIGCHLD or SIGHUP arrives. A Bus with
// a buffer of 1 coalesces bursts of signals into a single pending
// wakeup, matching do_wait's "drain everything available" semantics:
// callers are expected to loop do_wait to exhaustion on every wakeup
// rather than assume one wakeup == one event.
type Bus struct {
	ch chan os.Signal
}

// New registers for SIGCHLD and SIGHUP and returns a ready Bus.
func New() *Bus {
	b := &Bus{ch: make(chan os.Signal, 1)}
	signal.Notify(b.ch, syscall.SIGCHLD, syscall.SIGHUP)
	return b
}

// Stop unregisters the Bus from signal delivery. Safe to call more
// than once.
func (b *Bus) Stop() {
	signal.Stop(b.ch)
}

// Wait blocks until a child-status (or hangup) signal has arrived, or
// ctx is done. It returns ctx.Err() in the latter case.
//
// This is the race-free "block, check, suspend, unblock" primitive
// spec.md §4.3/§9 requires: Notify's internal buffering means a signal
// delivered after the caller's last state check but before this call
// is not lost, unlike a naive check-then-separately-suspend sequence.
func (b *Bus) Wait(ctx context.Context) error {
	select {
	case <-b.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Notifier is the interface internal/waiter depends on, satisfied by
// *Bus in production and by a fake channel-backed notifier in tests.
type Notifier interface {
	Wait(ctx context.Context) error
}
