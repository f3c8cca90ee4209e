// ============================================================================
// Reaper (do_wait)
// ============================================================================
//
// Package: internal/reaper
// Purpose: Non-blocking reconciliation of child-status changes into the
// job table (spec.md §4.2). Grounded on
// _examples/other_examples/62a43b9f_canonical-pebble__internal-overlord-servstate-reaper.go.go's
// reapOnce/reapChildren, adapted from a process-wide zombie reaper into
// one that folds state into a job table instead of a waits-by-pid map.
//
// ============================================================================

package reaper

import (
	"errors"
	"log/slog"

	"github.com/beaver-shell/jobctl/internal/jobtable"
	"github.com/beaver-shell/jobctl/internal/jobtypes"
	"github.com/beaver-shell/jobctl/internal/procwait"
)

var log = slog.Default()

// ReapEvent reports one folded process-state change, letting
// internal/metrics and internal/jobcontrol observe drains without
// polling the job table — grounded in the teacher's resultCh/
// ReceiveResult channel handoff in internal/worker.
type ReapEvent struct {
	Pid     int
	Job     *jobtypes.Job
	Process *jobtypes.Process
}

// Reaper drains child-status changes and folds them into a job table.
type Reaper struct {
	source *procwait.Source
	table  *jobtable.Table

	events chan ReapEvent
	errs   chan error
}

// New returns a Reaper that folds changes into table.
func New(table *jobtable.Table) *Reaper {
	return &Reaper{
		source: procwait.NewSource(),
		table:  table,
		events: make(chan ReapEvent, 64),
		errs:   make(chan error, 1),
	}
}

// Events returns the stream of folded process-state changes.
func (r *Reaper) Events() <-chan ReapEvent {
	return r.events
}

// Errors returns the channel unexpected OS failures are reported on
// (spec.md §7, "unexpected OS failure"). Buffered 1, non-blocking send:
// a failure is dropped (and logged) rather than blocking the reaper if
// nothing is draining it.
func (r *Reaper) Errors() <-chan error {
	return r.errs
}

// Drain consumes every immediately-available child-status change
// without blocking, folding each into the table's process and job
// state. It returns only after the OS reports nothing left to consume,
// matching spec.md §4.2's "between successive do_wait drains, the
// reaper is atomic from the caller's view" ordering guarantee.
func (r *Reaper) Drain() {
	for {
		change, ok, err := r.source.Poll()
		if err != nil {
			if !errors.Is(err, procwait.ErrNoChildren) {
				r.reportErr(err)
			}
			return
		}
		if !ok {
			return
		}
		r.fold(change)
	}
}

func (r *Reaper) fold(change procwait.Change) {
	job, proc := r.table.FindProcess(change.Pid)
	if proc == nil {
		// Missing-pid reap: disowned or never-tracked child. Silently
		// ignored per spec.md §7.
		log.Debug("reap: status for untracked pid", "pid", change.Pid)
		return
	}

	proc.Status = int(change.Status)
	switch {
	case change.Status.Exited():
		proc.State = jobtypes.ProcessDone
	case change.Status.Signaled():
		proc.State = jobtypes.ProcessDone
	case change.Status.Stopped():
		proc.State = jobtypes.ProcessStopped
	case change.Status.Continued():
		proc.State = jobtypes.ProcessRunning
	}

	job.Recompute()
	log.Debug("reap: folded status change", "pid", change.Pid, "state", proc.State)
	r.emit(ReapEvent{Pid: change.Pid, Job: job, Process: proc})
}

func (r *Reaper) emit(ev ReapEvent) {
	select {
	case r.events <- ev:
	default:
		log.Warn("reap: events channel full, dropping event", "pid", ev.Pid)
	}
}

func (r *Reaper) reportErr(err error) {
	log.Error("reap: unexpected OS failure", "error", err)
	select {
	case r.errs <- err:
	default:
	}
}
