// ============================================================================
// Job Control — Composition & Public API
// ============================================================================
//
// Package: internal/jobcontrol
// Purpose: composes the job table, reaper, waiter, and status formatter
// into the exact public surface spec.md §6 lists. Grounded on
// internal/controller/controller.go's role as "core coordinator of all
// modules", reduced to the single control-flow thread spec.md §5
// mandates — no dispatch/result/timeout/snapshot goroutines, since a
// shell job-control core has exactly one control flow plus
// asynchronous signal delivery.
//
// ============================================================================

package jobcontrol

import (
	"context"
	"io"
	"log/slog"

	"github.com/beaver-shell/jobctl/internal/config"
	"github.com/beaver-shell/jobctl/internal/jobtable"
	"github.com/beaver-shell/jobctl/internal/jobtypes"
	"github.com/beaver-shell/jobctl/internal/reaper"
	"github.com/beaver-shell/jobctl/internal/sigbus"
	"github.com/beaver-shell/jobctl/internal/status"
	"github.com/beaver-shell/jobctl/internal/waiter"
)

var log = slog.Default()

// AllJobs is the "print all live jobs" sentinel, re-exported from
// internal/status so callers never need to import that package
// directly for it.
const AllJobs = status.AllJobs

// Core composes the job table, reaper, waiter, and status formatter
// into the operations spec.md §6 exposes to the shell.
type Core struct {
	table  *jobtable.Table
	reaper *reaper.Reaper
	waiter *waiter.Waiter
	fmt    *status.Formatter
	bus    *sigbus.Bus
}

// New wires a fresh Core from cfg.
func New(cfg *config.Config) *Core {
	table := jobtable.New()
	rp := reaper.New(table)
	bus := sigbus.New()
	return &Core{
		table:  table,
		reaper: rp,
		waiter: waiter.New(bus, rp),
		fmt:    status.New(cfg, nil),
		bus:    bus,
	}
}

// Close unregisters the Core's signal subscription. Safe to call once
// a shell session using this Core is shutting down.
func (c *Core) Close() {
	c.bus.Stop()
}

// Table exposes the underlying job table for collaborators (e.g.
// internal/shellexec, cmd/jobctl) that need to enumerate or look up
// jobs by process group beyond the narrow operations below.
func (c *Core) Table() *jobtable.Table {
	return c.table
}

// InstallActive installs job into slot 0.
func (c *Core) InstallActive(job *jobtypes.Job) error {
	return c.table.InstallActive(job)
}

// Promote moves the active job into the numbered table.
func (c *Core) Promote(currentHint bool) int {
	return c.table.Promote(currentHint)
}

// Get returns the job at slot n, or nil.
func (c *Core) Get(n int) *jobtypes.Job {
	return c.table.Get(n)
}

// Remove frees slot n.
func (c *Core) Remove(n int) {
	c.table.Remove(n)
}

// RemoveAll clears the table.
func (c *Core) RemoveAll() {
	c.table.RemoveAll()
}

// Count returns the number of live jobs.
func (c *Core) Count() int {
	return c.table.Count()
}

// StoppedCount returns the number of live STOPPED jobs.
func (c *Core) StoppedCount() int {
	return c.table.StoppedCount()
}

// Stats returns the live/running/stopped job counts internal/metrics
// reports as gauges. DONE jobs not yet removed by a PrintJobStatus call
// are counted in live but neither running nor stopped.
func (c *Core) Stats() (live, running, stopped int) {
	for _, job := range c.table.Jobs() {
		live++
		switch job.State {
		case jobtypes.JobRunning:
			running++
		case jobtypes.JobStopped:
			stopped++
		}
	}
	return live, running, stopped
}

// DoWait performs one non-blocking reap sweep. The shell's main loop
// calls this on its own schedule (e.g. before printing a prompt); see
// SPEC_FULL.md §7 for why this is distinct from WaitForJob's internal
// draining.
func (c *Core) DoWait() {
	c.reaper.Drain()
}

// WaitForJob blocks until job n is DONE, or (if returnOnStop) DONE or
// STOPPED.
func (c *Core) WaitForJob(ctx context.Context, n int, returnOnStop bool) error {
	job := c.table.Get(n)
	if job == nil {
		return jobtable.ErrJobNotFound
	}
	return c.waiter.WaitForJob(ctx, job, returnOnStop)
}

// ExitStatusOf returns job n's decoded exit status.
func (c *Core) ExitStatusOf(n int) (int, error) {
	job := c.table.Get(n)
	if job == nil {
		return 0, jobtable.ErrJobNotFound
	}
	return c.fmt.ExitStatusOf(job)
}

// PrintJobStatus renders job n's status (or every live job, if n ==
// AllJobs) to sink.
func (c *Core) PrintJobStatus(n int, changedOnly, verbose bool, sink io.Writer) {
	c.fmt.PrintJobStatus(c.table, n, changedOnly, verbose, sink)
}

// Disown removes slot n unconditionally, live or DONE, without the
// print-and-reap path PrintJobStatus drives. Supplemented from
// original_source/job.c's disown handling (see SPEC_FULL.md §8).
func (c *Core) Disown(n int) {
	if job := c.table.Get(n); job != nil {
		log.Debug("disown", "job", n)
	}
	c.table.Remove(n)
}

// Events returns the reaper's stream of folded process-state changes.
func (c *Core) Events() <-chan reaper.ReapEvent {
	return c.reaper.Events()
}

// Errors returns the reaper's unexpected-OS-failure channel.
func (c *Core) Errors() <-chan error {
	return c.reaper.Errors()
}
