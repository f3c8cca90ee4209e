// ============================================================================
// Status Derivation & Formatter
// ============================================================================
//
// Package: internal/status
// Purpose: exit-status decoding, job/process name composition, and the
// human-readable status strings and print_job_status operation
// (spec.md §4.4/§4.5). Message strings are user-visible POSIX output
// and must remain stable modulo localisation.
//
// ============================================================================

package status

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/beaver-shell/jobctl/internal/config"
	"github.com/beaver-shell/jobctl/internal/jobtable"
	"github.com/beaver-shell/jobctl/internal/jobtypes"
	"github.com/beaver-shell/jobctl/pkg/signame"
)

// AllJobs is the sentinel "print all live jobs" value for
// PrintJobStatus. spec.md §6 requires it be "distinct from any valid
// job number"; valid job numbers are >= 1, and 0 already means "none"
// elsewhere in this core, so -1 is used instead of 0 to avoid that
// ambiguity (see SPEC_FULL.md §7).
const AllJobs = -1

// Localizer translates a format string, or returns it unchanged if no
// translation is available. Stands in for spec.md §6's localisation
// hook collaborator.
type Localizer func(string) string

func identity(s string) string { return s }

// Formatter derives and renders job/process status.
type Formatter struct {
	cfg      *config.Config
	localize Localizer
}

// New returns a Formatter reading TERMSIGOFFSET, success-exit-code, and
// the strict-POSIX flag from cfg. A nil localize is treated as identity.
func New(cfg *config.Config, localize Localizer) *Formatter {
	if localize == nil {
		localize = identity
	}
	return &Formatter{cfg: cfg, localize: localize}
}

// ExitStatusOf returns the decoded exit status of job, defined only for
// DONE or STOPPED jobs (spec.md §4.4).
func (f *Formatter) ExitStatusOf(job *jobtypes.Job) (int, error) {
	switch job.State {
	case jobtypes.JobDone:
		return f.decode(job.Tail()), nil
	case jobtypes.JobStopped:
		if p := tailmostStopped(job); p != nil {
			return f.decode(p), nil
		}
		return 0, ErrNotTerminal
	default:
		return 0, ErrNotTerminal
	}
}

func tailmostStopped(job *jobtypes.Job) *jobtypes.Process {
	for i := len(job.Processes) - 1; i >= 0; i-- {
		if job.Processes[i].State == jobtypes.ProcessStopped {
			return job.Processes[i]
		}
	}
	return nil
}

// decode applies the raw-status-word decoding rules of spec.md §4.4.
func (f *Formatter) decode(p *jobtypes.Process) int {
	if p.Pid == 0 {
		return p.Status
	}
	ws := unix.WaitStatus(uint32(p.Status))
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		return int(ws.Signal()) + f.cfg.JobControl.TermSigOffset
	case ws.Stopped():
		return int(ws.StopSignal()) + f.cfg.JobControl.TermSigOffset
	case ws.Continued():
		return 0
	default:
		return 0
	}
}

// NameOf returns job's display name: the sole process's name if it has
// only one, else a freshly composed " | "-joined string, prefixed with
// "| " when the job is loop-shaped (spec.md §4.4, and the loop-pipeline
// display prefix supplemented from original_source/job.c, see
// SPEC_FULL.md §8).
func NameOf(job *jobtypes.Job) string {
	if len(job.Processes) == 1 {
		return job.Processes[0].Name
	}
	names := make([]string, len(job.Processes))
	for i, p := range job.Processes {
		names[i] = p.Name
	}
	joined := strings.Join(names, " | ")
	if job.Loop {
		joined = "| " + joined
	}
	return joined
}

// ProcessStatusString renders the per-process status string of
// spec.md §4.5.
func (f *Formatter) ProcessStatusString(p *jobtypes.Process) string {
	switch p.State {
	case jobtypes.ProcessRunning:
		return f.localize("Running")

	case jobtypes.ProcessStopped:
		ws := unix.WaitStatus(uint32(p.Status))
		return fmt.Sprintf(f.localize("Stopped(%s)"), signame.Of(int(ws.StopSignal())))

	case jobtypes.ProcessDone:
		if p.Pid == 0 {
			if p.Status == f.cfg.JobControl.SuccessExitCode {
				return f.localize("Done")
			}
			return fmt.Sprintf(f.localize("Done(%d)"), p.Status)
		}
		ws := unix.WaitStatus(uint32(p.Status))
		switch {
		case ws.Exited():
			if ws.ExitStatus() == f.cfg.JobControl.SuccessExitCode {
				return f.localize("Done")
			}
			return fmt.Sprintf(f.localize("Done(%d)"), ws.ExitStatus())
		case ws.Signaled():
			name := signame.Of(int(ws.Signal()))
			if ws.CoreDump() {
				return fmt.Sprintf(f.localize("Killed (%s: core dumped)"), name)
			}
			return fmt.Sprintf(f.localize("Killed (%s)"), name)
		default:
			return f.localize("Done")
		}

	default:
		return f.localize("Running")
	}
}

// JobStatusString renders the per-job status string of spec.md §4.5:
// RUNNING -> "Running"; STOPPED -> the tail-most STOPPED process's
// string; DONE -> the tail process's string.
func (f *Formatter) JobStatusString(job *jobtypes.Job) string {
	switch job.State {
	case jobtypes.JobRunning:
		return f.localize("Running")
	case jobtypes.JobStopped:
		if p := tailmostStopped(job); p != nil {
			return f.ProcessStatusString(p)
		}
		return f.localize("Running")
	case jobtypes.JobDone:
		return f.ProcessStatusString(job.Tail())
	default:
		return f.localize("Running")
	}
}

// PrintJobStatus renders job n's status to sink. If n == AllJobs, every
// live job is visited in ascending slot order. Jobs are skipped if
// absent, or if changedOnly is set and the job's changed flag is clear.
// After printing, the changed flag is cleared and a DONE job is removed
// from the table (spec.md §4.5).
func (f *Formatter) PrintJobStatus(table *jobtable.Table, n int, changedOnly, verbose bool, sink io.Writer) {
	if n == AllJobs {
		for _, num := range table.LiveNumbers() {
			f.printOne(table, num, changedOnly, verbose, sink)
		}
		return
	}
	f.printOne(table, n, changedOnly, verbose, sink)
}

func (f *Formatter) printOne(table *jobtable.Table, n int, changedOnly, verbose bool, sink io.Writer) {
	job := table.Get(n)
	if job == nil || (changedOnly && !job.Changed) {
		return
	}

	marker := byte(' ')
	switch n {
	case table.Current():
		marker = '+'
	case table.Previous():
		marker = '-'
	}

	if !verbose {
		fmt.Fprintf(sink, "[%d] %c %-20s %s\n", n, marker, f.JobStatusString(job), NameOf(job))
	} else {
		f.printVerbose(job, n, marker, sink)
	}

	job.Changed = false
	if job.State == jobtypes.JobDone {
		table.Remove(n)
	}
}

func (f *Formatter) printVerbose(job *jobtypes.Job, n int, marker byte, sink io.Writer) {
	sep := byte(' ')
	if job.Loop {
		sep = '|'
	}
	for i, p := range job.Processes {
		if i == 0 {
			fmt.Fprintf(sink, "[%d] %c %-7d %-20s %c %s\n",
				n, marker, p.Pid, f.ProcessStatusString(p), sep, p.Name)
			continue
		}
		if f.cfg.JobControl.StrictPOSIX {
			fmt.Fprintf(sink, "        %-7d %c %s\n", p.Pid, sep, p.Name)
		} else {
			fmt.Fprintf(sink, "        %-7d %-20s %c %s\n", p.Pid, f.ProcessStatusString(p), sep, p.Name)
		}
	}
}
