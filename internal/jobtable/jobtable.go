// ============================================================================
// Job Table & Designation Tracker
// ============================================================================
//
// Package: internal/jobtable
// Purpose: Indexed slot array mapping job number -> job record, plus the
// current/previous designation registers POSIX job control depends on.
//
// Design:
//   Slot 0 is reserved for the "active job" — a pipeline under
//   construction by the executor, installed via InstallActive and not
//   yet visible to Get/Remove/Count. Promote moves it into the lowest
//   free slot at index >= 1.
//
//   Compaction policy: when capacity exceeds 20 and live length is
//   less than half capacity, the table is compacted to its live tail
//   (spec.md §3, "Job table").
//
// Concurrency:
//   Protected by a mutex, following the same defensive pattern the
//   teacher's JobManager uses even though this core has a single
//   logical control flow (spec.md §5) — the signal-delivery goroutine
//   underlying internal/sigbus and the shell's main loop can both end
//   up calling into the table from different goroutines in this Go
//   rendition, unlike the original single-threaded C implementation.
//   Every exported method takes the lock exactly once; all internal
//   helpers assume the lock is already held and must never be called
//   from outside that scope.
//
// ============================================================================

package jobtable

import (
	"sync"

	"github.com/beaver-shell/jobctl/internal/jobtypes"
)

// Table is the job table and designation tracker.
type Table struct {
	mu sync.Mutex

	active *jobtypes.Job   // slot 0; nil unless between InstallActive and Promote
	slots  []*jobtypes.Job // indices >= 1; nil entries are empty slots

	current  int // 0 means "none"
	previous int // 0 means "none"
}

// New returns an empty job table.
func New() *Table {
	return &Table{}
}

// InstallActive installs job into slot 0. Precondition: slot 0 is
// empty, enforced as an error rather than a panic since the caller (the
// executor) can legitimately race a double-install under misuse and
// ought to be able to recover instead of crashing the shell.
func (t *Table) InstallActive(job *jobtypes.Job) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		return ErrSlotOccupied
	}
	t.active = job
	return nil
}

// Promote moves the job in slot 0 to the lowest empty slot at index >=
// 1 (appending if none exists), then applies the current/previous
// designation policy. It returns the job's new slot number.
//
// If currentHint is true, or there is no current job yet, the new slot
// becomes current. Else if there is no previous job yet, the new slot
// becomes previous. Otherwise designations are left unchanged.
func (t *Table) Promote(currentHint bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	job := t.active
	jobtypes.Assertf(job != nil, "Promote called with no active job installed")
	t.active = nil

	slot := t.lowestFreeSlotLocked()
	t.growToLocked(slot)
	t.slots[slot] = job

	switch {
	case currentHint || t.current == 0:
		t.setCurrentLocked(slot)
	case t.previous == 0:
		t.previous = slot
	}
	return slot
}

// lowestFreeSlotLocked finds the lowest empty index >= 1. If the table
// is fully occupied the returned index is one past the current end,
// for growToLocked to materialize.
func (t *Table) lowestFreeSlotLocked() int {
	for i := 1; i < len(t.slots); i++ {
		if t.slots[i] == nil {
			return i
		}
	}
	if len(t.slots) == 0 {
		return 1
	}
	return len(t.slots)
}

// growToLocked grows the backing slice so index is addressable.
func (t *Table) growToLocked(index int) {
	for len(t.slots) <= index {
		t.slots = append(t.slots, nil)
	}
}

// SetCurrent implements the current-job assignment policy (spec.md §4.1):
//
//  1. The old current is moved into previous.
//  2. If n == 0, n is replaced by the old current (now previous); if
//     that is 0 or names a dead slot, n becomes FindNext(0).
//  3. current := n.
//  4. If previous == 0 or previous == current, previous := FindNext(current).
func (t *Table) SetCurrent(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setCurrentLocked(n)
}

func (t *Table) setCurrentLocked(n int) {
	t.previous = t.current

	if n == 0 {
		n = t.previous
		if n == 0 || !t.liveLocked(n) {
			n = t.findNextLocked(0)
		}
	}
	t.current = n

	if t.previous == 0 || t.previous == t.current {
		t.previous = t.findNextLocked(t.current)
	}
}

func (t *Table) liveLocked(n int) bool {
	return n > 0 && n < len(t.slots) && t.slots[n] != nil
}

// Remove frees the job at slot n, rewrites designations, and compacts
// trailing empty slots. A no-op if n names an already-empty slot.
func (t *Table) Remove(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.liveLocked(n) {
		return
	}
	t.slots[n] = nil
	wasCurrent := n == t.current
	wasPrevious := n == t.previous
	t.compactLocked()

	switch {
	case wasCurrent:
		t.current = t.previous
		t.previous = t.findNextLocked(t.current)
	case wasPrevious:
		t.previous = t.findNextLocked(t.current)
	}
}

// compactLocked drops trailing empty slots, and — per spec.md's table
// capacity policy — reallocates a smaller backing array once capacity
// exceeds 20 and live length is less than half capacity.
func (t *Table) compactLocked() {
	last := 0
	for i := 1; i < len(t.slots); i++ {
		if t.slots[i] != nil {
			last = i
		}
	}
	t.slots = t.slots[:last+1]

	live := 0
	for _, s := range t.slots {
		if s != nil {
			live++
		}
	}
	if cap(t.slots) > 20 && live < cap(t.slots)/2 {
		compacted := make([]*jobtypes.Job, len(t.slots))
		copy(compacted, t.slots)
		t.slots = compacted
	}
}

// RemoveAll removes every job and resets both designations to 0.
//
// Implemented as null-every-slot-then-reset-designations (spec.md §9,
// "Open question — remove_all"), deliberately avoiding Remove's
// designation-rewrite/compaction interaction.
func (t *Table) RemoveAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots = nil
	t.active = nil
	t.current = 0
	t.previous = 0
}

// Get returns the job at slot n, or nil if n is out of range or empty.
func (t *Table) Get(n int) *jobtypes.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.liveLocked(n) {
		return nil
	}
	return t.slots[n]
}

// ByPGID returns the job whose tail (or any) process matches pgid, used
// by a terminal-control collaborator that indexes jobs by process
// group. Not part of spec.md's core contract; grounded in
// original_source/job.c's pgid-indexed lookups (see SPEC_FULL.md §3.1).
func (t *Table) ByPGID(pgid int) *jobtypes.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, job := range t.slots {
		if job == nil {
			continue
		}
		for _, p := range job.Processes {
			if p.Pid == pgid {
				return job
			}
		}
	}
	return nil
}

// FindProcess searches slot 0 (the active job, if any installed) and
// every numbered slot for the process record matching pid, as do_wait's
// algorithm requires ("search the table, including slot 0"). Returns
// (nil, nil) if no process matches.
func (t *Table) FindProcess(pid int) (*jobtypes.Job, *jobtypes.Process) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		if p := findInJob(t.active, pid); p != nil {
			return t.active, p
		}
	}
	for _, j := range t.slots {
		if j == nil {
			continue
		}
		if p := findInJob(j, pid); p != nil {
			return j, p
		}
	}
	return nil, nil
}

func findInJob(j *jobtypes.Job, pid int) *jobtypes.Process {
	for _, p := range j.Processes {
		if p.Pid == pid {
			return p
		}
	}
	return nil
}

// Jobs returns every live job in slot order (index 1..N), skipping
// empty slots. Used by jobcontrol.Core.Stats to count jobs by state.
func (t *Table) Jobs() []*jobtypes.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*jobtypes.Job, 0, len(t.slots))
	for _, j := range t.slots {
		if j != nil {
			out = append(out, j)
		}
	}
	return out
}

// LiveNumbers returns the slot numbers of every live job, ascending.
// Used by internal/status to iterate "print all" without exposing the
// backing slice.
func (t *Table) LiveNumbers() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]int, 0, len(t.slots))
	for i, j := range t.slots {
		if j != nil {
			out = append(out, i)
		}
	}
	return out
}

// Count returns the number of live jobs.
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, j := range t.slots {
		if j != nil {
			n++
		}
	}
	return n
}

// StoppedCount returns the number of live jobs whose aggregate state
// is STOPPED.
func (t *Table) StoppedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, j := range t.slots {
		if j != nil && j.State == jobtypes.JobStopped {
			n++
		}
	}
	return n
}

// AnyChanged reports whether any live job has its Changed flag set.
// Additive beyond spec.md's per-job field (see SPEC_FULL.md §8): lets a
// shell prompt hook skip a full jobs scan when nothing changed. Pure
// read, never clears the flag.
func (t *Table) AnyChanged() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, j := range t.slots {
		if j != nil && j.Changed {
			return true
		}
	}
	return false
}

// Current returns the current job number (0 if none).
func (t *Table) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Previous returns the previous job number (0 if none).
func (t *Table) Previous() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.previous
}

// FindNext selects a replacement designation distinct from excl:
// scan highest-to-lowest for the first STOPPED job != excl; if none,
// scan again for the first live job != excl; else return 0.
//
// Stopped jobs are preferred (the user most likely wants to resume one
// next); among equals, higher numbers are preferred (more recently
// created).
func (t *Table) FindNext(excl int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.findNextLocked(excl)
}

func (t *Table) findNextLocked(excl int) int {
	for i := len(t.slots) - 1; i >= 1; i-- {
		if t.slots[i] != nil && i != excl && t.slots[i].State == jobtypes.JobStopped {
			return i
		}
	}
	for i := len(t.slots) - 1; i >= 1; i-- {
		if t.slots[i] != nil && i != excl {
			return i
		}
	}
	return 0
}
