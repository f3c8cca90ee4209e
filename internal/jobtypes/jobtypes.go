// Package jobtypes defines the core domain models for the job-control
// core: process and job records, their states, and the Assertf
// precondition helper.
package jobtypes

import "fmt"

// ProcessState is the lifecycle state of a single child process.
type ProcessState int

const (
	// ProcessRunning is the initial state of every forked process.
	ProcessRunning ProcessState = iota
	// ProcessStopped means the process was suspended by a stop signal.
	ProcessStopped
	// ProcessDone means the process exited or was killed by a signal.
	// Terminal.
	ProcessDone
)

func (s ProcessState) String() string {
	switch s {
	case ProcessRunning:
		return "running"
	case ProcessStopped:
		return "stopped"
	case ProcessDone:
		return "done"
	default:
		return fmt.Sprintf("ProcessState(%d)", int(s))
	}
}

// JobState is the aggregate lifecycle state of a pipeline, derived from
// its processes by the precedence RUNNING > STOPPED > DONE.
type JobState int

const (
	JobRunning JobState = iota
	JobStopped
	JobDone
)

func (s JobState) String() string {
	switch s {
	case JobRunning:
		return "running"
	case JobStopped:
		return "stopped"
	case JobDone:
		return "done"
	default:
		return fmt.Sprintf("JobState(%d)", int(s))
	}
}

// Process is one child process within a pipeline.
//
// A Pid of 0 marks a process that was never actually forked (e.g. a
// builtin run in the foreground); its Status field is then already a
// synthetic exit code rather than a raw wait(2) status word.
type Process struct {
	Pid    int
	State  ProcessState
	Status int // raw OS status word, or (if Pid == 0) a synthetic exit code
	Name   string
}

// Job is a pipeline: an ordered, non-empty sequence of processes
// sharing a numeric identity for user reference.
type Job struct {
	Processes []*Process
	State     JobState
	Changed   bool
	Loop      bool // pipeline is loop-shaped; affects display (see status.NameOf)
}

// Tail returns the last process in the pipeline, whose status defines
// the job's exit status once the job is DONE.
func (j *Job) Tail() *Process {
	if len(j.Processes) == 0 {
		return nil
	}
	return j.Processes[len(j.Processes)-1]
}

// Recompute recalculates the job's aggregate state from its processes
// by the precedence RUNNING > STOPPED > DONE, and updates Changed if
// the aggregate state differs from the previous one.
func (j *Job) Recompute() {
	next := JobDone
	anyStopped := false
	for _, p := range j.Processes {
		switch p.State {
		case ProcessRunning:
			next = JobRunning
		case ProcessStopped:
			anyStopped = true
		}
	}
	if next != JobRunning && anyStopped {
		next = JobStopped
	}
	if next != j.State {
		j.State = next
		j.Changed = true
	}
}

// Assertf panics with a formatted message. It marks a programmer-visible
// precondition violation (spec.md §7): these are bugs, not runtime
// errors, so they are never returned through an error channel.
func Assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("jobtypes: assertion failed: "+format, args...))
	}
}
