// ============================================================================
// Pipeline Launcher
// ============================================================================
//
// Package: internal/shellexec
// Purpose: launches a pipeline of processes, wires their stdio, puts
// each in its own process group, and installs/promotes the resulting
// job into internal/jobcontrol. This is the minimal "executor" spec.md
// §1 names as out-of-scope (it constructs process groups and launches
// pipelines) — provided here only so cmd/jobctl has real jobs to
// exercise the core against; process-group/terminal-assignment policy
// itself stays out of scope per spec.md's Non-goals.
//
// ============================================================================

package shellexec

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/beaver-shell/jobctl/internal/jobcontrol"
	"github.com/beaver-shell/jobctl/internal/jobtypes"
)

// ErrEmptyPipeline is returned when Launch is given no commands.
var ErrEmptyPipeline = errors.New("shellexec: empty pipeline")

// Launcher starts pipelines and registers them with a Core.
type Launcher struct {
	core *jobcontrol.Core
}

// New returns a Launcher that installs launched jobs into core.
func New(core *jobcontrol.Core) *Launcher {
	return &Launcher{core: core}
}

// Launch starts the given pipeline (a sequence of argv slices, piped
// stdout-to-stdin in order), installs it as the active job, and
// promotes it into the table. background controls the current-job
// hint passed to Promote: a foreground launch (background == false)
// makes the new job current.
//
// Each process runs in its own process group (Setpgid), matching the
// convention real shells use so a stopped pipeline's signal doesn't
// also reach the shell itself.
func (l *Launcher) Launch(ctx context.Context, pipeline [][]string, background bool) (int, error) {
	if len(pipeline) == 0 {
		return 0, ErrEmptyPipeline
	}

	cmds := make([]*exec.Cmd, len(pipeline))
	closers := make([]*os.File, 0, len(pipeline))

	var stdin *os.File = os.Stdin
	for i, argv := range pipeline {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		cmd.Stdin = stdin
		cmd.Stderr = os.Stderr

		if i == len(pipeline)-1 {
			cmd.Stdout = os.Stdout
		} else {
			r, w, err := os.Pipe()
			if err != nil {
				closeAll(closers)
				return 0, err
			}
			cmd.Stdout = w
			closers = append(closers, w)
			stdin = r
			closers = append(closers, r)
		}
		cmds[i] = cmd
	}

	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			closeAll(closers)
			killStarted(cmds[:i])
			return 0, err
		}
	}
	closeAll(closers)

	procs := make([]*jobtypes.Process, len(cmds))
	for i, cmd := range cmds {
		procs[i] = &jobtypes.Process{
			Pid:   cmd.Process.Pid,
			State: jobtypes.ProcessRunning,
			Name:  strings.Join(pipeline[i], " "),
		}
	}

	job := &jobtypes.Job{
		Processes: procs,
		State:     jobtypes.JobRunning,
		Loop:      false,
	}
	if err := l.core.InstallActive(job); err != nil {
		return 0, err
	}
	return l.core.Promote(!background), nil
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

func killStarted(cmds []*exec.Cmd) {
	for _, cmd := range cmds {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	}
}
