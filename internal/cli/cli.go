// ============================================================================
// jobctl CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Provides a user-friendly command line interface, based on the
// Cobra framework, around the job-control core.
//
// Command Structure:
//   jobctl                          # Root command
//   ├── run                         # Start an interactive job-control session
//   │   └── --config, -c           # Specify config file
//   ├── status                      # View effective configuration
//   ├── --version                   # Display version information
//   └── --help                      # Display help information
//
// Configuration Management:
//   Uses YAML format config file (default: configs/default.yaml):
//   - job_control: strict-POSIX flag, TERMSIGOFFSET, continue-support
//   - metrics: Prometheus monitoring configuration
//
// run Command:
//   Starts an interactive session reading commands from stdin:
//     <cmd> [| <cmd> ...] [&]       any other line launches a pipeline, foreground or background
//     jobs                          list live jobs (verbose status)
//     fg <n>                        wait for job n to finish or stop
//     bg <n>                        continue a stopped job in the background
//     wait <n>                      block until job n is DONE
//     disown <n>                    remove job n from the table unconditionally
//     exit                          leave the session
//
//   Examples:
//     ./jobctl run
//     ./jobctl run -c custom-config.yaml
//
// Metrics Service:
//   If enabled in config, starts an HTTP service in a separate goroutine:
//   - Default port: 9090
//   - Path: /metrics
//
// ============================================================================

package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/beaver-shell/jobctl/internal/config"
	"github.com/beaver-shell/jobctl/internal/jobcontrol"
	"github.com/beaver-shell/jobctl/internal/jobtypes"
	"github.com/beaver-shell/jobctl/internal/metrics"
	"github.com/beaver-shell/jobctl/internal/shellexec"
)

var log = slog.Default()

var configFile string

// BuildCLI builds the jobctl command tree.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jobctl",
		Short: "jobctl: an interactive POSIX-style shell job-control core",
		Long: `jobctl exposes a job-control core implementing:
- job numbering and current/previous designation
- non-blocking reaping of child-status changes
- blocking wait-for-job
- POSIX-style status rendering`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "config file path")

	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}

func buildRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive job-control session",
		Long:  "Read commands from stdin: jobs, fg, bg, wait, disown, exit; any other line is launched as a pipeline.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(loadConfigOrDefault(configFile))
		},
	}
	return cmd
}

func loadConfigOrDefault(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Debug("using default config", "reason", err)
		return config.Default()
	}
	return cfg
}

func runSession(cfg *config.Config) error {
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
		go func() {
			if err := metrics.StartServer(cfg.Metrics.Port); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	core := jobcontrol.New(cfg)
	defer core.Close()
	launcher := shellexec.New(core)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stdout, "jobctl> ")
	for scanner.Scan() {
		core.DoWait()
		drainReapEvents(core, collector)
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if err := dispatch(ctx, core, launcher, line); err != nil {
				fmt.Fprintf(os.Stderr, "jobctl: %v\n", err)
			}
		}
		if collector != nil {
			live, running, stopped := core.Stats()
			collector.UpdateJobStats(live, running, stopped)
		}
		fmt.Fprint(os.Stdout, "jobctl> ")
	}
	return scanner.Err()
}

// drainReapEvents counts how many process-state changes DoWait just
// folded and records them, without blocking if nothing is pending.
func drainReapEvents(core *jobcontrol.Core, collector *metrics.Collector) {
	if collector == nil {
		return
	}
	n := 0
	for {
		select {
		case <-core.Events():
			n++
		default:
			if n > 0 {
				collector.RecordReap(n)
			}
			return
		}
	}
}

func dispatch(ctx context.Context, core *jobcontrol.Core, launcher *shellexec.Launcher, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "exit", "quit":
		os.Exit(0)
		return nil
	case "jobs":
		core.PrintJobStatus(jobcontrol.AllJobs, false, true, os.Stdout)
		return nil
	case "fg":
		n, err := jobArg(core, fields)
		if err != nil {
			return err
		}
		if err := core.WaitForJob(ctx, n, true); err != nil {
			return err
		}
		core.PrintJobStatus(n, false, false, os.Stdout)
		return nil
	case "bg":
		n, err := jobArg(core, fields)
		if err != nil {
			return err
		}
		return continueJob(core, n)
	case "wait":
		n, err := jobArg(core, fields)
		if err != nil {
			return err
		}
		if err := core.WaitForJob(ctx, n, false); err != nil {
			return err
		}
		code, err := core.ExitStatusOf(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "exit status %d\n", code)
		return nil
	case "disown":
		n, err := jobArg(core, fields)
		if err != nil {
			return err
		}
		core.Disown(n)
		return nil
	default:
		return runPipeline(launcher, ctx, fields)
	}
}

// jobArg parses an optional job-number argument, defaulting to the
// current job when none is given.
func jobArg(core *jobcontrol.Core, fields []string) (int, error) {
	if len(fields) < 2 {
		if job := core.Get(core.Table().Current()); job != nil {
			return core.Table().Current(), nil
		}
		return 0, fmt.Errorf("no current job")
	}
	spec := strings.TrimPrefix(fields[1], "%")
	n, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid job number %q", fields[1])
	}
	return n, nil
}

func continueJob(core *jobcontrol.Core, n int) error {
	job := core.Get(n)
	if job == nil {
		return fmt.Errorf("no such job %d", n)
	}
	if len(job.Processes) == 0 {
		return fmt.Errorf("job %d has no processes", n)
	}
	// shellexec puts every stage in its own process group, so each
	// unfinished stage's group is continued separately.
	for _, p := range job.Processes {
		if p.State == jobtypes.ProcessDone {
			continue
		}
		if err := syscall.Kill(-p.Pid, syscall.SIGCONT); err != nil {
			return fmt.Errorf("continue job %d: %w", n, err)
		}
	}
	core.DoWait()
	return nil
}

func runPipeline(launcher *shellexec.Launcher, ctx context.Context, fields []string) error {
	background := false
	if fields[len(fields)-1] == "&" {
		background = true
		fields = fields[:len(fields)-1]
	}

	var pipeline [][]string
	var stage []string
	for _, f := range fields {
		if f == "|" {
			pipeline = append(pipeline, stage)
			stage = nil
			continue
		}
		stage = append(stage, f)
	}
	if len(stage) > 0 {
		pipeline = append(pipeline, stage)
	}

	n, err := launcher.Launch(ctx, pipeline, background)
	if err != nil {
		return err
	}
	if background {
		fmt.Fprintf(os.Stdout, "[%d] started\n", n)
	}
	return nil
}

func buildStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus()
		},
	}
	return cmd
}

func showStatus() error {
	cfg := loadConfigOrDefault(configFile)

	fmt.Println("jobctl configuration")
	fmt.Printf("  config file:        %s\n", configFile)
	fmt.Printf("  strict_posix:       %t\n", cfg.JobControl.StrictPOSIX)
	fmt.Printf("  termsig_offset:     %d\n", cfg.JobControl.TermSigOffset)
	fmt.Printf("  success_exit_code:  %d\n", cfg.JobControl.SuccessExitCode)
	fmt.Printf("  enable_continued:   %t\n", cfg.JobControl.EnableContinued)
	if cfg.Metrics.Enabled {
		fmt.Printf("  metrics:            enabled on :%d/metrics\n", cfg.Metrics.Port)
	} else {
		fmt.Println("  metrics:            disabled")
	}
	return nil
}
