// Package config loads the YAML configuration for the job-control core
// (internal/cli.Config's loadConfig pattern, generalized from a
// distributed job queue's worker/WAL/snapshot settings to the
// job-control core's own knobs).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration structure. Maps config file
// fields through YAML tags.
type Config struct {
	JobControl struct {
		// StrictPOSIX suppresses redundant status fields on
		// continuation lines of verbose job-status output.
		StrictPOSIX bool `yaml:"strict_posix"`
		// TermSigOffset is TERMSIGOFFSET: the integer offset added to
		// a terminating or stop signal number to form an exit status.
		TermSigOffset int `yaml:"termsig_offset"`
		// SuccessExitCode is the exit code decoded as "no error".
		SuccessExitCode int `yaml:"success_exit_code"`
		// EnableContinued is loaded and reported by the status
		// command only. The reaper does not read it: it always
		// requests WCONTINUED and drops the flag once the kernel
		// rejects it.
		EnableContinued bool `yaml:"enable_continued"`
	} `yaml:"job_control"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`
}

// Default returns the configuration used when no file is supplied:
// conventional POSIX TERMSIGOFFSET of 128, continue-notifications
// attempted, metrics on.
func Default() *Config {
	cfg := &Config{}
	cfg.JobControl.TermSigOffset = 128
	cfg.JobControl.SuccessExitCode = 0
	cfg.JobControl.EnableContinued = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9090
	return cfg
}

// Load reads and parses a YAML config file, starting from Default() so
// any field the file omits keeps its default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return cfg, nil
}
