package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaver-shell/jobctl/internal/config"
	"github.com/beaver-shell/jobctl/internal/jobcontrol"
	"github.com/beaver-shell/jobctl/internal/jobtypes"
)

func TestBuildCLI(t *testing.T) {
	cmd := BuildCLI()

	assert.NotNil(t, cmd, "BuildCLI should return a non-nil command")
	assert.Equal(t, "jobctl", cmd.Use, "Root command should be 'jobctl'")
	assert.Equal(t, "1.0.0", cmd.Version, "Version should be 1.0.0")

	commands := cmd.Commands()
	assert.Len(t, commands, 2, "Should have 2 subcommands")

	commandNames := make(map[string]bool)
	for _, c := range commands {
		commandNames[c.Use] = true
	}

	assert.True(t, commandNames["run"], "Should have 'run' command")
	assert.True(t, commandNames["status"], "Should have 'status' command")

	configFlag := cmd.PersistentFlags().Lookup("config")
	assert.NotNil(t, configFlag, "Should have --config flag")
	assert.Equal(t, "configs/default.yaml", configFlag.DefValue, "Default config path should be configs/default.yaml")
}

func TestBuildRunCommand(t *testing.T) {
	cmd := buildRunCommand()

	assert.NotNil(t, cmd, "buildRunCommand should return a non-nil command")
	assert.Equal(t, "run", cmd.Use, "Command should be 'run'")
	assert.Contains(t, cmd.Short, "session", "Short description should mention 'session'")
	assert.NotNil(t, cmd.RunE, "RunE function should be set")
}

func TestBuildStatusCommand(t *testing.T) {
	cmd := buildStatusCommand()

	assert.NotNil(t, cmd, "buildStatusCommand should return a non-nil command")
	assert.Equal(t, "status", cmd.Use, "Command should be 'status'")
	assert.NotNil(t, cmd.RunE, "RunE function should be set")
}

func TestLoadConfigOrDefault_MissingFile(t *testing.T) {
	cfg := loadConfigOrDefault("/nonexistent/config.yaml")

	require.NotNil(t, cfg, "should fall back to defaults")
	assert.Equal(t, 128, cfg.JobControl.TermSigOffset)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadConfigOrDefault_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	configContent := `
job_control:
  strict_posix: true
  termsig_offset: 256
  success_exit_code: 0
  enable_continued: false

metrics:
  enabled: false
  port: 8080
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err, "failed to write test config file")

	cfg := loadConfigOrDefault(configPath)
	require.NotNil(t, cfg)

	assert.True(t, cfg.JobControl.StrictPOSIX)
	assert.Equal(t, 256, cfg.JobControl.TermSigOffset)
	assert.False(t, cfg.JobControl.EnableContinued)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 8080, cfg.Metrics.Port)
}

func TestJobArg_ExplicitNumber(t *testing.T) {
	core := jobcontrol.New(config.Default())
	defer core.Close()

	n, err := jobArg(core, []string{"fg", "%3"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = jobArg(core, []string{"fg", "3"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestJobArg_InvalidNumber(t *testing.T) {
	core := jobcontrol.New(config.Default())
	defer core.Close()

	_, err := jobArg(core, []string{"fg", "abc"})
	assert.Error(t, err)
}

func TestJobArg_DefaultsToCurrent(t *testing.T) {
	core := jobcontrol.New(config.Default())
	defer core.Close()

	_, err := jobArg(core, []string{"fg"})
	assert.Error(t, err, "no current job yet should be an error")

	job := &jobtypes.Job{Processes: []*jobtypes.Process{{Pid: 123, State: jobtypes.ProcessRunning, Name: "sleep"}}}
	require.NoError(t, core.InstallActive(job))
	n := core.Promote(true)

	got, err := jobArg(core, []string{"fg"})
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestShowStatus(t *testing.T) {
	err := showStatus()
	assert.NoError(t, err, "showStatus should not return an error")
}

func TestDispatch_DisownWithoutCurrentJobErrors(t *testing.T) {
	// A bare "disown" falls back to the current job; with an empty
	// table there is none, so dispatch must return an error.
	core := jobcontrol.New(config.Default())
	defer core.Close()

	err := dispatch(nil, core, nil, "disown")
	assert.Error(t, err, "disown with no current job and no args should error")
}
