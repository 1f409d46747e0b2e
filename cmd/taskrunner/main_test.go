package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngenohkevin/taskrunner/internal/runlog"
)

// setTestEnv points the runner at a scratch config and log location
// and returns the run log path.
func setTestEnv(t *testing.T, tasksFile string) string {
	t.Helper()
	logDir := filepath.Join(t.TempDir(), "logs")
	t.Setenv("TASKS_FILE", tasksFile)
	t.Setenv("LOG_DIR", logDir)
	return filepath.Join(logDir, runlog.FileName)
}

func TestRunUsageError(t *testing.T) {
	logPath := setTestEnv(t, "tasks.json")

	assert.Equal(t, 1, run([]string{"taskrunner"}))
	assert.Equal(t, 1, run([]string{"taskrunner", "all", "extra"}))

	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunMissingConfigExitsBeforeLogging(t *testing.T) {
	logPath := setTestEnv(t, filepath.Join(t.TempDir(), "no-such-tasks.json"))

	assert.Equal(t, 1, run([]string{"taskrunner", "all"}))

	// The fatal config error must leave the run log untouched
	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunInvalidConfigExitsBeforeLogging(t *testing.T) {
	tasksFile := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(tasksFile, []byte("{not json"), 0644))
	logPath := setTestEnv(t, tasksFile)

	assert.Equal(t, 1, run([]string{"taskrunner", "all"}))

	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunAllWithNothingEnabledSucceeds(t *testing.T) {
	tasksFile := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(tasksFile, []byte(`{
		"tasks": [
			{"name": "daily_backup", "enabled": false}
		]
	}`), 0644))
	logPath := setTestEnv(t, tasksFile)

	assert.Equal(t, 0, run([]string{"taskrunner", "all"}))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "=== Session ")
	assert.Contains(t, string(data), "Requested: all")
	assert.Contains(t, string(data), "=== End Session (fail=false) ===")
}
