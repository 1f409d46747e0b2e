package runner

import (
	"errors"
	"time"
)

// RequestAll selects every enabled task in config order
const RequestAll = "all"

// ErrNotEnabled is returned when a single requested task is not in the
// enabled list. No unit of work runs in that case.
var ErrNotEnabled = errors.New("task not enabled")

// TaskOutcome is the terminal result of one task after all its attempts
type TaskOutcome struct {
	Name     string        `json:"name"`
	Success  bool          `json:"success"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"` // last attempt
	Error    string        `json:"error,omitempty"`
}

// RunResult aggregates one session
type RunResult struct {
	SessionID  string        `json:"session_id"`
	Request    string        `json:"request"`
	StartedAt  time.Time     `json:"started_at"`
	HadFailure bool          `json:"had_failure"`
	Results    []TaskOutcome `json:"results"`
}

// ExitCode maps the aggregate failure state to a process exit status
func (r *RunResult) ExitCode() int {
	if r.HadFailure {
		return 1
	}
	return 0
}
