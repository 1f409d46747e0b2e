package runlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileName is the runner log file name inside the log directory
const FileName = "runner.log"

// stampLayout is the timestamp format used in log lines
const stampLayout = "2006-01-02 15:04:05"

// Stamp formats a timestamp for log lines
func Stamp(t time.Time) string {
	return t.Format(stampLayout)
}

// Logger appends session and attempt records to the run log. It is an
// explicitly constructed object so tests can inject an in-memory sink.
// All writes go through one mutex; the log file only ever grows.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	path   string
}

// Open creates the log directory if needed and opens the run log for
// appending.
func Open(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	return &Logger{w: f, closer: f, path: path}, nil
}

// New creates a logger writing to an arbitrary sink
func New(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Path returns the log file path, or "" for injected sinks
func (l *Logger) Path() string {
	return l.path
}

// Close closes the underlying file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) append(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}

// SessionStart writes the session opening marker and the request line
func (l *Logger) SessionStart(at time.Time, request string) {
	l.append("\n=== Session %s ===\n", Stamp(at))
	l.append("Requested: %s\n", request)
}

// SessionEnd writes the session closing marker with the aggregate
// failure state
func (l *Logger) SessionEnd(failed bool) {
	l.append("=== End Session (fail=%t) ===\n", failed)
}

// Success records a successful attempt. The timestamp is the attempt's
// start time.
func (l *Logger) Success(task string, started time.Time, elapsed time.Duration) {
	l.append("[%s] SUCCESS %s in %.3fs\n", Stamp(started), task, elapsed.Seconds())
}

// Failure records a failed attempt with its full failure detail
func (l *Logger) Failure(task string, started time.Time, elapsed time.Duration, detail string) {
	l.append("[%s] FAIL %s in %.3fs\n%s\n", Stamp(started), task, elapsed.Seconds(), detail)
}

// Retry records a retry notice after a failed attempt
func (l *Logger) Retry(task string, at time.Time, attempt, maxRetries int) {
	l.append("[%s] Retrying %s... (%d/%d)\n", Stamp(at), task, attempt, maxRetries)
}

// Errorf records a coordinator-level error line
func (l *Logger) Errorf(at time.Time, format string, args ...interface{}) {
	l.append("[%s] ERROR %s\n", Stamp(at), fmt.Sprintf(format, args...))
}
