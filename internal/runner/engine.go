package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ngenohkevin/taskrunner/internal/catalog"
	"github.com/ngenohkevin/taskrunner/internal/notify"
	"github.com/ngenohkevin/taskrunner/internal/runlog"
)

// DefaultMaxRetries is the retry bound when none is configured, giving
// three attempts per task.
const DefaultMaxRetries = 2

// Engine executes catalog tasks with retry and run-log bracketing.
// Tasks run strictly one at a time; the mutex serializes whole sessions
// so concurrent agent requests cannot interleave log writes.
type Engine struct {
	catalog    *catalog.Catalog
	log        *runlog.Logger
	maxRetries int
	console    io.Writer
	publisher  notify.Publisher
	mu         sync.Mutex
}

// New creates an engine. maxRetries bounds retries per task, so each
// task gets maxRetries+1 attempts.
func New(cat *catalog.Catalog, rlog *runlog.Logger, maxRetries int) *Engine {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Engine{
		catalog:    cat,
		log:        rlog,
		maxRetries: maxRetries,
		console:    io.Discard,
		publisher:  notify.Noop{},
	}
}

// SetConsole directs per-attempt START/retry notices to w. The CLI uses
// stdout; the agent leaves them discarded.
func (e *Engine) SetConsole(w io.Writer) {
	e.console = w
}

// SetPublisher installs an event publisher for task and session results
func (e *Engine) SetPublisher(p notify.Publisher) {
	e.publisher = p
}

// Run executes the request ("all" or a single task name) against the
// enabled list and returns the aggregate result. The returned error is
// non-nil only for request errors (ErrNotEnabled); task failures are
// aggregated into the result, never propagated.
func (e *Engine) Run(ctx context.Context, request string, enabledNames []string) (*RunResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := &RunResult{
		SessionID: uuid.NewString(),
		Request:   request,
		StartedAt: time.Now(),
	}

	e.log.SessionStart(res.StartedAt, request)

	var reqErr error

	if request == RequestAll {
		for _, name := range enabledNames {
			task, ok := e.catalog.Lookup(name)
			if !ok {
				// Resolution guarantees membership, but guard anyway:
				// an unexpected miss is a per-task failure, not an abort.
				e.log.Errorf(time.Now(), "task '%s' missing from catalog", name)
				res.HadFailure = true
				res.Results = append(res.Results, TaskOutcome{
					Name:  name,
					Error: "task missing from catalog",
				})
				continue
			}
			outcome := e.runWithRetry(ctx, task)
			if !outcome.Success {
				res.HadFailure = true
			}
			res.Results = append(res.Results, outcome)
			e.publishTask(res.SessionID, outcome)
		}
	} else {
		if !contains(enabledNames, request) {
			e.log.Errorf(time.Now(), "requested '%s' not enabled/defined", request)
			res.HadFailure = true
			reqErr = fmt.Errorf("task '%s' is not enabled or not defined (enabled tasks right now: %s): %w",
				request, enabledList(enabledNames), ErrNotEnabled)
		} else {
			task, ok := e.catalog.Lookup(request)
			if !ok {
				e.log.Errorf(time.Now(), "task '%s' missing from catalog", request)
				res.HadFailure = true
				reqErr = fmt.Errorf("task '%s' missing from catalog: %w", request, ErrNotEnabled)
			} else {
				outcome := e.runWithRetry(ctx, task)
				if !outcome.Success {
					res.HadFailure = true
				}
				res.Results = append(res.Results, outcome)
				e.publishTask(res.SessionID, outcome)
			}
		}
	}

	e.log.SessionEnd(res.HadFailure)
	e.publisher.PublishSession(notify.SessionEvent{
		SessionID:  res.SessionID,
		Request:    request,
		HadFailure: res.HadFailure,
		Tasks:      len(res.Results),
		Timestamp:  time.Now(),
	})

	return res, reqErr
}

// runWithRetry executes one task with bounded immediate retries, writing
// one log line per attempt outcome.
func (e *Engine) runWithRetry(ctx context.Context, task catalog.Task) TaskOutcome {
	outcome := TaskOutcome{Name: task.Name}

	for attempt := 0; ; attempt++ {
		started := time.Now()
		fmt.Fprintf(e.console, "[%s] START %s\n", runlog.Stamp(started), task.Name)

		err := runUnit(ctx, task.Run)
		elapsed := time.Since(started)

		outcome.Attempts = attempt + 1
		outcome.Duration = elapsed

		if err == nil {
			e.log.Success(task.Name, started, elapsed)
			outcome.Success = true
			return outcome
		}

		e.log.Failure(task.Name, started, elapsed, errorDetail(err))
		outcome.Error = err.Error()

		if attempt >= e.maxRetries {
			return outcome
		}

		now := time.Now()
		e.log.Retry(task.Name, now, attempt+1, e.maxRetries)
		fmt.Fprintf(e.console, "[%s] Retrying %s... (%d/%d)\n", runlog.Stamp(now), task.Name, attempt+1, e.maxRetries)
	}
}

func (e *Engine) publishTask(sessionID string, outcome TaskOutcome) {
	e.publisher.PublishTask(notify.TaskEvent{
		SessionID: sessionID,
		Name:      outcome.Name,
		Success:   outcome.Success,
		Attempts:  outcome.Attempts,
		Duration:  outcome.Duration.Seconds(),
		Error:     outcome.Error,
		Timestamp: time.Now(),
	})
}

// panicError carries a recovered panic value and its stack so the run
// log keeps the full failure detail.
type panicError struct {
	value interface{}
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// runUnit invokes a unit of work, converting panics into errors
func runUnit(ctx context.Context, run func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return run(ctx)
}

// errorDetail renders the full failure detail for the run log: the error
// chain, plus the stack for recovered panics.
func errorDetail(err error) string {
	var b strings.Builder
	b.WriteString(err.Error())

	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		b.WriteString("\ncaused by: ")
		b.WriteString(cause.Error())
	}

	var pe *panicError
	if errors.As(err, &pe) {
		b.WriteString("\n")
		b.Write(pe.stack)
	}

	return b.String()
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func enabledList(names []string) string {
	if len(names) == 0 {
		return "(none enabled)"
	}
	return strings.Join(names, ", ")
}
