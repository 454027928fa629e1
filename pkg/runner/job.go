package runner

import (
	"fmt"
	"sync"
	"time"

	"github.com/ruslano69/bakread-studio/pkg/classify"
)

// State is the lifecycle stage of a job.
type State int

const (
	StateRunning State = iota
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether the job has finished.
func (s State) Terminal() bool { return s != StateRunning }

// Line is one line of merged engine output in arrival order.
type Line struct {
	Text     string
	Severity classify.Severity
	At       time.Time
}

// Result summarizes a finished job.
type Result struct {
	State    State
	ExitCode int
	Err      error
	Started  time.Time
	Finished time.Time
}

// Duration is the wall time the engine ran.
func (r Result) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// LaunchError means the engine process never started; there is no job and
// no exit code.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ProcessError means the engine ran and exited non-zero.
type ProcessError struct {
	ExitCode int
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("engine exited with code %d", e.ExitCode)
}

// TimeoutError means the job was killed after exceeding its deadline.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("engine did not finish within %s", e.Limit)
}

// Job is one running engine invocation. Lines arrive on Lines() in the
// order the engine produced them; the channel closes when output ends.
// State transitions to exactly one terminal value.
type Job struct {
	mu     sync.Mutex
	state  State
	result Result

	lines chan Line
	done  chan struct{}

	cancel     func()
	cancelOnce sync.Once
}

// Lines is the ordered output stream. Closed after the last line.
func (j *Job) Lines() <-chan Line { return j.lines }

// Done is closed once the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} { return j.done }

// State returns the current lifecycle stage.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Result blocks until the job finishes and returns its summary.
func (j *Job) Result() Result {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Cancel asks the engine to stop. Safe to call repeatedly and after the
// job has finished.
func (j *Job) Cancel() {
	j.cancelOnce.Do(j.cancel)
}

// finish records the terminal state exactly once. Later calls lose.
func (j *Job) finish(r Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state.Terminal() {
		return
	}
	j.state = r.State
	j.result = r
	close(j.done)
}
