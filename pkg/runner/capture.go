package runner

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// stderrCap bounds how much diagnostic output RunCapture retains. Enough
// for the engine's error tail without letting a chatty run eat memory.
const stderrCap = 64 * 1024

// limitedBuffer keeps the first cap bytes written and drops the rest.
type limitedBuffer struct {
	buf       []byte
	cap       int
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.cap - len(b.buf); room > 0 {
		if len(p) > room {
			b.buf = append(b.buf, p[:room]...)
			b.truncated = true
		} else {
			b.buf = append(b.buf, p...)
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	s := string(b.buf)
	if b.truncated {
		s += "\n[diagnostics truncated]"
	}
	return strings.TrimSpace(s)
}

// CaptureResult is the outcome of a bounded, non-streaming run.
type CaptureResult struct {
	ExitCode int
	Stderr   string
	Took     time.Duration
}

// RunCapture executes the engine to completion under a deadline, keeping
// stderr separate so a failed run can report the engine's own diagnostics.
// Used for previews and other short operations whose data output goes to a
// file rather than the stream. Returns *TimeoutError when the deadline
// kills the run and *ProcessError on a non-zero exit.
func RunCapture(ctx context.Context, spec Spec, timeout time.Duration) (*CaptureResult, error) {
	if len(spec.Args) == 0 {
		return nil, &LaunchError{Err: errors.New("empty argument vector")}
	}
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, spec.Args[0], spec.Args[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	stderr := &limitedBuffer{cap: stderrCap}
	cmd.Stderr = stderr

	started := time.Now()
	err := cmd.Run()
	res := &CaptureResult{
		ExitCode: exitCode(err),
		Stderr:   stderr.String(),
		Took:     time.Since(started),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return res, &TimeoutError{Limit: timeout}
	}
	if err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return res, &ProcessError{ExitCode: res.ExitCode}
		}
		return res, &LaunchError{Path: spec.Args[0], Err: err}
	}
	return res, nil
}
