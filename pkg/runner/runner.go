package runner

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ruslano69/bakread-studio/pkg/classify"
)

const (
	// defaultLineBuffer bounds the line channel. A slow consumer applies
	// backpressure to the engine through the pipe instead of growing memory.
	defaultLineBuffer = 256

	// maxLineBytes caps a single scanned line. The engine occasionally
	// dumps long diagnostic rows.
	maxLineBytes = 1 << 20

	// killGrace is how long a cancelled engine gets to exit on its own
	// before it is killed.
	killGrace = 5 * time.Second
)

// Spec describes one engine launch.
type Spec struct {
	// Args is the full argument vector, Args[0] being the binary path.
	Args []string
	// Env replaces the process environment when non-nil.
	Env []string
	// Dir is the working directory; empty means inherit.
	Dir string
	// LineBuffer overrides the output channel capacity when positive.
	LineBuffer int
}

// Start launches the engine and returns the running job. Stdout and stderr
// are merged into a single pipe so diagnostics land between the data lines
// they refer to, in engine order. A failure to spawn returns *LaunchError
// and no job.
func Start(ctx context.Context, spec Spec) (*Job, error) {
	if len(spec.Args) == 0 {
		return nil, &LaunchError{Err: errors.New("empty argument vector")}
	}
	cmd := exec.Command(spec.Args[0], spec.Args[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &LaunchError{Path: spec.Args[0], Err: err}
	}
	cmd.Stderr = cmd.Stdout

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Path: spec.Args[0], Err: err}
	}

	buffer := spec.LineBuffer
	if buffer <= 0 {
		buffer = defaultLineBuffer
	}

	var cancelled atomic.Bool
	job := &Job{
		lines: make(chan Line, buffer),
		done:  make(chan struct{}),
	}
	job.cancel = func() {
		cancelled.Store(true)
		terminate(cmd.Process)
	}

	go func() {
		select {
		case <-ctx.Done():
			job.Cancel()
		case <-job.done:
		}
	}()

	go func() {
		sc := bufio.NewScanner(pipe)
		sc.Buffer(make([]byte, 64*1024), maxLineBytes)
		for sc.Scan() {
			text := sc.Text()
			job.lines <- Line{Text: text, Severity: classify.Classify(text), At: time.Now()}
		}
		close(job.lines)

		err := cmd.Wait()
		finished := time.Now()

		res := Result{Started: started, Finished: finished}
		switch {
		case cancelled.Load():
			res.State = StateCancelled
			res.ExitCode = exitCode(err)
		case err == nil:
			res.State = StateSucceeded
		default:
			res.State = StateFailed
			res.ExitCode = exitCode(err)
			res.Err = &ProcessError{ExitCode: res.ExitCode}
		}
		job.finish(res)
	}()

	return job, nil
}

// terminate asks the process to stop, escalating to a kill if it lingers.
func terminate(p *os.Process) {
	if p == nil {
		return
	}
	if runtime.GOOS == "windows" {
		p.Kill()
		return
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		p.Kill()
		return
	}
	go func() {
		time.Sleep(killGrace)
		p.Kill()
	}()
}

func exitCode(err error) int {
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}
