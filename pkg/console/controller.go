package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ruslano69/bakread-studio/pkg/audit"
	"github.com/ruslano69/bakread-studio/pkg/classify"
	"github.com/ruslano69/bakread-studio/pkg/command"
	"github.com/ruslano69/bakread-studio/pkg/config"
	"github.com/ruslano69/bakread-studio/pkg/dataset"
	"github.com/ruslano69/bakread-studio/pkg/export"
	"github.com/ruslano69/bakread-studio/pkg/runner"
)

// ErrJobActive means an engine operation is already running. One job at a
// time: the engine holds locks on its index cache and two concurrent runs
// against the same backup corrupt it.
var ErrJobActive = errors.New("a job is already running")

// EventKind tags events on the controller's stream.
type EventKind int

const (
	// EventLine is one line of engine output.
	EventLine EventKind = iota
	// EventDone closes out an operation with a summary.
	EventDone
)

// Event is delivered on Events() in the order things happened.
type Event struct {
	Kind    EventKind
	Line    runner.Line
	Summary string
	Result  runner.Result
}

// Options configure a controller.
type Options struct {
	// Engine is the path to the extraction engine binary.
	Engine string
	// Audit records operations. Nil means no auditing.
	Audit audit.Logger
	// PreviewRows caps preview extractions. Zero means DefaultPreviewRows.
	PreviewRows int
	// PreviewTimeout bounds a preview run. Zero means DefaultPreviewTimeout.
	PreviewTimeout time.Duration
	// EventBuffer sizes the event channel. Zero means DefaultEventBuffer.
	EventBuffer int
}

const (
	DefaultPreviewRows    = 200
	DefaultPreviewTimeout = 120 * time.Second
	DefaultEventBuffer    = 256
)

// Controller serializes engine operations and delivers their output, in
// order, to whoever drains Events(). Workers only send on the channel;
// all state shared with the owner lives behind the mutex.
type Controller struct {
	opts   Options
	events chan Event

	mu     sync.Mutex
	busy   bool
	job    *runner.Job
	cancel context.CancelFunc
}

// New builds a controller.
func New(opts Options) *Controller {
	if opts.Audit == nil {
		opts.Audit = audit.NullLogger{}
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultPreviewRows
	}
	if opts.PreviewTimeout <= 0 {
		opts.PreviewTimeout = DefaultPreviewTimeout
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	return &Controller{
		opts:   opts,
		events: make(chan Event, opts.EventBuffer),
	}
}

// Events is the ordered stream of output lines and completion summaries.
// The caller must drain it while operations run.
func (c *Controller) Events() <-chan Event { return c.events }

// Busy reports whether an operation is running.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// acquire claims the single job slot. job and cancel are whatever Cancel
// should act on; either may be nil.
func (c *Controller) acquire(job *runner.Job, cancel context.CancelFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrJobActive
	}
	c.busy = true
	c.job = job
	c.cancel = cancel
	return nil
}

// setJob points Cancel at the now-running job. The slot is already held.
func (c *Controller) setJob(job *runner.Job) {
	c.mu.Lock()
	c.job = job
	c.mu.Unlock()
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.job = nil
	c.cancel = nil
	c.mu.Unlock()
}

// Cancel stops the running operation, if any. Safe to call when idle.
func (c *Controller) Cancel() {
	c.mu.Lock()
	job := c.job
	cancel := c.cancel
	c.mu.Unlock()
	if job != nil {
		job.Cancel()
		return
	}
	if cancel != nil {
		cancel()
	}
}

// Run starts a full extraction and returns once the engine is launched.
// Output and the completion summary arrive on Events(). The returned job
// finishing is also observable through its Done channel.
func (c *Controller) Run(ctx context.Context, cfg *config.ExtractionConfig) (*runner.Job, error) {
	if err := cfg.Validate(true); err != nil {
		return nil, err
	}
	snapshot := cfg.Clone()

	// Claim the slot before spawning: a rejected request must never put a
	// second engine process on the backup, not even briefly.
	runCtx, cancel := context.WithCancel(ctx)
	if err := c.acquire(nil, cancel); err != nil {
		cancel()
		return nil, err
	}
	job, err := runner.Start(runCtx, runner.Spec{
		Args: command.Build(c.opts.Engine, snapshot),
		Env:  command.Env(snapshot.Connection),
	})
	if err != nil {
		cancel()
		c.release()
		return nil, err
	}
	c.setJob(job)

	started := time.Now()
	go func() {
		defer cancel()
		for line := range job.Lines() {
			c.events <- Event{Kind: EventLine, Line: line}
		}
		res := job.Result()
		c.auditRun(snapshot, res, time.Since(started))
		// Free the slot before the summary so whoever reacts to EventDone
		// can start the next operation immediately.
		c.release()
		c.events <- Event{Kind: EventDone, Summary: summarize(res), Result: res}
	}()
	return job, nil
}

// Preview extracts a capped slice of the table into a temporary CSV and
// loads it. The temporary file never outlives the call.
func (c *Controller) Preview(ctx context.Context, cfg *config.ExtractionConfig) (*dataset.Dataset, error) {
	if err := cfg.Validate(false); err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := c.acquire(nil, cancel); err != nil {
		return nil, err
	}
	defer c.release()

	tmp, err := os.CreateTemp("", "bakstudio-preview-*.csv")
	if err != nil {
		return nil, fmt.Errorf("create preview file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	spec := runner.Spec{
		Args: command.BuildPreview(c.opts.Engine, cfg, tmpPath, c.opts.PreviewRows),
		Env:  command.Env(cfg.Connection),
	}
	res, err := runner.RunCapture(runCtx, spec, c.opts.PreviewTimeout)
	if err != nil {
		c.auditPreview(cfg, err)
		if res != nil && res.Stderr != "" {
			return nil, fmt.Errorf("%w\n%s", err, res.Stderr)
		}
		return nil, err
	}

	ds, err := dataset.Load(tmpPath)
	if err != nil {
		c.auditPreview(cfg, err)
		return nil, err
	}
	c.auditPreview(cfg, nil)
	return ds, nil
}

// ListTables asks the engine which tables the backup holds. Diagnostic
// lines are filtered out; the rest is one table name per line.
func (c *Controller) ListTables(ctx context.Context, cfg *config.ExtractionConfig) ([]string, error) {
	if len(cfg.BackupFiles) == 0 {
		return nil, &config.ValidationError{Field: "backup_files", Message: "at least one backup file is required"}
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := c.acquire(nil, cancel); err != nil {
		cancel()
		return nil, err
	}
	defer c.release()
	job, err := runner.Start(runCtx, runner.Spec{
		Args: command.BuildListTables(c.opts.Engine, cfg),
		Env:  command.Env(cfg.Connection),
	})
	if err != nil {
		return nil, err
	}
	c.setJob(job)

	var tables []string
	for line := range job.Lines() {
		if line.Severity != classify.Info {
			continue
		}
		name := strings.TrimSpace(line.Text)
		if name == "" || strings.HasPrefix(name, "[") {
			continue
		}
		tables = append(tables, name)
	}
	res := job.Result()
	if res.State != runner.StateSucceeded {
		return nil, res.Err
	}
	return tables, nil
}

// Export runs the two-step pipeline, forwarding engine output and insert
// progress to Events().
func (c *Controller) Export(ctx context.Context, plan *export.Plan) ([]export.StepReport, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := c.acquire(nil, cancel); err != nil {
		return nil, err
	}
	defer c.release()

	pipe := &export.Pipeline{
		Engine: c.opts.Engine,
		OnLine: func(line runner.Line) {
			c.events <- Event{Kind: EventLine, Line: line}
		},
		OnProgress: func(inserted, total int) {
			c.events <- Event{Kind: EventLine, Line: runner.Line{
				Text: fmt.Sprintf("Inserted %d/%d rows...", inserted, total),
				At:   time.Now(),
			}}
		},
	}
	started := time.Now()
	reports, err := pipe.Run(runCtx, plan)
	c.auditExport(plan, reports, err, time.Since(started))

	summary := "Export completed successfully."
	if err != nil {
		var serr *export.StoreError
		if errors.As(err, &serr) {
			summary = fmt.Sprintf("Export failed after %d/%d rows.", serr.Committed, serr.Total)
		} else {
			summary = "Export failed: " + err.Error()
		}
	}
	c.events <- Event{Kind: EventDone, Summary: summary}
	return reports, err
}

// summarize renders a terminal state the way an operator reads it.
func summarize(res runner.Result) string {
	switch res.State {
	case runner.StateSucceeded:
		return "Extraction completed successfully."
	case runner.StateCancelled:
		return "Cancelled by user."
	default:
		return fmt.Sprintf("Process exited with code %d.", res.ExitCode)
	}
}

func (c *Controller) auditRun(cfg *config.ExtractionConfig, res runner.Result, took time.Duration) {
	status := audit.StatusSuccess
	switch res.State {
	case runner.StateFailed:
		status = audit.StatusFailure
	case runner.StateCancelled:
		status = audit.StatusCancelled
	}
	entry := audit.NewEntry(audit.OpRun, status).
		WithSource(strings.Join(cfg.BackupFiles, ";")).
		WithTable(cfg.Table).
		WithExitCode(res.ExitCode).
		WithDuration(took)
	c.opts.Audit.Log(context.Background(), entry)
}

func (c *Controller) auditPreview(cfg *config.ExtractionConfig, err error) {
	entry := audit.NewEntry(audit.OpPreview, audit.StatusSuccess).
		WithSource(strings.Join(cfg.BackupFiles, ";")).
		WithTable(cfg.Table).
		WithError(err)
	c.opts.Audit.Log(context.Background(), entry)
}

func (c *Controller) auditExport(plan *export.Plan, reports []export.StepReport, err error, took time.Duration) {
	status := audit.StatusSuccess
	var rows int64
	for _, r := range reports {
		if r.Name == "load" {
			rows = int64(r.Rows)
		}
	}
	if err != nil {
		status = audit.StatusFailure
		var serr *export.StoreError
		if errors.As(err, &serr) && serr.Committed > 0 {
			status = audit.StatusPartial
		}
	}
	entry := audit.NewEntry(audit.OpExport, status).
		WithSource(strings.Join(plan.Extraction.BackupFiles, ";")).
		WithTarget(plan.Destination.Server + "/" + plan.Destination.Database).
		WithTable(plan.TargetTable).
		WithRowsAffected(rows).
		WithDuration(took)
	if err != nil {
		entry.ErrorMessage = err.Error()
	}
	c.opts.Audit.Log(context.Background(), entry)
}
