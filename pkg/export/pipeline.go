package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ruslano69/bakread-studio/pkg/command"
	"github.com/ruslano69/bakread-studio/pkg/dataset"
	"github.com/ruslano69/bakread-studio/pkg/processors"
	"github.com/ruslano69/bakread-studio/pkg/runner"
)

// StepStatus is the outcome of one pipeline step.
type StepStatus int

const (
	StepOK StepStatus = iota
	StepWarning
	StepFailed
)

func (s StepStatus) String() string {
	switch s {
	case StepOK:
		return "ok"
	case StepWarning:
		return "warning"
	case StepFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// StepReport records one pipeline step for the operator.
type StepReport struct {
	Name     string
	Status   StepStatus
	Detail   string
	Rows     int
	Checksum string
	Took     time.Duration
}

// Pipeline runs a two-step export: extract the table to a temporary CSV
// with the engine, then bulk-load the CSV into the destination. Chunks
// commit independently, so a mid-load failure keeps the rows already
// written and the reports say how many.
type Pipeline struct {
	// Engine is the path to the extraction engine binary.
	Engine string
	// OpenStore connects to the destination. Defaults to OpenMSSQL.
	OpenStore func(ctx context.Context, dst Destination) (Store, error)
	// OnLine receives engine output during extraction, in order.
	OnLine func(runner.Line)
	// OnProgress receives inserted/total after every committed chunk.
	OnProgress func(inserted, total int)
}

// Run executes the plan and returns one report per step. The returned
// error is the first fatal one; reports cover everything that ran,
// including warn-level steps that did not stop the export.
func (p *Pipeline) Run(ctx context.Context, plan *Plan) ([]StepReport, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "bakstudio-export-*.csv")
	if err != nil {
		return nil, fmt.Errorf("create temp csv: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	var reports []StepReport
	step := func(r StepReport) {
		reports = append(reports, r)
	}

	// Step 1: extract.
	started := time.Now()
	if err := p.extract(ctx, plan, tmpPath); err != nil {
		step(StepReport{Name: "extract", Status: StepFailed, Detail: err.Error(), Took: time.Since(started)})
		return reports, err
	}
	sum, sumErr := processors.FileChecksum(tmpPath)
	if sumErr != nil {
		sum = ""
	}
	step(StepReport{Name: "extract", Status: StepOK, Checksum: sum, Took: time.Since(started)})

	// Step 2: parse the intermediate CSV.
	started = time.Now()
	ds, err := dataset.Load(tmpPath)
	if err != nil {
		step(StepReport{Name: "parse", Status: StepFailed, Detail: err.Error(), Took: time.Since(started)})
		return reports, err
	}
	step(StepReport{Name: "parse", Status: StepOK, Rows: len(ds.Rows), Took: time.Since(started)})

	// Step 3: load into the destination.
	loadReports, err := p.load(ctx, plan, ds)
	reports = append(reports, loadReports...)
	if err != nil {
		return reports, err
	}

	if plan.ArtifactPath != "" {
		started = time.Now()
		r := StepReport{Name: "artifact", Status: StepOK, Took: 0}
		if err := os.MkdirAll(filepath.Dir(plan.ArtifactPath), 0o755); err != nil {
			r.Status, r.Detail = StepWarning, err.Error()
		} else if err := processors.CompressFile(tmpPath, plan.ArtifactPath); err != nil {
			r.Status, r.Detail = StepWarning, err.Error()
		} else {
			r.Detail = plan.ArtifactPath
		}
		r.Took = time.Since(started)
		step(r)
	}

	return reports, nil
}

// extract runs the engine, streaming its output to OnLine.
func (p *Pipeline) extract(ctx context.Context, plan *Plan, tmpPath string) error {
	cfg := plan.Extraction.Clone()
	cfg.Output = tmpPath
	cfg.Format = "csv"
	cfg.Filters.Delimiter = ""

	job, err := runner.Start(ctx, runner.Spec{
		Args: command.Build(p.Engine, cfg),
		Env:  command.Env(cfg.Connection),
	})
	if err != nil {
		return err
	}
	for line := range job.Lines() {
		if p.OnLine != nil {
			p.OnLine(line)
		}
	}
	res := job.Result()
	switch res.State {
	case runner.StateSucceeded:
		return nil
	case runner.StateCancelled:
		return context.Canceled
	default:
		return res.Err
	}
}

// load optionally creates the table and truncates it, then inserts in
// chunks. Table preparation problems are warnings; the insert decides for
// real.
func (p *Pipeline) load(ctx context.Context, plan *Plan, ds *dataset.Dataset) ([]StepReport, error) {
	open := p.OpenStore
	if open == nil {
		open = OpenMSSQL
	}

	var reports []StepReport
	started := time.Now()
	store, err := open(ctx, plan.Destination)
	if err != nil {
		reports = append(reports, StepReport{Name: "connect", Status: StepFailed, Detail: err.Error(), Took: time.Since(started)})
		return reports, err
	}
	defer store.Close()
	reports = append(reports, StepReport{Name: "connect", Status: StepOK, Took: time.Since(started)})

	if plan.CreateTable {
		started = time.Now()
		if err := store.EnsureTable(ctx, plan.TargetTable, ds.Columns); err != nil {
			reports = append(reports, StepReport{Name: "ensure_table", Status: StepWarning, Detail: err.Error(), Took: time.Since(started)})
		} else {
			reports = append(reports, StepReport{Name: "ensure_table", Status: StepOK, Took: time.Since(started)})
		}
	}

	if plan.Truncate {
		started = time.Now()
		if err := store.Truncate(ctx, plan.TargetTable); err != nil {
			reports = append(reports, StepReport{Name: "truncate", Status: StepWarning, Detail: err.Error(), Took: time.Since(started)})
		} else {
			reports = append(reports, StepReport{Name: "truncate", Status: StepOK, Took: time.Since(started)})
		}
	}

	started = time.Now()
	total := len(ds.Rows)
	batch := plan.batchSize()
	committed := 0
	for committed < total {
		if err := ctx.Err(); err != nil {
			serr := &StoreError{Committed: committed, Total: total, Err: err}
			reports = append(reports, StepReport{Name: "load", Status: StepFailed, Detail: serr.Error(), Rows: committed, Took: time.Since(started)})
			return reports, serr
		}
		end := committed + batch
		if end > total {
			end = total
		}
		if err := store.InsertChunk(ctx, plan.TargetTable, ds.Columns, ds.Rows[committed:end]); err != nil {
			serr := &StoreError{Committed: committed, Total: total, Err: err}
			reports = append(reports, StepReport{Name: "load", Status: StepFailed, Detail: serr.Error(), Rows: committed, Took: time.Since(started)})
			return reports, serr
		}
		committed = end
		if p.OnProgress != nil {
			p.OnProgress(committed, total)
		}
	}
	reports = append(reports, StepReport{Name: "load", Status: StepOK, Rows: committed, Took: time.Since(started)})
	return reports, nil
}
