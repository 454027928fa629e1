package console

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ruslano69/bakread-studio/pkg/config"
	"github.com/ruslano69/bakread-studio/pkg/runner"
)

// writeEngine installs a shell script standing in for the engine binary.
func writeEngine(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine is a shell script")
	}
	path := filepath.Join(t.TempDir(), "bakread")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func extractionConfig() *config.ExtractionConfig {
	return &config.ExtractionConfig{
		BackupFiles: []string{"x.bak"},
		Table:       "dbo.Orders",
		Output:      "/tmp/out.csv",
	}
}

func drainUntilDone(t *testing.T, c *Controller) []Event {
	t.Helper()
	var events []Event
	deadline := time.After(15 * time.Second)
	for {
		select {
		case ev := <-c.Events():
			events = append(events, ev)
			if ev.Kind == EventDone {
				return events
			}
		case <-deadline:
			t.Fatalf("no EventDone after %d events", len(events))
		}
	}
}

func TestRun_StreamsLinesThenSummary(t *testing.T) {
	engine := writeEngine(t, `echo "reading pages"; echo "[WARN ] torn page 12"; echo "done"`)
	c := New(Options{Engine: engine})

	if _, err := c.Run(context.Background(), extractionConfig()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	events := drainUntilDone(t, c)

	if len(events) != 4 {
		t.Fatalf("got %d events, want 3 lines + done: %+v", len(events), events)
	}
	if events[1].Line.Text != "[WARN ] torn page 12" {
		t.Errorf("lines out of order: %+v", events)
	}
	last := events[3]
	if last.Summary != "Extraction completed successfully." {
		t.Errorf("summary = %q", last.Summary)
	}
	if last.Result.State != runner.StateSucceeded {
		t.Errorf("result = %+v", last.Result)
	}
}

func TestRun_FailureSummaryCarriesExitCode(t *testing.T) {
	engine := writeEngine(t, `echo "boom"; exit 4`)
	c := New(Options{Engine: engine})
	if _, err := c.Run(context.Background(), extractionConfig()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	events := drainUntilDone(t, c)
	last := events[len(events)-1]
	if last.Summary != "Process exited with code 4." {
		t.Errorf("summary = %q", last.Summary)
	}
}

func TestRun_SecondJobRejected(t *testing.T) {
	engine := writeEngine(t, `echo go; exec sleep 10`)
	c := New(Options{Engine: engine})

	job, err := c.Run(context.Background(), extractionConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Wait for the first line so the job is definitely live.
	<-c.Events()

	if _, err := c.Run(context.Background(), extractionConfig()); !errors.Is(err, ErrJobActive) {
		t.Errorf("second Run = %v, want ErrJobActive", err)
	}

	c.Cancel()
	drainUntilDone(t, c)
	if job.State() != runner.StateCancelled {
		t.Errorf("state = %v, want cancelled", job.State())
	}
	if c.Busy() {
		t.Error("controller still busy after job end")
	}

	// Slot free again.
	engine2 := writeEngine(t, `echo ok`)
	c.opts.Engine = engine2
	if _, err := c.Run(context.Background(), extractionConfig()); err != nil {
		t.Errorf("Run after completion: %v", err)
	}
	drainUntilDone(t, c)
}

func TestRun_RejectedRunNeverSpawnsEngine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake engine is a shell script")
	}
	spawnLog := filepath.Join(t.TempDir(), "spawns.log")
	engine := writeEngine(t, `echo spawned >> `+spawnLog+`
echo go
exec sleep 10`)
	c := New(Options{Engine: engine})

	if _, err := c.Run(context.Background(), extractionConfig()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	<-c.Events()

	for i := 0; i < 20; i++ {
		if _, err := c.Run(context.Background(), extractionConfig()); !errors.Is(err, ErrJobActive) {
			t.Fatalf("Run %d = %v, want ErrJobActive", i, err)
		}
	}
	c.Cancel()
	drainUntilDone(t, c)

	data, err := os.ReadFile(spawnLog)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "spawned"); got != 1 {
		t.Errorf("engine spawned %d times, want 1", got)
	}
}

func TestRun_ValidationErrorBeforeLaunch(t *testing.T) {
	c := New(Options{Engine: "/nonexistent"})
	cfg := extractionConfig()
	cfg.Table = ""
	var ve *config.ValidationError
	if _, err := c.Run(context.Background(), cfg); !errors.As(err, &ve) {
		t.Errorf("err = %v, want ValidationError", err)
	}
	if c.Busy() {
		t.Error("failed validation must not claim the job slot")
	}
}

func TestRun_LaunchErrorLeavesSlotFree(t *testing.T) {
	c := New(Options{Engine: "/nonexistent/bakread"})
	var le *runner.LaunchError
	if _, err := c.Run(context.Background(), extractionConfig()); !errors.As(err, &le) {
		t.Errorf("err = %v, want LaunchError", err)
	}
	if c.Busy() {
		t.Error("failed launch must not claim the job slot")
	}
}

func TestPreview_LoadsCappedDataset(t *testing.T) {
	// The fake engine honors --out and --max-rows like the real one.
	engine := writeEngine(t, `
out=""
max=""
while [ $# -gt 0 ]; do
  case "$1" in
    --out) out="$2"; shift 2;;
    --max-rows) max="$2"; shift 2;;
    *) shift;;
  esac
done
{
  echo "Id,Name"
  i=1
  while [ "$i" -le "$max" ]; do
    echo "$i,user$i"
    i=$((i+1))
  done
} > "$out"
`)
	c := New(Options{Engine: engine, PreviewRows: 5})
	ds, err := c.Preview(context.Background(), extractionConfig())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(ds.Rows) != 5 {
		t.Errorf("rows = %d, want 5", len(ds.Rows))
	}
	if c.Busy() {
		t.Error("controller busy after preview returned")
	}
}

func TestPreview_SurfacesEngineDiagnostics(t *testing.T) {
	engine := writeEngine(t, `echo "[FATAL] unreadable backup header" 1>&2; exit 1`)
	c := New(Options{Engine: engine})
	_, err := c.Preview(context.Background(), extractionConfig())
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *runner.ProcessError
	if !errors.As(err, &pe) {
		t.Errorf("err = %v, want ProcessError in chain", err)
	}
	if got := err.Error(); !strings.Contains(got, "unreadable backup header") {
		t.Errorf("error does not carry diagnostics: %q", got)
	}
}

func TestListTables(t *testing.T) {
	engine := writeEngine(t, `echo "[INFO ] scanning catalog" ; echo "dbo.Orders"; echo "dbo.Customers"; echo "[WARN ] skipped system table"`)
	c := New(Options{Engine: engine})
	tables, err := c.ListTables(context.Background(), &config.ExtractionConfig{BackupFiles: []string{"x.bak"}})
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(tables) != 2 || tables[0] != "dbo.Orders" || tables[1] != "dbo.Customers" {
		t.Errorf("tables = %v", tables)
	}
}
