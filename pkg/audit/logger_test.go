package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileAppender_JSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	app, err := NewFileAppender(path)
	if err != nil {
		t.Fatalf("NewFileAppender: %v", err)
	}

	logger := NewLogger(nil, app)
	ctx := context.Background()

	e1 := NewEntry(OpRun, StatusSuccess).
		WithTable("dbo.Orders").
		WithRowsAffected(1200).
		WithDuration(3 * time.Second)
	e2 := NewEntry(OpExport, StatusPartial).
		WithTable("dbo.Orders").
		WithRowsAffected(300).
		WithError(errors.New("connection reset"))

	if err := logger.Log(ctx, e1); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := logger.Log(ctx, e2); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Operation != OpRun || entries[0].RowsAffected != 1200 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Status != StatusFailure {
		t.Errorf("WithError must flip status to failure, got %s", entries[1].Status)
	}
	if entries[1].ErrorMessage != "connection reset" {
		t.Errorf("error message = %q", entries[1].ErrorMessage)
	}
}

func TestLogger_BrokenAppenderReportsButContinues(t *testing.T) {
	var reported error
	logger := NewLogger(func(err error) { reported = err }, failingAppender{})
	err := logger.Log(context.Background(), NewEntry(OpPreview, StatusSuccess))
	if err == nil {
		t.Error("Log must return the appender error")
	}
	if reported == nil {
		t.Error("OnError callback not invoked")
	}
}

type failingAppender struct{}

func (failingAppender) Append(context.Context, *Entry) error { return errors.New("disk full") }
func (failingAppender) Flush() error                         { return nil }
func (failingAppender) Close() error                         { return nil }
