package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation is the kind of work being recorded.
type Operation string

const (
	OpRun        Operation = "run"
	OpPreview    Operation = "preview"
	OpExport     Operation = "export"
	OpListTables Operation = "list_tables"
	OpCancel     Operation = "cancel"
)

// Status is how the operation ended.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailure   Status = "failure"
	StatusPartial   Status = "partial"
	StatusCancelled Status = "cancelled"
)

// Entry is one audit record.
type Entry struct {
	ID           string                 `json:"id"`
	Timestamp    time.Time              `json:"timestamp"`
	Operation    Operation              `json:"operation"`
	Status       Status                 `json:"status"`
	Source       string                 `json:"source,omitempty"`
	Target       string                 `json:"target,omitempty"`
	Table        string                 `json:"table,omitempty"`
	RowsAffected int64                  `json:"rows_affected,omitempty"`
	ExitCode     int                    `json:"exit_code,omitempty"`
	Duration     time.Duration          `json:"duration,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// NewEntry creates an entry stamped with the current time.
func NewEntry(operation Operation, status Status) *Entry {
	return &Entry{
		ID:        generateID(),
		Timestamp: time.Now(),
		Operation: operation,
		Status:    status,
	}
}

func (e *Entry) WithSource(source string) *Entry {
	e.Source = source
	return e
}

func (e *Entry) WithTarget(target string) *Entry {
	e.Target = target
	return e
}

func (e *Entry) WithTable(table string) *Entry {
	e.Table = table
	return e
}

func (e *Entry) WithRowsAffected(count int64) *Entry {
	e.RowsAffected = count
	return e
}

func (e *Entry) WithExitCode(code int) *Entry {
	e.ExitCode = code
	return e
}

func (e *Entry) WithDuration(d time.Duration) *Entry {
	e.Duration = d
	return e
}

// WithError records the error text and flips the status to failure.
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.ErrorMessage = err.Error()
		e.Status = StatusFailure
	}
	return e
}

func (e *Entry) WithMetadata(key string, value interface{}) *Entry {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ToJSON renders the entry as one JSON object.
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Entry) String() string {
	return fmt.Sprintf("[%s] %s %s (table=%s, rows=%d, duration=%v)",
		e.Timestamp.Format(time.RFC3339), e.Operation, e.Status,
		e.Table, e.RowsAffected, e.Duration)
}

func generateID() string {
	return fmt.Sprintf("audit-%d", time.Now().UnixNano())
}
