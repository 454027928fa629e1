package audit

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"
)

// Appender persists audit entries.
type Appender interface {
	Append(ctx context.Context, entry *Entry) error
	Flush() error
	Close() error
}

// FileAppender writes entries as JSON lines to an append-only file.
type FileAppender struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

// NewFileAppender opens (or creates) the audit file for appending.
func NewFileAppender(path string) (*FileAppender, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	return &FileAppender{file: f, w: bufio.NewWriter(f)}, nil
}

func (a *FileAppender) Append(_ context.Context, entry *Entry) error {
	data, err := entry.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.w.Write(data); err != nil {
		return err
	}
	return a.w.WriteByte('\n')
}

func (a *FileAppender) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.w.Flush()
}

func (a *FileAppender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.w.Flush(); err != nil {
		a.file.Close()
		return err
	}
	return a.file.Close()
}
