package audit

import (
	"context"
	"fmt"
	"sync"
)

// Logger records operations for later review.
type Logger interface {
	Log(ctx context.Context, entry *Entry) error
	Flush() error
	Close() error
}

// FileLogger fans entries out to its appenders. Appender failures go to
// OnError; one broken sink must not abort an extraction.
type FileLogger struct {
	mu        sync.RWMutex
	appenders []Appender
	onError   func(error)
}

// NewLogger builds a logger over the given appenders.
func NewLogger(onError func(error), appenders ...Appender) *FileLogger {
	return &FileLogger{appenders: appenders, onError: onError}
}

func (l *FileLogger) Log(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("audit: nil entry")
	}
	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var first error
	for _, a := range appenders {
		if err := a.Append(ctx, entry); err != nil {
			if first == nil {
				first = err
			}
			if l.onError != nil {
				l.onError(err)
			}
		}
	}
	return first
}

func (l *FileLogger) Flush() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var first error
	for _, a := range l.appenders {
		if err := a.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	for _, a := range l.appenders {
		if err := a.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.appenders = nil
	return first
}

// NullLogger discards everything. Handy default when auditing is off.
type NullLogger struct{}

func (NullLogger) Log(context.Context, *Entry) error { return nil }
func (NullLogger) Flush() error                      { return nil }
func (NullLogger) Close() error                      { return nil }
