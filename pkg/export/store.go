package export

import (
	"context"
	"fmt"
)

// Store receives exported rows. The pipeline talks to this interface so
// the chunking logic can be tested without a server.
type Store interface {
	// EnsureTable creates the target table for the given columns when it
	// does not exist yet.
	EnsureTable(ctx context.Context, table string, columns []string) error
	// Truncate removes all rows from the target table.
	Truncate(ctx context.Context, table string) error
	// InsertChunk writes one batch of rows in a single transaction.
	InsertChunk(ctx context.Context, table string, columns []string, rows [][]string) error
	Close() error
}

// StoreError reports a failed bulk load. Committed is how many rows made
// it in before the failure; chunks commit independently, so earlier chunks
// stay.
type StoreError struct {
	Committed int
	Total     int
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("bulk load failed after %d/%d rows: %v", e.Committed, e.Total, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
