package export

import (
	"fmt"
	"strings"

	"github.com/ruslano69/bakread-studio/pkg/config"
)

// DefaultBatchSize is how many rows one transaction carries when the plan
// does not say otherwise.
const DefaultBatchSize = 1000

// Plan describes one export: which extraction feeds it and where the rows
// land.
type Plan struct {
	// Extraction is the snapshot for the engine run that produces the rows.
	Extraction *config.ExtractionConfig
	// Destination is the SQL Server receiving the rows.
	Destination Destination
	// TargetTable is the destination table, optionally schema-qualified.
	TargetTable string
	// BatchSize is rows per transaction. Zero means DefaultBatchSize.
	BatchSize int
	// CreateTable creates the target table when it does not exist.
	CreateTable bool
	// Truncate clears the target table before loading.
	Truncate bool
	// ArtifactPath, when set, keeps a zstd-compressed copy of the
	// intermediate CSV there instead of discarding it.
	ArtifactPath string
}

// Destination identifies the receiving server and database.
type Destination struct {
	Server      string
	Database    string
	WindowsAuth bool
	User        string
	Password    string
}

// Validate checks the plan before any work starts.
func (p *Plan) Validate() error {
	if p.Extraction == nil {
		return fmt.Errorf("export plan: no extraction config")
	}
	if err := p.Extraction.Validate(false); err != nil {
		return err
	}
	if strings.TrimSpace(p.Destination.Server) == "" {
		return fmt.Errorf("export plan: destination server is required")
	}
	if strings.TrimSpace(p.Destination.Database) == "" {
		return fmt.Errorf("export plan: destination database is required")
	}
	if !p.Destination.WindowsAuth && strings.TrimSpace(p.Destination.User) == "" {
		return fmt.Errorf("export plan: destination user is required unless windows auth is enabled")
	}
	if err := config.ValidateTableName(p.TargetTable); err != nil {
		return fmt.Errorf("export plan: target table: %w", err)
	}
	if p.BatchSize < 0 {
		return fmt.Errorf("export plan: batch size must not be negative")
	}
	return nil
}

func (p *Plan) batchSize() int {
	if p.BatchSize > 0 {
		return p.BatchSize
	}
	return DefaultBatchSize
}
