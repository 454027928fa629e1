package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError reports a configuration problem found before launching
// the engine. Field names the offending configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// tableNamePattern accepts optional schema-qualified names: Sales.Orders,
// dbo.[My Table] style brackets are handled by stripping before matching.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ValidateTableName checks a possibly schema-qualified table name. Bracket
// quoting is tolerated; anything else outside identifier characters is
// rejected so the name can be embedded into generated SQL safely.
func ValidateTableName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("table", "table name is empty")
	}
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return invalid("table", "expected at most schema.table, got %q", name)
	}
	for _, p := range parts {
		p = strings.TrimSuffix(strings.TrimPrefix(p, "["), "]")
		if !tableNamePattern.MatchString(p) {
			return invalid("table", "invalid identifier %q", p)
		}
	}
	return nil
}

// Validate checks the snapshot before a launch. requireOutput is false for
// operations that do not write a file (preview manages its own temp output,
// list-tables has none).
func (c *ExtractionConfig) Validate(requireOutput bool) error {
	if len(c.BackupFiles) == 0 {
		return invalid("backup_files", "at least one backup file is required")
	}
	for _, f := range c.BackupFiles {
		if strings.TrimSpace(f) == "" {
			return invalid("backup_files", "empty backup file path")
		}
	}
	if err := ValidateTableName(c.Table); err != nil {
		return err
	}
	if requireOutput && strings.TrimSpace(c.Output) == "" {
		return invalid("output", "output path is required")
	}
	if c.Format != "" && !c.Format.Valid() {
		return invalid("format", "unknown format %q", c.Format)
	}
	if c.Mode != "" && !c.Mode.Valid() {
		return invalid("mode", "unknown mode %q", c.Mode)
	}
	if c.Mode == ModeRestore {
		if c.Connection == nil || strings.TrimSpace(c.Connection.Server) == "" {
			return invalid("connection", "restore mode requires a target server")
		}
		if !c.Connection.WindowsAuth && strings.TrimSpace(c.Connection.User) == "" {
			return invalid("connection", "restore mode requires a user unless windows auth is enabled")
		}
	}
	if c.Filters.MaxRows < 0 {
		return invalid("filters.max_rows", "must not be negative")
	}
	if c.Filters.Backupset < 0 {
		return invalid("filters.backupset", "must not be negative")
	}
	if d := c.Filters.Delimiter; d != "" && len(d) != 1 {
		return invalid("filters.delimiter", "must be a single character, got %q", d)
	}
	if c.Options.CacheSizeMB < 0 {
		return invalid("options.cache_size_mb", "must not be negative")
	}
	return nil
}
