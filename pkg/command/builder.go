package command

import (
	"strconv"
	"strings"

	"github.com/ruslano69/bakread-studio/pkg/config"
)

// Build produces the full argument vector for one engine invocation from a
// configuration snapshot. Pure function: same snapshot, same vector.
// Defaults the engine already assumes are omitted (auto mode, comma
// delimiter, 256 MB cache) so the preview line stays readable. Credentials
// never enter the vector; see Env.
func Build(engine string, c *config.ExtractionConfig) []string {
	args := []string{engine}
	for _, bak := range c.BackupFiles {
		args = append(args, "--bak", bak)
	}
	args = append(args, "--table", c.Table)
	if c.Output != "" {
		args = append(args, "--out", c.Output)
	}
	if c.Format != "" {
		args = append(args, "--format", string(c.Format))
	}
	if c.Mode != "" && c.Mode != config.ModeAuto {
		args = append(args, "--mode", string(c.Mode))
	}

	if c.Filters.Backupset > 0 {
		args = append(args, "--backupset", strconv.Itoa(c.Filters.Backupset))
	}
	if c.Filters.Columns != "" {
		args = append(args, "--columns", c.Filters.Columns)
	}
	if c.Filters.Where != "" {
		args = append(args, "--where", c.Filters.Where)
	}
	if c.Filters.MaxRows > 0 {
		args = append(args, "--max-rows", strconv.Itoa(c.Filters.MaxRows))
	}
	if d := c.Filters.Delimiter; d != "" && d != "," {
		args = append(args, "--delimiter", d)
	}
	if c.Filters.AllocationHint != "" {
		args = append(args, "--allocation-hint", c.Filters.AllocationHint)
	}

	if c.TDE.CertPFX != "" {
		args = append(args, "--tde-cert-pfx", c.TDE.CertPFX)
	}
	if c.TDE.CertKey != "" {
		args = append(args, "--tde-cert-key", c.TDE.CertKey)
	}
	if c.TDE.CertPassword != "" {
		args = append(args, "--tde-cert-password", c.TDE.CertPassword)
	}
	if c.TDE.BackupCertPFX != "" {
		args = append(args, "--backup-cert-pfx", c.TDE.BackupCertPFX)
	}
	if c.TDE.MasterKeyPassword != "" {
		args = append(args, "--master-key-password", c.TDE.MasterKeyPassword)
	}
	if c.TDE.AllowKeyExport {
		args = append(args, "--allow-key-export-to-disk")
	}

	if c.SourceServer != "" {
		args = append(args, "--source-server", c.SourceServer)
	}
	if c.Connection != nil && c.Connection.Server != "" {
		args = append(args, "--target-server", c.Connection.Server)
		if !c.Connection.WindowsAuth && c.Connection.User != "" {
			args = append(args, "--sql-user", c.Connection.User)
		}
	}

	if c.Options.Verbose {
		args = append(args, "--verbose")
	}
	if c.Options.LogFile != "" {
		args = append(args, "--log", c.Options.LogFile)
	}
	if c.Options.CleanupKeys {
		args = append(args, "--cleanup-keys")
	}
	if c.Options.Indexed {
		args = append(args, "--indexed")
	}
	if c.Options.CacheSizeMB > 0 && c.Options.CacheSizeMB != config.DefaultCacheSizeMB {
		args = append(args, "--cache-size", strconv.Itoa(c.Options.CacheSizeMB))
	}
	if c.Options.IndexDir != "" {
		args = append(args, "--index-dir", c.Options.IndexDir)
	}
	if c.Options.ForceRescan {
		args = append(args, "--force-rescan")
	}
	return args
}

// BuildPreview clones the snapshot and redirects it to a temporary CSV with
// a row cap, leaving the caller's configuration untouched.
func BuildPreview(engine string, c *config.ExtractionConfig, tmpOut string, maxRows int) []string {
	p := c.Clone()
	p.Output = tmpOut
	p.Format = config.FormatCSV
	p.Filters.MaxRows = maxRows
	p.Filters.Delimiter = ""
	return Build(engine, p)
}

// BuildListTables asks the engine to enumerate tables in the backup instead
// of extracting one.
func BuildListTables(engine string, c *config.ExtractionConfig) []string {
	args := []string{engine}
	for _, bak := range c.BackupFiles {
		args = append(args, "--bak", bak)
	}
	args = append(args, "--list-tables")
	if c.Filters.Backupset > 0 {
		args = append(args, "--backupset", strconv.Itoa(c.Filters.Backupset))
	}
	if c.Mode != "" && c.Mode != config.ModeAuto {
		args = append(args, "--mode", string(c.Mode))
	}
	return args
}

// Preview renders an argument vector as a single shell-style line for
// display. Arguments with spaces or quotes are double-quoted. Display only;
// the vector is what actually launches.
func Preview(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"") {
			parts[i] = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}
