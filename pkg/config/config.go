package config

// Format is the engine output format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatJSONL   Format = "jsonl"
)

// Valid reports whether the format is one the engine accepts.
func (f Format) Valid() bool {
	switch f {
	case FormatCSV, FormatParquet, FormatJSONL:
		return true
	}
	return false
}

// Mode is the engine execution mode.
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeDirect  Mode = "direct"
	ModeRestore Mode = "restore"
)

// Valid reports whether the mode is one the engine accepts.
func (m Mode) Valid() bool {
	switch m {
	case ModeAuto, ModeDirect, ModeRestore:
		return true
	}
	return false
}

// ConnectionTarget describes the SQL Server the engine connects to in
// restore mode. The password never appears in the argument vector; it is
// injected through the environment overlay.
type ConnectionTarget struct {
	Server      string `yaml:"server"`
	WindowsAuth bool   `yaml:"windows_auth"`
	User        string `yaml:"user,omitempty"`
	Password    string `yaml:"password,omitempty"`
}

// TDEMaterial holds certificate paths and key passwords for encrypted
// backups. These values are engine arguments, not connection credentials.
type TDEMaterial struct {
	CertPFX           string `yaml:"cert_pfx,omitempty"`
	CertKey           string `yaml:"cert_key,omitempty"`
	CertPassword      string `yaml:"cert_password,omitempty"`
	BackupCertPFX     string `yaml:"backup_cert_pfx,omitempty"`
	MasterKeyPassword string `yaml:"master_key_password,omitempty"`
	AllowKeyExport    bool   `yaml:"allow_key_export,omitempty"`
}

// Filters narrow the extraction.
type Filters struct {
	Backupset      int    `yaml:"backupset,omitempty"`
	Columns        string `yaml:"columns,omitempty"`
	Where          string `yaml:"where,omitempty"`
	MaxRows        int    `yaml:"max_rows,omitempty"`
	Delimiter      string `yaml:"delimiter,omitempty"`
	AllocationHint string `yaml:"allocation_hint,omitempty"`
}

// Options are engine behavior switches.
type Options struct {
	Verbose     bool   `yaml:"verbose,omitempty"`
	LogFile     string `yaml:"log_file,omitempty"`
	CleanupKeys bool   `yaml:"cleanup_keys,omitempty"`
	Indexed     bool   `yaml:"indexed,omitempty"`
	CacheSizeMB int    `yaml:"cache_size_mb,omitempty"`
	IndexDir    string `yaml:"index_dir,omitempty"`
	ForceRescan bool   `yaml:"force_rescan,omitempty"`
}

// DefaultCacheSizeMB is the engine's built-in page cache size; the builder
// omits --cache-size when the configured value matches it.
const DefaultCacheSizeMB = 256

// ExtractionConfig is an immutable snapshot of everything one engine
// invocation needs. The UI takes a fresh snapshot on every change instead of
// sharing mutable state with the command preview.
type ExtractionConfig struct {
	BackupFiles  []string          `yaml:"backup_files"`
	Table        string            `yaml:"table"`
	Output       string            `yaml:"output,omitempty"`
	Format       Format            `yaml:"format,omitempty"`
	Mode         Mode              `yaml:"mode,omitempty"`
	Filters      Filters           `yaml:"filters,omitempty"`
	TDE          TDEMaterial       `yaml:"tde,omitempty"`
	Connection   *ConnectionTarget `yaml:"connection,omitempty"`
	SourceServer string            `yaml:"source_server,omitempty"`
	Options      Options           `yaml:"options,omitempty"`
}

// Clone returns a deep copy. Builders that override output/format/row-cap
// for preview and export work on a clone so the caller's snapshot stays
// untouched.
func (c *ExtractionConfig) Clone() *ExtractionConfig {
	out := *c
	out.BackupFiles = append([]string(nil), c.BackupFiles...)
	if c.Connection != nil {
		conn := *c.Connection
		out.Connection = &conn
	}
	return &out
}
