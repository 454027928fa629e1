package main

import "flag"

// Flags holds all command-line flags
type Flags struct {
	// Commands
	Run        *bool
	Preview    *bool
	ListTables *bool
	Export     *string
	DryRun     *bool

	// Extraction
	Bak       *string
	Table     *string
	Output    *string
	Format    *string
	Mode      *string
	Backupset *int
	Columns   *string
	Where     *string
	MaxRows   *int
	Delimiter *string

	// Restore mode connection
	TargetServer *string
	SQLUser      *string
	WindowsAuth  *bool
	SourceServer *string

	// TDE
	TDECertPFX     *string
	TDECertKey     *string
	BackupCertPFX  *string
	AllowKeyExport *bool

	// Export destination
	DestServer      *string
	DestDatabase    *string
	DestUser        *string
	DestWindowsAuth *bool
	Batch           *int
	CreateTable     *bool
	Truncate        *bool
	Artifact        *string

	// Preview post-processing
	SQL    *string
	Filter *string
	ToXLSX *string
	SaveTo *string

	// Engine behavior
	Verbose     *bool
	LogFile     *string
	Indexed     *bool
	CacheSize   *int
	IndexDir    *string
	ForceRescan *bool
	CleanupKeys *bool

	// Profiles and app config
	Config       *string
	Profile      *string
	SaveProfile  *string
	CreateConfig *bool

	// Misc
	Engine   *string
	AuditLog *string
	Version  *bool
	Help     *bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags() *Flags {
	f := &Flags{}

	// Commands
	f.Run = flag.Bool("run", false, "Run a full extraction")
	f.Preview = flag.Bool("preview", false, "Extract a capped preview and print it")
	f.ListTables = flag.Bool("list-tables", false, "List tables in the backup")
	f.Export = flag.String("export", "", "Export extracted rows into SQL Server (target table name)")
	f.DryRun = flag.Bool("dry-run", false, "Print the engine command line without running it")

	// Extraction
	f.Bak = flag.String("bak", "", "Backup file(s), comma-separated in media set order")
	f.Table = flag.String("table", "", "Table to extract (schema.table)")
	f.Output = flag.String("out", "", "Output file path")
	f.Format = flag.String("format", "csv", "Output format: csv, parquet, jsonl")
	f.Mode = flag.String("mode", "auto", "Extraction mode: auto, direct, restore")
	f.Backupset = flag.Int("backupset", 0, "Backup set number inside the media set")
	f.Columns = flag.String("columns", "", "Comma-separated column projection")
	f.Where = flag.String("where", "", "Engine-side row filter expression")
	f.MaxRows = flag.Int("max-rows", 0, "Stop after this many rows (0 = all)")
	f.Delimiter = flag.String("delimiter", ",", "CSV delimiter character")

	// Restore mode connection
	f.TargetServer = flag.String("target-server", "", "SQL Server for restore mode")
	f.SQLUser = flag.String("sql-user", "", "SQL login for restore mode (password via BAKREAD_SQL_PASSWORD)")
	f.WindowsAuth = flag.Bool("windows-auth", false, "Use Windows authentication in restore mode")
	f.SourceServer = flag.String("source-server", "", "Server the backup originated from (key lookup)")

	// TDE
	f.TDECertPFX = flag.String("tde-cert-pfx", "", "TDE certificate PFX file")
	f.TDECertKey = flag.String("tde-cert-key", "", "TDE certificate private key file")
	f.BackupCertPFX = flag.String("backup-cert-pfx", "", "Backup encryption certificate PFX file")
	f.AllowKeyExport = flag.Bool("allow-key-export", false, "Allow exporting keys to disk during restore")

	// Export destination
	f.DestServer = flag.String("dest-server", "", "Destination SQL Server for --export")
	f.DestDatabase = flag.String("dest-db", "", "Destination database for --export")
	f.DestUser = flag.String("dest-user", "", "Destination SQL login (password via BAKSTUDIO_DEST_PASSWORD)")
	f.DestWindowsAuth = flag.Bool("dest-windows-auth", false, "Windows authentication for the destination")
	f.Batch = flag.Int("batch", 0, "Rows per insert transaction (default: 1000)")
	f.CreateTable = flag.Bool("create-table", false, "Create the target table when it does not exist")
	f.Truncate = flag.Bool("truncate", false, "Truncate the target table before loading")
	f.Artifact = flag.String("artifact", "", "Keep a zstd-compressed copy of the intermediate CSV here")

	// Preview post-processing
	f.SQL = flag.String("sql", "", "SQL to run over the preview (SELECT only, table name: preview)")
	f.Filter = flag.String("filter", "", "Substring filter applied to preview rows")
	f.ToXLSX = flag.String("to-xlsx", "", "Save the preview as an XLSX workbook")
	f.SaveTo = flag.String("save-to", "", "Save the preview as a CSV file")

	// Engine behavior
	f.Verbose = flag.Bool("verbose", false, "Verbose engine diagnostics")
	f.LogFile = flag.String("log", "", "Engine log file")
	f.Indexed = flag.Bool("indexed", false, "Use the page index cache")
	f.CacheSize = flag.Int("cache-size", 0, "Page cache size in MB (default: 256)")
	f.IndexDir = flag.String("index-dir", "", "Directory for the page index cache")
	f.ForceRescan = flag.Bool("force-rescan", false, "Rebuild the page index cache")
	f.CleanupKeys = flag.Bool("cleanup-keys", false, "Remove restored keys after extraction")

	// Profiles and app config
	f.Config = flag.String("config", "", "Application config file (default: bakstudio.yaml if present)")
	f.Profile = flag.String("profile", "", "Load extraction settings from a profile file")
	f.SaveProfile = flag.String("save-profile", "", "Save the current extraction settings to a profile file")
	f.CreateConfig = flag.Bool("create-config", false, "Write a bakstudio.yaml template and exit")

	// Misc
	f.Engine = flag.String("engine", "", "Path to the extraction engine binary")
	f.AuditLog = flag.String("audit-log", "", "Append audit records to this JSONL file")
	f.Version = flag.Bool("version", false, "Show version")
	f.Help = flag.Bool("help", false, "Show help")

	flag.Parse()
	return f
}
