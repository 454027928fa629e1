package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/ruslano69/bakread-studio/pkg/audit"
	"github.com/ruslano69/bakread-studio/pkg/command"
	"github.com/ruslano69/bakread-studio/pkg/config"
	"github.com/ruslano69/bakread-studio/pkg/console"
	"github.com/ruslano69/bakread-studio/pkg/dataset"
	"github.com/ruslano69/bakread-studio/pkg/export"
	"github.com/ruslano69/bakread-studio/pkg/runner"
)

func main() {
	ctx := context.Background()

	// Parse flags
	flags := ParseFlags()

	// Handle version
	if *flags.Version {
		PrintVersion()
		os.Exit(0)
	}

	// Handle help
	if *flags.Help {
		PrintHelp()
		os.Exit(0)
	}

	// Handle config creation
	if *flags.CreateConfig {
		createConfigTemplate()
		return
	}

	// Load configuration
	appCfg, err := LoadAppConfig(*flags.Config)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	// Build the extraction snapshot from profile and flags
	extraction, err := buildExtraction(flags, appCfg)
	if err != nil {
		fatal("%v", err)
	}

	if *flags.SaveProfile != "" {
		p := &config.Profile{Name: profileName(*flags.SaveProfile), Extraction: *extraction}
		if err := config.SaveProfile(*flags.SaveProfile, p); err != nil {
			fatal("Failed to save profile: %v", err)
		}
		fmt.Printf("Saved profile to %s\n", *flags.SaveProfile)
		if !anyCommand(flags) {
			return
		}
	}

	// Locate the engine
	enginePath := *flags.Engine
	if enginePath == "" {
		enginePath = appCfg.Engine.Path
	}
	engine, err := command.FindEngine(enginePath)
	if err != nil && !*flags.DryRun {
		fatal("%v", err)
	}

	// Dry run only needs the vector
	if *flags.DryRun {
		if engine == "" {
			engine = "bakread"
		}
		fmt.Println(command.Preview(command.Build(engine, extraction)))
		return
	}

	// Audit sink
	auditLogger := buildAuditLogger(flags, appCfg)
	defer auditLogger.Close()

	ctrl := console.New(console.Options{
		Engine:         engine,
		Audit:          auditLogger,
		PreviewRows:    appCfg.Preview.MaxRows,
		PreviewTimeout: appCfg.PreviewTimeout(),
	})

	// Ctrl-C cancels the active job; a second one exits.
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		fmt.Fprintln(os.Stderr, "Cancelling...")
		ctrl.Cancel()
		<-sig
		os.Exit(130)
	}()

	// Route commands
	var cmdErr error
	switch {
	case *flags.ListTables:
		cmdErr = runListTables(ctx, ctrl, extraction)
	case *flags.Preview:
		cmdErr = runPreview(ctx, ctrl, flags, extraction)
	case *flags.Export != "":
		cmdErr = runExport(ctx, ctrl, flags, appCfg, extraction)
	case *flags.Run:
		cmdErr = runExtraction(ctx, ctrl, extraction)
	default:
		PrintHelp()
		os.Exit(1)
	}

	if cmdErr != nil {
		fatal("%v", cmdErr)
	}
}

// buildExtraction merges an optional profile with flag overrides.
func buildExtraction(flags *Flags, appCfg *AppConfig) (*config.ExtractionConfig, error) {
	var extraction config.ExtractionConfig
	if *flags.Profile != "" {
		p, err := config.LoadProfile(*flags.Profile)
		if err != nil {
			return nil, err
		}
		extraction = *p.Extraction.Clone()
	}

	if *flags.Bak != "" {
		extraction.BackupFiles = splitList(*flags.Bak)
	}
	if *flags.Table != "" {
		extraction.Table = *flags.Table
	}
	if *flags.Output != "" {
		extraction.Output = *flags.Output
	}
	if *flags.Format != "" {
		extraction.Format = config.Format(*flags.Format)
	}
	if *flags.Mode != "" {
		extraction.Mode = config.Mode(*flags.Mode)
	}
	if *flags.Backupset > 0 {
		extraction.Filters.Backupset = *flags.Backupset
	}
	if *flags.Columns != "" {
		extraction.Filters.Columns = *flags.Columns
	}
	if *flags.Where != "" {
		extraction.Filters.Where = *flags.Where
	}
	if *flags.MaxRows > 0 {
		extraction.Filters.MaxRows = *flags.MaxRows
	}
	if *flags.Delimiter != "" {
		extraction.Filters.Delimiter = *flags.Delimiter
	}

	if *flags.TargetServer != "" || *flags.WindowsAuth || *flags.SQLUser != "" {
		extraction.Connection = &config.ConnectionTarget{
			Server:      *flags.TargetServer,
			WindowsAuth: *flags.WindowsAuth,
			User:        *flags.SQLUser,
			Password:    os.Getenv(command.EnvSQLPassword),
		}
	}
	if *flags.SourceServer != "" {
		extraction.SourceServer = *flags.SourceServer
	}

	extraction.TDE.CertPFX = *flags.TDECertPFX
	extraction.TDE.CertKey = *flags.TDECertKey
	extraction.TDE.BackupCertPFX = *flags.BackupCertPFX
	extraction.TDE.AllowKeyExport = *flags.AllowKeyExport

	extraction.Options.Verbose = *flags.Verbose
	extraction.Options.LogFile = *flags.LogFile
	extraction.Options.CleanupKeys = *flags.CleanupKeys
	extraction.Options.IndexDir = firstNonEmpty(*flags.IndexDir, appCfg.Engine.IndexDir)
	extraction.Options.Indexed = *flags.Indexed || appCfg.Engine.Indexed
	extraction.Options.ForceRescan = *flags.ForceRescan
	if *flags.CacheSize > 0 {
		extraction.Options.CacheSizeMB = *flags.CacheSize
	} else {
		extraction.Options.CacheSizeMB = appCfg.Engine.CacheSizeMB
	}

	return &extraction, nil
}

func buildAuditLogger(flags *Flags, appCfg *AppConfig) audit.Logger {
	path := *flags.AuditLog
	if path == "" && appCfg.Audit.Enabled {
		path = appCfg.Audit.File
	}
	if path == "" {
		return audit.NullLogger{}
	}
	appender, err := audit.NewFileAppender(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: audit log unavailable: %v\n", err)
		return audit.NullLogger{}
	}
	return audit.NewLogger(func(err error) {
		fmt.Fprintf(os.Stderr, "Warning: audit write failed: %v\n", err)
	}, appender)
}

func runExtraction(ctx context.Context, ctrl *console.Controller, cfg *config.ExtractionConfig) error {
	job, err := ctrl.Run(ctx, cfg)
	if err != nil {
		return err
	}
	drainEvents(ctrl)
	res := job.Result()
	if res.State != runner.StateSucceeded {
		os.Exit(exitStatus(res))
	}
	return nil
}

func runListTables(ctx context.Context, ctrl *console.Controller, cfg *config.ExtractionConfig) error {
	tables, err := ctrl.ListTables(ctx, cfg)
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Println(t)
	}
	return nil
}

func runPreview(ctx context.Context, ctrl *console.Controller, flags *Flags, cfg *config.ExtractionConfig) error {
	ds, err := ctrl.Preview(ctx, cfg)
	if err != nil {
		return err
	}

	if *flags.SQL != "" {
		ws, err := dataset.NewWorkspace(ds)
		if err != nil {
			return err
		}
		defer ws.Close()
		if ds, err = ws.Query(*flags.SQL); err != nil {
			return err
		}
	}

	rows := ds.Rows
	if *flags.Filter != "" {
		rows = ds.Filter(*flags.Filter)
	}

	if *flags.SaveTo != "" {
		if err := ds.SaveCSV(*flags.SaveTo, rows); err != nil {
			return err
		}
		fmt.Printf("Saved %d rows to %s\n", len(rows), *flags.SaveTo)
	}
	if *flags.ToXLSX != "" {
		if err := ds.SaveXLSX(*flags.ToXLSX, rows); err != nil {
			return err
		}
		fmt.Printf("Saved %d rows to %s\n", len(rows), *flags.ToXLSX)
	}
	if *flags.SaveTo == "" && *flags.ToXLSX == "" {
		printTable(ds.Columns, rows)
	}
	return nil
}

func runExport(ctx context.Context, ctrl *console.Controller, flags *Flags, appCfg *AppConfig, cfg *config.ExtractionConfig) error {
	dst := export.Destination{
		Server:      firstNonEmpty(*flags.DestServer, appCfg.Destination.Server),
		Database:    firstNonEmpty(*flags.DestDatabase, appCfg.Destination.Database),
		User:        firstNonEmpty(*flags.DestUser, appCfg.Destination.User),
		WindowsAuth: *flags.DestWindowsAuth || appCfg.Destination.WindowsAuth,
		Password:    os.Getenv("BAKSTUDIO_DEST_PASSWORD"),
	}
	batch := *flags.Batch
	if batch == 0 {
		batch = appCfg.Destination.BatchSize
	}
	plan := &export.Plan{
		Extraction:   cfg,
		Destination:  dst,
		TargetTable:  *flags.Export,
		BatchSize:    batch,
		CreateTable:  *flags.CreateTable,
		Truncate:     *flags.Truncate,
		ArtifactPath: *flags.Artifact,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		drainEvents(ctrl)
	}()
	reports, err := ctrl.Export(ctx, plan)
	<-done

	for _, r := range reports {
		line := fmt.Sprintf("%-12s %-8s", r.Name, r.Status)
		if r.Rows > 0 {
			line += fmt.Sprintf(" rows=%d", r.Rows)
		}
		if r.Checksum != "" {
			line += " checksum=" + r.Checksum
		}
		if r.Detail != "" {
			line += " " + r.Detail
		}
		fmt.Println(line)
	}
	return err
}

// drainEvents prints the ordered stream until the operation's summary.
func drainEvents(ctrl *console.Controller) {
	for ev := range ctrl.Events() {
		switch ev.Kind {
		case console.EventLine:
			fmt.Println(ev.Line.Text)
		case console.EventDone:
			fmt.Println(ev.Summary)
			return
		}
	}
}

func printTable(columns []string, rows [][]string) {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i := range columns {
			if i < len(row) && len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}
	printRow := func(cells []string) {
		parts := make([]string, len(columns))
		for i := range columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	printRow(columns)
	for _, row := range rows {
		printRow(row)
	}
	fmt.Printf("(%d rows)\n", len(rows))
}

func exitStatus(res runner.Result) int {
	if res.State == runner.StateCancelled {
		return 130
	}
	if res.ExitCode > 0 {
		return res.ExitCode
	}
	return 1
}

func anyCommand(flags *Flags) bool {
	return *flags.Run || *flags.Preview || *flags.ListTables || *flags.Export != "" || *flags.DryRun
}

func profileName(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".yaml")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
