package main

import "fmt"

const version = "1.0.0"

// PrintVersion prints version information
func PrintVersion() {
	fmt.Printf("bakstudio version %s\n", version)
	fmt.Println("BakRead Studio - control surface for the bakread extraction engine")
}

// PrintHelp prints comprehensive help information
func PrintHelp() {
	fmt.Println("BakRead Studio - extract tables from SQL Server backups without restoring them")
	fmt.Printf("Version: %s\n\n", version)

	fmt.Println("USAGE:")
	fmt.Println("  bakstudio [command] [options]")
	fmt.Println()

	fmt.Println("COMMANDS:")
	fmt.Println()

	fmt.Println("  Extraction:")
	fmt.Println("    --run                      Run a full extraction to --out")
	fmt.Println("    --preview                  Extract a capped preview and print it")
	fmt.Println("    --list-tables              List tables in the backup")
	fmt.Println("    --dry-run                  Print the engine command line without running it")
	fmt.Println()

	fmt.Println("  Export:")
	fmt.Println("    --export <table>           Extract and bulk-load into SQL Server")
	fmt.Println("    --create-table             Create the target table when it does not exist")
	fmt.Println("    --truncate                 Clear the target table before loading")
	fmt.Println("    --batch <size>             Rows per insert transaction (default: 1000)")
	fmt.Println("    --artifact <file>          Keep a zstd copy of the intermediate CSV")
	fmt.Println()

	fmt.Println("OPTIONS:")
	fmt.Println()

	fmt.Println("  Source:")
	fmt.Println("    --bak <files>              Backup file(s), comma-separated in media set order")
	fmt.Println("    --table <name>             Table to extract (schema.table)")
	fmt.Println("    --backupset <n>            Backup set number inside the media set")
	fmt.Println("    --mode <mode>              auto, direct, restore (default: auto)")
	fmt.Println()

	fmt.Println("  Output:")
	fmt.Println("    --out <file>               Output file path")
	fmt.Println("    --format <fmt>             csv, parquet, jsonl (default: csv)")
	fmt.Println("    --columns <list>           Column projection")
	fmt.Println("    --where <expr>             Engine-side row filter")
	fmt.Println("    --max-rows <n>             Stop after this many rows")
	fmt.Println("    --delimiter <c>            CSV delimiter (default: ,)")
	fmt.Println()

	fmt.Println("  Preview tools:")
	fmt.Println("    --sql <query>              Run SQL over the preview (table name: preview)")
	fmt.Println("    --filter <text>            Substring filter on preview rows")
	fmt.Println("    --save-to <file>           Save the preview as CSV")
	fmt.Println("    --to-xlsx <file>           Save the preview as XLSX")
	fmt.Println()

	fmt.Println("  Restore mode:")
	fmt.Println("    --target-server <srv>      SQL Server for restore mode")
	fmt.Println("    --sql-user <user>          SQL login (password via BAKREAD_SQL_PASSWORD)")
	fmt.Println("    --windows-auth             Use Windows authentication")
	fmt.Println()

	fmt.Println("  Destination (--export):")
	fmt.Println("    --dest-server <srv>        Destination SQL Server")
	fmt.Println("    --dest-db <name>           Destination database")
	fmt.Println("    --dest-user <user>         SQL login (password via BAKSTUDIO_DEST_PASSWORD)")
	fmt.Println("    --dest-windows-auth        Windows authentication for the destination")
	fmt.Println()

	fmt.Println("  General:")
	fmt.Println("    --config <file>            Application config (default: bakstudio.yaml)")
	fmt.Println("    --create-config            Write a bakstudio.yaml template and exit")
	fmt.Println("    --profile <file>           Load extraction settings from a profile")
	fmt.Println("    --save-profile <file>      Save extraction settings to a profile")
	fmt.Println("    --engine <path>            Engine binary (default: discovered)")
	fmt.Println("    --audit-log <file>         Append audit records to this JSONL file")
	fmt.Println("    --version                  Show version")
	fmt.Println("    --help                     Show this help")
	fmt.Println()

	fmt.Println("EXAMPLES:")
	fmt.Println("  bakstudio --list-tables --bak full.bak")
	fmt.Println("  bakstudio --run --bak full.bak --table dbo.Orders --out orders.csv")
	fmt.Println("  bakstudio --preview --bak full.bak --table dbo.Orders --sql \"SELECT * FROM preview LIMIT 20\"")
	fmt.Println("  bakstudio --export dbo.Orders_Import --bak full.bak --table dbo.Orders \\")
	fmt.Println("            --dest-server localhost --dest-db staging --dest-windows-auth --truncate")
}
