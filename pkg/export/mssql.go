package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
)

// mssqlStore loads rows into SQL Server. Every column is NVARCHAR(MAX);
// the engine output is untyped text and type recovery belongs to the
// receiving side.
type mssqlStore struct {
	db *sql.DB
}

// OpenMSSQL connects to the destination and verifies the connection.
func OpenMSSQL(ctx context.Context, dst Destination) (Store, error) {
	db, err := sql.Open("mssql", buildDSN(dst))
	if err != nil {
		return nil, fmt.Errorf("open destination: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping destination %s: %w", dst.Server, err)
	}
	return &mssqlStore{db: db}, nil
}

func buildDSN(dst Destination) string {
	parts := []string{
		"server=" + dst.Server,
		"database=" + dst.Database,
	}
	if dst.WindowsAuth {
		parts = append(parts, "trusted_connection=yes")
	} else {
		parts = append(parts, "user id="+dst.User, "password="+dst.Password)
	}
	return strings.Join(parts, ";")
}

func (s *mssqlStore) Close() error { return s.db.Close() }

// EnsureTable creates the table when absent. Existing tables are left
// alone even when their columns differ; the load surfaces any mismatch.
func (s *mssqlStore) EnsureTable(ctx context.Context, table string, columns []string) error {
	schema, name := splitTableName(table)

	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_NAME = ?`, schema, name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check table %s: %w", table, err)
	}
	if exists > 0 {
		return nil
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " NVARCHAR(MAX)"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteTableName(table), strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func (s *mssqlStore) Truncate(ctx context.Context, table string) error {
	_, err := s.db.ExecContext(ctx, "TRUNCATE TABLE "+quoteTableName(table))
	if err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return nil
}

// InsertChunk writes one batch inside a transaction. The commit makes the
// chunk durable independently of later chunks.
func (s *mssqlStore) InsertChunk(ctx context.Context, table string, columns []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertStatement(table, columns))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(columns))
	for _, row := range rows {
		for i := range args {
			if i < len(row) {
				args[i] = row[i]
			} else {
				args[i] = ""
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunk: %w", err)
	}
	return nil
}

func insertStatement(table string, columns []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTableName(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

// splitTableName separates an optional schema prefix, defaulting to dbo.
// Brackets are stripped so the parts can feed catalog queries.
func splitTableName(table string) (schema, name string) {
	unquote := func(s string) string {
		return strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	}
	if i := strings.Index(table, "."); i >= 0 {
		return unquote(table[:i]), unquote(table[i+1:])
	}
	return "dbo", unquote(table)
}

func quoteTableName(table string) string {
	schema, name := splitTableName(table)
	return quoteIdent(schema) + "." + quoteIdent(name)
}

// quoteIdent bracket-quotes an identifier, doubling closing brackets.
func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
