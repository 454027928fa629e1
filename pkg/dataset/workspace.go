package dataset

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Workspace is a throwaway in-memory SQL view over a loaded dataset. It
// lets a preview be sliced with real SQL without touching any server. All
// columns are TEXT; the dataset is untyped to begin with.
type Workspace struct {
	db    *sql.DB
	table string
}

// NewWorkspace opens an in-memory database and fills table "preview" with
// the dataset.
func NewWorkspace(d *Dataset) (*Workspace, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	w := &Workspace{db: db, table: "preview"}
	if err := w.fill(d); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the in-memory database.
func (w *Workspace) Close() error { return w.db.Close() }

func (w *Workspace) fill(d *Dataset) error {
	if len(d.Columns) == 0 {
		return ErrEmptyDataset
	}
	cols := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = quoteIdent(c) + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(w.table), strings.Join(cols, ", "))
	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("create workspace table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(d.Columns)), ",")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(w.table), placeholders)

	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	args := make([]interface{}, len(d.Columns))
	for r := range d.Rows {
		for c := range args {
			args[c] = d.Cell(r, c)
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("fill workspace row %d: %w", r, err)
		}
	}
	return tx.Commit()
}

// Query runs a read-only SQL statement against the workspace and returns
// the result as a new dataset. Only single SELECT statements are accepted.
func (w *Workspace) Query(sqlText string) (*Dataset, error) {
	if err := checkReadOnly(sqlText); err != nil {
		return nil, err
	}
	rows, err := w.db.Query(sqlText)
	if err != nil {
		return nil, fmt.Errorf("workspace query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := &Dataset{Columns: cols}
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, rows.Err()
}

// checkReadOnly rejects anything but a single SELECT/WITH statement.
func checkReadOnly(sqlText string) error {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return fmt.Errorf("empty query")
	}
	if strings.Contains(strings.TrimSuffix(trimmed, ";"), ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}
	head := strings.ToUpper(trimmed)
	if !strings.HasPrefix(head, "SELECT") && !strings.HasPrefix(head, "WITH") {
		return fmt.Errorf("only SELECT queries are allowed in the workspace")
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
