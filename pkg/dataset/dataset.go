package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrEmptyDataset means the file held no header row.
var ErrEmptyDataset = errors.New("dataset: file contains no rows")

// ParseError reports a malformed data file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Dataset is an in-memory tabular snapshot: one header row plus data rows.
// Ragged rows are kept as-is; cells beyond a short row read as empty.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// Cell returns row r, column c, or "" when the row is shorter.
func (d *Dataset) Cell(r, c int) string {
	row := d.Rows[r]
	if c >= len(row) {
		return ""
	}
	return row[c]
}

// Load reads a comma-delimited CSV file.
func Load(path string) (*Dataset, error) {
	return LoadDelimited(path, ',')
}

// LoadDelimited reads a CSV file with the given delimiter. A UTF-8 BOM is
// stripped. Rows of uneven width are accepted; the engine writes ragged
// output for tables with trailing NULL columns.
func LoadDelimited(path string, delim rune) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		br.Discard(3)
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		rows = append(rows, rec)
	}
	return &Dataset{Columns: header, Rows: rows}, nil
}
