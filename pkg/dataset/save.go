package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
)

// SaveCSV writes the given view (header plus rows) to a comma-delimited
// file. Pass d.Rows for the whole dataset or a Filter result for the
// visible slice.
func (d *Dataset) SaveCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(d.Columns); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
