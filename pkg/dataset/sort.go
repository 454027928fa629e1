package dataset

import (
	"sort"
	"strconv"
	"strings"
)

// SortState tracks which column a view is ordered by. Toggling the same
// column flips direction; a new column starts ascending.
type SortState struct {
	Column     int
	Descending bool
	active     bool
}

// Toggle updates the state for a click on column c and reports the
// resulting direction.
func (s *SortState) Toggle(c int) (descending bool) {
	if s.active && s.Column == c {
		s.Descending = !s.Descending
	} else {
		s.Column = c
		s.Descending = false
		s.active = true
	}
	return s.Descending
}

// Sort orders rows by column c. When every cell in the column parses as a
// number the order is numeric; a single unparseable cell, empty included,
// makes the whole column sort lexicographically, case-insensitive. The
// sort is stable so equal keys keep their arrival order.
func Sort(rows [][]string, c int, descending bool) {
	numeric := true
	for _, row := range rows {
		if _, err := strconv.ParseFloat(cellAt(row, c), 64); err != nil {
			numeric = false
			break
		}
	}

	less := func(i, j int) bool {
		a, b := cellAt(rows[i], c), cellAt(rows[j], c)
		if numeric {
			fa, _ := strconv.ParseFloat(a, 64)
			fb, _ := strconv.ParseFloat(b, 64)
			return fa < fb
		}
		return strings.ToLower(a) < strings.ToLower(b)
	}
	if descending {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(rows, less)
}

// SortBy orders the dataset's rows in place by column c.
func (d *Dataset) SortBy(c int, descending bool) {
	Sort(d.Rows, c, descending)
}

func cellAt(row []string, c int) string {
	if c >= len(row) {
		return ""
	}
	return row[c]
}
