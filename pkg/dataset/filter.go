package dataset

import "strings"

// Filter returns the rows containing the query as a case-insensitive
// substring in any cell. Filtering never reorders rows and an empty query
// returns every row, so applying the same query twice is a no-op.
func (d *Dataset) Filter(query string) [][]string {
	query = strings.TrimSpace(query)
	if query == "" {
		return d.Rows
	}
	needle := strings.ToLower(query)
	var out [][]string
	for _, row := range d.Rows {
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
