// Package extract turns the rows of one loaded worksheet into visit, order
// and customer records.
package extract

import "strings"

// Sheet is an in-memory worksheet. Rows and columns are addressed 1-based
// through Cell, matching spreadsheet coordinates.
type Sheet struct {
	Name string
	Rows [][]string
}

// NewSheet builds a sheet from row-major cell text.
func NewSheet(name string, rows [][]string) *Sheet {
	return &Sheet{Name: name, Rows: rows}
}

// MaxRow returns the number of rows.
func (s *Sheet) MaxRow() int {
	return len(s.Rows)
}

// MaxCol returns the width of the widest row.
func (s *Sheet) MaxCol() int {
	width := 0
	for _, row := range s.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Cell returns the trimmed text at row, col. Out-of-range coordinates and
// col 0 (an unmapped column) yield "".
func (s *Sheet) Cell(row, col int) string {
	if row < 1 || row > len(s.Rows) || col < 1 {
		return ""
	}
	cells := s.Rows[row-1]
	if col > len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col-1])
}

// rowText joins all cells of a row with single spaces.
func (s *Sheet) rowText(row int) string {
	if row < 1 || row > len(s.Rows) {
		return ""
	}
	parts := make([]string, 0, len(s.Rows[row-1]))
	for col := 1; col <= len(s.Rows[row-1]); col++ {
		parts = append(parts, s.Cell(row, col))
	}
	return strings.Join(parts, " ")
}

// hasData reports whether any of the first n cells of row is non-empty.
func (s *Sheet) hasData(row, n int) bool {
	for col := 1; col <= n; col++ {
		if s.Cell(row, col) != "" {
			return true
		}
	}
	return false
}
