// Package workbook lists source spreadsheets and loads their active sheet.
package workbook

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/masterdata/internal/detect"
	"github.com/verte-zerg/masterdata/internal/extract"
)

// ErrNoSheet reports a workbook without any worksheet.
var ErrNoSheet = errors.New("workbook has no sheets")

// Ext is the extension of source workbooks.
const Ext = ".xlsx"

const (
	backupMarker = "_YEDEK"
	lockPrefix   = "~$"
)

// ListOptions controls which files count as sources.
type ListOptions struct {
	SkipBackups  bool
	OutputPrefix string
}

// DefaultListOptions skips backups and anything named like the output.
func DefaultListOptions() ListOptions {
	return ListOptions{SkipBackups: true, OutputPrefix: "MASTER"}
}

// ListSources returns the sorted names of source workbooks in dir.
func ListSources(dir string, opts ListOptions) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}
	prefix := strings.ToUpper(opts.OutputPrefix)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, Ext) {
			continue
		}
		if opts.SkipBackups && strings.Contains(name, backupMarker) {
			continue
		}
		if prefix != "" && strings.HasPrefix(strings.ToUpper(name), prefix) {
			continue
		}
		if strings.HasPrefix(name, lockPrefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadActiveSheet reads the active worksheet of the workbook at path into
// memory. Cells holding a date serial under a date number format come out
// as DD.MM.YYYY whatever the format; all other cells keep their display
// text. The file is closed before returning.
func LoadActiveSheet(path string) (sheet *extract.Sheet, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if name == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, ErrNoSheet
		}
		name = list[0]
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", name, err)
	}
	if err := normalizeDates(f, name, rows); err != nil {
		return nil, err
	}
	return extract.NewSheet(name, rows), nil
}

// normalizeDates rewrites, in place, every cell of rows whose raw value is
// a serial number styled with a date format.
func normalizeDates(f *excelize.File, sheet string, rows [][]string) error {
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("failed to read raw rows of %q: %w", sheet, err)
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	styles := dateStyles{f: f, known: make(map[int]bool)}
	for r := 0; r < len(rows) && r < len(raw); r++ {
		for c := 0; c < len(rows[r]) && c < len(raw[r]); c++ {
			if raw[r][c] == rows[r][c] {
				continue
			}
			serial, err := strconv.ParseFloat(raw[r][c], 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil || !styles.isDate(sheet, cell) {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			rows[r][c] = t.Format(detect.DateLayout)
		}
	}
	return nil
}

// dateStyles memoizes, per style index, whether the number format is a
// date format.
type dateStyles struct {
	f     *excelize.File
	known map[int]bool
}

func (d dateStyles) isDate(sheet, cell string) bool {
	idx, err := d.f.GetCellStyle(sheet, cell)
	if err != nil {
		return false
	}
	if v, ok := d.known[idx]; ok {
		return v
	}
	v := false
	if style, err := d.f.GetStyle(idx); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			v = IsDateFormat(*style.CustomNumFmt)
		} else {
			v = isBuiltinDateFormat(style.NumFmt)
		}
	}
	d.known[idx] = v
	return v
}

// isBuiltinDateFormat reports whether a built-in number format id renders
// a date, including the East Asian variants.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	return false
}

// IsDateFormat reports whether a custom number format code renders a day
// or a year. Quoted literals, escaped characters and bracketed sections
// such as locale tags are ignored.
func IsDateFormat(code string) bool {
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			inBracket = ch != ']'
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\':
			i++
		case ch == 'd', ch == 'D', ch == 'y', ch == 'Y':
			return true
		}
	}
	return false
}
