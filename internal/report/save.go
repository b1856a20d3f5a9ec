package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DefaultOutputName is the workbook written when no name is configured.
const DefaultOutputName = "MASTER_DATA.xlsx"

// ErrOutputLocked is returned when the primary output could not be written
// and the report went to a fallback file instead.
var ErrOutputLocked = errors.New("output file is not writable")

// Save writes f to dir/name. When that fails, typically because the
// workbook is open in a spreadsheet application, it writes
// <base>_TEMP_HHMMSS.xlsx next to it and returns that path together with
// an error wrapping ErrOutputLocked.
func Save(f *excelize.File, dir, name string, now time.Time) (string, error) {
	if name == "" {
		name = DefaultOutputName
	}
	primary := filepath.Join(dir, name)
	err := f.SaveAs(primary)
	if err == nil {
		return primary, nil
	}

	fallback := filepath.Join(dir, fallbackName(name, now))
	if ferr := f.SaveAs(fallback); ferr != nil {
		return "", fmt.Errorf("failed to save report to %s: %w (fallback %s: %v)", primary, err, fallback, ferr)
	}
	return fallback, fmt.Errorf("%w: %s: %v; saved to %s", ErrOutputLocked, primary, err, fallback)
}

func fallbackName(name string, now time.Time) string {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = ".xlsx"
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return fmt.Sprintf("%s_TEMP_%s%s", base, now.Format("150405"), ext)
}
