package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSaveWritesPrimaryOutput(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	defer f.Close()

	path, err := Save(f, dir, "", renderNow)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultOutputName), path)
	assert.FileExists(t, path)
}

func TestSaveFallsBackWhenOutputBlocked(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the workbook makes the primary write fail
	// regardless of user privileges.
	require.NoError(t, os.Mkdir(filepath.Join(dir, DefaultOutputName), 0o755))
	f := excelize.NewFile()
	defer f.Close()

	path, err := Save(f, dir, DefaultOutputName, renderNow)
	require.ErrorIs(t, err, ErrOutputLocked)
	assert.Equal(t, filepath.Join(dir, "MASTER_DATA_TEMP_091500.xlsx"), path)
	assert.FileExists(t, path)
}

func TestSaveReportsDoubleFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	f := excelize.NewFile()
	defer f.Close()

	path, err := Save(f, dir, DefaultOutputName, time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrOutputLocked)
	assert.Empty(t, path)
}

func TestFallbackName(t *testing.T) {
	assert.Equal(t, "REPORT_TEMP_091500.xlsx", fallbackName("REPORT.xlsx", renderNow))
	assert.Equal(t, "REPORT_TEMP_091500.xlsx", fallbackName("REPORT", renderNow))
}
