package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/verte-zerg/masterdata/internal/aggregate"
	"github.com/verte-zerg/masterdata/internal/config"
	"github.com/verte-zerg/masterdata/internal/report"
	"github.com/verte-zerg/masterdata/internal/store"
)

const plannedSource = "26-30 OCAK Ali Veli Planlanan Ziyaret Formu.xlsx"

var fixedNow = func() time.Time { return time.Date(2025, time.February, 3, 9, 15, 0, 0, time.Local) }

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	meta, err := toml.Decode(defaultConfigTemplate(), &cfg)
	require.NoError(t, err)
	assert.Empty(t, meta.Undecoded())
	assert.Nil(t, cfg.Run.Dir)
	assert.Contains(t, defaultConfigTemplate(), "[watch]")
}

func testCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("dir", "", "")
	cmd.Flags().Bool("no-history", false, "")
	return cmd
}

func TestApplyConfigRespectsFlags(t *testing.T) {
	cmd := testCmd()
	dir := "."
	fromFile := "/data"
	applyStringConfig(cmd, "dir", &dir, &fromFile)
	assert.Equal(t, "/data", dir)

	require.NoError(t, cmd.Flags().Set("dir", "/flag"))
	dir = "/flag"
	applyStringConfig(cmd, "dir", &dir, &fromFile)
	assert.Equal(t, "/flag", dir)

	applyStringConfig(cmd, "dir", &dir, nil)
	assert.Equal(t, "/flag", dir)
}

func TestApplyNegatedBoolConfig(t *testing.T) {
	cmd := testCmd()
	noHistory := false
	enabled := false
	applyNegatedBoolConfig(cmd, "no-history", &noHistory, &enabled)
	assert.True(t, noHistory)

	require.NoError(t, cmd.Flags().Set("no-history", "false"))
	noHistory = false
	applyNegatedBoolConfig(cmd, "no-history", &noHistory, &enabled)
	assert.False(t, noHistory)
}

func TestSettingsValidate(t *testing.T) {
	dir := t.TempDir()
	ok := settings{dir: dir, output: report.DefaultOutputName}
	require.NoError(t, ok.validate())

	cases := map[string]settings{
		"empty output": {dir: dir, output: ""},
		"path output":  {dir: dir, output: "sub/out.xlsx"},
		"wrong ext":    {dir: dir, output: "out.csv"},
		"missing dir":  {dir: filepath.Join(dir, "nope"), output: "out.xlsx"},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, s.validate())
		})
	}
}

func TestListOptions(t *testing.T) {
	opts := settings{output: report.DefaultOutputName, skipBackups: true}.listOptions()
	assert.Equal(t, "MASTER", opts.OutputPrefix)
	assert.True(t, opts.SkipBackups)

	opts = settings{output: "Rapor.xlsx"}.listOptions()
	assert.Equal(t, "Rapor", opts.OutputPrefix)
	assert.False(t, opts.SkipBackups)
}

func writeSource(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func testRunner(t *testing.T, dir string) (*runner, *store.Store, *bytes.Buffer) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	var out bytes.Buffer
	r := &runner{
		settings: settings{dir: dir, output: report.DefaultOutputName, skipBackups: true},
		logger:   zap.NewNop(),
		store:    st,
		out:      &out,
		now:      fixedNow,
	}
	return r, st, &out
}

func TestRunnerWritesReportAndHistory(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, plannedSource), [][]any{
		{"Lokasyon", "Müşteri", "Tarih", "Gün"},
		{"İzmir", "ABC Ltd", "27.01.2025", "Pazartesi"},
	})
	r, st, out := testRunner(t, dir)

	require.NoError(t, r.run(context.Background()))

	path := filepath.Join(dir, report.DefaultOutputName)
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, report.SheetNames, f.GetSheetList())
	customer, err := f.GetCellValue(report.SheetPlanned, "D2")
	require.NoError(t, err)
	assert.Equal(t, "ABC Ltd", customer)

	assert.Contains(t, out.String(), "Rapor: "+path)

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].OK)
	assert.Equal(t, 1, runs[0].Planned)
	assert.Equal(t, path, runs[0].Output)
	files, err := st.ListRunFiles(context.Background(), runs[0].RunID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, plannedSource, files[0].Name)

	// The report itself is not picked up as a source on the next run.
	require.NoError(t, r.run(context.Background()))
	runs, err = st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 1, runs[0].FilesTotal)
}

func TestPrintHistory(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, plannedSource), [][]any{
		{"Lokasyon", "Müşteri", "Tarih", "Gün"},
		{"İzmir", "ABC Ltd", "27.01.2025", "Pazartesi"},
	})
	r, st, _ := testRunner(t, dir)
	require.NoError(t, r.run(context.Background()))
	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	var out bytes.Buffer
	require.NoError(t, printHistory(context.Background(), &out, st, store.RunFilter{}, ""))
	assert.Contains(t, out.String(), dir)

	out.Reset()
	require.NoError(t, printHistory(context.Background(), &out, st, store.RunFilter{}, runs[0].RunID))
	assert.Contains(t, out.String(), "Dosya")
	assert.Contains(t, out.String(), plannedSource)
	assert.Contains(t, out.String(), "Planlanan Ziyaret")

	err = printHistory(context.Background(), &out, st, store.RunFilter{}, "missing")
	assert.ErrorContains(t, err, "no files recorded for run missing")
}

func TestRunnerRecordsFailedRun(t *testing.T) {
	dir := t.TempDir()
	r, st, _ := testRunner(t, dir)

	err := r.run(context.Background())
	require.ErrorIs(t, err, aggregate.ErrNoSourceFiles)

	runs, lerr := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, lerr)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].OK)
	assert.NotEmpty(t, runs[0].RunID)
	assert.Contains(t, runs[0].Error, "no source files found")
}

func TestRunnerFallsBackWhenOutputLocked(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, plannedSource), [][]any{
		{"Müşteri"},
		{"ABC Ltd"},
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, report.DefaultOutputName), 0o755))
	r, st, _ := testRunner(t, dir)

	err := r.run(context.Background())
	require.True(t, errors.Is(err, report.ErrOutputLocked))
	assert.FileExists(t, filepath.Join(dir, "MASTER_DATA_TEMP_091500.xlsx"))

	runs, lerr := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, lerr)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].OK)
	assert.Equal(t, filepath.Join(dir, "MASTER_DATA_TEMP_091500.xlsx"), runs[0].Output)
}

func TestRunnerWithoutHistory(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, plannedSource), [][]any{
		{"Müşteri"},
		{"ABC Ltd"},
	})
	r := &runner{
		settings: settings{dir: dir, output: report.DefaultOutputName},
		logger:   zap.NewNop(),
		out:      &bytes.Buffer{},
		now:      fixedNow,
	}
	require.NoError(t, r.run(context.Background()))
	assert.FileExists(t, filepath.Join(dir, report.DefaultOutputName))
}
