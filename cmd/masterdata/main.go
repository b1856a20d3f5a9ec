// Package main provides the CLI entrypoint for masterdata.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/masterdata/internal/config"
	"github.com/verte-zerg/masterdata/internal/historyui"
	"github.com/verte-zerg/masterdata/internal/logging"
	"github.com/verte-zerg/masterdata/internal/report"
	"github.com/verte-zerg/masterdata/internal/store"
	"github.com/verte-zerg/masterdata/internal/summary"
	"github.com/verte-zerg/masterdata/internal/watch"
)

const (
	defaultDir         = "."
	defaultLogLevel    = "info"
	defaultHistoryLast = 20
)

var (
	runDir         string
	runOutput      string
	runSkipBackups bool
	runLogLevel    string
	runNoLogFile   bool
	runNoHistory   bool
	runWatch       bool

	historyLast  int
	historyPlain bool
	historyRun   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "masterdata",
		Short:         "Consolidate weekly field sales workbooks into one master report",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runRootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&runDir, "dir", defaultDir, "directory holding the source workbooks")
	flags.StringVar(&runOutput, "output", report.DefaultOutputName, "report file name, written into --dir")
	flags.BoolVar(&runSkipBackups, "skip-backups", true, "ignore *_YEDEK* backup files")
	flags.StringVar(&runLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&runNoLogFile, "no-log-file", false, "do not append to "+logging.FileName)
	flags.BoolVar(&runNoHistory, "no-history", false, "do not record the run in the history database")
	rootCmd.Flags().BoolVar(&runWatch, "watch", false, "keep running and regenerate when files are added or removed")

	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runRootCmd(cmd *cobra.Command, _ []string) error {
	if runWatch {
		return runWatchCmd(cmd, nil)
	}
	s, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, cleanup, err := newRunner(s)
	if err != nil {
		return err
	}
	defer cleanup()
	return r.run(ctx)
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Generate the report, then regenerate whenever source files change",
		Args:  cobra.NoArgs,
		RunE:  runWatchCmd,
	}
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	s, fileCfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	debounce, err := fileCfg.Watch.DebounceDuration(watch.DefaultDebounce)
	if err != nil {
		return err
	}
	rescan := watch.DefaultRescan
	if fileCfg.Watch.Rescan != nil {
		rescan = *fileCfg.Watch.Rescan
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, cleanup, err := newRunner(s)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := r.run(ctx); err != nil {
		r.logger.Error("initial run failed", zap.Error(err))
	}
	opts := watch.Options{Debounce: debounce, Rescan: rescan, List: s.listOptions()}
	return watch.Run(ctx, s.dir, opts, r.run, r.logger)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N runs (0 for all)")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a plain table instead of the interactive view")
	cmd.Flags().StringVar(&historyRun, "run", "", "print the per-file outcomes of the run with this id")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	filter := store.RunFilter{Limit: historyLast}
	if cmd.Flags().Changed("dir") {
		abs, err := filepath.Abs(runDir)
		if err != nil {
			return fmt.Errorf("failed to resolve --dir: %w", err)
		}
		filter.Dir = abs
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if historyRun != "" || historyPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return printHistory(ctx, cmd.OutOrStdout(), st, filter, historyRun)
	}

	program := tea.NewProgram(historyui.NewModel(st, filter), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

// printHistory writes the run table, or the file outcomes of runID when it
// is set.
func printHistory(ctx context.Context, w io.Writer, src historyui.Source, filter store.RunFilter, runID string) error {
	if runID != "" {
		files, err := src.ListRunFiles(ctx, runID)
		if err != nil {
			return fmt.Errorf("failed to list files of run %s: %w", runID, err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no files recorded for run %s", runID)
		}
		return summary.RenderRunFiles(w, files)
	}
	runs, err := src.ListRuns(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return summary.RenderRuns(w, runs, summary.Options{})
}

// settings are the effective run options after config and flags merge.
type settings struct {
	dir         string
	output      string
	skipBackups bool
	logLevel    string
	logFile     bool
	history     bool
}

// loadSettings merges the config file under the command line flags.
func loadSettings(cmd *cobra.Command) (settings, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dir", &runDir, fileCfg.Run.Dir)
	applyStringConfig(cmd, "output", &runOutput, fileCfg.Run.Output)
	applyBoolConfig(cmd, "skip-backups", &runSkipBackups, fileCfg.Run.SkipBackups)
	applyStringConfig(cmd, "log-level", &runLogLevel, fileCfg.Log.Level)
	applyNegatedBoolConfig(cmd, "no-log-file", &runNoLogFile, fileCfg.Log.File)
	applyNegatedBoolConfig(cmd, "no-history", &runNoHistory, fileCfg.History.Enabled)

	s := settings{
		dir:         runDir,
		output:      runOutput,
		skipBackups: runSkipBackups,
		logLevel:    runLogLevel,
		logFile:     !runNoLogFile,
		history:     !runNoHistory,
	}
	if err := s.validate(); err != nil {
		return settings{}, config.FileConfig{}, err
	}
	abs, err := filepath.Abs(s.dir)
	if err != nil {
		return settings{}, config.FileConfig{}, fmt.Errorf("failed to resolve --dir: %w", err)
	}
	s.dir = abs
	return s, fileCfg, nil
}

func (s settings) validate() error {
	if strings.TrimSpace(s.dir) == "" {
		return fmt.Errorf("--dir must not be empty")
	}
	if strings.TrimSpace(s.output) == "" {
		return fmt.Errorf("--output must not be empty")
	}
	if filepath.Base(s.output) != s.output {
		return fmt.Errorf("--output must be a file name, not a path: %s", s.output)
	}
	if !strings.EqualFold(filepath.Ext(s.output), ".xlsx") {
		return fmt.Errorf("--output must end in .xlsx: %s", s.output)
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source directory: %s is not a directory", s.dir)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// applyNegatedBoolConfig maps a positive config switch onto a --no-* flag.
func applyNegatedBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = !*value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# masterdata configuration
# Uncomment a value to enable it. CLI flags override config values.

[run]
# dir = %q                  # Directory holding the source workbooks
# output = %q # Report file name, written into dir
# skip-backups = true          # Ignore *_YEDEK* backup files

[watch]
# debounce = %q              # Quiet period after a file event before rescanning
# rescan = %q        # Periodic full rescan (cron spec)

[log]
# level = %q              # debug, info, warn or error
# file = true                  # Also append to %s in dir

[history]
# enabled = true               # Record runs in %s
`,
		defaultDir,
		report.DefaultOutputName,
		watch.DefaultDebounce.String(),
		watch.DefaultRescan,
		defaultLogLevel,
		logging.FileName,
		config.DefaultDBPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
