package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/masterdata/internal/aggregate"
	"github.com/verte-zerg/masterdata/internal/config"
	"github.com/verte-zerg/masterdata/internal/logging"
	"github.com/verte-zerg/masterdata/internal/model"
	"github.com/verte-zerg/masterdata/internal/report"
	"github.com/verte-zerg/masterdata/internal/store"
	"github.com/verte-zerg/masterdata/internal/summary"
	"github.com/verte-zerg/masterdata/internal/workbook"
)

// runner performs complete aggregation runs with shared resources.
type runner struct {
	settings settings
	logger   *zap.Logger
	// store is nil when history is disabled or unavailable.
	store *store.Store
	out   io.Writer
	color bool
	now   func() time.Time
}

// newRunner opens the logger and history store for s. The cleanup
// function releases both.
func newRunner(s settings) (*runner, func(), error) {
	logCfg := logging.Config{Level: s.logLevel}
	if s.logFile {
		logCfg.Dir = s.dir
	}
	logger, closeLog, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, err
	}

	r := &runner{
		settings: s,
		logger:   logger,
		out:      os.Stdout,
		color:    term.IsTerminal(int(os.Stdout.Fd())),
		now:      time.Now,
	}
	if s.history {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			logger.Warn("run history disabled", zap.Error(err))
		} else {
			r.store = st
		}
	}

	cleanup := func() {
		if r.store != nil {
			if cerr := r.store.Close(); cerr != nil {
				logger.Warn("failed to close db", zap.Error(cerr))
			}
		}
		if cerr := closeLog(); cerr != nil {
			logErrf("%v\n", cerr)
		}
	}
	return r, cleanup, nil
}

// run aggregates the source directory once, writes the report and records
// the outcome in the history.
func (r *runner) run(ctx context.Context) error {
	s := r.settings
	started := r.now()
	rec := model.RunRecord{StartedAt: started, Dir: s.dir}

	res, err := aggregate.Run(ctx, aggregate.Options{Dir: s.dir, List: s.listOptions(), Now: r.now}, r.logger)
	if err != nil {
		// Aggregation assigns IDs; runs failing before that get their own.
		rec.RunID = uuid.NewString()
		r.finish(ctx, rec, nil, err)
		return err
	}
	rec.RunID = res.RunID
	logger := r.logger.With(zap.String("run_id", res.RunID))

	issues := report.Audit(res)
	rec.Weeks = len(res.Weeks)
	rec.Reps = len(res.Reps)
	rec.Planned = len(res.Planned)
	rec.Completed = len(res.Completed)
	rec.Orders = len(res.Orders)
	rec.Customers = len(res.Customers)
	rec.Issues = len(issues)
	rec.FilesTotal = len(res.Files)
	rec.FilesSkipped = res.Skipped()

	f, err := report.Build(res, issues, r.now())
	if err != nil {
		err = fmt.Errorf("failed to build report: %w", err)
		r.finish(ctx, rec, res.Outcomes, err)
		return err
	}
	path, saveErr := report.Save(f, s.dir, s.output, r.now())
	if cerr := f.Close(); cerr != nil {
		logger.Warn("failed to close workbook", zap.Error(cerr))
	}
	rec.Output = path
	if path == "" {
		r.finish(ctx, rec, res.Outcomes, saveErr)
		return saveErr
	}
	if saveErr != nil {
		logger.Warn("output locked, report saved to fallback file", zap.String("path", path), zap.Error(saveErr))
	} else {
		logger.Info("report written", zap.String("path", path))
	}

	logSummary(logger, res, issues)
	if err := summary.RenderRun(r.out, res, issues, path, summary.Options{Color: r.color}); err != nil {
		logger.Warn("failed to print summary", zap.Error(err))
	}
	r.finish(ctx, rec, res.Outcomes, saveErr)
	return saveErr
}

// finish stamps the record and stores it. History failures never fail a
// run.
func (r *runner) finish(ctx context.Context, rec model.RunRecord, files []model.FileOutcome, runErr error) {
	rec.EndedAt = r.now()
	rec.OK = runErr == nil
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if r.store == nil {
		return
	}
	// Record even when ctx was cancelled mid-run.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := r.store.InsertRun(ctx, rec, files); err != nil {
		r.logger.Warn("failed to record run", zap.Error(err))
	}
}

func logSummary(logger *zap.Logger, res *aggregate.Result, issues []model.Issue) {
	fields := []zap.Field{
		zap.Int("weeks", len(res.Weeks)),
		zap.Int("reps", len(res.Reps)),
		zap.Int("files", len(res.Files)),
	}
	for _, c := range report.SheetCounts(res, issues) {
		fields = append(fields, zap.Int(c.Sheet, c.Rows))
	}
	logger.Info("report summary", fields...)

	missing := report.MissingByType(report.Inventory(res))
	missingFields := make([]zap.Field, 0, len(model.DocTypes))
	for _, t := range model.DocTypes {
		missingFields = append(missingFields, zap.Int(t.String(), missing[t]))
	}
	logger.Info("missing submissions", missingFields...)
}

// listOptions excludes the configured report from the sources. Reports
// named MASTER* keep the broader MASTER prefix rule.
func (s settings) listOptions() workbook.ListOptions {
	opts := workbook.DefaultListOptions()
	opts.SkipBackups = s.skipBackups
	base := strings.TrimSuffix(s.output, filepath.Ext(s.output))
	if !strings.HasPrefix(strings.ToUpper(base), opts.OutputPrefix) {
		opts.OutputPrefix = base
	}
	return opts
}
