// Package aggregate runs one full pass over a source directory: detection,
// per-file extraction and accumulation into a read-only result.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/masterdata/internal/detect"
	"github.com/verte-zerg/masterdata/internal/extract"
	"github.com/verte-zerg/masterdata/internal/model"
	"github.com/verte-zerg/masterdata/internal/workbook"
)

// ErrNoSourceFiles is returned when the directory holds no usable workbook.
var ErrNoSourceFiles = errors.New("no source files found")

// SheetLoader reads the active sheet of the workbook at path.
type SheetLoader func(path string) (*extract.Sheet, error)

// Options configures a run.
type Options struct {
	Dir  string
	List workbook.ListOptions
	// Now defaults to time.Now.
	Now func() time.Time
	// Load defaults to workbook.LoadActiveSheet.
	Load SheetLoader
}

// Result is the output of a run. Renderers treat it as read-only.
type Result struct {
	RunID     string
	Dir       string
	StartedAt time.Time
	Files     []string
	Weeks     []model.Week
	Reps      []string
	Planned   []model.PlannedVisit
	Completed []model.CompletedVisit
	Orders    []model.OrderLine
	// Customers is ordered by directory key.
	Customers []model.Customer
	Status    map[model.StatusKey]string
	Outcomes  []model.FileOutcome
}

// Skipped counts files that did not contribute records.
func (r *Result) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status != model.FileProcessed {
			n++
		}
	}
	return n
}

// Run lists the sources in opts.Dir and aggregates them.
func Run(ctx context.Context, opts Options, logger *zap.Logger) (*Result, error) {
	names, err := workbook.ListSources(opts.Dir, opts.List)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		logger.Error("no excel files found", zap.String("dir", opts.Dir))
		return nil, fmt.Errorf("%w in %s", ErrNoSourceFiles, opts.Dir)
	}
	return Aggregate(ctx, names, opts, logger)
}

// Aggregate processes the given source names, in order, from opts.Dir.
func Aggregate(ctx context.Context, names []string, opts Options, logger *zap.Logger) (*Result, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	load := SheetLoader(workbook.LoadActiveSheet)
	if opts.Load != nil {
		load = opts.Load
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Dir:       opts.Dir,
		StartedAt: now(),
		Files:     append([]string(nil), names...),
	}
	logger = logger.With(zap.String("run_id", res.RunID))
	logger.Info("scanning directory", zap.String("dir", opts.Dir), zap.Int("files", len(names)))

	weeks := detect.NewWeekIndex(names, res.StartedAt)
	res.Weeks = weeks.Weeks()
	res.Reps = detect.DetectReps(names)
	logger.Debug("year for filenames without one", zap.Int("year", weeks.FallbackYear()))
	for _, w := range res.Weeks {
		logger.Info("detected week", zap.String("week", w.Label), zap.String("start", w.StartText), zap.String("end", w.EndText))
	}
	for _, rep := range res.Reps {
		logger.Info("detected representative", zap.String("rep", rep))
	}

	state := extract.NewState()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, resolved := resolveSource(name, weeks, res.Reps)
		res.Outcomes = append(res.Outcomes, processFile(src, resolved, opts.Dir, state, load, logger))
	}

	res.Planned = state.Planned
	res.Completed = state.Completed
	res.Orders = state.Orders
	res.Status = state.Status
	for _, key := range state.CustomerKeys() {
		res.Customers = append(res.Customers, *state.Customers[key])
	}
	logger.Info("extraction finished",
		zap.Int("planned", len(res.Planned)),
		zap.Int("completed", len(res.Completed)),
		zap.Int("orders", len(res.Orders)),
		zap.Int("customers", len(res.Customers)),
		zap.Int("skipped", res.Skipped()))
	return res, nil
}

// resolveSource infers the representative, week and document type of a
// source filename. resolved is false unless both rep and week are known.
func resolveSource(name string, weeks *detect.WeekIndex, reps []string) (src model.SourceFile, resolved bool) {
	src = model.SourceFile{Name: name, Type: detect.Classify(name)}
	rep, repOK := detect.FindRep(name, reps)
	week, weekOK := weeks.Lookup(name)
	src.Rep, src.Week = rep, week
	return src, repOK && weekOK
}

func processFile(src model.SourceFile, resolved bool, dir string, state *extract.State, load SheetLoader, logger *zap.Logger) model.FileOutcome {
	name := src.Name
	log := logger.With(zap.String("file", name))
	outcome := model.FileOutcome{Name: name, Rep: src.Rep, Week: src.Week.Label, Type: src.Type}
	if !resolved {
		outcome.Status = model.FileSkipped
		outcome.Reason = "unresolved " + unresolvedFacets(src.Rep != "", src.Week.Label != "")
		log.Warn("skipping file",
			zap.String("rep", orUnknown(src.Rep)),
			zap.String("week", orUnknown(src.Week.Label)))
		return outcome
	}

	sheet, err := load(filepath.Join(dir, name))
	if err != nil {
		outcome.Status = model.FileFailed
		outcome.Reason = err.Error()
		log.Error("failed to read file", zap.Error(err))
		return outcome
	}

	batch, err := extract.Extract(sheet, extract.Meta{File: name, Rep: src.Rep, Week: src.Week.Label, Type: src.Type})
	if errors.Is(err, extract.ErrNoCustomerColumn) {
		state.Commit(batch)
		outcome.Status = model.FileSkipped
		outcome.Reason = err.Error()
		log.Warn("customer column not found, skipping rows", zap.Int("header_row", batch.Header.Row))
		return outcome
	}
	if err != nil {
		outcome.Status = model.FileFailed
		outcome.Reason = err.Error()
		log.Error("failed to extract file", zap.Error(err))
		return outcome
	}
	state.Commit(batch)
	outcome.Status = model.FileProcessed
	log.Info("processed file",
		zap.String("type", outcome.Type.String()),
		zap.Int("header_row", batch.Header.Row),
		zap.Bool("embedded_order", batch.Header.EmbeddedOrder),
		zap.Int("records", batch.Records()))
	return outcome
}

func unresolvedFacets(repOK, weekOK bool) string {
	switch {
	case !repOK && !weekOK:
		return "representative and week"
	case !repOK:
		return "representative"
	default:
		return "week"
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "?"
	}
	return v
}
