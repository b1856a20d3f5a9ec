// Package watch re-runs aggregation when the set of source workbooks in a
// directory changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/verte-zerg/masterdata/internal/workbook"
)

const (
	// DefaultDebounce is how long the directory must stay quiet after an
	// event before it is re-listed.
	DefaultDebounce = 3 * time.Second
	// DefaultRescan is the periodic full rescan, for file systems that do
	// not deliver events.
	DefaultRescan = "@every 5s"

	rescanJob = "rescan"
)

// Options configures a watch loop.
type Options struct {
	Debounce time.Duration
	Rescan   string
	List     workbook.ListOptions
}

// Trigger runs one aggregation. Its errors are logged and do not stop the
// watch.
type Trigger func(ctx context.Context) error

// Run watches dir until ctx is done. The current source set is taken as
// the baseline; each time it gains or loses a file, trigger runs once.
// Triggers never overlap since a single loop drives them.
func Run(ctx context.Context, dir string, opts Options, trigger Trigger, logger *zap.Logger) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Rescan == "" {
		opts.Rescan = DefaultRescan
	}

	snapshot, err := workbook.ListSources(dir, opts.List)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if cerr := fsw.Close(); cerr != nil {
			logger.Warn("failed to close watcher", zap.Error(cerr))
		}
	}()
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	rescan := make(chan struct{}, 1)
	sched := NewScheduler(logger)
	if err := sched.AddJob(rescanJob, opts.Rescan, func() {
		select {
		case rescan <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	logger.Info("watching for changes",
		zap.String("dir", dir),
		zap.Int("files", len(snapshot)),
		zap.Duration("debounce", opts.Debounce),
		zap.String("rescan", opts.Rescan))

	debounce := time.NewTimer(opts.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()
	// pending is set while the debounce timer is armed. The snapshot only
	// advances when the timer fires, so a change found by a rescan is
	// re-listed after the directory has been quiet for a full delay.
	pending := false
	arm := func() {
		debounce.Reset(opts.Debounce)
		pending = true
	}

	list := func() ([]string, []string, []string, bool) {
		names, err := workbook.ListSources(dir, opts.List)
		if err != nil {
			logger.Warn("failed to list sources", zap.String("dir", dir), zap.Error(err))
			return nil, nil, nil, false
		}
		added, removed := Diff(snapshot, names)
		return names, added, removed, len(added) > 0 || len(removed) > 0
	}

	regenerate := func() {
		names, added, removed, changed := list()
		if !changed {
			return
		}
		for _, name := range added {
			logger.Info("+ "+name, zap.String("change", "added"))
		}
		for _, name := range removed {
			logger.Info("- "+name, zap.String("change", "removed"))
		}
		snapshot = names
		logger.Info("source set changed, regenerating report",
			zap.Int("added", len(added)),
			zap.Int("removed", len(removed)))
		if err := trigger(ctx); err != nil {
			logger.Error("run failed", zap.Error(err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			logger.Debug("fs event", zap.String("name", filepath.Base(ev.Name)), zap.String("op", ev.Op.String()))
			arm()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-debounce.C:
			pending = false
			regenerate()
		case <-rescan:
			if pending {
				continue
			}
			if _, _, _, changed := list(); changed {
				logger.Debug("rescan found changes", zap.Duration("debounce", opts.Debounce))
				arm()
			}
		}
	}
}

// relevant reports whether an event can change the source set. Content
// writes cannot.
func relevant(ev fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(ev.Name), workbook.Ext) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
