// Package store handles SQLite persistence of run history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/masterdata/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// RunFilter narrows ListRuns. Zero values select everything.
type RunFilter struct {
	Dir   string
	Limit int
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			dir TEXT NOT NULL,
			output TEXT NOT NULL,
			ok INTEGER NOT NULL,
			error TEXT NOT NULL,
			weeks INTEGER NOT NULL,
			reps INTEGER NOT NULL,
			planned INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			orders INTEGER NOT NULL,
			customers INTEGER NOT NULL,
			issues INTEGER NOT NULL,
			files_total INTEGER NOT NULL,
			files_skipped INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_files (
			run_id TEXT NOT NULL,
			name TEXT NOT NULL,
			rep TEXT NOT NULL,
			week TEXT NOT NULL,
			doc_type INTEGER NOT NULL,
			status TEXT NOT NULL,
			reason TEXT NOT NULL,
			PRIMARY KEY (run_id, name)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_dir ON runs(dir);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished run and its per-file outcomes.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord, files []model.FileOutcome) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, ended_at, dir, output, ok, error, weeks, reps, planned, completed, orders, customers, issues, files_total, files_skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.StartedAt.Format(time.RFC3339Nano),
		run.EndedAt.Format(time.RFC3339Nano),
		run.Dir,
		run.Output,
		run.OK,
		run.Error,
		run.Weeks,
		run.Reps,
		run.Planned,
		run.Completed,
		run.Orders,
		run.Customers,
		run.Issues,
		run.FilesTotal,
		run.FilesSkipped,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(files) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO run_files (run_id, name, rep, week, doc_type, status, reason)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, f := range files {
			if _, err = stmt.ExecContext(ctx, run.RunID, f.Name, f.Rep, f.Week, int(f.Type), f.Status, f.Reason); err != nil {
				return 0, fmt.Errorf("failed to insert run file %s: %w", f.Name, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns runs, most recent first.
func (s *Store) ListRuns(ctx context.Context, filter RunFilter) ([]model.RunRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Dir != "" {
		clauses = append(clauses, "dir = ?")
		args = append(args, filter.Dir)
	}
	query := fmt.Sprintf(`SELECT id, run_id, started_at, ended_at, dir, output, ok, error, weeks, reps,
		planned, completed, orders, customers, issues, files_total, files_skipped
		FROM runs
		WHERE %s
		ORDER BY ended_at DESC, id DESC`, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var startedAt, endedAt string
		if err := rows.Scan(&run.ID, &run.RunID, &startedAt, &endedAt, &run.Dir, &run.Output, &run.OK, &run.Error,
			&run.Weeks, &run.Reps, &run.Planned, &run.Completed, &run.Orders, &run.Customers, &run.Issues,
			&run.FilesTotal, &run.FilesSkipped); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListRunFiles returns the file outcomes of a run in name order.
func (s *Store) ListRunFiles(ctx context.Context, runID string) ([]model.FileOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, rep, week, doc_type, status, reason
		FROM run_files
		WHERE run_id = ?
		ORDER BY name ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var files []model.FileOutcome
	for rows.Next() {
		var f model.FileOutcome
		var docType int
		if err := rows.Scan(&f.Name, &f.Rep, &f.Week, &docType, &f.Status, &f.Reason); err != nil {
			return nil, err
		}
		f.Type = model.DocType(docType)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}
