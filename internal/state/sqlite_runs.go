package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapscan/internal/batch"
	"github.com/leapstack-labs/leapscan/pkg/analyzer"
)

const runColumns = `id, source, status, started_at, completed_at, total, failed`

// CreateRun inserts a run in the running state.
func (s *SQLiteStore) CreateRun(source string, startedAt time.Time) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        generateID(),
		Source:    source,
		Status:    RunStatusRunning,
		StartedAt: startedAt.UTC(),
	}
	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("source", source))

	_, err := s.db.Exec(
		`INSERT INTO runs (id, source, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Source, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun stores the final counts of a run and derives its status.
func (s *SQLiteStore) CompleteRun(id string, total, failed int, completedAt time.Time) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	status := RunStatusPassed
	if failed > 0 {
		status = RunStatusFailed
	}

	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, total = ?, failed = ? WHERE id = ?`,
		string(status), completedAt.UTC(), total, failed, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// RecordReport stores a batch report as a completed run with one row per
// line and returns the stored run. The run and its lines are written in one
// transaction.
func (s *SQLiteStore) RecordReport(report *batch.Report) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	status := RunStatusPassed
	if report.Failed() > 0 {
		status = RunStatusFailed
	}
	id := generateID()
	s.logger.Debug("recording run", slog.String("id", id), slog.String("source", report.Source))

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, source, status, started_at, completed_at, total, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, report.Source, string(status), report.Started.UTC(), report.Finished.UTC(),
		len(report.Results), report.Failed(),
	); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO line_results
		(run_id, line, sql_text, ok, error_kind, error_pos, message, where_expr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare line insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range report.Results {
		rec := toLineRecord(id, res)
		if _, err := stmt.Exec(rec.RunID, rec.Line, rec.SQL, rec.OK, rec.ErrorKind, rec.ErrorPos, rec.Message, rec.Where); err != nil {
			return nil, fmt.Errorf("failed to record line %d: %w", rec.Line, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Debug("run recorded",
		slog.String("id", id),
		slog.Int("lines", len(report.Results)),
		slog.Int("failed", report.Failed()),
	)
	return s.GetRun(id)
}

func toLineRecord(runID string, res batch.LineResult) *LineRecord {
	rec := &LineRecord{RunID: runID, Line: res.Line, SQL: res.SQL, OK: res.OK(), ErrorPos: -1}
	if res.Statement != nil {
		rec.Where = res.Statement.Where
	}
	if res.Err != nil {
		rec.Message = res.Err.Error()
		var perr *analyzer.ParseError
		if errors.As(res.Err, &perr) {
			rec.ErrorKind = perr.Kind.String()
			rec.ErrorPos = perr.Pos
		}
	}
	return rec
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit of 0 or less returns
// every run.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListLineResults returns the stored lines of a run in line order.
func (s *SQLiteStore) ListLineResults(runID string) ([]*LineRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`SELECT run_id, line, sql_text, ok, error_kind, error_pos, message, where_expr
		FROM line_results WHERE run_id = ? ORDER BY line`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line results: %w", err)
	}
	defer rows.Close()

	var out []*LineRecord
	for rows.Next() {
		rec := &LineRecord{}
		if err := rows.Scan(&rec.RunID, &rec.Line, &rec.SQL, &rec.OK, &rec.ErrorKind, &rec.ErrorPos, &rec.Message, &rec.Where); err != nil {
			return nil, fmt.Errorf("failed to scan line result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var (
		status      string
		completedAt sql.NullTime
	)
	if err := row.Scan(&run.ID, &run.Source, &status, &run.StartedAt, &completedAt, &run.Total, &run.Failed); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return run, nil
}
