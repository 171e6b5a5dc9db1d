package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Arupreza/ScholarScout/internal/common"
	"github.com/Arupreza/ScholarScout/internal/entity"
)

// Ledger is the post-run audit trail: one batch_run row, its paper_job rows
// and its affiliation rows, written together after a run finishes.
type Ledger struct {
	db     *DB
	logger *slog.Logger
}

func NewLedger(db *DB, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{db: db, logger: logger}
}

// RunSummary is one row of batch_run.
type RunSummary struct {
	ID          string    `json:"id"`
	PapersDir   string    `json:"papers_dir"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Attempted   int       `json:"attempted"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	RecordCount int       `json:"record_count"`
	OutputPath  string    `json:"output_path,omitempty"`
}

// SaveRun writes res in a single transaction. Errors are LedgerError.
func (l *Ledger) SaveRun(ctx context.Context, res entity.BatchResult) (err error) {
	start := time.Now()
	tx, err := l.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return common.NewAppError(common.CodeLedgerError, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				l.logger.Warn("ledger.rollback_failed", "error", rbErr)
			}
			err = common.NewAppError(common.CodeLedgerError, "save run "+res.RunID.String(), err)
		}
	}()

	runID := res.RunID.String()
	if _, err = tx.ExecContext(ctx, l.db.Rebind(
		`INSERT INTO batch_run (id, papers_dir, started_at, finished_at, attempted, succeeded, failed, record_count, output_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		runID, res.PapersDir, res.StartedAt.UTC(), res.FinishedAt.UTC(),
		res.Attempted, res.Succeeded, res.Failed, len(res.Records), res.OutputPath,
	); err != nil {
		return fmt.Errorf("insert batch_run: %w", err)
	}

	jobStmt, err := tx.PrepareContext(ctx, l.db.Rebind(
		`INSERT INTO paper_job (run_id, seq, paper_name, file_path, status, failure_code, failure_reason,
		                        record_count, excerpt_chars, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare paper_job: %w", err)
	}
	defer func() { _ = jobStmt.Close() }()

	for i, j := range res.Jobs {
		var finished *time.Time
		if j.FinishedAt != nil {
			f := j.FinishedAt.UTC()
			finished = &f
		}
		if _, err = jobStmt.ExecContext(ctx,
			runID, i+1, j.PaperName, j.FilePath, string(j.Status), j.FailureCode, j.FailureReason,
			j.RecordCount, j.ExcerptChars, j.StartedAt.UTC(), finished,
		); err != nil {
			return fmt.Errorf("insert paper_job %q: %w", j.PaperName, err)
		}
	}

	affStmt, err := tx.PrepareContext(ctx, l.db.Rebind(
		`INSERT INTO affiliation (run_id, seq, author_name, email, department, institution, country, paper_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare affiliation: %w", err)
	}
	defer func() { _ = affStmt.Close() }()

	for i, r := range res.Records {
		if _, err = affStmt.ExecContext(ctx,
			runID, i+1, r.AuthorName, r.Email, r.Department, r.Institution, r.Country, r.PaperName,
		); err != nil {
			return fmt.Errorf("insert affiliation %d: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	l.logger.Info("ledger.run_saved",
		"run_id", runID,
		"jobs", len(res.Jobs),
		"records", len(res.Records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

const runColumns = `id, papers_dir, started_at, finished_at, attempted, succeeded, failed, record_count, output_path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunSummary, error) {
	var s RunSummary
	err := row.Scan(&s.ID, &s.PapersDir, &s.StartedAt, &s.FinishedAt,
		&s.Attempted, &s.Succeeded, &s.Failed, &s.RecordCount, &s.OutputPath)
	return s, err
}

// ListRuns returns the most recent runs, newest first.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.SQL.QueryContext(ctx, l.db.Rebind(
		`SELECT `+runColumns+` FROM batch_run ORDER BY started_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, common.NewAppError(common.CodeLedgerError, "list runs", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RunSummary
	for rows.Next() {
		s, err := scanRun(rows)
		if err != nil {
			return nil, common.NewAppError(common.CodeLedgerError, "scan run", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeLedgerError, "list runs", err)
	}
	return out, nil
}

// Run returns one stored run. An unknown id is a LedgerError.
func (l *Ledger) Run(ctx context.Context, runID string) (RunSummary, error) {
	s, err := scanRun(l.db.SQL.QueryRowContext(ctx, l.db.Rebind(
		`SELECT `+runColumns+` FROM batch_run WHERE id = ?`), runID))
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, common.NewAppError(common.CodeLedgerError, fmt.Sprintf("run %s not found", runID), nil)
	}
	if err != nil {
		return RunSummary{}, common.NewAppError(common.CodeLedgerError, "get run "+runID, err)
	}
	return s, nil
}

// Failures returns the failed papers of a run in processing order.
func (l *Ledger) Failures(ctx context.Context, runID string) ([]entity.Failure, error) {
	rows, err := l.db.SQL.QueryContext(ctx, l.db.Rebind(
		`SELECT paper_name, failure_code, failure_reason FROM paper_job
		 WHERE run_id = ? AND status = 'failed' ORDER BY seq`), runID)
	if err != nil {
		return nil, common.NewAppError(common.CodeLedgerError, "list failures", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.Failure
	for rows.Next() {
		var f entity.Failure
		if err := rows.Scan(&f.PaperName, &f.Code, &f.Reason); err != nil {
			return nil, common.NewAppError(common.CodeLedgerError, "scan failure", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Affiliations returns the stored records of a run in table order.
func (l *Ledger) Affiliations(ctx context.Context, runID string) ([]entity.AffiliationRecord, error) {
	rows, err := l.db.SQL.QueryContext(ctx, l.db.Rebind(
		`SELECT author_name, email, department, institution, country, paper_name FROM affiliation
		 WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, common.NewAppError(common.CodeLedgerError, "list affiliations", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.AffiliationRecord
	for rows.Next() {
		var r entity.AffiliationRecord
		if err := rows.Scan(&r.AuthorName, &r.Email, &r.Department, &r.Institution, &r.Country, &r.PaperName); err != nil {
			return nil, common.NewAppError(common.CodeLedgerError, "scan affiliation", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
