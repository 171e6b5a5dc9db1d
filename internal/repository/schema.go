package repository

import (
	"context"
	"fmt"
)

// schema is portable between SQLite and Postgres.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS batch_run (
		id           TEXT PRIMARY KEY,
		papers_dir   TEXT NOT NULL DEFAULT '',
		started_at   TIMESTAMP NOT NULL,
		finished_at  TIMESTAMP NOT NULL,
		attempted    INTEGER NOT NULL,
		succeeded    INTEGER NOT NULL,
		failed       INTEGER NOT NULL,
		record_count INTEGER NOT NULL,
		output_path  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS paper_job (
		run_id         TEXT NOT NULL REFERENCES batch_run(id) ON DELETE CASCADE,
		seq            INTEGER NOT NULL,
		paper_name     TEXT NOT NULL,
		file_path      TEXT NOT NULL,
		status         TEXT NOT NULL,
		failure_code   TEXT NOT NULL DEFAULT '',
		failure_reason TEXT NOT NULL DEFAULT '',
		record_count   INTEGER NOT NULL DEFAULT 0,
		excerpt_chars  INTEGER NOT NULL DEFAULT 0,
		started_at     TIMESTAMP,
		finished_at    TIMESTAMP,
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS affiliation (
		run_id      TEXT NOT NULL REFERENCES batch_run(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		author_name TEXT NOT NULL,
		email       TEXT NOT NULL DEFAULT '',
		department  TEXT NOT NULL DEFAULT '',
		institution TEXT NOT NULL DEFAULT '',
		country     TEXT NOT NULL DEFAULT '',
		paper_name  TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_affiliation_paper ON affiliation (paper_name)`,
}

// Migrate creates the ledger tables when missing.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.SQL.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
