package entity

import (
	"time"

	"github.com/google/uuid"
)

// Failure is one failed paper with its human-readable reason.
type Failure struct {
	PaperName string `json:"paper_name"`
	Code      string `json:"code,omitempty"`
	Reason    string `json:"reason"`
}

// BatchResult is the aggregate outcome of a run. Records are in paper
// processing order, then author order within a paper, and never include rows
// from a failed job.
type BatchResult struct {
	RunID      uuid.UUID           `json:"run_id"`
	PapersDir  string              `json:"papers_dir"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Records    []AffiliationRecord `json:"-"`
	Attempted  int                 `json:"attempted"`
	Succeeded  int                 `json:"succeeded"`
	Failed     int                 `json:"failed"`
	Failures   []Failure           `json:"failures"`
	Jobs       []PaperJob          `json:"jobs"`

	// OutputPath is the table written for this run, once it exists.
	OutputPath string `json:"output_path,omitempty"`

	// LedgerError is set when the run could not be recorded in the ledger.
	LedgerError string `json:"ledger_error,omitempty"`
}

// RecordCount returns the number of extracted rows.
func (r BatchResult) RecordCount() int {
	return len(r.Records)
}
