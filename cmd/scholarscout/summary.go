package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Arupreza/ScholarScout/internal/common"
	"github.com/Arupreza/ScholarScout/internal/entity"
)

// runSummary is what the extract command reports once the table is written.
type runSummary struct {
	RunID       string           `json:"run_id"`
	PapersDir   string           `json:"papers_dir"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
	Attempted   int              `json:"attempted"`
	Succeeded   int              `json:"succeeded"`
	Failed      int              `json:"failed"`
	Records     int              `json:"records"`
	Output      string           `json:"output"`
	Failures    []entity.Failure `json:"failures"`
	LedgerError string           `json:"ledger_error,omitempty"`
}

func newRunSummary(res entity.BatchResult, output string) runSummary {
	failures := res.Failures
	if failures == nil {
		failures = []entity.Failure{}
	}
	return runSummary{
		RunID:       res.RunID.String(),
		PapersDir:   res.PapersDir,
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
		Attempted:   res.Attempted,
		Succeeded:   res.Succeeded,
		Failed:      res.Failed,
		Records:     res.RecordCount(),
		Output:      output,
		Failures:    failures,
		LedgerError: res.LedgerError,
	}
}

func (s runSummary) Print(w io.Writer) {
	fmt.Fprintf(w, "Papers attempted: %d\n", s.Attempted)
	fmt.Fprintf(w, "Succeeded:        %d\n", s.Succeeded)
	fmt.Fprintf(w, "Failed:           %d\n", s.Failed)
	fmt.Fprintf(w, "Records:          %d\n", s.Records)
	fmt.Fprintf(w, "Output:           %s\n", s.Output)
	if s.LedgerError != "" {
		fmt.Fprintf(w, "Ledger:           %s\n", s.LedgerError)
	}
	if len(s.Failures) > 0 {
		fmt.Fprintln(w, "Failed papers:")
		for _, f := range s.Failures {
			fmt.Fprintf(w, "- %s: %s\n", f.PaperName, f.Reason)
		}
	}
}

func (s runSummary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return common.NewAppError(common.CodeOutputError, "encode summary", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return common.NewAppError(common.CodeOutputError, "create summary directory", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return common.NewAppError(common.CodeOutputError, "write summary", err)
	}
	return nil
}
