package entity

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/Arupreza/ScholarScout/constants"
)

// PaperJob represents one paper's unit of work through the pipeline.
type PaperJob struct {
	FilePath      string              `json:"file_path"`
	PaperName     string              `json:"paper_name"`
	Status        constants.JobStatus `json:"status"`
	FailureCode   string              `json:"failure_code,omitempty"`
	FailureReason string              `json:"failure_reason,omitempty"`
	RecordCount   int                 `json:"record_count"`
	ExcerptChars  int                 `json:"excerpt_chars"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    *time.Time          `json:"finished_at,omitempty"`
}

// NewPaperJob creates a pending job for path; the paper name is the file stem.
func NewPaperJob(path string) PaperJob {
	return PaperJob{
		FilePath:  path,
		PaperName: PaperNameFromPath(path),
		Status:    constants.JobStatusPending,
	}
}

// PaperNameFromPath returns the file name without directory and extension.
func PaperNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
