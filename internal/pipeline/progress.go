package pipeline

import (
	"log/slog"

	"github.com/Arupreza/ScholarScout/constants"
)

// Progress is emitted after every finished job.
type Progress struct {
	Completed int                 `json:"completed"`
	Total     int                 `json:"total"`
	Failed    int                 `json:"failed"`
	Paper     string              `json:"paper"`
	Status    constants.JobStatus `json:"status"`
}

type ProgressReporter interface {
	Report(p Progress)
}

// ProgressFunc adapts a plain function to ProgressReporter.
type ProgressFunc func(p Progress)

func (f ProgressFunc) Report(p Progress) { f(p) }

// LogProgress reports progress as structured log lines.
type LogProgress struct {
	Logger *slog.Logger
}

func (l LogProgress) Report(p Progress) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("batch.progress",
		"completed", p.Completed,
		"total", p.Total,
		"failed", p.Failed,
		"paper", p.Paper,
		"status", p.Status,
	)
}
