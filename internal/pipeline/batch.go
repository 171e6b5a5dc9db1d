package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Arupreza/ScholarScout/internal/common"
	"github.com/Arupreza/ScholarScout/internal/entity"
	"github.com/Arupreza/ScholarScout/internal/ingest"
)

// RunRecorder persists a finished run (see repository.Ledger).
type RunRecorder interface {
	SaveRun(ctx context.Context, res entity.BatchResult) error
}

// Runner drives a whole batch: it enumerates the papers directory and feeds
// each paper through the Processor, strictly one at a time.
type Runner struct {
	Logger    *slog.Logger
	Processor *Processor
	Progress  ProgressReporter
	Ledger    RunRecorder // optional, see Record

	now func() time.Time
}

func NewRunner(logger *slog.Logger, proc *Processor, progress ProgressReporter) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if progress == nil {
		progress = LogProgress{Logger: logger}
	}
	return &Runner{Logger: logger, Processor: proc, Progress: progress, now: time.Now}
}

// Run processes every PDF directly inside papersDir in lexicographic order.
// A failing paper is recorded and the batch moves on; only an invalid
// papersDir or cancellation of ctx ends the run early, in which case no
// result is returned.
func (r *Runner) Run(ctx context.Context, papersDir string) (entity.BatchResult, error) {
	paths, stats, err := ingest.ListPapers(papersDir)
	if err != nil {
		return entity.BatchResult{}, err
	}

	res := entity.BatchResult{
		RunID:     uuid.New(),
		PapersDir: papersDir,
		StartedAt: r.now(),
		Records:   []entity.AffiliationRecord{},
		Failures:  []entity.Failure{},
		Jobs:      make([]entity.PaperJob, 0, len(paths)),
	}
	ctx = common.WithRunID(ctx, res.RunID)

	r.Logger.Info("batch.start",
		"run_id", res.RunID,
		"papers_dir", papersDir,
		"papers", len(paths),
		"skipped_entries", stats.Skipped,
	)

	total := len(paths)
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return entity.BatchResult{}, r.aborted(res, err)
		}

		job := entity.NewPaperJob(path)
		records, perr := r.Processor.ProcessPaper(ctx, &job)
		if err := ctx.Err(); err != nil {
			return entity.BatchResult{}, r.aborted(res, err)
		}

		res.Attempted++
		if perr != nil {
			res.Failed++
			res.Failures = append(res.Failures, entity.Failure{
				PaperName: job.PaperName,
				Code:      job.FailureCode,
				Reason:    job.FailureReason,
			})
		} else {
			res.Succeeded++
			res.Records = append(res.Records, records...)
		}
		res.Jobs = append(res.Jobs, job)

		r.Progress.Report(Progress{
			Completed: i + 1,
			Total:     total,
			Failed:    res.Failed,
			Paper:     job.PaperName,
			Status:    job.Status,
		})
	}

	res.FinishedAt = r.now()
	r.Logger.Info("batch.done",
		"run_id", res.RunID,
		"attempted", res.Attempted,
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"records", len(res.Records),
		"elapsed_ms", res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
	)
	return res, nil
}

// Record writes res to the ledger, if one is configured. It is called once
// the output table exists so the stored run points at a real file. A ledger
// failure is kept on res and logged; it never fails the run.
func (r *Runner) Record(ctx context.Context, res *entity.BatchResult) {
	if r.Ledger == nil {
		return
	}
	if err := r.Ledger.SaveRun(ctx, *res); err != nil {
		r.Logger.Error("batch.ledger.failed", "run_id", res.RunID, "error", err)
		res.LedgerError = err.Error()
	}
}

func (r *Runner) aborted(res entity.BatchResult, err error) error {
	r.Logger.Warn("batch.aborted",
		"run_id", res.RunID,
		"completed", res.Attempted,
		"error", err,
	)
	return fmt.Errorf("batch aborted after %d papers: %w", res.Attempted, err)
}
