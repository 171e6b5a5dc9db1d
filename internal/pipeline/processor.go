package pipeline

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/Arupreza/ScholarScout/constants"
	"github.com/Arupreza/ScholarScout/internal/common"
	"github.com/Arupreza/ScholarScout/internal/entity"
	"github.com/Arupreza/ScholarScout/internal/llm"
	"github.com/Arupreza/ScholarScout/internal/pdftext"
)

// TextExtractor produces the bounded text excerpt of one paper.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (pdftext.Excerpt, error)
}

// ResponseParser maps a raw completion to records for one paper.
type ResponseParser interface {
	Parse(raw, paperName string) ([]entity.AffiliationRecord, error)
}

// Processor runs one paper through extract, prompt, model call and parse.
type Processor struct {
	Logger      *slog.Logger
	Extractor   TextExtractor
	Completer   llm.Completer
	Parser      ResponseParser
	Pacer       *Pacer
	BuildPrompt func(excerpt string) string

	now func() time.Time
}

func NewProcessor(logger *slog.Logger, ex TextExtractor, c llm.Completer, parser ResponseParser, pacer *Pacer) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if pacer == nil {
		pacer = NewPacer(0)
	}
	return &Processor{
		Logger:      logger,
		Extractor:   ex,
		Completer:   c,
		Parser:      parser,
		Pacer:       pacer,
		BuildPrompt: llm.BuildAffiliationPrompt,
		now:         time.Now,
	}
}

// ProcessPaper advances job through its stages and returns the paper's
// records. On failure the job is marked failed with the error's code and
// reason, and no records are returned. An empty excerpt is still sent to the
// model.
func (p *Processor) ProcessPaper(ctx context.Context, job *entity.PaperJob) ([]entity.AffiliationRecord, error) {
	ctx = common.WithPaperName(ctx, job.PaperName)
	start := p.now()
	job.StartedAt = start

	p.Logger.Debug("paper.start", "paper", job.PaperName, "path", job.FilePath)

	// 1) Excerpt
	ex, err := p.Extractor.Extract(ctx, job.FilePath)
	if err != nil {
		if common.ErrorCode(err) == "" {
			err = common.UnreadablePaper("extract text", err)
		}
		return nil, p.fail(job, "extract", err)
	}
	job.ExcerptChars = utf8.RuneCountInString(ex.Text)
	job.Status = constants.JobStatusExtractedText
	if ex.Text == "" {
		p.Logger.Warn("paper.empty_excerpt", "paper", job.PaperName, "pages_read", ex.PagesRead)
	}

	// 2) Model call, paced from the start of the previous call
	prompt := p.BuildPrompt(ex.Text)
	if err := p.Pacer.Wait(ctx); err != nil {
		return nil, p.fail(job, "pace", err)
	}
	raw, err := p.Completer.Complete(ctx, prompt)
	if err != nil {
		if common.ErrorCode(err) == "" {
			err = common.ServiceError("completion", err)
		}
		return nil, p.fail(job, "complete", err)
	}
	job.Status = constants.JobStatusModelCalled

	// 3) Parse
	records, err := p.Parser.Parse(raw, job.PaperName)
	if err != nil {
		if common.ErrorCode(err) == "" {
			err = common.MalformedExtraction("parse response", err)
		}
		return nil, p.fail(job, "parse", err)
	}
	job.Status = constants.JobStatusParsed

	job.RecordCount = len(records)
	job.Status = constants.JobStatusSucceeded
	finished := p.now()
	job.FinishedAt = &finished

	p.Logger.Info("paper.succeeded",
		"paper", job.PaperName,
		"records", len(records),
		"excerpt_chars", job.ExcerptChars,
		"elapsed_ms", finished.Sub(start).Milliseconds(),
	)
	return records, nil
}

func (p *Processor) fail(job *entity.PaperJob, stage string, err error) error {
	finished := p.now()
	job.Status = constants.JobStatusFailed
	job.FailureCode = common.ErrorCode(err)
	job.FailureReason = err.Error()
	job.FinishedAt = &finished

	p.Logger.Warn("paper.failed",
		"paper", job.PaperName,
		"stage", stage,
		"code", job.FailureCode,
		"error", err,
		"elapsed_ms", finished.Sub(job.StartedAt).Milliseconds(),
	)
	return err
}
