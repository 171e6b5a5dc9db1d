package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Arupreza/ScholarScout/internal/common"
	"github.com/Arupreza/ScholarScout/internal/export"
	"github.com/Arupreza/ScholarScout/internal/llm"
	"github.com/Arupreza/ScholarScout/internal/llm/gemini"
	"github.com/Arupreza/ScholarScout/internal/llm/openai"
	"github.com/Arupreza/ScholarScout/internal/pdftext"
	"github.com/Arupreza/ScholarScout/internal/pipeline"
	"github.com/Arupreza/ScholarScout/internal/repository"
)

func newExtractCmd(a *app) *cobra.Command {
	var summaryPath string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Process every PDF in the papers directory and write the affiliation table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runExtract(cmd.Context(), summaryPath)
		},
	}
	cmd.Flags().StringVar(&summaryPath, "summary-json", "", "also write the run summary as JSON to this path")
	return cmd
}

func (a *app) runExtract(ctx context.Context, summaryPath string) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Ledger.DSN != "" {
		if _, _, err := repository.ParseDSN(cfg.Ledger.DSN); err != nil {
			return err
		}
	}

	completer, err := newCompleter(ctx, cfg.LLM, a.logger)
	if err != nil {
		return err
	}
	parser, err := llm.NewParser(a.logger)
	if err != nil {
		return err
	}
	proc := pipeline.NewProcessor(a.logger,
		newExtractor(cfg, a.logger),
		completer,
		parser,
		pipeline.NewPacer(cfg.Batch.InterCallDelay),
	)
	runner := pipeline.NewRunner(a.logger, proc, nil)

	var ledgerErr string
	if cfg.Ledger.DSN != "" {
		db, err := openLedger(ctx, cfg.Ledger.DSN, a.logger)
		if err != nil {
			a.logger.Warn("ledger.unavailable", "error", err)
			ledgerErr = err.Error()
		} else {
			defer db.Close(a.logger)
			runner.Ledger = repository.NewLedger(db, a.logger)
		}
	}

	res, err := runner.Run(ctx, cfg.Batch.PapersDir)
	if err != nil {
		return err
	}

	if err := export.NewService(a.logger).Write(export.Assemble(res), cfg.Output.Path, cfg.Output.Mode); err != nil {
		return err
	}
	res.OutputPath = cfg.Output.Path
	runner.Record(ctx, &res)
	if ledgerErr != "" {
		res.LedgerError = ledgerErr
	}

	sum := newRunSummary(res, cfg.Output.Path)
	sum.Print(a.stdout)
	if summaryPath != "" {
		if err := sum.WriteJSON(summaryPath); err != nil {
			return err
		}
	}
	return nil
}

// newCompleter builds the completion client for the configured provider.
func newCompleter(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case common.ProviderGemini:
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.BaseURL,
			Model:   cfg.ModelName(),
			Timeout: cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case common.ProviderOpenAI, "":
		return openai.NewClient(openai.Config{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.BaseURL,
			Model:   cfg.ModelName(),
			Timeout: cfg.Timeout,
		}, logger), nil
	}
	return nil, common.ConfigurationError("unknown llm provider "+cfg.Provider, nil)
}

func newExtractor(cfg *common.Config, logger *slog.Logger) *pdftext.Extractor {
	return pdftext.NewExtractor(pdftext.Config{
		Backend:  cfg.PDF.Backend,
		MaxPages: cfg.PDF.MaxPages,
		MaxChars: cfg.PDF.MaxExcerptChars,
	}, logger)
}

// openLedger connects, health-checks and migrates the run ledger.
func openLedger(ctx context.Context, dsn string, logger *slog.Logger) (*repository.DB, error) {
	db, err := repository.Open(ctx, repository.Config{
		DSN:             dsn,
		MaxConns:        4,
		MaxConnLifetime: 30 * time.Minute,
		DialTimeout:     3 * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := db.HealthCheck(ctx, time.Second); err != nil {
		db.Close(logger)
		return nil, common.NewAppError(common.CodeLedgerError, "ledger health check", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close(logger)
		return nil, common.NewAppError(common.CodeLedgerError, "migrate ledger", err)
	}
	return db, nil
}
