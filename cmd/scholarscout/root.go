package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Arupreza/ScholarScout/internal/common"
)

// Process exit codes.
const (
	exitOK          = 0
	exitRuntime     = 1
	exitConfigError = 2
)

// rootOptions are the flags shared by every subcommand. Only flags the user
// actually set override the loaded configuration.
type rootOptions struct {
	configPath string
	papersDir  string
	outPath    string
	mode       string
	provider   string
	model      string
	baseURL    string
	pdfBackend string
	maxPages   int
	maxChars   int
	delay      string
	ledgerDSN  string
	logLevel   string
	logFormat  string
}

// app carries what PersistentPreRunE resolved into the subcommands.
type app struct {
	opts   rootOptions
	cfg    *common.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func setupLogger(cfg common.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(cfg.Level) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO", "":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)

	slog.SetDefault(logger)
	return logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "scholarscout",
		Short: "Extract author affiliations from research-paper PDFs",
		Long: `ScholarScout reads the first pages of every PDF in a papers directory, asks a
language model for each author's affiliation and writes one table with a row per
author per paper.

Examples:
  scholarscout extract --papers-dir ./Papers --out papers_affiliations.csv
  scholarscout extract --config scholarscout.yaml --out affiliations.xlsx
  scholarscout excerpt ./Papers/attention.pdf
  scholarscout prompt ./Papers/attention.pdf
  scholarscout runs --ledger-dsn sqlite://scholarscout.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return common.ConfigurationError(err.Error(), nil)
	})

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.opts.configPath, "config", "", "YAML configuration file")
	f.StringVar(&a.opts.papersDir, "papers-dir", "", "directory containing the PDFs (default ./Papers)")
	f.StringVar(&a.opts.outPath, "out", "", "output table path, .csv or .xlsx (default ./papers_affiliations.csv)")
	f.StringVar(&a.opts.mode, "mode", "", "output write mode: overwrite, create or append")
	f.StringVar(&a.opts.provider, "provider", "", "completion provider: openai or gemini")
	f.StringVar(&a.opts.model, "model", "", "model identifier")
	f.StringVar(&a.opts.baseURL, "base-url", "", "override the completion service endpoint")
	f.StringVar(&a.opts.pdfBackend, "pdf-backend", "", "PDF text back-end: tabula or ledongthuc")
	f.IntVar(&a.opts.maxPages, "max-pages", 0, "pages read from the start of each PDF (default 3)")
	f.IntVar(&a.opts.maxChars, "max-chars", 0, "excerpt character budget (default 8000)")
	f.StringVar(&a.opts.delay, "delay", "", "pause between model calls, seconds or Go duration (default 0.5)")
	f.StringVar(&a.opts.ledgerDSN, "ledger-dsn", "", "record runs in sqlite://path or postgres://... ")
	f.StringVar(&a.opts.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR")
	f.StringVar(&a.opts.logFormat, "log-format", "", "text or json")

	rootCmd.AddCommand(newExtractCmd(a))
	rootCmd.AddCommand(newExcerptCmd(a))
	rootCmd.AddCommand(newPromptCmd(a))
	rootCmd.AddCommand(newRunsCmd(a))
	return rootCmd
}

// load layers defaults, the config file, the environment and set flags, then
// installs the logger.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := common.LoadConfigFile(a.opts.configPath)
	if err != nil {
		return err
	}
	if err := a.applyFlags(cmd, cfg); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = setupLogger(cfg.Log, a.stderr)
	return nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *common.Config) error {
	set := cmd.Flags().Changed
	o := a.opts
	if set("papers-dir") {
		cfg.Batch.PapersDir = o.papersDir
	}
	if set("out") {
		cfg.Output.Path = o.outPath
	}
	if set("mode") {
		cfg.Output.Mode = strings.ToLower(o.mode)
	}
	if set("provider") {
		cfg.LLM.Provider = strings.ToLower(o.provider)
	}
	if set("model") {
		cfg.LLM.Model = o.model
	}
	if set("base-url") {
		cfg.LLM.BaseURL = o.baseURL
	}
	if set("pdf-backend") {
		cfg.PDF.Backend = strings.ToLower(o.pdfBackend)
	}
	if set("max-pages") {
		cfg.PDF.MaxPages = o.maxPages
	}
	if set("max-chars") {
		cfg.PDF.MaxExcerptChars = o.maxChars
	}
	if set("delay") {
		d, err := common.ParseSeconds(o.delay)
		if err != nil {
			return common.ConfigurationError("--delay", err)
		}
		cfg.Batch.InterCallDelay = d
	}
	if set("ledger-dsn") {
		cfg.Ledger.DSN = o.ledgerDSN
	}
	if set("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if set("log-format") {
		cfg.Log.Format = o.logFormat
	}
	return nil
}

// execute runs the command line and maps the outcome to an exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, common.ErrConfiguration):
		return exitConfigError
	default:
		return exitRuntime
	}
}
