package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Arupreza/ScholarScout/internal/common"
	"github.com/Arupreza/ScholarScout/internal/entity"
	"github.com/Arupreza/ScholarScout/internal/export"
	"github.com/Arupreza/ScholarScout/internal/repository"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded runs, or print the table and failures of one run",
		Long: `Without arguments, lists the most recent runs recorded in the ledger.
With a run id, prints that run's affiliation table as CSV on stdout and its
failed papers on stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Ledger.DSN == "" {
				return common.ConfigurationError("--ledger-dsn (or LEDGER_DSN) is required", nil)
			}
			ctx := cmd.Context()
			db, err := openLedger(ctx, a.cfg.Ledger.DSN, a.logger)
			if err != nil {
				return err
			}
			defer db.Close(a.logger)
			ledger := repository.NewLedger(db, a.logger)

			if len(args) == 0 {
				runs, err := ledger.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "RUN ID\tSTARTED\tATTEMPTED\tSUCCEEDED\tFAILED\tRECORDS\tPAPERS DIR\tOUTPUT")
				for _, r := range runs {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
						r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.Attempted, r.Succeeded, r.Failed, r.RecordCount, r.PapersDir, r.OutputPath)
				}
				return tw.Flush()
			}

			run, err := ledger.Run(ctx, args[0])
			if err != nil {
				return err
			}
			runID := run.ID
			recs, err := ledger.Affiliations(ctx, runID)
			if err != nil {
				return err
			}
			failures, err := ledger.Failures(ctx, runID)
			if err != nil {
				return err
			}
			t := export.Assemble(entity.BatchResult{Records: recs})
			if err := export.WriteCSV(a.stdout, t, true); err != nil {
				return common.NewAppError(common.CodeOutputError, "write table", err)
			}
			for _, f := range failures {
				fmt.Fprintf(a.stderr, "- %s: %s\n", f.PaperName, f.Reason)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	return cmd
}
