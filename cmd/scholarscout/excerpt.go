package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arupreza/ScholarScout/internal/llm"
	"github.com/Arupreza/ScholarScout/internal/pdftext"
)

func newExcerptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "excerpt <pdf>",
		Short: "Print the text excerpt extracted from one PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := a.excerpt(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, ex.Text)
			return nil
		},
	}
}

func newPromptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <pdf>",
		Short: "Print the exact prompt that would be sent for one PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := a.excerpt(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(a.stdout, llm.BuildAffiliationPrompt(ex.Text))
			return nil
		},
	}
}

func (a *app) excerpt(cmd *cobra.Command, path string) (pdftext.Excerpt, error) {
	if err := a.cfg.ValidateSettings(); err != nil {
		return pdftext.Excerpt{}, err
	}
	ex, err := newExtractor(a.cfg, a.logger).Extract(cmd.Context(), path)
	if err != nil {
		return ex, err
	}
	a.logger.Info("excerpt.extracted",
		"path", path,
		"backend", ex.Backend,
		"pages_read", ex.PagesRead,
		"total_pages", ex.TotalPages,
		"empty_pages", ex.EmptyPages,
		"chars", len([]rune(ex.Text)),
		"truncated", ex.Truncated,
		"elapsed_ms", ex.Duration.Milliseconds(),
	)
	for _, w := range ex.Warnings {
		a.logger.Warn("excerpt.warning", "path", path, "warning", w)
	}
	return ex, nil
}
