package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"earningscall/internal/config"
	"earningscall/internal/observability"
	"earningscall/internal/summarizer"
	"earningscall/internal/transcript"
	"earningscall/internal/upstream"
)

type summarizeOptions struct {
	file        string
	company     string
	concurrency int
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "earningscall-cli",
		Short: "Summarize earnings call transcripts from the command line",
		Long: `earningscall-cli summarizes an earnings call transcript into the five fixed
categories served by the HTTP API, using the same LLM_* environment settings.

Example usage:
  earningscall-cli summarize --file q3-call.pdf --company "Acme Corp"
  earningscall-cli categories`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSummarizeCmd(), newCategoriesCmd())
	return root
}

func newSummarizeCmd() *cobra.Command {
	opts := summarizeOptions{}
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a .txt or .pdf transcript and print the JSON record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummarize(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "transcript file (.pdf or plain text)")
	cmd.Flags().StringVarP(&opts.company, "company", "c", "", "company name (default \"Not provided\")")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "parallel category calls (default SUMMARY_CONCURRENCY)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runSummarize(cmd *cobra.Command, opts summarizeOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if opts.concurrency > 0 {
		cfg.SummaryConcurrency = opts.concurrency
	}

	text, err := transcript.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	if words := transcript.CountWords(text); words == 0 || words > cfg.MaxTranscriptWords {
		return fmt.Errorf("transcript has %d words, want between 1 and %d", words, cfg.MaxTranscriptWords)
	}

	logger := observability.NewLogger(cfg.LogLevel, os.Stderr)
	generator, err := upstream.New(cmd.Context(), cfg, upstream.NewHTTPClient(cfg.RequestTimeout, nil))
	if err != nil {
		return err
	}
	svc := summarizer.New(generator,
		summarizer.WithConcurrency(cfg.SummaryConcurrency),
		summarizer.WithTimeout(cfg.CategoryTimeout),
		summarizer.WithLogger(logger),
	)

	result, err := svc.Summarize(cmd.Context(), text, opts.company)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the summary categories and their guidance",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, c := range summarizer.Categories() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %s\n", c.Key, c.Guidance)
			}
		},
	}
}
