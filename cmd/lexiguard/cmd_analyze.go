package main

import (
	"strings"

	"github.com/spf13/cobra"

	"lexiguard-backend/internal/bootstrap"
	"lexiguard-backend/internal/shared/config"
)

var analyzeFlags struct {
	persona  string
	language string
	outPath  string
	provider string
	model    string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run the clause risk analysis on a document",
	Long: `Extract the document text and classify every clause for a persona.

Usage:
  lexiguard analyze lease.pdf --persona Student --language Spanish
  lexiguard analyze contract.png --persona "Small Business" -o report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.persona, "persona", "General User", "Reader persona")
	f.StringVar(&analyzeFlags.language, "language", "English", "Language for the summary and explanations")
	f.StringVarP(&analyzeFlags.outPath, "output", "o", "", "Also write the report JSON to this path")
	f.StringVar(&analyzeFlags.provider, "provider", "", "LLM provider override (gemini, openai, compat)")
	f.StringVar(&analyzeFlags.model, "model", "", "Analysis model override")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	data, mediaType, err := readDocument(args[0])
	if err != nil {
		return err
	}
	cfg := config.Load()
	if analyzeFlags.provider != "" {
		cfg.LLMProvider = strings.ToLower(strings.TrimSpace(analyzeFlags.provider))
	}
	if analyzeFlags.model != "" {
		cfg.LLMAnalysisModel = analyzeFlags.model
	}
	core, closeFn, err := bootstrap.OpenCore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := core.Pipeline.Run(cmd.Context(), data, mediaType, analyzeFlags.persona, analyzeFlags.language)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), analyzeFlags.outPath, report)
}
