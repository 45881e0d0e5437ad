package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "smartcase",
		Short: "Generate software test cases from a user story using AI",
		Long: `SmartCase turns a natural-language user story into plain-English
test cases and BDD/Gherkin scenarios by prompting one or more hosted LLM
providers, and exports the results as markdown documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.story, "story", "s", "", "user story text")
	flags.StringVarP(&opts.storyFile, "story-file", "f", "", "path to a file containing the user story")
	flags.StringVar(&opts.format, "format", "both", "output format: plain, bdd, or both")
	flags.StringVarP(&opts.provider, "provider", "P", "", "provider name (openai, gemini, claude) or \"all\"")
	flags.IntVarP(&opts.numCases, "num-cases", "n", 0, "number of test cases to generate (0 = provider default)")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for generated files (default from config)")
	flags.StringVarP(&opts.prefix, "prefix", "p", "generated_tests", "filename prefix for generated files")
	flags.StringArrayVar(&opts.contextFiles, "context-file", nil, "supporting context file, repeatable")
	flags.StringVar(&opts.configFile, "config", "", "YAML config overrides file")
	flags.BoolVar(&opts.mock, "mock", false, "use the deterministic mock providers (no API calls)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "print only the generated file paths")

	cmd.MarkFlagsMutuallyExclusive("story", "story-file")
	cmd.MarkFlagsOneRequired("story", "story-file")

	return cmd
}
