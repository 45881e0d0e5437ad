package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/phoenixqa/smartcase/internal/adapter/fileanalyzer"
	"github.com/phoenixqa/smartcase/internal/app"
	"github.com/phoenixqa/smartcase/internal/domain/testgen"
	"github.com/phoenixqa/smartcase/internal/export"
	"github.com/phoenixqa/smartcase/internal/infra/config"
	"github.com/phoenixqa/smartcase/internal/render"
)

type generateOptions struct {
	story        string
	storyFile    string
	format       string
	provider     string
	numCases     int
	outputDir    string
	prefix       string
	contextFiles []string
	configFile   string
	mock         bool
	quiet        bool
}

func runGenerate(ctx context.Context, opts *generateOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.configFile != "" {
		if err := cfg.ApplyFile(opts.configFile); err != nil {
			return err
		}
	}
	if opts.mock {
		cfg.MockMode = true
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}

	provider := opts.provider
	if provider == "" {
		provider = cfg.DefaultProvider
	}

	formats, err := resolveFormats(opts.format)
	if err != nil {
		return err
	}

	story, err := resolveStory(opts)
	if err != nil {
		return err
	}

	blocks, analyzeErrs := fileanalyzer.AnalyzeAll(opts.contextFiles)
	for _, aerr := range analyzeErrs {
		slog.Warn("skipping context file", "error", aerr)
	}

	orchestrator, err := app.BuildOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	now := time.Now()
	meta := render.Metadata{GeneratedAt: now, Story: story}
	var docs []export.Document

	for _, format := range formats {
		result, err := orchestrator.Generate(ctx, testgen.GenerateRequest{
			Story:     story,
			Format:    format,
			Provider:  provider,
			CaseCount: opts.numCases,
			Context:   blocks,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		for _, w := range result.Warnings {
			slog.Warn("provider failed", "provider", w.Provider, "reason", w.Reason)
		}

		if format == testgen.FormatBDD {
			docs = append(docs, export.Document{Kind: "bdd", Content: render.BDDDocument(result.BDD, meta)})
		} else {
			docs = append(docs, export.Document{Kind: "plain", Content: render.PlainDocument(result.Plain, meta)})
		}
		if !opts.quiet {
			fmt.Fprintf(os.Stderr, "generated %d %s records\n", result.Len(), format)
		}
	}

	writer := export.NewWriter(cfg.OutputDir)
	sessionID, files, err := writer.WriteSession(opts.prefix, now, docs)
	if err != nil {
		return err
	}

	if !opts.quiet {
		fmt.Fprintf(os.Stderr, "session %s written to %s\n", sessionID, cfg.OutputDir)
	}
	for _, f := range files {
		fmt.Println(f.Path)
	}
	return nil
}

func resolveFormats(format string) ([]testgen.Format, error) {
	switch format {
	case "plain":
		return []testgen.Format{testgen.FormatPlain}, nil
	case "bdd":
		return []testgen.Format{testgen.FormatBDD}, nil
	case "both":
		return []testgen.Format{testgen.FormatPlain, testgen.FormatBDD}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format: %q", testgen.ErrInvalidInput, format)
	}
}

func resolveStory(opts *generateOptions) (string, error) {
	if opts.story != "" {
		return strings.TrimSpace(opts.story), nil
	}
	data, err := os.ReadFile(opts.storyFile)
	if err != nil {
		return "", fmt.Errorf("read story file: %w", err)
	}
	story := strings.TrimSpace(string(data))
	if story == "" {
		return "", fmt.Errorf("%w: story file is empty: %s", testgen.ErrInvalidInput, opts.storyFile)
	}
	return story, nil
}
