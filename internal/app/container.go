// Package app wires configuration into a ready-to-use orchestrator.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phoenixqa/smartcase/internal/adapter/ai/claude"
	"github.com/phoenixqa/smartcase/internal/adapter/ai/gemini"
	"github.com/phoenixqa/smartcase/internal/adapter/ai/mock"
	"github.com/phoenixqa/smartcase/internal/adapter/ai/openai"
	"github.com/phoenixqa/smartcase/internal/adapter/ai/reliability"
	"github.com/phoenixqa/smartcase/internal/domain/testgen"
	"github.com/phoenixqa/smartcase/internal/infra/config"
	"github.com/phoenixqa/smartcase/internal/usecase/generation"
)

// BuildOrchestrator constructs provider adapters for every backend with
// credentials and returns an orchestrator over them. In mock mode all three
// provider names are served by deterministic mocks so multi-provider flows
// work offline.
func BuildOrchestrator(ctx context.Context, cfg *config.Config) (*generation.Orchestrator, error) {
	providers, err := buildProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.ProviderRPS > 0 {
		for i, p := range providers {
			providers[i] = reliability.Throttle(p, cfg.ProviderRPS, 1)
		}
	}

	return generation.New(providers, generation.WithProviderOrder(cfg.ProviderOrder))
}

func buildProviders(ctx context.Context, cfg *config.Config) ([]testgen.Provider, error) {
	if cfg.MockMode {
		slog.InfoContext(ctx, "mock mode enabled - AI calls will be simulated")
		return []testgen.Provider{
			mock.NewProvider(claude.Name),
			mock.NewProvider(gemini.Name),
			mock.NewProvider(openai.Name),
		}, nil
	}

	var providers []testgen.Provider

	if cfg.AnthropicAPIKey != "" {
		p, err := claude.NewProvider(claude.Config{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.ClaudeModel,
			Timeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("claude: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.GeminiAPIKey != "" {
		p, err := gemini.NewProvider(ctx, gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.OpenAIAPIKey != "" {
		p, err := openai.NewProvider(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		providers = append(providers, p)
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no provider credentials configured (set OPENAI_API_KEY, GEMINI_API_KEY, or ANTHROPIC_API_KEY, or SMARTCASE_MOCK_MODE=true)")
	}

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	slog.InfoContext(ctx, "providers configured", "providers", names)
	return providers, nil
}
