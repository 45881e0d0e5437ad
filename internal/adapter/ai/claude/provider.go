// Package claude implements testgen.Provider using the Anthropic Messages
// API in plain-text-then-parse mode: the schema contract lives in the
// prompt and the response text is parsed back into records.
package claude

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
	"github.com/phoenixqa/smartcase/internal/schema"
)

const (
	// Name is the provider identifier stamped onto records.
	Name = "claude"

	defaultModel   = "claude-3-5-haiku-20241022"
	defaultTimeout = 30 * time.Second

	maxTokens = 8192
)

// Config holds configuration for the Claude provider.
type Config struct {
	APIKey  string
	Model   string        // default: claude-3-5-haiku-20241022
	Timeout time.Duration // per-call deadline, default: 30s
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("anthropic API key is required")
	}
	return nil
}

// Provider calls the Anthropic API. Exactly one outbound call per invocation.
type Provider struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// NewProvider creates a new Claude provider.
func NewProvider(config Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Provider{
		client:  anthropic.NewClient(option.WithAPIKey(config.APIKey)),
		model:   model,
		timeout: timeout,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return Name }

// GeneratePlain generates plain-English test cases.
func (p *Provider) GeneratePlain(ctx context.Context, inst testgen.Instruction) ([]testgen.PlainTestCase, error) {
	text, err := p.complete(ctx, inst)
	if err != nil {
		return nil, err
	}
	cases, rejections, err := schema.DecodePlain(text)
	logRejections(ctx, rejections)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return cases, nil
}

// GenerateBDD generates BDD scenarios.
func (p *Provider) GenerateBDD(ctx context.Context, inst testgen.Instruction) ([]testgen.BDDScenario, error) {
	text, err := p.complete(ctx, inst)
	if err != nil {
		return nil, err
	}
	scenarios, rejections, err := schema.DecodeBDD(text)
	logRejections(ctx, rejections)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return scenarios, nil
}

func (p *Provider) complete(ctx context.Context, inst testgen.Instruction) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	message, err := p.client.Messages.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: inst.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(inst.User)),
		},
	})
	if err != nil {
		slog.WarnContext(ctx, "anthropic API call failed", "model", p.model, "error", err)
		return "", classifyCallError(ctx, callCtx, err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if text == "" {
		return "", fmt.Errorf("%w: %s: empty response", testgen.ErrInvalidResponse, Name)
	}
	return text, nil
}

func classifyCallError(ctx, callCtx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %s", testgen.ErrTimeout, Name)
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: status %d: %s", testgen.ErrProviderError, Name, apiErr.StatusCode, apiErr.Error())
	}
	return fmt.Errorf("%w: %s: %v", testgen.ErrProviderError, Name, err)
}

func logRejections(ctx context.Context, rejections []schema.Rejection) {
	for _, r := range rejections {
		slog.WarnContext(ctx, "record failed schema validation",
			"provider", Name,
			"index", r.Index,
			"reason", r.Reason,
		)
	}
}
