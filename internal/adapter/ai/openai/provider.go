// Package openai implements testgen.Provider using the OpenAI chat
// completions API in JSON response-format mode.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
	"github.com/phoenixqa/smartcase/internal/schema"
)

const (
	// Name is the provider identifier stamped onto records.
	Name = "openai"

	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second
)

// Config holds configuration for the OpenAI provider.
type Config struct {
	APIKey  string
	Model   string        // default: gpt-4o-mini
	Timeout time.Duration // per-call deadline, default: 30s
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("openai API key is required")
	}
	return nil
}

// Provider calls the OpenAI API. Exactly one outbound call per invocation.
type Provider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewProvider creates a new OpenAI provider.
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
		client:  openai.NewClient(config.APIKey),
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

	resp, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: inst.System},
			{Role: openai.ChatMessageRoleUser, Content: inst.User},
		},
		// JSON mode guarantees syntactically valid JSON; the models wrap
		// the array in an object, which schema.ExtractArray unwraps.
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		slog.WarnContext(ctx, "openai API call failed", "model", p.model, "error", err)
		return "", classifyCallError(ctx, callCtx, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: %s: empty response", testgen.ErrInvalidResponse, Name)
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyCallError(ctx, callCtx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %s", testgen.ErrTimeout, Name)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: status %d: %s", testgen.ErrProviderError, Name, apiErr.HTTPStatusCode, apiErr.Message)
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
