// Package gemini implements testgen.Provider using Google Gemini in
// structured-output mode (JSON response MIME type).
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
	"github.com/phoenixqa/smartcase/internal/schema"
)

const (
	// Name is the provider identifier stamped onto records.
	Name = "gemini"

	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 30 * time.Second

	maxOutputTokens = int32(16384)
)

// Config holds configuration for the Gemini provider.
type Config struct {
	APIKey  string
	Model   string        // default: gemini-2.5-flash
	Timeout time.Duration // per-call deadline, default: 30s
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("gemini API key is required")
	}
	return nil
}

// Provider calls the Gemini API. Exactly one outbound call per invocation;
// retry policy, if any, belongs to the caller.
type Provider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewProvider creates a new Gemini provider.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Provider{client: client, model: model, timeout: timeout}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return Name }

// GeneratePlain generates plain-English test cases.
func (p *Provider) GeneratePlain(ctx context.Context, inst testgen.Instruction) ([]testgen.PlainTestCase, error) {
	text, err := p.generateContent(ctx, inst)
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
	text, err := p.generateContent(ctx, inst)
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

func (p *Provider) generateContent(ctx context.Context, inst testgen.Instruction) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		MaxOutputTokens:  maxOutputTokens,
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: inst.System}},
		},
	}

	result, err := p.client.Models.GenerateContent(callCtx, p.model, genai.Text(inst.User), config)
	if err != nil {
		slog.WarnContext(ctx, "gemini API call failed", "model", p.model, "error", err)
		return "", classifyCallError(ctx, callCtx, err)
	}

	if len(result.Candidates) > 0 {
		candidate := result.Candidates[0]
		switch candidate.FinishReason {
		case genai.FinishReasonMaxTokens:
			return "", fmt.Errorf("%w: %s: output truncated at token limit", testgen.ErrInvalidResponse, Name)
		case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist, genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
			return "", fmt.Errorf("%w: %s: content blocked (%s)", testgen.ErrProviderError, Name, candidate.FinishReason)
		}
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("%w: %s: empty response", testgen.ErrInvalidResponse, Name)
	}
	return text, nil
}

// classifyCallError maps a backend call failure onto the error taxonomy.
// A deadline hit on the per-call context is a timeout; caller cancellation
// passes through untouched.
func classifyCallError(ctx, callCtx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %s", testgen.ErrTimeout, Name)
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
