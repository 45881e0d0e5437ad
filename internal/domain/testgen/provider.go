package testgen

import "context"

// Provider wraps one hosted LLM backend behind a normalized call contract.
// An implementation makes exactly one outbound call per invocation and
// enforces its own per-call timeout. Zero records is a valid empty success,
// distinct from failure.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "gemini", "claude").
	Name() string

	// GeneratePlain invokes the backend and returns validated plain-English
	// test cases in the order the backend produced them.
	GeneratePlain(ctx context.Context, inst Instruction) ([]PlainTestCase, error)

	// GenerateBDD invokes the backend and returns validated BDD scenarios
	// in the order the backend produced them.
	GenerateBDD(ctx context.Context, inst Instruction) ([]BDDScenario, error)
}
