package testgen

import "fmt"

// Format selects the kind of test cases to generate.
type Format string

const (
	FormatPlain Format = "plain"
	FormatBDD   Format = "bdd"
)

// IsValid checks if the format is one of the supported values.
func (f Format) IsValid() bool {
	switch f {
	case FormatPlain, FormatBDD:
		return true
	default:
		return false
	}
}

// ProviderAll selects every configured provider in a single request.
const ProviderAll = "all"

// PlainTestCase is a single plain-English test case.
// IDs are unique within one generation response, not globally.
type PlainTestCase struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Preconditions string   `json:"preconditions,omitempty"`
	Steps         []string `json:"steps"`
	Expected      string   `json:"expected"`
	Type          string   `json:"type"`
	Provider      string   `json:"provider,omitempty"`
}

// BDDScenario is a single Given/When/Then scenario.
type BDDScenario struct {
	Feature  string   `json:"feature"`
	Scenario string   `json:"scenario"`
	Given    []string `json:"given"`
	When     []string `json:"when"`
	Then     []string `json:"then"`
	Provider string   `json:"provider,omitempty"`
}

// ContextBlock is supporting context extracted from a file by the
// file-analysis collaborator, appended to the prompt verbatim.
type ContextBlock struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// Instruction is the built prompt shared by every adapter in one request.
type Instruction struct {
	System string
	User   string
}

// GenerateRequest describes one generation call.
type GenerateRequest struct {
	Story     string
	Format    Format
	Provider  string // provider name or ProviderAll
	CaseCount int    // 0 means no limit
	Context   []ContextBlock
}

func (r GenerateRequest) Validate() error {
	if !r.Format.IsValid() {
		return fmt.Errorf("%w: unsupported format: %q", ErrInvalidInput, r.Format)
	}
	if r.Provider == "" {
		return fmt.Errorf("%w: provider is required", ErrInvalidInput)
	}
	if r.CaseCount < 0 {
		return fmt.Errorf("%w: case count must be positive, got %d", ErrInvalidInput, r.CaseCount)
	}
	return nil
}

// Warning records a provider that failed while others succeeded.
type Warning struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

// Result is the aggregated outcome of one generation call. Exactly one of
// Plain or BDD is populated, matching Format.
type Result struct {
	Format   Format          `json:"format"`
	Plain    []PlainTestCase `json:"plain,omitempty"`
	BDD      []BDDScenario   `json:"bdd,omitempty"`
	Warnings []Warning       `json:"warnings,omitempty"`
}

// Len reports the number of records regardless of kind.
func (r *Result) Len() int {
	if r.Format == FormatBDD {
		return len(r.BDD)
	}
	return len(r.Plain)
}
