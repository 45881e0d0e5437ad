// Package mock implements testgen.Provider with deterministic responses.
// Intended for local development and testing without AI API calls.
package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
)

const defaultCaseCount = 5

var caseTypes = []string{"positive", "negative", "boundary", "edge"}

// Provider produces synthetic records derived from the user story. The same
// instruction always yields the same records.
type Provider struct {
	name  string
	count int
}

// NewProvider creates a mock provider reporting the given identifier, so a
// multi-provider run can be simulated offline with several instances.
func NewProvider(name string) *Provider {
	if name == "" {
		name = "mock"
	}
	return &Provider{name: name, count: defaultCaseCount}
}

// Name returns the configured provider identifier.
func (p *Provider) Name() string { return p.name }

// GeneratePlain returns deterministic plain test cases.
func (p *Provider) GeneratePlain(_ context.Context, inst testgen.Instruction) ([]testgen.PlainTestCase, error) {
	subject := extractSubject(inst.User)
	cases := make([]testgen.PlainTestCase, 0, p.count)
	for i := 1; i <= p.count; i++ {
		kind := caseTypes[(i-1)%len(caseTypes)]
		cases = append(cases, testgen.PlainTestCase{
			ID:            i,
			Title:         fmt.Sprintf("Verify %s behavior %d for %q", kind, i, subject),
			Description:   fmt.Sprintf("Exercises the %s path %d derived from the story.", kind, i),
			Preconditions: "System is reachable and test data is prepared",
			Steps: []string{
				fmt.Sprintf("Prepare input for %s case %d", kind, i),
				"Execute the action described in the story",
				"Observe the system response",
			},
			Expected: fmt.Sprintf("The system handles the %s case %d as specified.", kind, i),
			Type:     kind,
		})
	}
	return cases, nil
}

// GenerateBDD returns deterministic BDD scenarios.
func (p *Provider) GenerateBDD(_ context.Context, inst testgen.Instruction) ([]testgen.BDDScenario, error) {
	subject := extractSubject(inst.User)
	scenarios := make([]testgen.BDDScenario, 0, p.count)
	for i := 1; i <= p.count; i++ {
		kind := caseTypes[(i-1)%len(caseTypes)]
		scenarios = append(scenarios, testgen.BDDScenario{
			Feature:  fmt.Sprintf("Feature under test: %s", subject),
			Scenario: fmt.Sprintf("%s scenario %d", strings.ToUpper(kind[:1])+kind[1:], i),
			Given:    []string{"the system is in a known state"},
			When:     []string{fmt.Sprintf("the user performs the %s action %d", kind, i)},
			Then:     []string{fmt.Sprintf("the outcome matches the %s expectation %d", kind, i)},
		})
	}
	return scenarios, nil
}

// extractSubject pulls the first story line out of the built user prompt,
// keeping mock titles stable and readable.
func extractSubject(userPrompt string) string {
	const openTag, closeTag = "<user_story>\n", "\n</user_story>"
	start := strings.Index(userPrompt, openTag)
	if start < 0 {
		return "user story"
	}
	rest := userPrompt[start+len(openTag):]
	end := strings.Index(rest, closeTag)
	if end < 0 {
		return "user story"
	}
	story := strings.TrimSpace(rest[:end])
	if idx := strings.IndexByte(story, '\n'); idx >= 0 {
		story = story[:idx]
	}
	if len(story) > 60 {
		story = story[:60]
	}
	return story
}
