// Package schema enforces the structural contract on raw provider output.
// It is provider-agnostic: every adapter feeds its decoded response through
// the same functions, and a record failing any rule is rejected as a unit.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
)

// Rejection describes one raw record that failed validation.
type Rejection struct {
	Index  int
	Reason string
}

// wrapperKeys are object keys models commonly wrap an array in despite
// being asked for a bare array.
var wrapperKeys = []string{"items", "cases", "test_cases", "scenarios"}

// ExtractArray locates the JSON array in raw model output. It strips
// markdown code fences and unwraps single-key objects like {"items": [...]}.
func ExtractArray(text string) ([]byte, error) {
	trimmed := stripFences(strings.TrimSpace(text))
	if trimmed == "" {
		return nil, fmt.Errorf("empty response text")
	}

	switch trimmed[0] {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return nil, fmt.Errorf("malformed JSON array: %w", err)
		}
		return []byte(trimmed), nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			return nil, fmt.Errorf("malformed JSON object: %w", err)
		}
		for _, key := range wrapperKeys {
			if raw, ok := obj[key]; ok && isArray(raw) {
				return raw, nil
			}
		}
		// Single-field object whose value is an array counts as a wrapper.
		if len(obj) == 1 {
			for _, raw := range obj {
				if isArray(raw) {
					return raw, nil
				}
			}
		}
		return nil, fmt.Errorf("JSON object does not wrap a record array")
	default:
		return nil, fmt.Errorf("response is not JSON")
	}
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func isArray(raw json.RawMessage) bool {
	t := strings.TrimSpace(string(raw))
	return strings.HasPrefix(t, "[")
}

type rawPlainCase struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Preconditions *string  `json:"preconditions"`
	Steps         []string `json:"steps"`
	Expected      string   `json:"expected"`
	Type          string   `json:"type"`
}

type rawBDDScenario struct {
	Feature  string   `json:"feature"`
	Scenario string   `json:"scenario"`
	Given    []string `json:"given"`
	When     []string `json:"when"`
	Then     []string `json:"then"`
}

// ParsePlainCases validates a JSON array of plain test cases. Records that
// fail validation are returned as rejections, not errors; a non-array input
// is an error.
func ParsePlainCases(data []byte) ([]testgen.PlainTestCase, []Rejection, error) {
	var rawRecords []json.RawMessage
	if err := json.Unmarshal(data, &rawRecords); err != nil {
		return nil, nil, fmt.Errorf("expected JSON array of test cases: %w", err)
	}

	cases := make([]testgen.PlainTestCase, 0, len(rawRecords))
	var rejections []Rejection
	for i, raw := range rawRecords {
		tc, err := parsePlainCase(raw)
		if err != nil {
			rejections = append(rejections, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		cases = append(cases, tc)
	}
	return cases, rejections, nil
}

func parsePlainCase(raw json.RawMessage) (testgen.PlainTestCase, error) {
	var rec rawPlainCase
	if err := json.Unmarshal(raw, &rec); err != nil {
		return testgen.PlainTestCase{}, fmt.Errorf("not an object: %w", err)
	}
	if rec.ID <= 0 {
		return testgen.PlainTestCase{}, fmt.Errorf("id must be a positive integer, got %d", rec.ID)
	}
	if rec.Title == "" {
		return testgen.PlainTestCase{}, fmt.Errorf("title is required")
	}
	if rec.Description == "" {
		return testgen.PlainTestCase{}, fmt.Errorf("description is required")
	}
	if err := validateSteps("steps", rec.Steps); err != nil {
		return testgen.PlainTestCase{}, err
	}
	if rec.Expected == "" {
		return testgen.PlainTestCase{}, fmt.Errorf("expected is required")
	}
	if rec.Type == "" {
		return testgen.PlainTestCase{}, fmt.Errorf("type is required")
	}

	tc := testgen.PlainTestCase{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Steps:       rec.Steps,
		Expected:    rec.Expected,
		Type:        rec.Type,
	}
	if rec.Preconditions != nil {
		tc.Preconditions = *rec.Preconditions
	}
	return tc, nil
}

// ParseBDDScenarios validates a JSON array of BDD scenarios with the same
// record-level rejection semantics as ParsePlainCases.
func ParseBDDScenarios(data []byte) ([]testgen.BDDScenario, []Rejection, error) {
	var rawRecords []json.RawMessage
	if err := json.Unmarshal(data, &rawRecords); err != nil {
		return nil, nil, fmt.Errorf("expected JSON array of scenarios: %w", err)
	}

	scenarios := make([]testgen.BDDScenario, 0, len(rawRecords))
	var rejections []Rejection
	for i, raw := range rawRecords {
		sc, err := parseBDDScenario(raw)
		if err != nil {
			rejections = append(rejections, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, rejections, nil
}

func parseBDDScenario(raw json.RawMessage) (testgen.BDDScenario, error) {
	var rec rawBDDScenario
	if err := json.Unmarshal(raw, &rec); err != nil {
		return testgen.BDDScenario{}, fmt.Errorf("not an object: %w", err)
	}
	if rec.Feature == "" {
		return testgen.BDDScenario{}, fmt.Errorf("feature is required")
	}
	if rec.Scenario == "" {
		return testgen.BDDScenario{}, fmt.Errorf("scenario is required")
	}
	if err := validateSteps("given", rec.Given); err != nil {
		return testgen.BDDScenario{}, err
	}
	if err := validateSteps("when", rec.When); err != nil {
		return testgen.BDDScenario{}, err
	}
	if err := validateSteps("then", rec.Then); err != nil {
		return testgen.BDDScenario{}, err
	}

	return testgen.BDDScenario{
		Feature:  rec.Feature,
		Scenario: rec.Scenario,
		Given:    rec.Given,
		When:     rec.When,
		Then:     rec.Then,
	}, nil
}

func validateSteps(field string, steps []string) error {
	if len(steps) == 0 {
		return fmt.Errorf("%s must contain at least one entry", field)
	}
	for i, s := range steps {
		if s == "" {
			return fmt.Errorf("%s[%d] is empty", field, i)
		}
	}
	return nil
}
