// Package prompt assembles the instruction text shared by every provider
// adapter in one generation request. Building is pure: no network, no
// file I/O, same output for the same input.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
)

//go:embed templates/plain_system.md
var plainSystemPrompt string

//go:embed templates/bdd_system.md
var bddSystemPrompt string

const defaultCaseTarget = "5-10"

// Build renders the instruction for the requested format. It fails only on
// a missing user story; the orchestrator validates everything else.
func Build(req testgen.GenerateRequest) (testgen.Instruction, error) {
	if strings.TrimSpace(req.Story) == "" {
		return testgen.Instruction{}, fmt.Errorf("%w: user story is required", testgen.ErrInvalidInput)
	}

	system := plainSystemPrompt
	kind := "test cases"
	if req.Format == testgen.FormatBDD {
		system = bddSystemPrompt
		kind = "BDD scenarios"
	}

	target := defaultCaseTarget
	if req.CaseCount > 0 {
		target = fmt.Sprintf("%d", req.CaseCount)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate %s %s from the following user story.\n\n", target, kind)
	sb.WriteString("<user_story>\n")
	sb.WriteString(req.Story)
	sb.WriteString("\n</user_story>\n")

	for _, block := range req.Context {
		fmt.Fprintf(&sb, "\nSupporting context from %s:\n", block.Filename)
		sb.WriteString("<context>\n")
		sb.WriteString(block.Text)
		sb.WriteString("\n</context>\n")
	}

	sb.WriteString("\nReturn ONLY the JSON array described in the system instructions.")

	return testgen.Instruction{System: system, User: sb.String()}, nil
}
