package mock

import (
	"context"
	"testing"

	"github.com/phoenixqa/smartcase/internal/adapter/ai/prompt"
	"github.com/phoenixqa/smartcase/internal/domain/testgen"
)

func buildInstruction(t *testing.T, format testgen.Format) testgen.Instruction {
	t.Helper()
	inst, err := prompt.Build(testgen.GenerateRequest{
		Story:    "As a user, I want to reset my password so I can regain access.",
		Format:   format,
		Provider: "mock",
	})
	if err != nil {
		t.Fatalf("prompt.Build: %v", err)
	}
	return inst
}

func TestGeneratePlain_Deterministic(t *testing.T) {
	p := NewProvider("openai")
	inst := buildInstruction(t, testgen.FormatPlain)

	first, err := p.GeneratePlain(context.Background(), inst)
	if err != nil {
		t.Fatalf("GeneratePlain: %v", err)
	}
	second, err := p.GeneratePlain(context.Background(), inst)
	if err != nil {
		t.Fatalf("GeneratePlain: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Title != second[i].Title {
			t.Errorf("record %d differs between runs", i)
		}
	}
}

func TestGeneratePlain_RecordsPassSchemaRules(t *testing.T) {
	p := NewProvider("gemini")
	cases, err := p.GeneratePlain(context.Background(), buildInstruction(t, testgen.FormatPlain))
	if err != nil {
		t.Fatalf("GeneratePlain: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("expected records")
	}
	for i, tc := range cases {
		if tc.ID != i+1 {
			t.Errorf("record %d has id %d", i, tc.ID)
		}
		if tc.Title == "" || tc.Description == "" || tc.Expected == "" || tc.Type == "" || len(tc.Steps) == 0 {
			t.Errorf("record %d violates schema rules: %+v", i, tc)
		}
	}
}

func TestGenerateBDD_RecordsPassSchemaRules(t *testing.T) {
	p := NewProvider("claude")
	scenarios, err := p.GenerateBDD(context.Background(), buildInstruction(t, testgen.FormatBDD))
	if err != nil {
		t.Fatalf("GenerateBDD: %v", err)
	}
	if len(scenarios) == 0 {
		t.Fatal("expected scenarios")
	}
	for i, sc := range scenarios {
		if sc.Feature == "" || sc.Scenario == "" || len(sc.Given) == 0 || len(sc.When) == 0 || len(sc.Then) == 0 {
			t.Errorf("scenario %d violates schema rules: %+v", i, sc)
		}
	}
}

func TestName(t *testing.T) {
	if got := NewProvider("openai").Name(); got != "openai" {
		t.Errorf("Name = %q, want openai", got)
	}
	if got := NewProvider("").Name(); got != "mock" {
		t.Errorf("Name = %q, want mock", got)
	}
}
