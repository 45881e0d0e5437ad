package reliability

import (
	"context"
	"testing"
	"time"

	"github.com/phoenixqa/smartcase/internal/adapter/ai/mock"
	"github.com/phoenixqa/smartcase/internal/domain/testgen"
)

var testInstruction = testgen.Instruction{
	System: "system",
	User:   "<user_story>\nAs a user, I want to log in.\n</user_story>",
}

func TestThrottle_PassesThrough(t *testing.T) {
	p := Throttle(mock.NewProvider("openai"), 100, 1)

	if p.Name() != "openai" {
		t.Errorf("Name = %q, want openai", p.Name())
	}

	cases, err := p.GeneratePlain(context.Background(), testInstruction)
	if err != nil {
		t.Fatalf("GeneratePlain: %v", err)
	}
	if len(cases) == 0 {
		t.Error("expected records through the throttle")
	}

	scenarios, err := p.GenerateBDD(context.Background(), testInstruction)
	if err != nil {
		t.Fatalf("GenerateBDD: %v", err)
	}
	if len(scenarios) == 0 {
		t.Error("expected scenarios through the throttle")
	}
}

func TestThrottle_NonPositiveRateIsNoop(t *testing.T) {
	var inner testgen.Provider = mock.NewProvider("gemini")
	if got := Throttle(inner, 0, 1); got != inner {
		t.Error("zero rps should return the provider unchanged")
	}
}

func TestThrottle_RespectsCancellation(t *testing.T) {
	// Burst 1 at a tiny rate: the first call drains the bucket, the second
	// must wait and should observe the cancelled context.
	p := Throttle(mock.NewProvider("claude"), 0.001, 1)

	if _, err := p.GeneratePlain(context.Background(), testInstruction); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.GeneratePlain(ctx, testInstruction)
	if err == nil {
		t.Fatal("expected error when waiting past the deadline")
	}
	if ctx.Err() == nil {
		t.Error("context should have expired")
	}
}
