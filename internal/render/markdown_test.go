package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
)

var testMeta = Metadata{
	GeneratedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	Story:       "As a user, I want to log in to the system so that I can access my account.",
}

func samplePlainCases() []testgen.PlainTestCase {
	return []testgen.PlainTestCase{
		{
			ID:            1,
			Title:         "Successful login",
			Description:   "Log in with valid credentials",
			Preconditions: "A registered account exists",
			Steps:         []string{"Open the login page", "Enter valid credentials", "Submit the form"},
			Expected:      "The dashboard is shown",
			Type:          "positive",
			Provider:      "openai",
		},
		{
			ID:          2,
			Title:       "Rejected login",
			Description: "Log in with a wrong password",
			Steps:       []string{"Open the login page", "Enter a wrong password"},
			Expected:    "An error message is shown",
			Type:        "negative",
			Provider:    "openai",
		},
	}
}

func sampleScenarios() []testgen.BDDScenario {
	return []testgen.BDDScenario{
		{
			Feature:  "Login",
			Scenario: "Valid credentials",
			Given:    []string{"a registered user", "the login page is open"},
			When:     []string{"they submit valid credentials"},
			Then:     []string{"they see the dashboard"},
			Provider: "gemini",
		},
	}
}

func TestPlainDocument_Structure(t *testing.T) {
	doc := PlainDocument(samplePlainCases(), testMeta)

	assert.True(t, strings.HasPrefix(doc, "# Test Cases - Plain English Format\n"))
	assert.Contains(t, doc, "**Generated:** 2026-03-14 09:26:53")
	assert.Contains(t, doc, "**Provider:** OpenAI")
	assert.Contains(t, doc, "**User Story:** "+testMeta.Story)
	assert.Contains(t, doc, "## Test Case 1: Successful login")
	assert.Contains(t, doc, "## Test Case 2: Rejected login")
	assert.Contains(t, doc, "**Preconditions:** A registered account exists")
	assert.Contains(t, doc, "1. Open the login page\n2. Enter valid credentials\n3. Submit the form")
	assert.Contains(t, doc, "**Expected Result:** The dashboard is shown")
	assert.Contains(t, doc, "**Type:** negative")

	// Absent preconditions are omitted rather than rendered empty.
	second := doc[strings.Index(doc, "## Test Case 2"):]
	assert.NotContains(t, second, "**Preconditions:**")
}

func TestPlainDocument_SingleProviderHidesPerRecordLabel(t *testing.T) {
	doc := PlainDocument(samplePlainCases(), testMeta)
	assert.Equal(t, 1, strings.Count(doc, "**Provider:**"),
		"single-provider documents carry exactly one provider line")
}

func TestPlainDocument_MixedProviders(t *testing.T) {
	cases := samplePlainCases()
	cases[1].Provider = "gemini"
	doc := PlainDocument(cases, testMeta)

	assert.Contains(t, doc, "**Provider:** multiple")
	assert.Contains(t, doc, "**Provider:** OpenAI")
	assert.Contains(t, doc, "**Provider:** Gemini")
}

func TestBDDDocument_Structure(t *testing.T) {
	doc := BDDDocument(sampleScenarios(), testMeta)

	assert.True(t, strings.HasPrefix(doc, "# BDD Test Scenarios - Gherkin Format\n"))
	assert.Contains(t, doc, "**Provider:** Gemini")
	assert.Contains(t, doc, "## Scenario 1: Valid credentials")
	assert.Contains(t, doc, "**Feature:** Login")

	fenceStart := strings.Index(doc, "```gherkin\n")
	require.GreaterOrEqual(t, fenceStart, 0)
	fenced := doc[fenceStart:]
	fenceEnd := strings.Index(fenced, "\n```\n")
	require.GreaterOrEqual(t, fenceEnd, 0)
	block := fenced[:fenceEnd]

	assert.Contains(t, block, "Feature: Login\n")
	assert.Contains(t, block, "Scenario: Valid credentials\n")

	// Given lines precede When lines precede Then lines, preserving order.
	givenA := strings.Index(block, "  Given a registered user")
	givenB := strings.Index(block, "  Given the login page is open")
	when := strings.Index(block, "  When they submit valid credentials")
	then := strings.Index(block, "  Then they see the dashboard")
	require.True(t, givenA >= 0 && givenB >= 0 && when >= 0 && then >= 0, "missing gherkin lines: %s", block)
	assert.Less(t, givenA, givenB)
	assert.Less(t, givenB, when)
	assert.Less(t, when, then)
}

func TestRendering_Idempotent(t *testing.T) {
	first := PlainDocument(samplePlainCases(), testMeta)
	second := PlainDocument(samplePlainCases(), testMeta)
	assert.Equal(t, first, second)

	firstBDD := BDDDocument(sampleScenarios(), testMeta)
	secondBDD := BDDDocument(sampleScenarios(), testMeta)
	assert.Equal(t, firstBDD, secondBDD)
}

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"openai", "OpenAI"},
		{"gemini", "Gemini"},
		{"claude", "Claude"},
		{"mock", "Mock"},
		{"mistral", "Mistral"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayLabel(tt.in))
	}
}

func TestProviderLine_NoLabels(t *testing.T) {
	cases := samplePlainCases()
	for i := range cases {
		cases[i].Provider = ""
	}
	doc := PlainDocument(cases, testMeta)
	assert.Contains(t, doc, "**Provider:** unspecified")
}
