// Package render turns validated record sequences into markdown documents.
// Rendering is pure: the timestamp comes in as metadata and the same inputs
// always produce the same document.
package render

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
)

const timestampLayout = "2006-01-02 15:04:05"

// Metadata carries the generation context shown in document headers.
type Metadata struct {
	GeneratedAt time.Time
	Story       string
}

var displayLabels = map[string]string{
	"openai": "OpenAI",
	"gemini": "Gemini",
	"claude": "Claude",
}

var titleCaser = cases.Title(language.English)

// DisplayLabel renders a provider identifier for humans.
func DisplayLabel(name string) string {
	if label, ok := displayLabels[name]; ok {
		return label
	}
	return titleCaser.String(name)
}

// PlainDocument renders plain-English test cases as one markdown document.
func PlainDocument(records []testgen.PlainTestCase, meta Metadata) string {
	providers := make([]string, len(records))
	for i, tc := range records {
		providers[i] = tc.Provider
	}
	label, mixed := providerLine(providers)

	var sb strings.Builder
	sb.WriteString("# Test Cases - Plain English Format\n\n")
	writeHeader(&sb, label, meta)

	for i, tc := range records {
		fmt.Fprintf(&sb, "## Test Case %d: %s\n\n", i+1, tc.Title)
		if mixed {
			fmt.Fprintf(&sb, "**Provider:** %s\n\n", DisplayLabel(tc.Provider))
		}
		fmt.Fprintf(&sb, "**Description:** %s\n\n", tc.Description)
		fmt.Fprintf(&sb, "**Type:** %s\n\n", tc.Type)
		if tc.Preconditions != "" {
			fmt.Fprintf(&sb, "**Preconditions:** %s\n\n", tc.Preconditions)
		}
		sb.WriteString("**Steps:**\n")
		for j, step := range tc.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", j+1, step)
		}
		fmt.Fprintf(&sb, "\n**Expected Result:** %s\n\n---\n\n", tc.Expected)
	}
	return sb.String()
}

// BDDDocument renders BDD scenarios as one markdown document with a fenced
// Gherkin block per scenario.
func BDDDocument(records []testgen.BDDScenario, meta Metadata) string {
	providers := make([]string, len(records))
	for i, sc := range records {
		providers[i] = sc.Provider
	}
	label, mixed := providerLine(providers)

	var sb strings.Builder
	sb.WriteString("# BDD Test Scenarios - Gherkin Format\n\n")
	writeHeader(&sb, label, meta)

	for i, sc := range records {
		fmt.Fprintf(&sb, "## Scenario %d: %s\n\n", i+1, sc.Scenario)
		if mixed {
			fmt.Fprintf(&sb, "**Provider:** %s\n\n", DisplayLabel(sc.Provider))
		}
		fmt.Fprintf(&sb, "**Feature:** %s\n\n", sc.Feature)
		sb.WriteString("```gherkin\n")
		fmt.Fprintf(&sb, "Feature: %s\n\n", sc.Feature)
		fmt.Fprintf(&sb, "Scenario: %s\n", sc.Scenario)
		for _, given := range sc.Given {
			fmt.Fprintf(&sb, "  Given %s\n", given)
		}
		for _, when := range sc.When {
			fmt.Fprintf(&sb, "  When %s\n", when)
		}
		for _, then := range sc.Then {
			fmt.Fprintf(&sb, "  Then %s\n", then)
		}
		sb.WriteString("```\n\n---\n\n")
	}
	return sb.String()
}

func writeHeader(sb *strings.Builder, providerLabel string, meta Metadata) {
	fmt.Fprintf(sb, "**Generated:** %s\n\n", meta.GeneratedAt.Format(timestampLayout))
	fmt.Fprintf(sb, "**Provider:** %s\n\n", providerLabel)
	fmt.Fprintf(sb, "**User Story:** %s\n\n---\n\n", meta.Story)
}

// providerLine collapses per-record provider tags into the header label.
// One distinct value renders as its display label; several render as
// "multiple" with per-record labels shown instead.
func providerLine(providers []string) (label string, mixed bool) {
	distinct := make(map[string]bool)
	for _, p := range providers {
		if p != "" {
			distinct[p] = true
		}
	}
	switch len(distinct) {
	case 0:
		return "unspecified", false
	case 1:
		for p := range distinct {
			label = DisplayLabel(p)
		}
		return label, false
	default:
		return "multiple", true
	}
}
