package guardrails

import (
	"strings"
	"testing"
)

func TestRenderPrompt_EmptyCatalog(t *testing.T) {
	if got := RenderPrompt(nil); got != "" {
		t.Errorf("RenderPrompt(nil) = %q, want \"\"", got)
	}
	if got := RenderPrompt([]*Guardrail{}); got != "" {
		t.Errorf("RenderPrompt([]) = %q, want \"\"", got)
	}
}

func TestRenderPrompt_OmitsRegexOnlyGuardrails(t *testing.T) {
	catalog := []*Guardrail{
		{
			Name:     "pii-filters",
			Severity: SeverityBlock,
			Rules: []Rule{
				{Name: "ssn", Kind: KindRegex, Pattern: `\d{3}-\d{2}-\d{4}`, Action: ActionBlock},
			},
		},
	}

	if got := RenderPrompt(catalog); got != "" {
		t.Errorf("RenderPrompt() = %q, want \"\" for regex-only catalog", got)
	}
}

func TestRenderPrompt_EmitsInstructionsVerbatim(t *testing.T) {
	catalog := []*Guardrail{
		{
			Name:        "hipaa",
			Description: "Health data handling",
			Severity:    SeverityBlock,
			Rules: []Rule{
				{Name: "no-phi", Kind: KindPrompt, Instruction: "Never repeat patient identifiers."},
				{Name: "ssn", Kind: KindRegex, Pattern: `\d+`, Action: ActionRedact},
				{Name: "minimal", Kind: KindPrompt, Instruction: "Share the minimum necessary information."},
			},
		},
	}

	got := RenderPrompt(catalog)

	for _, want := range []string{
		"hipaa",
		"severity: block",
		"Health data handling",
		"Never repeat patient identifiers.",
		"Share the minimum necessary information.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderPrompt() missing %q in:\n%s", want, got)
		}
	}

	// Regex rule internals never leak into the prompt.
	if strings.Contains(got, `\d+`) {
		t.Errorf("RenderPrompt() leaked regex pattern:\n%s", got)
	}
}

func TestRenderPrompt_Deterministic(t *testing.T) {
	catalog := []*Guardrail{
		{
			Name:     "a",
			Severity: SeverityWarn,
			Rules:    []Rule{{Name: "r", Kind: KindPrompt, Instruction: "first"}},
		},
		{
			Name:     "b",
			Severity: SeverityBlock,
			Rules:    []Rule{{Name: "r", Kind: KindPrompt, Instruction: "second"}},
		},
	}

	first := RenderPrompt(catalog)
	for i := 0; i < 5; i++ {
		if got := RenderPrompt(catalog); got != first {
			t.Fatalf("RenderPrompt() not deterministic on call %d", i)
		}
	}

	// Catalog order is preserved in output.
	if strings.Index(first, "first") > strings.Index(first, "second") {
		t.Errorf("RenderPrompt() reordered guardrails:\n%s", first)
	}
}

func TestRenderPrompt_UnconditionalConcatenation(t *testing.T) {
	// Callers append the result without branching; an empty render must
	// leave the surrounding prompt untouched.
	base := "You are a helpful assistant."
	prompt := base + RenderPrompt(nil)
	if prompt != base {
		t.Errorf("concatenated prompt = %q, want %q", prompt, base)
	}
}
