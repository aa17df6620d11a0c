package guardrails

import (
	"testing"
)

func TestCompile_SkipsInvalidPatterns(t *testing.T) {
	catalog := []*Guardrail{
		{
			Name:     "pii",
			Severity: SeverityBlock,
			Rules: []Rule{
				{Name: "good", Kind: KindRegex, Pattern: `\d{3}`, Action: ActionWarn},
				{Name: "bad", Kind: KindRegex, Pattern: `[unclosed`, Action: ActionBlock},
				{Name: "also-good", Kind: KindRegex, Pattern: `\w+`, Action: ActionRedact, Replacement: "x"},
			},
		},
	}

	engine := Compile(catalog, nil)

	if engine.FilterCount() != 2 {
		t.Fatalf("FilterCount() = %d, want 2", engine.FilterCount())
	}
	names := engine.FilterNames()
	if names[0] != "good" || names[1] != "also-good" {
		t.Errorf("FilterNames() = %v, want [good also-good]", names)
	}
}

func TestCompile_IgnoresPromptRules(t *testing.T) {
	catalog := []*Guardrail{
		{
			Name:     "mixed",
			Severity: SeverityWarn,
			Rules: []Rule{
				{Name: "advice", Kind: KindPrompt, Instruction: "be careful"},
				{Name: "filter", Kind: KindRegex, Pattern: `secret`, Action: ActionBlock},
			},
		},
	}

	engine := Compile(catalog, nil)

	if engine.FilterCount() != 1 {
		t.Fatalf("FilterCount() = %d, want 1", engine.FilterCount())
	}
	if engine.FilterNames()[0] != "filter" {
		t.Errorf("FilterNames()[0] = %q, want %q", engine.FilterNames()[0], "filter")
	}
}

func TestCompile_EmptyCatalogYieldsIdentityEngine(t *testing.T) {
	engine := Compile(nil, nil)

	if engine.FilterCount() != 0 {
		t.Fatalf("FilterCount() = %d, want 0", engine.FilterCount())
	}
	result := engine.Scan("anything 123-45-6789")
	if result.Text != "anything 123-45-6789" || len(result.Violations) != 0 {
		t.Errorf("empty engine not identity: %+v", result)
	}
}

func TestCompile_PreservesCatalogOrder(t *testing.T) {
	catalog := []*Guardrail{
		{
			Name: "first",
			Rules: []Rule{
				{Name: "f1", Kind: KindRegex, Pattern: `a`, Action: ActionWarn},
				{Name: "f2", Kind: KindRegex, Pattern: `b`, Action: ActionWarn},
			},
		},
		{
			Name: "second",
			Rules: []Rule{
				{Name: "s1", Kind: KindRegex, Pattern: `c`, Action: ActionWarn},
			},
		},
	}

	engine := Compile(catalog, nil)

	names := engine.FilterNames()
	want := []string{"f1", "f2", "s1"}
	if len(names) != len(want) {
		t.Fatalf("FilterNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("FilterNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCompile_CarriesSeverityOntoFilters(t *testing.T) {
	catalog := []*Guardrail{
		{
			Name:     "strict",
			Severity: SeverityBlock,
			Rules: []Rule{
				{Name: "r", Kind: KindRegex, Pattern: `x`, Action: ActionWarn},
			},
		},
	}

	engine := Compile(catalog, nil)

	if engine.FilterCount() != 1 {
		t.Fatal("expected one filter")
	}
	if engine.filters[0].Severity != SeverityBlock {
		t.Errorf("filter severity = %q, want %q", engine.filters[0].Severity, SeverityBlock)
	}
	// Severity is audit metadata only: a warn action still just warns.
	result := engine.Scan("x")
	if result.Blocked() {
		t.Error("Blocked() = true, want false (severity must not drive behavior)")
	}
}

func TestCompile_PatternCompileErrorDoesNotAffectSiblingGuardrails(t *testing.T) {
	catalog := []*Guardrail{
		{
			Name:  "broken",
			Rules: []Rule{{Name: "bad", Kind: KindRegex, Pattern: `(`, Action: ActionBlock}},
		},
		{
			Name:  "fine",
			Rules: []Rule{{Name: "ok", Kind: KindRegex, Pattern: `ok`, Action: ActionWarn}},
		},
	}

	engine := Compile(catalog, nil)

	if engine.FilterCount() != 1 {
		t.Fatalf("FilterCount() = %d, want 1", engine.FilterCount())
	}
	if engine.FilterNames()[0] != "ok" {
		t.Errorf("surviving filter = %q, want %q", engine.FilterNames()[0], "ok")
	}
}
