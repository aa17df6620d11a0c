package guardrails

import (
	"fmt"
	"regexp"
)

// Severity is the default weight of a guardrail's violations. It is
// descriptive metadata carried into audit records; scan behavior is
// driven solely by each rule's Action.
type Severity string

const (
	// SeverityBlock marks a guardrail whose violations should be treated
	// as blocking by reporting surfaces.
	SeverityBlock Severity = "block"

	// SeverityWarn marks a guardrail whose violations are advisory.
	// This is the default when a manifest omits severity.
	SeverityWarn Severity = "warn"
)

// Valid reports whether s is a recognized severity.
func (s Severity) Valid() bool {
	return s == SeverityBlock || s == SeverityWarn
}

// RuleKind discriminates the closed set of rule variants.
type RuleKind string

const (
	// KindPrompt rules carry instruction text rendered into the system
	// prompt. They are never used by the scan engine.
	KindPrompt RuleKind = "prompt"

	// KindRegex rules carry a pattern compiled into the scan engine.
	// They are never rendered into the prompt.
	KindRegex RuleKind = "regex"
)

// Action is the effect of a matched regex rule.
type Action string

const (
	// ActionRedact replaces matches with the rule's replacement text.
	ActionRedact Action = "redact"

	// ActionBlock rejects the whole input if the rule matches. The
	// engine still completes the scan; rejection is the caller's job.
	ActionBlock Action = "block"

	// ActionWarn records the match without altering or rejecting input.
	ActionWarn Action = "warn"
)

// Valid reports whether a is a recognized action.
func (a Action) Valid() bool {
	switch a {
	case ActionRedact, ActionBlock, ActionWarn:
		return true
	}
	return false
}

// Guardrail is one named policy unit parsed from a manifest.
type Guardrail struct {
	// Name uniquely identifies the guardrail within a loaded snapshot.
	Name string

	// Description is human-readable context for operators.
	Description string

	// Version is the manifest's declared version string.
	Version string

	// Author is optional attribution.
	Author string

	// Severity is the default violation weight for this unit.
	Severity Severity

	// Rules is the ordered rule list as declared in the manifest.
	Rules []Rule

	// Source is the manifest file path, kept for diagnostics.
	Source string
}

// Rule is a single guardrail rule. Kind selects which of the
// kind-specific fields are meaningful: Instruction for prompt rules,
// Pattern/Action/Replacement for regex rules.
type Rule struct {
	Name        string
	Description string
	Kind        RuleKind

	// Instruction is the prompt-kind payload, emitted verbatim.
	Instruction string

	// Pattern is the regex-kind pattern source.
	Pattern string

	// Action is the regex-kind effect on match.
	Action Action

	// Replacement is the redaction text for ActionRedact rules.
	Replacement string
}

// CompiledFilter is the runtime form of a regex rule after successful
// pattern compilation. The owning guardrail's severity is carried
// through for audit context only.
type CompiledFilter struct {
	Name        string
	Description string
	Matcher     *regexp.Regexp
	Action      Action
	Replacement string
	Severity    Severity
}

// Violation records one rule match during a scan. Matched is a masked,
// length-only representation of the match; the raw sensitive substring
// never appears in violation records or logs.
type Violation struct {
	Rule    string `json:"rule"`
	Matched string `json:"matched"`
	Action  Action `json:"action"`
}

// ScanResult is the outcome of applying all compiled filters to one
// input. Text is the input after all redactions, regardless of whether
// the caller ultimately rejects it; Violations is the complete ordered
// audit trail.
type ScanResult struct {
	Text       string      `json:"text"`
	Violations []Violation `json:"violations"`
}

// Blocked reports whether any violation carries ActionBlock. Callers
// must not forward Text downstream when Blocked returns true.
func (r *ScanResult) Blocked() bool {
	for _, v := range r.Violations {
		if v.Action == ActionBlock {
			return true
		}
	}
	return false
}

// BlockedRules returns the names of rules that produced Block
// violations, in scan order, without duplicates.
func (r *ScanResult) BlockedRules() []string {
	var names []string
	seen := make(map[string]bool)
	for _, v := range r.Violations {
		if v.Action != ActionBlock || seen[v.Rule] {
			continue
		}
		seen[v.Rule] = true
		names = append(names, v.Rule)
	}
	return names
}

// maskMatch produces the one-way audit representation of a matched
// substring: character class plus length, never the literal text.
func maskMatch(match string) string {
	digits := 0
	for _, r := range match {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	n := len([]rune(match))
	if digits == n && n > 0 {
		return fmt.Sprintf("%d digits redacted", n)
	}
	return fmt.Sprintf("%d chars redacted", n)
}
