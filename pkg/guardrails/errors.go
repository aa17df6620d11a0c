package guardrails

import (
	"fmt"
	"strings"
)

// ManifestError represents a malformed or incomplete guardrail manifest.
// It is non-fatal: the loader logs it and skips the source directory.
type ManifestError struct {
	// Path is the manifest file (or directory) that failed
	Path string

	// Message describes what was wrong
	Message string

	// Cause is the underlying parser or filesystem error
	Cause error
}

// Error implements the error interface.
func (e *ManifestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("guardrail manifest %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("guardrail manifest %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ManifestError) Unwrap() error {
	return e.Cause
}

// PatternError represents an invalid regex pattern in a rule. It is
// non-fatal: the compiler logs it and drops the rule from the engine.
type PatternError struct {
	// Guardrail is the owning guardrail name
	Guardrail string

	// Rule is the rule name whose pattern failed to compile
	Rule string

	// Pattern is the pattern source text
	Pattern string

	// Cause is the regexp compile error
	Cause error
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	return fmt.Sprintf("guardrail %q rule %q: invalid pattern %q: %v", e.Guardrail, e.Rule, e.Pattern, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *PatternError) Unwrap() error {
	return e.Cause
}

// BlockedError is the caller-level outcome when a scan reports at least
// one Block violation. The engine itself never returns it; ingestion
// surfaces construct it to reject the input. The message enumerates
// triggered rule names only and never the raw matched text.
type BlockedError struct {
	// Rules are the names of the rules that produced Block violations
	Rules []string
}

// Error implements the error interface.
func (e *BlockedError) Error() string {
	if len(e.Rules) == 0 {
		return "input blocked by guardrails"
	}
	return fmt.Sprintf("input blocked by guardrails: %s", strings.Join(e.Rules, ", "))
}

// NewBlockedError builds a BlockedError from a scan result. It returns
// nil if the result has no Block violations.
func NewBlockedError(result *ScanResult) *BlockedError {
	if result == nil || !result.Blocked() {
		return nil
	}
	return &BlockedError{Rules: result.BlockedRules()}
}
