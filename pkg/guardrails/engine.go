package guardrails

// Engine applies compiled filters to arbitrary input text. It is
// immutable after construction and holds no mutable state, so a single
// instance may be shared by any number of concurrent scan calls
// without synchronization. A policy change builds a new Engine; filter
// lists are never mutated in place.
type Engine struct {
	filters []CompiledFilter
}

// NewEngine builds an engine directly from a filter list. Most callers
// go through Compile; this constructor exists for tests and for callers
// that assemble filters programmatically. The slice is copied so later
// mutation by the caller cannot reach the engine.
func NewEngine(filters []CompiledFilter) *Engine {
	copied := make([]CompiledFilter, len(filters))
	copy(copied, filters)
	return &Engine{filters: copied}
}

// FilterCount returns the number of active compiled filters.
func (e *Engine) FilterCount() int {
	return len(e.filters)
}

// FilterNames returns the active filter names in application order.
func (e *Engine) FilterNames() []string {
	names := make([]string, len(e.filters))
	for i, f := range e.filters {
		names[i] = f.Name
	}
	return names
}

// Scan applies every filter to the input, in fixed build order, and
// returns the redacted text plus the complete violation list. It is a
// total function: it never fails for well-formed text, and an engine
// with zero filters is the identity.
//
// Redaction is cumulative: a redact filter rewrites the working text
// and later filters see the rewritten form. The scan never
// short-circuits on a Block match because callers need the full audit
// trail either way; the accept/reject decision belongs to the caller
// via ScanResult.Blocked.
func (e *Engine) Scan(input string) *ScanResult {
	working := input
	var violations []Violation

	for i := range e.filters {
		f := &e.filters[i]

		matches := f.Matcher.FindAllString(working, -1)
		if len(matches) == 0 {
			continue
		}

		for _, m := range matches {
			violations = append(violations, Violation{
				Rule:    f.Name,
				Matched: maskMatch(m),
				Action:  f.Action,
			})
		}

		if f.Action == ActionRedact {
			// Replacement strings come from manifests and are inserted
			// verbatim, never interpreted as capture group references.
			working = f.Matcher.ReplaceAllLiteralString(working, f.Replacement)
		}
	}

	return &ScanResult{Text: working, Violations: violations}
}
