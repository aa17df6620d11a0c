package guardrails

import (
	"log/slog"
	"regexp"
)

// Compile walks every regex-kind rule across the catalog, in catalog
// order, and compiles it into the engine's filter list. A pattern that
// fails to compile is dropped with a logged warning; compilation never
// fails as a whole. Prompt-kind rules are ignored here.
//
// Rules are not deduplicated: two rules with the same pattern but
// different actions are both kept and both applied, so a warn rule and
// a redact rule can target overlapping sub-cases independently.
func Compile(catalog []*Guardrail, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "guardrails.compiler")

	var filters []CompiledFilter
	for _, g := range catalog {
		for _, r := range g.Rules {
			if r.Kind != KindRegex {
				continue
			}

			matcher, err := regexp.Compile(r.Pattern)
			if err != nil {
				perr := &PatternError{Guardrail: g.Name, Rule: r.Name, Pattern: r.Pattern, Cause: err}
				logger.Warn("dropping rule with invalid pattern", "error", perr)
				continue
			}

			filters = append(filters, CompiledFilter{
				Name:        r.Name,
				Description: r.Description,
				Matcher:     matcher,
				Action:      r.Action,
				Replacement: r.Replacement,
				Severity:    g.Severity,
			})
		}
	}

	return &Engine{filters: filters}
}
