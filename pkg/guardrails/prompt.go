package guardrails

import (
	"fmt"
	"strings"
)

// RenderPrompt projects the prompt-kind rules of a catalog into
// advisory text for the LLM system prompt. For each guardrail that has
// at least one prompt rule it emits a block naming the guardrail and
// its severity followed by each instruction verbatim. Guardrails with
// no prompt rules are omitted.
//
// The result is a pure function of the catalog. An empty or
// all-regex catalog renders to the empty string so callers can
// concatenate the result unconditionally.
func RenderPrompt(catalog []*Guardrail) string {
	var b strings.Builder

	for _, g := range catalog {
		var instructions []string
		for _, r := range g.Rules {
			if r.Kind == KindPrompt {
				instructions = append(instructions, r.Instruction)
			}
		}
		if len(instructions) == 0 {
			continue
		}

		if b.Len() == 0 {
			b.WriteString("## Compliance Guardrails\n")
		}
		fmt.Fprintf(&b, "\n### %s (severity: %s)\n", g.Name, g.Severity)
		if g.Description != "" {
			fmt.Fprintf(&b, "%s\n", g.Description)
		}
		for _, instruction := range instructions {
			fmt.Fprintf(&b, "- %s\n", instruction)
		}
	}

	return b.String()
}
