package guardrails

import (
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// maxManifestSize caps how much of a manifest file the parser will
// read. Manifests are small declarative documents; anything larger is
// almost certainly not a guardrail manifest.
const maxManifestSize = 1 << 20 // 1MB

// manifestDoc is the YAML wire form of a guardrail manifest.
type manifestDoc struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Version     string        `yaml:"version"`
	Author      string        `yaml:"author"`
	Severity    string        `yaml:"severity"`
	Rules       []manifestRule `yaml:"rules"`
}

// manifestRule is the YAML wire form of a single rule block.
type manifestRule struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind"`
	Instruction string `yaml:"instruction"`
	Pattern     string `yaml:"pattern"`
	Action      string `yaml:"action"`
	Replacement string `yaml:"replacement"`
}

// ParseManifest reads and validates a single guardrail manifest file.
// Optional fields take their documented defaults: severity defaults to
// warn, author to empty, a regex rule's action to warn.
func ParseManifest(path string) (*Guardrail, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ManifestError{Path: path, Message: "cannot access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &ManifestError{Path: path, Message: "not a regular file"}
	}
	if info.Size() > maxManifestSize {
		return nil, &ManifestError{
			Path:    path,
			Message: fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), maxManifestSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestError{Path: path, Message: "cannot read file", Cause: err}
	}
	if !utf8.Valid(data) {
		return nil, &ManifestError{Path: path, Message: "file contains invalid UTF-8"}
	}

	var doc manifestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ManifestError{Path: path, Message: "YAML parsing failed", Cause: err}
	}

	return doc.toGuardrail(path)
}

// toGuardrail validates the wire form and converts it to the domain
// model, applying defaults for optional fields.
func (d *manifestDoc) toGuardrail(path string) (*Guardrail, error) {
	if d.Name == "" {
		return nil, &ManifestError{Path: path, Message: "missing required field: name"}
	}

	severity := Severity(d.Severity)
	if d.Severity == "" {
		severity = SeverityWarn
	}
	if !severity.Valid() {
		return nil, &ManifestError{
			Path:    path,
			Message: fmt.Sprintf("invalid severity %q (want block or warn)", d.Severity),
		}
	}

	g := &Guardrail{
		Name:        d.Name,
		Description: d.Description,
		Version:     d.Version,
		Author:      d.Author,
		Severity:    severity,
		Rules:       make([]Rule, 0, len(d.Rules)),
		Source:      path,
	}

	for i, r := range d.Rules {
		rule, err := r.toRule(path, i)
		if err != nil {
			return nil, err
		}
		g.Rules = append(g.Rules, rule)
	}

	return g, nil
}

// toRule validates one rule block. The rule index is used in error
// messages when the rule has no name of its own yet.
func (r *manifestRule) toRule(path string, index int) (Rule, error) {
	pos := r.Name
	if pos == "" {
		pos = fmt.Sprintf("#%d", index)
	}

	if r.Name == "" {
		return Rule{}, &ManifestError{
			Path:    path,
			Message: fmt.Sprintf("rule %s: missing required field: name", pos),
		}
	}

	switch RuleKind(r.Kind) {
	case KindPrompt:
		if r.Instruction == "" {
			return Rule{}, &ManifestError{
				Path:    path,
				Message: fmt.Sprintf("rule %s: prompt rule requires instruction", pos),
			}
		}
		return Rule{
			Name:        r.Name,
			Description: r.Description,
			Kind:        KindPrompt,
			Instruction: r.Instruction,
		}, nil

	case KindRegex:
		if r.Pattern == "" {
			return Rule{}, &ManifestError{
				Path:    path,
				Message: fmt.Sprintf("rule %s: regex rule requires pattern", pos),
			}
		}
		action := Action(r.Action)
		if r.Action == "" {
			action = ActionWarn
		}
		if !action.Valid() {
			return Rule{}, &ManifestError{
				Path:    path,
				Message: fmt.Sprintf("rule %s: invalid action %q (want redact, block or warn)", pos, r.Action),
			}
		}
		return Rule{
			Name:        r.Name,
			Description: r.Description,
			Kind:        KindRegex,
			Pattern:     r.Pattern,
			Action:      action,
			Replacement: r.Replacement,
		}, nil

	default:
		return Rule{}, &ManifestError{
			Path:    path,
			Message: fmt.Sprintf("rule %s: invalid kind %q (want prompt or regex)", pos, r.Kind),
		}
	}
}
