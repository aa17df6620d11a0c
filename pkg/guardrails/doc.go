// Package guardrails implements the manifest-driven guardrail engine.
//
// Guardrails are declarative compliance rule sets loaded from disk. Each
// guardrail lives in its own subdirectory of a guardrails root and is
// described by a single YAML manifest. A guardrail carries two kinds of
// rules: prompt rules, which are rendered into advisory text for the LLM
// system prompt, and regex rules, which are compiled into runtime text
// filters applied to every piece of text about to leave the process
// toward an LLM provider.
//
// The package is split along the data flow:
//
//	Loader -> Catalog -> {RenderPrompt, Compile} -> Engine
//
// The Engine is immutable after construction and safe for concurrent use
// without locking. Configuration reloads build a brand-new Catalog and
// Engine and swap them atomically via Snapshot; in-flight scans keep the
// engine reference they captured.
//
// Loading and compilation are soft-failing: a malformed manifest or an
// invalid regex pattern is logged and skipped, never fatal. Scan itself
// is a total function over text input.
package guardrails
