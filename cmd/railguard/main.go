// Railguard is a manifest-driven guardrail engine for LLM traffic.
//
// It loads declarative compliance rule sets from disk, renders prompt
// rules into system-prompt advisory text, and compiles regex rules
// into runtime filters that scan text before it reaches a provider.
//
// Usage:
//
//	# Start the HTTP gateway with default configuration
//	railguard run
//
//	# Start with a custom configuration file
//	railguard run --config /path/to/config.yaml
//
//	# Chat through the guarded agent loop
//	railguard agent "summarize this document"
//
//	# List loaded guardrails
//	railguard guardrails list
//
//	# Validate guardrail manifests
//	railguard guardrails lint --dir guardrails/
//
//	# Show version information
//	railguard version
package main

func main() {
	Execute()
}
