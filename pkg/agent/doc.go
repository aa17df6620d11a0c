// Package agent implements the tool-calling conversation loop.
//
// The loop sends the conversation to the provider, parses any
// <tool_call> blocks out of the response, executes them against the
// tool registry, feeds the results back, and repeats until the model
// produces a plain text answer or the iteration cap is reached.
//
// Every outbound text, the initial user message and each accumulated
// conversation turn, passes through the guardrail engine before it
// reaches the provider. A blocking violation aborts the loop with a
// BlockedError.
package agent
