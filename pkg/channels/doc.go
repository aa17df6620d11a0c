// Package channels connects user-facing message sources to the agent
// loop. A channel receives messages, hands them to the agent, and
// delivers replies. When a message is blocked by a guardrail the
// channel sends a fixed refusal instead of surfacing rule internals.
package channels
