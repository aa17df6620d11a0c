package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"railguard-io/railguard/pkg/audit"
	"railguard-io/railguard/pkg/config"
	"railguard-io/railguard/pkg/guardrails"
	"railguard-io/railguard/pkg/providers"
	"railguard-io/railguard/pkg/telemetry/metrics"
)

// DefaultMaxToolIterations caps tool-calling rounds when the
// configuration leaves the limit unset.
const DefaultMaxToolIterations = 10

// scanSurface identifies the agent loop in audit records and metrics.
const scanSurface = "agent"

// Agent drives the tool-calling loop against one provider.
type Agent struct {
	provider providers.Provider
	holder   *guardrails.Holder
	registry *Registry
	recorder *audit.Recorder
	metrics  *metrics.ScanMetrics
	cfg      config.AgentConfig
	logger   *slog.Logger
}

// Options carries the optional collaborators for NewAgent. Recorder
// and Metrics may be nil.
type Options struct {
	Recorder *audit.Recorder
	Metrics  *metrics.ScanMetrics
}

// NewAgent creates an agent loop.
func NewAgent(provider providers.Provider, holder *guardrails.Holder, registry *Registry, cfg config.AgentConfig, logger *slog.Logger, opts Options) *Agent {
	if registry == nil {
		registry = NewRegistry(BuiltinTools()...)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		provider: provider,
		holder:   holder,
		registry: registry,
		recorder: opts.Recorder,
		metrics:  opts.Metrics,
		cfg:      cfg,
		logger:   logger.With("component", "agent.loop"),
	}
}

// Run processes one user message through the tool-calling loop and
// returns the model's final text response.
//
// The guardrail snapshot is captured once at entry; a reload during
// the loop does not change which filters apply to this message.
func (a *Agent) Run(ctx context.Context, message string) (string, error) {
	snapshot := a.holder.Current()

	scanned, err := a.scan(snapshot, message)
	if err != nil {
		return "", err
	}

	systemPrompt := a.buildSystemPrompt(snapshot)
	maxIterations := a.cfg.MaxToolIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxToolIterations
	}

	// The provider is stateless, so the full conversation is carried
	// in a single user message that grows each iteration.
	conversation := scanned
	var finalText string

	for iteration := 0; iteration < maxIterations; iteration++ {
		resp, err := a.provider.Chat(ctx, &providers.ChatRequest{
			System:   systemPrompt,
			Messages: []providers.Message{{Role: "user", Content: conversation}},
		})
		if err != nil {
			return "", fmt.Errorf("agent iteration %d: %w", iteration, err)
		}

		calls := ParseToolCalls(resp.Content)
		if len(calls) == 0 {
			finalText = resp.Content
			break
		}

		if text := ExtractText(resp.Content); text != "" {
			a.logger.Debug("intermediate response text", "iteration", iteration, "text", text)
		}
		a.logger.Debug("executing tool calls", "iteration", iteration, "num_calls", len(calls))

		results := a.executeToolCalls(ctx, calls)
		next := conversation +
			"\n\n[Assistant]\n" + resp.Content +
			"\n\n[Tool Results]\n" + FormatToolResults(results)

		// Tool output joins the conversation, so it is scanned before
		// the next provider call like any other outbound text.
		conversation, err = a.scan(snapshot, next)
		if err != nil {
			return "", err
		}
	}

	return finalText, nil
}

// scan runs text through the captured engine, records the outcome,
// and returns the possibly redacted text. A blocking violation
// returns a BlockedError.
func (a *Agent) scan(snapshot *guardrails.Snapshot, text string) (string, error) {
	start := time.Now()
	result := snapshot.Engine.Scan(text)

	if a.metrics != nil {
		a.metrics.RecordScan(scanSurface, result, time.Since(start))
	}
	if a.recorder != nil {
		a.recorder.RecordScan(scanSurface, snapshot.Generation, result)
	}
	for _, v := range result.Violations {
		a.logger.Warn("guardrail violation",
			"rule", v.Rule,
			"action", v.Action,
			"matched", v.Matched,
		)
	}

	if err := guardrails.NewBlockedError(result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// buildSystemPrompt assembles the base prompt, the tool listing, and
// the rendered guardrail advisory text.
func (a *Agent) buildSystemPrompt(snapshot *guardrails.Snapshot) string {
	var parts []string
	if a.cfg.SystemPrompt != "" {
		parts = append(parts, a.cfg.SystemPrompt)
	}
	if tools := a.registry.Describe(); tools != "" {
		parts = append(parts, tools)
	}
	if snapshot.PromptText != "" {
		parts = append(parts, snapshot.PromptText)
	}
	return strings.Join(parts, "\n\n")
}

// executeToolCalls runs parsed calls against the registry in order.
// A missing tool or an execution error becomes a failed ToolResult
// rather than aborting the loop.
func (a *Agent) executeToolCalls(ctx context.Context, calls []ToolCall) []executedCall {
	results := make([]executedCall, 0, len(calls))
	for _, call := range calls {
		tool := a.registry.Lookup(call.Name)
		var result ToolResult
		switch {
		case tool == nil:
			result = ToolResult{Success: false, Error: fmt.Sprintf("unknown tool: %s", call.Name)}
		default:
			var err error
			result, err = tool.Execute(ctx, call.Arguments)
			if err != nil {
				result = ToolResult{Success: false, Error: fmt.Sprintf("tool execution error: %v", err)}
			}
		}
		if result.Success {
			a.logger.Debug("tool succeeded", "tool", call.Name)
		} else {
			a.logger.Warn("tool failed", "tool", call.Name, "error", result.Error)
		}
		results = append(results, executedCall{Name: call.Name, Result: result})
	}
	return results
}
