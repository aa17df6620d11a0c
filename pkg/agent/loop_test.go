package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"railguard-io/railguard/pkg/config"
	"railguard-io/railguard/pkg/guardrails"
	"railguard-io/railguard/pkg/providers"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newHolder builds a snapshot holder from inline manifest YAML.
func newHolder(t *testing.T, manifests ...string) *guardrails.Holder {
	t.Helper()
	root := t.TempDir()
	for i, manifest := range manifests {
		dir := filepath.Join(root, string(rune('a'+i)))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("creating guardrail dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "guardrail.yaml"), []byte(manifest), 0o644); err != nil {
			t.Fatalf("writing manifest: %v", err)
		}
	}
	holder := guardrails.NewHolder(discardLogger())
	holder.Reload(guardrails.BuildOptions{Enabled: true, Enforce: true, Root: root})
	return holder
}

func newAgent(provider providers.Provider, holder *guardrails.Holder, cfg config.AgentConfig) *Agent {
	return NewAgent(provider, holder, nil, cfg, discardLogger(), Options{})
}

const blockSSNManifest = `name: pii-ssn
severity: block
rules:
  - name: ssn
    kind: regex
    pattern: '\b\d{3}-\d{2}-\d{4}\b'
    action: block
`

const redactCardManifest = `name: pii-card
severity: warn
rules:
  - name: card-number
    kind: regex
    pattern: '\b\d{4}-\d{4}-\d{4}-\d{4}\b'
    action: redact
    replacement: '****-****-****-****'
`

func TestRunPlainResponse(t *testing.T) {
	mock := providers.NewMockProvider("Hello there.")
	agent := newAgent(mock, newHolder(t), config.AgentConfig{})

	got, err := agent.Run(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got != "Hello there." {
		t.Errorf("response = %q, want %q", got, "Hello there.")
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1", mock.CallCount())
	}
}

func TestRunExecutesToolsThenAnswers(t *testing.T) {
	mock := providers.NewMockProvider(
		`<tool_call>{"name": "echo", "arguments": {"text": "pong"}}</tool_call>`,
		"The echo said pong.",
	)
	agent := newAgent(mock, newHolder(t), config.AgentConfig{})

	got, err := agent.Run(context.Background(), "ping the echo tool")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got != "The echo said pong." {
		t.Errorf("response = %q", got)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("CallCount = %d, want 2", mock.CallCount())
	}

	// The second request carries the tool result back to the model.
	second := mock.Requests()[1].Messages[0].Content
	if !strings.Contains(second, `<tool_result name="echo">`) {
		t.Errorf("second request missing tool result: %q", second)
	}
	if !strings.Contains(second, "pong") {
		t.Errorf("second request missing tool output: %q", second)
	}
}

func TestRunUnknownToolReportedToModel(t *testing.T) {
	mock := providers.NewMockProvider(
		`<tool_call>{"name": "nope", "arguments": {}}</tool_call>`,
		"done",
	)
	agent := newAgent(mock, newHolder(t), config.AgentConfig{})

	if _, err := agent.Run(context.Background(), "use a tool"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second := mock.Requests()[1].Messages[0].Content
	if !strings.Contains(second, "unknown tool: nope") {
		t.Errorf("second request missing unknown-tool error: %q", second)
	}
}

func TestRunIterationCap(t *testing.T) {
	// The mock's last response repeats, so the model never stops
	// calling tools and the loop must give up at the cap.
	mock := providers.NewMockProvider(`<tool_call>{"name": "time", "arguments": {}}</tool_call>`)
	agent := newAgent(mock, newHolder(t), config.AgentConfig{MaxToolIterations: 3})

	got, err := agent.Run(context.Background(), "loop forever")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got != "" {
		t.Errorf("response = %q, want empty after cap", got)
	}
	if mock.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3", mock.CallCount())
	}
}

func TestRunBlocksBeforeProviderCall(t *testing.T) {
	mock := providers.NewMockProvider("should never be reached")
	agent := newAgent(mock, newHolder(t, blockSSNManifest), config.AgentConfig{})

	_, err := agent.Run(context.Background(), "my ssn is 123-45-6789")
	if err == nil {
		t.Fatal("expected blocked error")
	}
	var blocked *guardrails.BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("error type = %T, want *BlockedError", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("provider was called %d times, want 0", mock.CallCount())
	}
}

func TestRunRedactsBeforeProviderCall(t *testing.T) {
	mock := providers.NewMockProvider("ok")
	agent := newAgent(mock, newHolder(t, redactCardManifest), config.AgentConfig{})

	if _, err := agent.Run(context.Background(), "card 4111-1111-1111-1111 please"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	sent := mock.Requests()[0].Messages[0].Content
	if strings.Contains(sent, "4111-1111-1111-1111") {
		t.Errorf("card number reached the provider: %q", sent)
	}
	if !strings.Contains(sent, "****-****-****-****") {
		t.Errorf("replacement missing from provider request: %q", sent)
	}
}

func TestRunScansToolOutput(t *testing.T) {
	mock := providers.NewMockProvider(
		`<tool_call>{"name": "echo", "arguments": {"text": "ssn 123-45-6789"}}</tool_call>`,
		"unreachable",
	)
	agent := newAgent(mock, newHolder(t, blockSSNManifest), config.AgentConfig{})

	_, err := agent.Run(context.Background(), "echo something sensitive")
	var blocked *guardrails.BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("error = %v, want *BlockedError", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1 (blocked before second call)", mock.CallCount())
	}
}

func TestRunSystemPromptCarriesAdvisoryText(t *testing.T) {
	const promptManifest = `name: no-medical-advice
severity: warn
description: Avoid giving medical advice.
rules:
  - name: no-diagnoses
    kind: prompt
    instruction: Do not provide medical diagnoses.
`
	mock := providers.NewMockProvider("ok")
	agent := newAgent(mock, newHolder(t, promptManifest), config.AgentConfig{SystemPrompt: "You are a helpful assistant."})

	if _, err := agent.Run(context.Background(), "hello"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	system := mock.Requests()[0].System
	if !strings.HasPrefix(system, "You are a helpful assistant.") {
		t.Errorf("system prompt missing base text: %q", system)
	}
	if !strings.Contains(system, "Do not provide medical diagnoses.") {
		t.Errorf("system prompt missing guardrail instruction: %q", system)
	}
	if !strings.Contains(system, "## Available Tools") {
		t.Errorf("system prompt missing tool listing: %q", system)
	}
}

func TestRunProviderErrorPropagates(t *testing.T) {
	wantErr := errors.New("provider down")
	mock := providers.NewMockProvider().FailWith(wantErr)
	agent := newAgent(mock, newHolder(t), config.AgentConfig{})

	_, err := agent.Run(context.Background(), "hi")
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
}
