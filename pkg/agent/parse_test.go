package agent

import (
	"strings"
	"testing"
)

func TestParseSingleToolCall(t *testing.T) {
	response := `Let me check that. <tool_call>{"name": "echo", "arguments": {"text": "hi"}}</tool_call>`

	calls := ParseToolCalls(response)
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].Name != "echo" {
		t.Errorf("Name = %q, want echo", calls[0].Name)
	}
	if !strings.Contains(string(calls[0].Arguments), `"text"`) {
		t.Errorf("Arguments = %s, want text argument", calls[0].Arguments)
	}
}

func TestParseMultipleToolCalls(t *testing.T) {
	response := `<tool_call>{"name": "time", "arguments": {}}</tool_call>
Also: <tool_call>{"name": "echo", "arguments": {"text": "x"}}</tool_call>`

	calls := ParseToolCalls(response)
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	if calls[0].Name != "time" || calls[1].Name != "echo" {
		t.Errorf("names = %q, %q, want time, echo", calls[0].Name, calls[1].Name)
	}
}

func TestParseNoToolCalls(t *testing.T) {
	if calls := ParseToolCalls("Just a plain answer."); len(calls) != 0 {
		t.Errorf("got %d calls, want 0", len(calls))
	}
}

func TestParseMalformedJSON(t *testing.T) {
	if calls := ParseToolCalls("<tool_call>not valid json</tool_call>"); len(calls) != 0 {
		t.Errorf("got %d calls, want 0", len(calls))
	}
}

func TestParseEmptyBlock(t *testing.T) {
	if calls := ParseToolCalls("<tool_call></tool_call>"); len(calls) != 0 {
		t.Errorf("got %d calls, want 0", len(calls))
	}
}

func TestParseMissingName(t *testing.T) {
	if calls := ParseToolCalls(`<tool_call>{"arguments": {"x": 1}}</tool_call>`); len(calls) != 0 {
		t.Errorf("got %d calls, want 0", len(calls))
	}
}

func TestParseMissingArguments(t *testing.T) {
	calls := ParseToolCalls(`<tool_call>{"name": "time"}</tool_call>`)
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if string(calls[0].Arguments) != "{}" {
		t.Errorf("Arguments = %s, want {}", calls[0].Arguments)
	}
}

func TestParseUnclosedBlock(t *testing.T) {
	if calls := ParseToolCalls(`<tool_call>{"name": "echo", "arguments": {}}`); len(calls) != 0 {
		t.Errorf("got %d calls, want 0", len(calls))
	}
}

func TestExtractTextAroundCalls(t *testing.T) {
	response := `Before <tool_call>{"name":"x","arguments":{}}</tool_call> After`

	got := ExtractText(response)
	if got != "Before  After" && got != "Before After" {
		// Leading/trailing whitespace is trimmed; the inner gap stays.
		t.Errorf("ExtractText = %q", got)
	}
	if strings.Contains(got, "tool_call") {
		t.Errorf("ExtractText leaked tool call markup: %q", got)
	}
}

func TestExtractTextNoCalls(t *testing.T) {
	if got := ExtractText("  plain text  "); got != "plain text" {
		t.Errorf("ExtractText = %q, want %q", got, "plain text")
	}
}

func TestFormatToolResults(t *testing.T) {
	results := []executedCall{
		{Name: "echo", Result: ToolResult{Success: true, Output: "hi"}},
		{Name: "shell", Result: ToolResult{Success: false, Error: "denied"}},
	}

	formatted := FormatToolResults(results)
	if !strings.Contains(formatted, `<tool_result name="echo">`) {
		t.Errorf("missing echo block: %q", formatted)
	}
	if !strings.Contains(formatted, `"output":"hi"`) {
		t.Errorf("missing echo output: %q", formatted)
	}
	if !strings.Contains(formatted, `"error":"denied"`) {
		t.Errorf("missing shell error: %q", formatted)
	}
	if !strings.HasSuffix(formatted, "</tool_result>\n") {
		t.Errorf("blocks should end with newline: %q", formatted)
	}
}
