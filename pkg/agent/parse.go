package agent

import (
	"encoding/json"
	"strings"
)

const (
	toolCallOpen  = "<tool_call>"
	toolCallClose = "</tool_call>"
)

// ToolCall is a parsed tool invocation from a model response.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// ParseToolCalls extracts all <tool_call> blocks from a response.
// Blocks with malformed JSON or a missing name are skipped. An
// unclosed opening tag ends the scan.
func ParseToolCalls(response string) []ToolCall {
	var calls []ToolCall
	searchFrom := 0

	for {
		start := strings.Index(response[searchFrom:], toolCallOpen)
		if start < 0 {
			break
		}
		contentStart := searchFrom + start + len(toolCallOpen)

		end := strings.Index(response[contentStart:], toolCallClose)
		if end < 0 {
			break
		}
		contentEnd := contentStart + end

		raw := strings.TrimSpace(response[contentStart:contentEnd])
		var parsed struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil && parsed.Name != "" {
			args := parsed.Arguments
			if len(args) == 0 {
				args = json.RawMessage("{}")
			}
			calls = append(calls, ToolCall{Name: parsed.Name, Arguments: args})
		}

		searchFrom = contentEnd + len(toolCallClose)
	}

	return calls
}

// ExtractText returns the response text outside <tool_call> blocks,
// trimmed of surrounding whitespace.
func ExtractText(response string) string {
	var text strings.Builder
	searchFrom := 0

	for {
		start := strings.Index(response[searchFrom:], toolCallOpen)
		if start < 0 {
			text.WriteString(response[searchFrom:])
			break
		}
		text.WriteString(response[searchFrom : searchFrom+start])

		contentStart := searchFrom + start + len(toolCallOpen)
		end := strings.Index(response[contentStart:], toolCallClose)
		if end < 0 {
			break
		}
		searchFrom = contentStart + end + len(toolCallClose)
	}

	return strings.TrimSpace(text.String())
}

// executedCall pairs a tool name with its result for formatting.
type executedCall struct {
	Name   string
	Result ToolResult
}

// FormatToolResults renders executed tool results as <tool_result>
// blocks for feeding back to the model.
func FormatToolResults(results []executedCall) string {
	var out strings.Builder
	for _, r := range results {
		payload, err := json.Marshal(r.Result)
		if err != nil {
			payload = []byte("{}")
		}
		out.WriteString(`<tool_result name="` + r.Name + `">`)
		out.Write(payload)
		out.WriteString(toolResultClose + "\n")
	}
	return out.String()
}

const toolResultClose = "</tool_result>"
