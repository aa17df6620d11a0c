package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ToolResult is the outcome of a single tool execution.
type ToolResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

// Tool is one capability the model may invoke via <tool_call> blocks.
type Tool interface {
	// Name is the identifier the model uses to address the tool.
	Name() string

	// Description tells the model what the tool does.
	Description() string

	// Execute runs the tool with the given JSON arguments.
	Execute(ctx context.Context, arguments json.RawMessage) (ToolResult, error)
}

// Registry holds the tools available to the agent loop.
type Registry struct {
	tools []Tool
}

// NewRegistry creates a registry with the given tools. Later tools
// with a duplicate name are ignored.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool unless one with the same name exists.
func (r *Registry) Register(t Tool) {
	if r.Lookup(t.Name()) != nil {
		return
	}
	r.tools = append(r.tools, t)
}

// Lookup returns the tool with the given name, or nil.
func (r *Registry) Lookup(name string) Tool {
	for _, t := range r.tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// Describe renders a tool listing suitable for a system prompt.
func (r *Registry) Describe() string {
	if len(r.tools) == 0 {
		return ""
	}
	out := "## Available Tools\n\n" +
		"To use a tool, emit a <tool_call>{\"name\": \"...\", \"arguments\": {...}}</tool_call> block.\n\n"
	for _, t := range r.tools {
		out += fmt.Sprintf("- %s: %s\n", t.Name(), t.Description())
	}
	return out
}

// BuiltinTools returns the default tool set.
func BuiltinTools() []Tool {
	return []Tool{
		&timeTool{},
		&echoTool{},
	}
}

// timeTool reports the current time.
type timeTool struct{}

func (t *timeTool) Name() string        { return "time" }
func (t *timeTool) Description() string { return "Returns the current date and time in UTC." }

func (t *timeTool) Execute(ctx context.Context, arguments json.RawMessage) (ToolResult, error) {
	return ToolResult{
		Success: true,
		Output:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// echoTool repeats its text argument. Useful for loop smoke tests.
type echoTool struct{}

func (t *echoTool) Name() string        { return "echo" }
func (t *echoTool) Description() string { return "Echoes back the provided text argument." }

func (t *echoTool) Execute(ctx context.Context, arguments json.RawMessage) (ToolResult, error) {
	var args struct {
		Text string `json:"text"`
	}
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return ToolResult{Success: false, Error: fmt.Sprintf("invalid arguments: %v", err)}, nil
		}
	}
	return ToolResult{Success: true, Output: args.Text}, nil
}
