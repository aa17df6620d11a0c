// Package providers defines the boundary to downstream LLM providers.
//
// Everything that leaves the process through this boundary has already
// passed the guardrail scan; callers are responsible for scanning
// before they call Chat.
package providers

import (
	"context"
	"fmt"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	// Model is the provider model identifier.
	Model string

	// System is the system prompt, already including any rendered
	// guardrail advisory text. Empty omits the system message.
	System string

	// Messages is the conversation so far, oldest first.
	Messages []Message

	// Temperature is the sampling temperature.
	Temperature float64
}

// ChatResponse is a provider-agnostic chat completion response.
type ChatResponse struct {
	// Content is the assistant's text response.
	Content string

	// Model echoes the model that produced the response.
	Model string

	// PromptTokens and CompletionTokens carry usage when the provider
	// reports it.
	PromptTokens     int
	CompletionTokens int
}

// Provider is a client for one LLM provider.
type Provider interface {
	// Chat sends a chat completion request and returns the response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name returns the provider's identifier for logging.
	Name() string
}

// RequestError represents a failed provider request.
type RequestError struct {
	// Provider is the provider name.
	Provider string

	// StatusCode is the HTTP status, when one was received.
	StatusCode int

	// Message describes the failure. Provider error bodies are
	// truncated, never echoed wholesale.
	Message string

	// Cause is the underlying transport error, if any.
	Cause error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

// Unwrap implements the errors.Unwrap interface.
func (e *RequestError) Unwrap() error {
	return e.Cause
}
