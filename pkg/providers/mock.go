package providers

import (
	"context"
	"sync"
)

// MockProvider is a scriptable Provider for tests. Responses are
// returned in order; the last one repeats once the script runs out.
type MockProvider struct {
	mu        sync.Mutex
	responses []*ChatResponse
	err       error
	requests  []*ChatRequest
}

// NewMockProvider creates a mock that replies with the given contents.
func NewMockProvider(contents ...string) *MockProvider {
	m := &MockProvider{}
	for _, c := range contents {
		m.responses = append(m.responses, &ChatResponse{Content: c, Model: "mock"})
	}
	return m
}

// FailWith makes every Chat call return err.
func (m *MockProvider) FailWith(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Name returns the provider identifier.
func (m *MockProvider) Name() string {
	return "mock"
}

// Chat records the request and returns the next scripted response.
func (m *MockProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &ChatResponse{Content: "", Model: "mock"}, nil
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

// Requests returns the requests seen so far.
func (m *MockProvider) Requests() []*ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns how many Chat calls have been made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
