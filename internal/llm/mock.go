package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the mock providers.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// TextReply builds a canned unstructured reply.
func TextReply(s string) MockResponse {
	return MockResponse{Content: textContent(s)}
}

// JSONReply builds a canned structured reply.
func JSONReply(raw string) MockResponse {
	return MockResponse{Content: json.RawMessage(raw)}
}

// FailReply builds a canned failure.
func FailReply(err error) MockResponse {
	return MockResponse{Err: err}
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
// Structured replies are validated against the request schema.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp.toResponse(req)
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// toResponse checks structured replies against the request schema the
// same way the real adapters do.
func (r MockResponse) toResponse(req Request) (*Response, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if err := validateResponse(req.Schema, r.Content); err != nil {
		return nil, err
	}
	return &Response{
		Content:    r.Content,
		Usage:      r.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ScriptedProvider answers by the purpose label on the request context
// instead of by call order, so concurrent agents get the right reply.
// Each purpose has its own FIFO queue; an exhausted or unknown purpose
// yields ErrProviderUnavailable.
type ScriptedProvider struct {
	mu      sync.Mutex
	scripts map[string][]MockResponse
	calls   map[string][]Request
}

// NewScriptedProvider creates an empty ScriptedProvider.
func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{
		scripts: make(map[string][]MockResponse),
		calls:   make(map[string][]Request),
	}
}

// On queues replies for a purpose and returns the provider for chaining.
func (s *ScriptedProvider) On(purpose string, replies ...MockResponse) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[purpose] = append(s.scripts[purpose], replies...)
	return s
}

func (s *ScriptedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[purpose] = append(s.calls[purpose], req)

	queue := s.scripts[purpose]
	if len(queue) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}
	s.scripts[purpose] = queue[1:]
	return queue[0].toResponse(req)
}

func (s *ScriptedProvider) ModelID() string {
	return "scripted"
}

// Calls returns the requests made for a purpose.
func (s *ScriptedProvider) Calls(purpose string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.calls[purpose]))
	copy(out, s.calls[purpose])
	return out
}

// TotalCalls returns the number of requests across all purposes.
func (s *ScriptedProvider) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += len(c)
	}
	return n
}
