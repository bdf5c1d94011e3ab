package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockTransport provides a mock implementation for testing.
type MockTransport struct {
	mu sync.Mutex

	// Response configuration, keyed by path
	Responses map[string]interface{}
	Errors    map[string]error
	gates     map[string]chan struct{}

	// Request tracking
	Requests []Request

	closed bool
}

// Request tracks a call made through the mock.
type Request struct {
	Method  string
	Path    string
	Payload interface{}
}

// NewMockTransport creates a mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		Responses: make(map[string]interface{}),
		Errors:    make(map[string]error),
		gates:     make(map[string]chan struct{}),
	}
}

// PostJSON mocks HTTP POST.
func (m *MockTransport) PostJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	return m.handle(ctx, "POST", path, payload, out)
}

// GetJSON mocks HTTP GET.
func (m *MockTransport) GetJSON(ctx context.Context, path string, out interface{}) error {
	return m.handle(ctx, "GET", path, nil, out)
}

// Close marks the mock closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockTransport) handle(ctx context.Context, method, path string, payload, out interface{}) error {
	m.mu.Lock()
	m.Requests = append(m.Requests, Request{Method: method, Path: path, Payload: payload})
	gate := m.gates[path]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.Errors[path]; ok {
		return err
	}

	resp, ok := m.Responses[path]
	if !ok {
		return fmt.Errorf("no mock response for %s %s", method, path)
	}

	if out == nil || resp == nil {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal mock response: %w", err)
	}
	return json.Unmarshal(data, out)
}

// Helper methods for test setup

// AddResponse sets the body returned for path.
func (m *MockTransport) AddResponse(path string, response interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[path] = response
	delete(m.Errors, path)
}

// AddError makes every call to path fail with err.
func (m *MockTransport) AddError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[path] = err
}

// Hold blocks calls to path until the returned release func is called.
func (m *MockTransport) Hold(path string) (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gate := make(chan struct{})
	m.gates[path] = gate

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.gates, path)
			m.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns a copy of the recorded requests.
func (m *MockTransport) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.Requests...)
}

// CallCount returns how many requests hit path.
func (m *MockTransport) CallCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, r := range m.Requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Closed reports whether Close was called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
