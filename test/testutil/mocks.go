package testutil

import (
	"sync"

	"github.com/TheMichaelB/otpdesk/internal/workflow"
)

// MockClipboard records copied text.
type MockClipboard struct {
	mu     sync.Mutex
	copied []string
	err    error
}

// NewMockClipboard creates an empty clipboard.
func NewMockClipboard() *MockClipboard {
	return &MockClipboard{}
}

// WriteAll records text, or fails with the configured error.
func (m *MockClipboard) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.copied = append(m.copied, text)
	return nil
}

// SetError makes subsequent writes fail.
func (m *MockClipboard) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Last returns the most recently copied text.
func (m *MockClipboard) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.copied) == 0 {
		return ""
	}
	return m.copied[len(m.copied)-1]
}

// StateRecorder collects page snapshots. Register Record with Page.Observe.
type StateRecorder struct {
	mu     sync.Mutex
	states []workflow.State
}

// Record appends s.
func (r *StateRecorder) Record(s workflow.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

// States returns a copy of the recorded snapshots.
func (r *StateRecorder) States() []workflow.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]workflow.State(nil), r.states...)
}

// Messages returns the distinct banner texts in the order they appeared.
func (r *StateRecorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	var last string
	for _, s := range r.states {
		if s.Message.Text != "" && s.Message.Text != last {
			out = append(out, s.Message.Text)
		}
		last = s.Message.Text
	}
	return out
}
