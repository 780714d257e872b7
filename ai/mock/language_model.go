package mock

import (
	"context"
	"sync"
)

// Call records a single Complete invocation.
type Call struct {
	Instructions string
	Input        string
}

// MockLanguageModel is a test double for ai.LanguageModel.
type MockLanguageModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, every call answers "{}".
	CompleteFunc func(ctx context.Context, instructions, input string) (string, error)

	mu    sync.Mutex
	calls []Call
}

// NewMockLanguageModel creates a mock language model with default behavior.
func NewMockLanguageModel() *MockLanguageModel {
	return &MockLanguageModel{}
}

// WithCompleteFunc installs a custom Complete implementation.
func (m *MockLanguageModel) WithCompleteFunc(fn func(ctx context.Context, instructions, input string) (string, error)) *MockLanguageModel {
	m.CompleteFunc = fn
	return m
}

// WithResponses answers the n-th call with responses[n]. Calls past the end
// repeat the last response.
func (m *MockLanguageModel) WithResponses(responses ...string) *MockLanguageModel {
	m.CompleteFunc = func(context.Context, string, string) (string, error) {
		if len(responses) == 0 {
			return "{}", nil
		}
		n := m.CallCount() - 1
		if n >= len(responses) {
			n = len(responses) - 1
		}
		return responses[n], nil
	}
	return m
}

// Complete records the call and returns the scripted answer.
func (m *MockLanguageModel) Complete(ctx context.Context, instructions, input string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Instructions: instructions, Input: input})
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, instructions, input)
	}
	return "{}", nil
}

// CallCount returns the number of times Complete was called.
func (m *MockLanguageModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *MockLanguageModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears recorded calls and the custom function.
func (m *MockLanguageModel) Reset() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
	m.CompleteFunc = nil
}
