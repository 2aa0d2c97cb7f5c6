// Package testutil provides mocks for testing oracle interactions.
package testutil

import (
	"context"
	"sync"

	"github.com/c360studio/rosterflow/llm"
)

// MockOracleClient is a thread-safe mock oracle client. It returns the
// configured responses in sequence and captures the context it was called
// with.
//
// Usage:
//
//	mock := &MockOracleClient{
//	    Responses: []*llm.Response{
//	        {Content: `{"result": "ok"}`, Model: "test-model"},
//	    },
//	}
//
//	mock := &MockOracleClient{Err: errors.New("connection failed")}
type MockOracleClient struct {
	mu              sync.Mutex
	capturedContext context.Context
	Responses       []*llm.Response // returned in sequence
	Err             error           // takes precedence over Responses
	callCount       int
	responseIndex   int
}

// Complete returns the next configured response, or Err if set.
func (m *MockOracleClient) Complete(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.capturedContext = ctx
	m.callCount++

	if m.Err != nil {
		return nil, m.Err
	}
	if m.responseIndex < len(m.Responses) {
		resp := m.Responses[m.responseIndex]
		m.responseIndex++
		return resp, nil
	}
	return &llm.Response{Content: "", Model: "test-model"}, nil
}

// GetCapturedContext returns the last context passed to Complete.
func (m *MockOracleClient) GetCapturedContext() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.capturedContext
}

// GetCallCount returns how many times Complete was called.
func (m *MockOracleClient) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears call count, response index, and captured context.
func (m *MockOracleClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.responseIndex = 0
	m.capturedContext = nil
}
