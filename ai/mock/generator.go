package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/poiesic/firstaid/ai"
)

// defaultResponse is the canned answer produced when no behavior is injected.
const defaultResponse = `WARNING: Immediate Action
Keep the person still and calm.

Step-by-Step Instructions
1. Check responsiveness and breathing.
2. Call emergency services if the situation is severe.
3. Monitor the person until help arrives.

When to Seek Medical Help
- Symptoms worsen or do not improve.

What NOT to Do
- Do not leave the person unattended.

Additional Notes
This is general guidance based on the provided sources.`

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
// Safe for concurrent use, matching the ai.Generator contract.
type MockGenerator struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns a fixed structured answer.
	CompleteFunc func(ctx context.Context, req *ai.CompletionRequest) (string, error)

	callCount atomic.Int64

	mu      sync.Mutex
	lastReq *ai.CompletionRequest
}

// NewMockGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Complete returns the injected behavior's output or the fixed default answer.
func (m *MockGenerator) Complete(ctx context.Context, req *ai.CompletionRequest) (string, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.lastReq = req
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}

	return defaultResponse, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockGenerator) CallCount() int {
	return int(m.callCount.Load())
}

// LastRequest returns the most recent completion request, or nil.
func (m *MockGenerator) LastRequest() *ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}

// Reset clears the call count, captured request, and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount.Store(0)
	m.mu.Lock()
	m.lastReq = nil
	m.mu.Unlock()
	m.CompleteFunc = nil
}
