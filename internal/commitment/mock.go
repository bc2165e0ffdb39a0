package commitment

import (
	"context"
	"sync"
)

// MockEvaluator is a deterministic evaluator for tests: each call to
// Evaluate for a given assertion consumes the next queued result for
// that assertion, or falls back to Default if the queue is empty.
type MockEvaluator struct {
	mu      sync.Mutex
	queued  map[string][]bool
	Default bool
}

// NewMockEvaluator creates an evaluator with an empty queue.
func NewMockEvaluator() *MockEvaluator {
	return &MockEvaluator{queued: make(map[string][]bool)}
}

// Queue appends a result to be returned for the given assertion the next
// time it is evaluated.
func (m *MockEvaluator) Queue(assertion string, passed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[assertion] = append(m.queued[assertion], passed)
}

// Evaluate returns the next queued result for assertion, or Default if
// none remain.
func (m *MockEvaluator) Evaluate(ctx context.Context, assertion string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queued[assertion]
	if len(q) == 0 {
		return m.Default, nil
	}
	m.queued[assertion] = q[1:]
	return q[0], nil
}
