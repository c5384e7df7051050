package extract

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/feature"
)

// MockExtractor is a test implementation of the Extractor interface.
// It allows tests to control the extraction results.
type MockExtractor struct {
	mu     sync.Mutex
	queue  []feature.Vector
	vector feature.Vector
	err    error
	calls  int
	closed bool
}

// NewMockExtractor creates a new MockExtractor returning zero vectors.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// SetVector sets the vector returned by every subsequent Extract call.
func (m *MockExtractor) SetVector(v feature.Vector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vector = v
}

// QueueVectors sets a sequence of vectors returned one per Extract call.
// When the queue drains, Extract falls back to the fixed vector.
func (m *MockExtractor) QueueVectors(vs ...feature.Vector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, vs...)
}

// SetError sets the error that will be returned by Extract.
func (m *MockExtractor) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Extract returns the pre-configured vector or error.
func (m *MockExtractor) Extract(frame *gocv.Mat) (feature.Vector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		v := m.queue[0]
		m.queue = m.queue[1:]
		return v, nil
	}
	if m.vector != nil {
		return m.vector.Clone(), nil
	}
	return feature.Zero(), nil
}

// Calls returns how many times Extract has been invoked.
func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close has been called.
func (m *MockExtractor) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close marks the extractor closed.
func (m *MockExtractor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
