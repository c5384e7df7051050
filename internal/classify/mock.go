package classify

import (
	"sync"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/feature"
)

// MockClassifier is a test implementation of the Classifier interface.
// It allows tests to control the returned distributions.
type MockClassifier struct {
	mu     sync.Mutex
	labels []string
	probs  []float32
	queue  [][]float32
	err    error
	calls  int
}

// NewMockClassifier creates a MockClassifier over the given labels. Until
// configured otherwise it returns a uniform distribution.
func NewMockClassifier(labels []string) *MockClassifier {
	return &MockClassifier{labels: labels}
}

// SetProbs sets the distribution returned by every subsequent Predict call.
func (m *MockClassifier) SetProbs(probs []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probs = probs
}

// QueueProbs sets a sequence of distributions returned one per Predict
// call. When the queue drains, Predict falls back to the fixed distribution.
func (m *MockClassifier) QueueProbs(probs ...[]float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, probs...)
}

// SetError sets the error that will be returned by Predict.
func (m *MockClassifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Predict returns the pre-configured distribution or error.
func (m *MockClassifier) Predict(window []feature.Vector) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		p := m.queue[0]
		m.queue = m.queue[1:]
		return p, nil
	}
	if m.probs != nil {
		return m.probs, nil
	}

	uniform := make([]float32, len(m.labels))
	for i := range uniform {
		uniform[i] = 1.0 / float32(len(m.labels))
	}
	return uniform, nil
}

// Labels returns the configured label list.
func (m *MockClassifier) Labels() []string {
	return m.labels
}

// Calls returns how many times Predict has been invoked.
func (m *MockClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close is a no-op for the mock classifier.
func (m *MockClassifier) Close() error {
	return nil
}
