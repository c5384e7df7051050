// Package classify bridges to the external sequence classifier that turns a
// full sliding window of keypoint vectors into a probability distribution
// over the known sign labels.
package classify

import (
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/feature"
)

// Classifier scores a complete temporal window of feature vectors. A single
// Classifier may be shared by all sessions; implementations serialize their
// own access, and callers must tolerate Predict blocking while another
// session's window is being scored.
type Classifier interface {
	// Predict returns one probability per known label, summing to ~1.0.
	Predict(window []feature.Vector) ([]float32, error)

	// Labels returns the known sign labels, index-aligned with Predict
	// output. The slice must not be mutated.
	Labels() []string

	// Close releases any resources held by the classifier.
	Close() error
}

// Config holds configuration options for the model classifier.
type Config struct {
	// ScriptPath is the path to the classifier service script. Empty means
	// search the usual locations.
	ScriptPath string

	// ModelPath is the trained model file handed to the service.
	ModelPath string

	// LabelsPath is the label list file handed to the service.
	LabelsPath string

	// SequenceLength is the window length the model was trained on.
	SequenceLength int
}

// Argmax returns the index of the largest probability. Ties resolve to the
// lowest index. Returns -1 for an empty distribution.
func Argmax(probs []float32) int {
	if len(probs) == 0 {
		return -1
	}
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best
}

// Distribution maps every known label to its probability, for client-side
// display alongside the gated decision.
func Distribution(labels []string, probs []float32) map[string]float32 {
	dist := make(map[string]float32, len(labels))
	for i, l := range labels {
		if i < len(probs) {
			dist[l] = probs[i]
		}
	}
	return dist
}
