package extract

import (
	"gocv.io/x/gocv"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/feature"
)

// Extractor converts one video frame into a flattened keypoint feature
// vector. Implementations may be stateful across frames (the holistic
// tracker is), so each client session gets its own instance.
type Extractor interface {
	// Extract analyzes a frame and returns its feature vector. Landmark
	// groups not detected in the frame are zero-filled; a fully empty frame
	// yields an all-zero vector, not an error.
	Extract(frame *gocv.Mat) (feature.Vector, error)

	// Close releases any resources held by the extractor.
	Close() error
}

// Factory constructs a fresh Extractor for a new client session.
type Factory func() (Extractor, error)

// Config holds configuration options for landmark extraction.
type Config struct {
	// ScriptPath is the path to the holistic service script. Empty means
	// search the usual locations.
	ScriptPath string

	// MinDetectionConf is the minimum detection confidence (0.0-1.0).
	MinDetectionConf float64

	// MinTrackingConf is the minimum tracking confidence (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinDetectionConf: 0.5,
		MinTrackingConf:  0.5,
	}
}
