// Package session implements the per-client streaming recognition state:
// the sliding keypoint window, the prediction smoother, the session itself,
// and the process-wide registry of active sessions.
package session

import (
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/feature"
)

// Window is a fixed-capacity FIFO buffer of per-frame feature vectors,
// ordered oldest to newest. It is a pure container: no locking, no side
// effects. Each session owns exactly one Window and is its only writer.
type Window struct {
	capacity int
	frames   []feature.Vector
}

// NewWindow creates an empty window holding at most capacity vectors.
func NewWindow(capacity int) *Window {
	return &Window{
		capacity: capacity,
		frames:   make([]feature.Vector, 0, capacity),
	}
}

// Push appends v, discarding the oldest vector first when at capacity.
func (w *Window) Push(v feature.Vector) {
	if len(w.frames) >= w.capacity {
		copy(w.frames, w.frames[1:])
		w.frames = w.frames[:w.capacity-1]
	}
	w.frames = append(w.frames, v)
}

// Len returns the number of buffered vectors.
func (w *Window) Len() int {
	return len(w.frames)
}

// Capacity returns the configured maximum length.
func (w *Window) Capacity() int {
	return w.capacity
}

// Full reports whether the window has reached capacity.
func (w *Window) Full() bool {
	return len(w.frames) == w.capacity
}

// Snapshot returns the current contents in temporal order. The returned
// slice is a copy; callers may hold it across later pushes.
func (w *Window) Snapshot() []feature.Vector {
	out := make([]feature.Vector, len(w.frames))
	copy(out, w.frames)
	return out
}
