package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/classify"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/extract"
)

// Registry is the process-wide table of active sessions, keyed by the
// random connection id minted at creation. It is the only state shared
// across connections; all of its operations are guarded by one lock, but
// none of them run per-frame work, so unrelated sessions never serialize
// on it while streaming.
type Registry struct {
	cfg        Config
	newExtract extract.Factory
	classifier classify.Classifier
	log        *logrus.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a Registry. Each created session gets its own
// extractor from the factory; the classifier is shared across sessions.
func NewRegistry(cfg Config, f extract.Factory, cl classify.Classifier, log *logrus.Logger) *Registry {
	return &Registry{
		cfg:        cfg,
		newExtract: f,
		classifier: cl,
		log:        log,
		sessions:   make(map[string]*Session),
	}
}

// Create constructs a session with an empty window and smoother, inserts it
// under a fresh uuid, and returns it.
func (r *Registry) Create() (*Session, error) {
	ex, err := r.newExtract()
	if err != nil {
		return nil, fmt.Errorf("create extractor: %w", err)
	}

	s := newSession(uuid.NewString(), r.cfg, ex, r.classifier, r.log)

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	return s, nil
}

// Get returns the session for id, or false if it does not exist.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove deletes the session and releases its owned resources. This is the
// only deallocation point; it must run exactly once per session no matter
// how the connection ended. Removing an unknown id is a no-op returning
// false, which makes the call safe on every disconnect path.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.close()
	}
	return ok
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Drain removes every active session. Used at server shutdown.
func (r *Registry) Drain() {
	r.mu.Lock()
	drained := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		drained = append(drained, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range drained {
		s.close()
	}
}
