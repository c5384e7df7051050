// Package server provides the HTTP and WebSocket surface of the sign
// recognition service.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/server/api"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/session"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Registry  *session.Registry
	Log       *logrus.Logger

	// IdleTimeout, when positive, disconnects clients that send no frame
	// for that long.
	IdleTimeout time.Duration
}

// Server routes prediction WebSocket traffic and the read-only HTTP API.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Log == nil {
		config.Log = logrus.New()
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Streaming prediction endpoint
	if s.config.Registry != nil {
		predict := NewPredictHandler(s.config.Registry, s.config.Store, s.config.Log, s.config.IdleTimeout)
		s.mux.Handle("/ws/predict", predict)
	}

	// Read-only catalog and event APIs
	if s.config.Store != nil {
		s.mux.Handle("/api/labels", api.NewLabelsHandler(s.config.Store))
		s.mux.Handle("/api/recognitions", api.NewRecognitionsHandler(s.config.Store))
	}

	// Serve the frontend if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health. It is a side-effect-free
// observer: the active session count is the only registry state it reads.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if s.config.Registry != nil {
		response["active_sessions"] = s.config.Registry.Count()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
