// Package api provides the read-only HTTP API handlers for the sign
// recognition server.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/store"
)

// LabelsHandler serves the known sign label catalog.
type LabelsHandler struct {
	store *store.Store
}

// NewLabelsHandler creates a new LabelsHandler with the given store.
func NewLabelsHandler(s *store.Store) *LabelsHandler {
	return &LabelsHandler{store: s}
}

type labelResponse struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// ServeHTTP handles GET requests to /api/labels.
func (h *LabelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	labels, err := h.store.Labels().List()
	if err != nil {
		http.Error(w, "Failed to list labels", http.StatusInternalServerError)
		return
	}

	response := make([]labelResponse, 0, len(labels))
	for _, l := range labels {
		response = append(response, labelResponse{Index: l.Index, Name: l.Name})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
