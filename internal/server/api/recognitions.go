package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/store"
)

// RecognitionsHandler serves recent gated recognition events.
type RecognitionsHandler struct {
	store *store.Store
}

// NewRecognitionsHandler creates a new RecognitionsHandler with the given store.
func NewRecognitionsHandler(s *store.Store) *RecognitionsHandler {
	return &RecognitionsHandler{store: s}
}

type recognitionResponse struct {
	ID         int64   `json:"id"`
	SessionID  string  `json:"session_id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Frame      uint64  `json:"frame"`
	CreatedAt  string  `json:"created_at"`
}

// ServeHTTP handles GET requests to /api/recognitions.
// Query parameters: limit (default 50), session_id (optional filter).
func (h *RecognitionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := h.store.Recognitions().ListRecent(r.URL.Query().Get("session_id"), limit)
	if err != nil {
		http.Error(w, "Failed to list recognitions", http.StatusInternalServerError)
		return
	}

	response := make([]recognitionResponse, 0, len(recs))
	for _, rec := range recs {
		response = append(response, recognitionResponse{
			ID:         rec.ID,
			SessionID:  rec.SessionID,
			Label:      rec.Label,
			Confidence: rec.Confidence,
			Frame:      rec.Frame,
			CreatedAt:  rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
