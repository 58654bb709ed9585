package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ikarus-labs/recommender/internal/recommend"
)

const (
	msgServiceUnavailable = "The recommendation service is not available. Please try again later."
	msgRequestFailed      = "Failed to process the request."
)

// RecommendHandler serves the RAG recommendation endpoint. A nil pipeline
// means startup initialization failed; every call then fails fast with 503
// and no downstream calls are attempted.
type RecommendHandler struct {
	pipeline recommend.Pipeline
}

func NewRecommendHandler(p recommend.Pipeline) *RecommendHandler {
	return &RecommendHandler{pipeline: p}
}

type recommendRequest struct {
	Text string `json:"text"`
}

func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if h.pipeline == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": msgServiceUnavailable})
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text required"})
		return
	}

	rec, err := h.pipeline.Recommend(r.Context(), req.Text)
	if err != nil {
		if recommend.Unavailable(err) {
			slog.Error("recommendation pipeline unavailable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": msgServiceUnavailable})
			return
		}
		slog.Error("recommendation request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgRequestFailed})
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
