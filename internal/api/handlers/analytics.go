package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ikarus-labs/recommender/internal/analytics"
)

type AnalyticsHandler struct {
	reader *analytics.Reader
}

func NewAnalyticsHandler(reader *analytics.Reader) *AnalyticsHandler {
	return &AnalyticsHandler{reader: reader}
}

func (h *AnalyticsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reader.Snapshot()
	if err != nil {
		if errors.Is(err, analytics.ErrDatasetUnavailable) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Analytics data not available."})
			return
		}
		slog.Error("analytics snapshot failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgRequestFailed})
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
