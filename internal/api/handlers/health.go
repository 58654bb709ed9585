package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ikarus-labs/recommender/internal/vectorstore"
)

// Root is the liveness check at GET /. It always succeeds.
func Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Product Recommendation API"})
}

type HealthHandler struct {
	index         vectorstore.ProductIndex // nil when startup init failed
	pipelineReady bool
}

func NewHealthHandler(index vectorstore.ProductIndex, pipelineReady bool) *HealthHandler {
	return &HealthHandler{index: index, pipelineReady: pipelineReady}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if h.pipelineReady {
		checks["pipeline"] = "ok"
	} else {
		checks["pipeline"] = "unhealthy: startup initialization failed"
	}

	if h.index != nil {
		if err := h.index.Ping(r.Context()); err != nil {
			checks["index"] = "unhealthy: " + err.Error()
		} else {
			checks["index"] = "ok"
		}
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]interface{}{"status": statusStr(status), "checks": checks})
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
