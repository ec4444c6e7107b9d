package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Handler serves the job-submission HTTP surface over a JobStore,
// wrapping the spatial core directly rather than proxying to a
// separate backend process.
type Handler struct {
	store     *JobStore
	startTime time.Time
}

// NewHandler creates a Handler over store.
func NewHandler(store *JobStore) *Handler {
	return &Handler{store: store, startTime: time.Now()}
}

// HealthCheck handles GET /v1/health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]interface{}{"status": "ok"}, http.StatusOK)
}

// GetStats handles GET /v1/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]interface{}{
		"uptime_seconds": time.Since(h.startTime).Seconds(),
		"jobs_accepted":  h.store.Len(),
	}, http.StatusOK)
}

// SubmitJob handles POST /v1/jobs.
func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	id, err := h.store.Submit(req)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]string{"id": id}, http.StatusAccepted)
}

// GetJob handles GET /v1/jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	id = strings.TrimSuffix(id, "/mappings")

	job, ok := h.store.Get(id)
	if !ok {
		writeError(w, "job not found", http.StatusNotFound)
		return
	}

	writeJSON(w, job.summary(), http.StatusOK)
}

// GetMappings handles GET /v1/jobs/{id}/mappings.
func (h *Handler) GetMappings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/jobs/"), "/mappings")

	job, ok := h.store.Get(id)
	if !ok {
		writeError(w, "job not found", http.StatusNotFound)
		return
	}
	if job.State != JobDone {
		writeError(w, fmt.Sprintf("job is %s, not done", job.State), http.StatusConflict)
		return
	}

	writeJSON(w, job.Mappings, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}
