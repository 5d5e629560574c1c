// Package api implements the read-only HTTP surface over the tracked-job
// store.
//
// Routes:
//
//	GET /health           → liveness probe
//	GET /jobs             → list tracked jobs, ?company= and ?status= filters
//	GET /jobs/{id}        → fetch one tracked job
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
	"github.com/aswath-space/jobseekers-shovel/internal/store"
)

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	store store.Store
}

// NewHandler returns a configured Handler.
func NewHandler(st store.Store) *Handler {
	return &Handler{store: st}
}

// RegisterRoutes mounts all routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/jobs", h.handleJobs)
	mux.HandleFunc("/jobs/", h.handleJob)
}

// ─── Routes ──────────────────────────────────────────────────────────────────

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleJobs handles GET /jobs with optional company and status filters.
func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	company := r.URL.Query().Get("company")
	statusFilter := r.URL.Query().Get("status")

	var status model.Status
	if statusFilter != "" {
		parsed, err := model.ParseStatus(statusFilter)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		status = parsed
	}

	jobs, err := h.store.All(r.Context())
	if err != nil {
		log.Printf("[api] list jobs error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	filtered := make([]*model.TrackedJob, 0, len(jobs))
	for _, j := range jobs {
		if company != "" && j.CompanyID != company {
			continue
		}
		if status != "" && j.Status != status {
			continue
		}
		filtered = append(filtered, j)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(filtered),
		"jobs":  filtered,
	})
}

// handleJob handles GET /jobs/{id}.
func (h *Handler) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[1] == "" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	job, err := h.store.Get(r.Context(), parts[1])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "job not found", http.StatusNotFound)
			return
		}
		log.Printf("[api] get job error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
