package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foyerhq/foyer/internal/jobs"
	"github.com/foyerhq/foyer/internal/models"
)

// JobsHandler exposes async tool executions.
type JobsHandler struct {
	jobs *jobs.Manager
}

func NewJobsHandler(jm *jobs.Manager) *JobsHandler {
	return &JobsHandler{jobs: jm}
}

// List handles GET /api/v1/jobs?user_id=...
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		models.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	all := h.jobs.List(userID)
	views := make([]*models.JobView, 0, len(all))
	for _, j := range all {
		views = append(views, jobView(j))
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{"jobs": views})
}

// Get handles GET /api/v1/jobs/{job_id}?user_id=...
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		models.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	j, ok := h.jobs.Get(chi.URLParam(r, "job_id"))
	if !ok || j.UserID != userID {
		models.WriteError(w, http.StatusNotFound, "job not found")
		return
	}
	models.WriteJSON(w, http.StatusOK, jobView(j))
}
