package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// consolidateTimeout bounds a single background consolidation run.
const consolidateTimeout = 5 * time.Minute

// ConsolidateHandler runs consolidation jobs in the background.
type ConsolidateHandler struct {
	store      store.Store
	jobManager *JobManager
}

// NewConsolidateHandler creates a new consolidate handler.
func NewConsolidateHandler(st store.Store, jm *JobManager) *ConsolidateHandler {
	return &ConsolidateHandler{
		store:      st,
		jobManager: jm,
	}
}

// StartRequest represents a consolidation start request.
type StartRequest struct {
	Year  int    `json:"year"`
	Month string `json:"month"`
}

// Start starts a new consolidation job.
func (h *ConsolidateHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.Year == 0 || req.Month == "" {
		respondError(w, http.StatusBadRequest, "year and month are required")
		return
	}
	month, ok := parseMonth(req.Month)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid month name")
		return
	}

	jobID := uuid.New().String()
	job := h.jobManager.CreateJob(jobID, req.Year, month.String())

	// Run in background; the request context dies when the handler returns.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), consolidateTimeout)
		defer cancel()

		job.SetRunning()
		consolidator := attendance.NewConsolidator(h.store)
		result, err := consolidator.Consolidate(ctx, req.Year, month)
		if err != nil {
			log.Printf("consolidation job %s failed: %v", jobID, err)
			job.Fail(err)
			return
		}
		job.Complete(result)
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

// Status returns the status of a consolidation job.
func (h *ConsolidateHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	respondJSON(w, http.StatusOK, job.Snapshot())
}

// List returns all consolidation jobs.
func (h *ConsolidateHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.jobManager.ListJobs())
}
