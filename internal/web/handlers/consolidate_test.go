package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/store"
)

func consolidateRouter(st store.Store, jm *JobManager) *chi.Mux {
	h := NewConsolidateHandler(st, jm)
	r := chi.NewRouter()
	r.Post("/api/v1/consolidate", h.Start)
	r.Get("/api/v1/consolidate", h.List)
	r.Get("/api/v1/consolidate/{jobId}", h.Status)
	return r
}

func startJob(t *testing.T, router *chi.Mux, body string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/consolidate", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["job_id"] == "" {
		t.Fatal("expected a job_id in the response")
	}
	return resp["job_id"]
}

func waitForJob(t *testing.T, jm *JobManager, jobID string) *ConsolidateJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job := jm.GetJob(jobID)
		if job != nil {
			snapshot := job.Snapshot()
			if snapshot.Status == JobStatusCompleted || snapshot.Status == JobStatusFailed {
				return job
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestConsolidateHandler_RunsJob(t *testing.T) {
	mem := seedStore(t)
	jm := NewJobManager()
	router := consolidateRouter(mem, jm)

	jobID := startJob(t, router, `{"year": 2026, "month": "March"}`)
	job := waitForJob(t, jm, jobID)

	snapshot := job.Snapshot()
	if snapshot.Status != JobStatusCompleted {
		t.Fatalf("expected completed job, got %s (%s)", snapshot.Status, snapshot.Error)
	}
	if snapshot.Result == nil || snapshot.Result.Events != 2 {
		t.Errorf("unexpected result %+v", snapshot.Result)
	}

	timeline, err := attendance.NewConsolidator(mem).ReadTimeline(context.Background(), 2026, time.March)
	if err != nil {
		t.Fatalf("failed to read timeline: %v", err)
	}
	if len(timeline) != 2 {
		t.Errorf("expected 2 consolidated events, got %d", len(timeline))
	}
}

func TestConsolidateHandler_StatusEndpoint(t *testing.T) {
	jm := NewJobManager()
	router := consolidateRouter(seedStore(t), jm)

	jobID := startJob(t, router, `{"year": 2026, "month": "March"}`)
	waitForJob(t, jm, jobID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/consolidate/"+jobID, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var job ConsolidateJob
	if err := json.Unmarshal(recorder.Body.Bytes(), &job); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if job.ID != jobID || job.Month != "March" {
		t.Errorf("unexpected job payload %+v", job)
	}
}

func TestConsolidateHandler_UnknownJob(t *testing.T) {
	router := consolidateRouter(store.NewMemory(), NewJobManager())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/consolidate/nope", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", recorder.Code)
	}
}

func TestConsolidateHandler_ValidatesRequest(t *testing.T) {
	router := consolidateRouter(store.NewMemory(), NewJobManager())

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing year", `{"month": "March"}`},
		{"missing month", `{"year": 2026}`},
		{"bad month name", `{"year": 2026, "month": "Smarch"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/consolidate", strings.NewReader(tc.body))
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			if recorder.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", recorder.Code)
			}
		})
	}
}
