package handlers

import (
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ConsolidateJob represents an async consolidation job.
type ConsolidateJob struct {
	ID          string                        `json:"id"`
	Year        int                           `json:"year"`
	Month       string                        `json:"month"`
	Status      JobStatus                     `json:"status"`
	Error       string                        `json:"error,omitempty"`
	StartedAt   time.Time                     `json:"started_at"`
	CompletedAt *time.Time                    `json:"completed_at,omitempty"`
	Result      *attendance.ConsolidateResult `json:"result,omitempty"`

	mu sync.RWMutex
}

// SetRunning marks the job as running.
func (j *ConsolidateJob) SetRunning() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = JobStatusRunning
}

// Complete marks the job as completed with its result.
func (j *ConsolidateJob) Complete(result *attendance.ConsolidateResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	j.Status = JobStatusCompleted
	j.Result = result
	j.CompletedAt = &now
}

// Fail marks the job as failed.
func (j *ConsolidateJob) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	j.Status = JobStatusFailed
	j.Error = err.Error()
	j.CompletedAt = &now
}

// Snapshot returns a copy safe for serialization.
func (j *ConsolidateJob) Snapshot() ConsolidateJob {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return ConsolidateJob{
		ID:          j.ID,
		Year:        j.Year,
		Month:       j.Month,
		Status:      j.Status,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		Result:      j.Result,
	}
}

// JobManager manages async jobs.
type JobManager struct {
	jobs map[string]*ConsolidateJob
	mu   sync.RWMutex
}

// NewJobManager creates a new job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*ConsolidateJob),
	}
}

// CreateJob creates a new consolidation job.
func (m *JobManager) CreateJob(id string, year int, month string) *ConsolidateJob {
	job := &ConsolidateJob{
		ID:        id,
		Year:      year,
		Month:     month,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	return job
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *ConsolidateJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// ListJobs returns all jobs.
func (m *JobManager) ListJobs() []ConsolidateJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]ConsolidateJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job.Snapshot())
	}
	return jobs
}
