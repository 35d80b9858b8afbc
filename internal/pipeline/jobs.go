package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/autoapi/internal/config"
)

// JobStatus represents the state of a documentation build.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusBuilding  JobStatus = "building"
	StatusSelecting JobStatus = "selecting"
	StatusRendering JobStatus = "rendering"
	StatusWriting   JobStatus = "writing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks the state of a single root build.
type Job struct {
	mu sync.Mutex

	ID      string             `json:"job_id"`
	Root    string             `json:"root"`
	Options config.RootOptions `json:"options"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks build progress.
type Progress struct {
	Nodes    int      `json:"nodes"`    // nodes in the built tree
	Failures int      `json:"failures"` // sub-packages that failed to import
	Selected int      `json:"selected"` // nodes chosen for rendering
	Rendered int      `json:"rendered"`
	Written  int      `json:"written"`
	Skipped  int      `json:"skipped"` // existing files left in place
	Errors   []string `json:"errors"`
}

// NewJob returns a queued job for root.
func NewJob(root string, opts config.RootOptions) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Root:      root,
		Options:   opts,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTree records the size of the built tree.
func (j *Job) SetTree(nodes, failures int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Nodes = nodes
	j.Progress.Failures = failures
	j.UpdatedAt = time.Now()
}

func (j *Job) SetSelected(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Selected = n
	j.UpdatedAt = time.Now()
}

// IncrRendered atomically increments rendered pages.
func (j *Job) IncrRendered() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Rendered++
	j.UpdatedAt = time.Now()
}

// RecordWrite counts a file as written or as skipped.
func (j *Job) RecordWrite(written bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if written {
		j.Progress.Written++
	} else {
		j.Progress.Skipped++
	}
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string             `json:"job_id"`
	Root      string             `json:"root"`
	Options   config.RootOptions `json:"options"`
	Status    JobStatus          `json:"status"`
	Phase     string             `json:"phase"`
	Progress  Progress           `json:"progress"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		Root:      j.Root,
		Options:   j.Options,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
