// Package jobs provides the in-process work queue that decouples request
// intake from content generation. Jobs live in memory only and do not
// survive a daemon restart.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"teachassist/internal/services"
)

// Status is the lifecycle state of a queued job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// JobGeneratePackage builds all artifacts for a plan.
const JobGeneratePackage = "generate-package"

// Job is one unit of queued work. Payload carries the target identifier,
// typically a plan ID.
type Job struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Payload     string     `json:"payload"`
	Status      Status     `json:"status"`
	Result      string     `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Handler executes one job and returns a result summary.
type Handler func(ctx context.Context, payload string) (string, error)

// Queue is a mutex-protected FIFO queue with per-type handlers.
type Queue struct {
	mu       sync.Mutex
	jobs     []*Job
	handlers map[string]Handler
	nextID   int
}

// NewQueue constructs an empty queue.
func NewQueue() *Queue {
	return &Queue{handlers: make(map[string]Handler), nextID: 1}
}

// RegisterHandler installs the handler for a job type, replacing any
// previous registration.
func (q *Queue) RegisterHandler(jobType string, handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobType] = handler
}

// Enqueue adds a pending job and returns a snapshot of it.
func (q *Queue) Enqueue(jobType, payload string) *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	job := &Job{
		ID:        fmt.Sprintf("job_%d", q.nextID),
		Type:      jobType,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	q.nextID++
	q.jobs = append(q.jobs, job)
	snapshot := *job
	return &snapshot
}

// ProcessNext runs the oldest pending job. It returns the finished job
// and true, or nil and false when nothing was pending. A job whose type
// has no registered handler is marked failed.
func (q *Queue) ProcessNext(ctx context.Context) (*Job, bool) {
	q.mu.Lock()
	var job *Job
	for _, candidate := range q.jobs {
		if candidate.Status == StatusPending {
			job = candidate
			break
		}
	}
	if job == nil {
		q.mu.Unlock()
		return nil, false
	}
	job.Status = StatusRunning
	handler := q.handlers[job.Type]
	q.mu.Unlock()

	var result string
	var err error
	if handler == nil {
		err = fmt.Errorf("no handler registered for job type %q", job.Type)
	} else {
		result, err = handler(services.WithJobID(ctx, job.ID), job.Payload)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now().UTC()
	job.CompletedAt = &now
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
	} else {
		job.Status = StatusCompleted
		job.Result = result
	}
	snapshot := *job
	return &snapshot, true
}

// Get returns a snapshot of the job with the given ID, or nil.
func (q *Queue) Get(id string) *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		if job.ID == id {
			snapshot := *job
			return &snapshot
		}
	}
	return nil
}

// Counts reports how many jobs are in each status.
func (q *Queue) Counts() map[Status]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	counts := make(map[Status]int, 4)
	for _, job := range q.jobs {
		counts[job.Status]++
	}
	return counts
}

// Pending reports whether any job is waiting to run.
func (q *Queue) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		if job.Status == StatusPending {
			return true
		}
	}
	return false
}
