package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"marketlens/internal/analysis/portfolio"
)

const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// BacktestParams are the request parameters a backtest job was submitted
// with, echoed back on every status poll.
type BacktestParams struct {
	Allocations []portfolio.Allocation `json:"allocations" binding:"required"`
	Years       int                    `json:"years" binding:"required"`
}

// BacktestJob tracks one asynchronous backtest in memory.
type BacktestJob struct {
	ID        string                    `json:"id"`
	Status    string                    `json:"status"`
	Params    BacktestParams            `json:"params"`
	StartedAt time.Time                 `json:"started_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
	Message   string                    `json:"message,omitempty"`
	Result    *portfolio.BacktestResult `json:"result,omitempty"`
}

func (j *BacktestJob) copy() BacktestJob {
	if j == nil {
		return BacktestJob{}
	}
	return *j
}

type jobRegistry struct {
	mu    sync.RWMutex
	jobs  map[string]*BacktestJob
	order []string // submission order, oldest first
	clock func() time.Time
}

func newJobRegistry(clock func() time.Time) *jobRegistry {
	if clock == nil {
		clock = time.Now
	}
	return &jobRegistry{jobs: map[string]*BacktestJob{}, clock: clock}
}

func (r *jobRegistry) submit(params BacktestParams) BacktestJob {
	now := r.clock()
	job := &BacktestJob{
		ID:        uuid.NewString(),
		Status:    JobStatusPending,
		Params:    params,
		StartedAt: now,
		UpdatedAt: now,
	}
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.order = append(r.order, job.ID)
	r.mu.Unlock()
	return job.copy()
}

func (r *jobRegistry) setRunning(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = JobStatusRunning
		job.UpdatedAt = r.clock()
	}
}

func (r *jobRegistry) finish(id string, result *portfolio.BacktestResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	job.UpdatedAt = r.clock()
	if err != nil {
		job.Status = JobStatusFailed
		job.Message = err.Error()
		return
	}
	job.Status = JobStatusDone
	job.Result = result
}

func (r *jobRegistry) snapshot(id string) (BacktestJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return BacktestJob{}, false
	}
	return job.copy(), true
}

// snapshots returns every job, newest first.
func (r *jobRegistry) snapshots() []BacktestJob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]BacktestJob, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.jobs[r.order[i]].copy())
	}
	return out
}
