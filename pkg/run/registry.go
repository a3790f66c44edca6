package run

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Registry is the in-process store of runs. All methods are safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	runs    map[string]*Run
	cancels map[string]context.CancelFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		runs:    make(map[string]*Run),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Create registers a new pending run.
func (r *Registry) Create(run *Run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.Status = StatusPending
	run.CreatedAt = time.Now().UTC()
	r.runs[run.ID] = run
}

// Get returns a snapshot of the run, or ErrNotFound.
func (r *Registry) Get(id string) (Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return *run, nil
}

// List returns a page of run snapshots ordered newest first, plus the total
// count. page is 1-based.
func (r *Registry) List(page, size int) ([]Run, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	r.mu.RLock()
	all := make([]*Run, 0, len(r.runs))
	for _, run := range r.runs {
		all = append(all, run)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := (page - 1) * size
	if start >= total {
		return nil, total
	}
	end := start + size
	if end > total {
		end = total
	}
	out := make([]Run, 0, end-start)
	for _, run := range all[start:end] {
		out = append(out, *run)
	}
	return out, total
}

// MarkRunning transitions a pending run to running.
func (r *Registry) MarkRunning(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs[id]; ok && run.Status == StatusPending {
		run.Status = StatusRunning
		run.StartedAt = time.Now().UTC()
	}
}

// SetResult marks a run completed with its final result. No-op once terminal.
func (r *Registry) SetResult(id, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok || run.Status.Terminal() {
		return
	}
	run.Status = StatusCompleted
	run.Result = result
	run.FinishedAt = time.Now().UTC()
	delete(r.cancels, id)
}

// SetError marks a run failed with a structured error. No-op once terminal.
func (r *Registry) SetError(id, kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok || run.Status.Terminal() {
		return
	}
	run.Status = StatusFailed
	run.Error = &Error{Kind: kind, Message: message}
	run.FinishedAt = time.Now().UTC()
	delete(r.cancels, id)
}

// RegisterCancel stores the cancellation hook for an active run.
func (r *Registry) RegisterCancel(id string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels[id] = cancel
}

// Cancel invokes the run's cancellation hook. Returns ErrNotFound for unknown
// runs and ErrNotCancellable for runs that already terminated.
func (r *Registry) Cancel(id string) error {
	r.mu.RLock()
	run, ok := r.runs[id]
	cancel := r.cancels[id]
	r.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if run.Status.Terminal() || cancel == nil {
		return ErrNotCancellable
	}
	cancel()
	return nil
}

// ActiveCount returns the number of non-terminal runs.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, run := range r.runs {
		if !run.Status.Terminal() {
			n++
		}
	}
	return n
}

// sweep removes terminal runs that finished before the cutoff and returns how
// many were removed.
func (r *Registry) sweep(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, run := range r.runs {
		if run.Status.Terminal() && run.FinishedAt.Before(cutoff) {
			delete(r.runs, id)
			delete(r.cancels, id)
			removed++
		}
	}
	return removed
}
