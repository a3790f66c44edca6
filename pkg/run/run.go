// Package run tracks the lifecycle of executions: a thread-safe registry
// mapping run ids to run records, cooperative cancellation, and a background
// sweeper that discards terminated runs after a retention window.
package run

import (
	"errors"
	"time"

	"github.com/catface996/opstack-executor-sub002/pkg/events"
	"github.com/catface996/opstack-executor-sub002/pkg/topology"
)

var (
	// ErrNotFound is returned when a run id is unknown.
	ErrNotFound = errors.New("run not found")

	// ErrNotCancellable is returned when cancelling a run that already
	// reached a terminal state.
	ErrNotCancellable = errors.New("run is not cancellable")
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Error is the structured failure recorded on a failed run.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Run is one execution of a topology against a task. Records are mutated only
// through Registry setters; Get returns value snapshots.
type Run struct {
	ID          string
	HierarchyID string
	Task        string
	Status      Status
	Result      string
	Error       *Error

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time

	Topology *topology.Topology
	Bus      *events.Bus
}
