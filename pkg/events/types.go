// Package events implements the per-run append-only event log. Each run owns
// one Bus; producers append typed events and consumers read them either by
// cursor (Since) or as a live stream (Subscribe). Order is total within a run.
package events

import "time"

// Type identifies an event in the run log.
type Type string

const (
	TypeTopologyCreated    Type = "topology_created"
	TypeExecutionStarted   Type = "execution_started"
	TypeTeamStarted        Type = "team_started"
	TypeTeamCompleted      Type = "team_completed"
	TypeWorkerStarted      Type = "worker_started"
	TypeWorkerCompleted    Type = "worker_completed"
	TypeExecutionCompleted Type = "execution_completed"
	TypeError              Type = "error"
	TypeSupervisorFallback Type = "supervisor_fallback"
	TypeEventsDropped      Type = "events_dropped"
)

// Metadata locates an event in the topology. Only the relevant ids are set.
type Metadata struct {
	TeamID       string `json:"team_id,omitempty"`
	SupervisorID string `json:"supervisor_id,omitempty"`
	WorkerID     string `json:"worker_id,omitempty"`
}

// Event is one entry in a run's log. IDs are monotonic within the run and
// assigned by the Bus at append time.
type Event struct {
	ID        int64     `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Type      Type      `json:"event_type"`
	Data      any       `json:"data,omitempty"`
	Metadata  *Metadata `json:"topology_metadata,omitempty"`
}
