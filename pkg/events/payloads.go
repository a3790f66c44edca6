package events

// TopologyCreatedData describes the materialized tree. Always the first
// event of a run.
type TopologyCreatedData struct {
	GlobalSupervisorID string     `json:"global_supervisor_id"`
	ExecutionMode      string     `json:"execution_mode"`
	Teams              []TeamNode `json:"teams"`
}

// TeamNode is one team in the topology_created payload.
type TeamNode struct {
	TeamID       string       `json:"team_id"`
	Name         string       `json:"name"`
	SupervisorID string       `json:"supervisor_id"`
	Workers      []WorkerNode `json:"workers"`
}

// WorkerNode is one worker in the topology_created payload.
type WorkerNode struct {
	WorkerID string `json:"worker_id"`
	Name     string `json:"name"`
}

// ExecutionStartedData marks the transition to running.
type ExecutionStartedData struct {
	Task string `json:"task"`
}

// TeamStartedData accompanies team_started.
type TeamStartedData struct {
	TeamName string `json:"team_name"`
}

// TeamCompletedData accompanies team_completed. Status is "completed" or
// "failed"; failed teams carry an empty result.
type TeamCompletedData struct {
	TeamName string `json:"team_name"`
	Status   string `json:"status"`
	Result   string `json:"result,omitempty"`
}

// WorkerStartedData accompanies worker_started.
type WorkerStartedData struct {
	WorkerName string `json:"worker_name"`
}

// WorkerCompletedData accompanies worker_completed.
type WorkerCompletedData struct {
	WorkerName string `json:"worker_name"`
	Output     string `json:"output"`
	TokensUsed int    `json:"tokens_used,omitempty"`
}

// ExecutionCompletedData carries the final synthesized result.
type ExecutionCompletedData struct {
	Result string `json:"result"`
}

// ErrorData accompanies error events, terminal or not. Details is only
// populated in debug mode.
type ErrorData struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SupervisorFallbackData records that a supervisor could not resolve a
// selection and fell back to the first candidate.
type SupervisorFallbackData struct {
	Reason   string `json:"reason"`
	Selected string `json:"selected"`
}

// EventsDroppedData marks a gap where the ring buffer evicted events.
type EventsDroppedData struct {
	DroppedCount int `json:"dropped_count"`
}
