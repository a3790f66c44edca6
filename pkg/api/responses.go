package api

import (
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/catface996/opstack-executor-sub002/pkg/events"
	"github.com/catface996/opstack-executor-sub002/pkg/run"
)

// Envelope is the uniform response shape: {success, data?, error?}.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ValidationDetail carries the offending config field alongside the reason in
// 400 responses. The envelope's error string stays the bare reason.
type ValidationDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// respond writes a successful envelope.
func respond(c *echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// IDResponse carries a newly created resource id.
type IDResponse struct {
	ID string `json:"id"`
}

// ListResponse is a paginated collection.
type ListResponse struct {
	Items any `json:"items"`
	Total int `json:"total"`
}

// RunResponse is the public view of a run record.
type RunResponse struct {
	ID          string     `json:"id"`
	HierarchyID string     `json:"hierarchy_id,omitempty"`
	Task        string     `json:"task"`
	Status      run.Status `json:"status"`
	Result      string     `json:"result,omitempty"`
	Error       *run.Error `json:"error,omitempty"`
	CreatedAt   string     `json:"created_at"`
}

// RunStatusResponse is the cursor-polling view: the run status plus the
// events appended after the client's cursor.
type RunStatusResponse struct {
	ID       string         `json:"id"`
	Status   run.Status     `json:"status"`
	Events   []events.Event `json:"events"`
	Next     int64          `json:"next"`
	Terminal bool           `json:"terminal"`
	Result   string         `json:"result,omitempty"`
	Error    *run.Error     `json:"error,omitempty"`
}

// ExecutionResponse is the synchronous /execute result: the built topology,
// the complete event log and the terminal outcome.
type ExecutionResponse struct {
	RunID    string                    `json:"run_id"`
	Status   run.Status                `json:"status"`
	Topology events.TopologyCreatedData `json:"topology"`
	Events   []events.Event            `json:"events"`
	Result   string                    `json:"result,omitempty"`
	Error    *run.Error                `json:"error,omitempty"`
}

// HealthResponse reports liveness and scheduler saturation.
type HealthResponse struct {
	Status            string `json:"status"`
	Service           string `json:"service"`
	Version           string `json:"version"`
	ActiveRuns        int    `json:"active_runs"`
	MaxConcurrentRuns int    `json:"max_concurrent_runs"`
}

func runResponse(r run.Run) RunResponse {
	return RunResponse{
		ID:          r.ID,
		HierarchyID: r.HierarchyID,
		Task:        r.Task,
		Status:      r.Status,
		Result:      r.Result,
		Error:       r.Error,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}
