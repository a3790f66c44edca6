// Package config defines the declarative hierarchy configuration accepted by
// the API and the tunables that govern execution. Configuration is plain data;
// construction logic lives in pkg/topology.
package config

// WorkerConfig describes a single leaf worker inside a team.
type WorkerConfig struct {
	// ID is optional; when empty a deterministic id is assigned at build time.
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Role         string   `json:"role,omitempty"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Tools        []string `json:"tools,omitempty"`

	// Temperature overrides the model sampling temperature. Valid range [0, 2].
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens caps completion tokens for this worker's model calls.
	MaxTokens *int `json:"max_tokens,omitempty"`
}

// TeamConfig describes a team: one supervisor routing over an ordered set of
// workers.
type TeamConfig struct {
	ID               string         `json:"id,omitempty"`
	Name             string         `json:"name"`
	SupervisorPrompt string         `json:"supervisor_prompt,omitempty"`
	Workers          []WorkerConfig `json:"workers"`

	// PreventDuplicate excludes workers that already produced output from the
	// supervisor's candidate menu.
	PreventDuplicate bool `json:"prevent_duplicate,omitempty"`

	// ShareContext makes the team result a supervisor-produced summary instead
	// of the concatenation of worker outputs.
	ShareContext bool `json:"share_context,omitempty"`

	// MaxIterations bounds the team's select→execute loop. Zero means the
	// default from ExecutionLimits.
	MaxIterations int `json:"max_iterations,omitempty"`
}

// HierarchyConfig is the request-scoped description of a full team tree.
type HierarchyConfig struct {
	GlobalPrompt string       `json:"global_prompt,omitempty"`
	Teams        []TeamConfig `json:"teams"`

	// Task is the user task to execute. Required for /execute, absent for
	// hierarchy registration.
	Task string `json:"task,omitempty"`

	EnableContextSharing bool          `json:"enable_context_sharing,omitempty"`
	ExecutionMode        ExecutionMode `json:"execution_mode,omitempty"`

	// MaxTeamConcurrency bounds concurrently running teams in parallel mode.
	// Zero means one slot per team.
	MaxTeamConcurrency int `json:"max_team_concurrency,omitempty"`
}

// ExecutionMode selects how teams are driven by the scheduler.
type ExecutionMode string

const (
	// ExecutionModeSequential runs teams one at a time, ordered by the global
	// supervisor's selections.
	ExecutionModeSequential ExecutionMode = "sequential"
	// ExecutionModeParallel runs all eligible teams concurrently.
	ExecutionModeParallel ExecutionMode = "parallel"
)

// IsValid checks if the execution mode is a known value.
func (m ExecutionMode) IsValid() bool {
	return m == ExecutionModeSequential || m == ExecutionModeParallel
}

// Mode returns the configured execution mode, defaulting to sequential.
func (c *HierarchyConfig) Mode() ExecutionMode {
	if c.ExecutionMode == "" {
		return ExecutionModeSequential
	}
	return c.ExecutionMode
}
