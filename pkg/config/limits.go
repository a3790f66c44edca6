package config

import "time"

// ExecutionLimits contains the timeouts, iteration caps and concurrency
// bounds applied to every run. Values control how far a misbehaving model or
// a runaway supervisor loop can go before the scheduler cuts it off.
type ExecutionLimits struct {
	// WorkerTimeout is the maximum wall time for a single worker execution,
	// including its tool loop.
	WorkerTimeout time.Duration

	// TeamTimeout is the maximum wall time for a team's select→execute loop.
	TeamTimeout time.Duration

	// RunTimeout is the maximum wall time for the whole run.
	RunTimeout time.Duration

	// TeamMaxIterations bounds the supervisor select→execute loop per team.
	TeamMaxIterations int

	// WorkerMaxIterations bounds a worker's tool-use loop. Workers without
	// tools always perform a single model call.
	WorkerMaxIterations int

	// MaxConcurrentRuns is the process-wide cap on simultaneously executing
	// runs. Additional runs wait in pending state.
	MaxConcurrentRuns int

	// MaxConcurrentModelCalls is the process-wide cap on in-flight model
	// invocations across all runs, protecting upstream providers.
	MaxConcurrentModelCalls int

	// EventBufferSize is the per-run event ring buffer capacity. Overflow
	// drops oldest non-terminal events and records an events_dropped marker.
	EventBufferSize int

	// RunRetention is how long terminated runs (and their event logs) are
	// kept before the sweeper discards them.
	RunRetention time.Duration

	// SweepInterval is how often the retention sweeper scans for expired runs.
	SweepInterval time.Duration

	// GracefulShutdownTimeout is the maximum time to wait for active runs to
	// finish during shutdown.
	GracefulShutdownTimeout time.Duration
}

// DefaultExecutionLimits returns the built-in execution defaults.
func DefaultExecutionLimits() *ExecutionLimits {
	return &ExecutionLimits{
		WorkerTimeout:           120 * time.Second,
		TeamTimeout:             600 * time.Second,
		RunTimeout:              1800 * time.Second,
		TeamMaxIterations:       8,
		WorkerMaxIterations:     5,
		MaxConcurrentRuns:       8,
		MaxConcurrentModelCalls: 32,
		EventBufferSize:         10000,
		RunRetention:            time.Hour,
		SweepInterval:           time.Minute,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}
