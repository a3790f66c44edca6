// Package scheduler drives a topology to completion against a task. It owns
// the run lifecycle: it emits every event of the run log, enforces the
// per-worker/per-team/per-run timeouts, applies the partial-failure policy,
// and flips the run record to its terminal status.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/catface996/opstack-executor-sub002/pkg/agent"
	"github.com/catface996/opstack-executor-sub002/pkg/config"
	"github.com/catface996/opstack-executor-sub002/pkg/events"
	"github.com/catface996/opstack-executor-sub002/pkg/model"
	"github.com/catface996/opstack-executor-sub002/pkg/run"
)

// Scheduler executes runs. One instance serves the whole process; a channel
// semaphore bounds how many runs execute simultaneously, additional runs wait
// in pending state.
type Scheduler struct {
	client   model.Client
	limits   *config.ExecutionLimits
	registry *run.Registry
	tools    agent.ToolExecutor
	logger   *slog.Logger
	runSem   chan struct{}
}

// New creates a scheduler. client should already carry the retry and
// concurrency wrappers.
func New(client model.Client, limits *config.ExecutionLimits, registry *run.Registry, tools agent.ToolExecutor, logger *slog.Logger) *Scheduler {
	if limits == nil {
		limits = config.DefaultExecutionLimits()
	}
	if tools == nil {
		tools = agent.StubToolExecutor{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		client:   client,
		limits:   limits,
		registry: registry,
		tools:    tools,
		logger:   logger.With("component", "scheduler"),
		runSem:   make(chan struct{}, limits.MaxConcurrentRuns),
	}
}

// Execute drives the run to a terminal state. Blocks until done; callers
// wanting async execution run it in a goroutine. The run must be registered
// and carry its topology and event bus.
func (s *Scheduler) Execute(ctx context.Context, r *run.Run) {
	logger := s.logger.With("run_id", r.ID)

	// The cancel hook is registered before waiting on the run semaphore so
	// that runs queued behind MaxConcurrentRuns can still be cancelled.
	baseCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.registry.RegisterCancel(r.ID, cancel)

	select {
	case s.runSem <- struct{}{}:
	case <-baseCtx.Done():
		r.Bus.Append(events.TypeTopologyCreated, events.SnapshotTopology(r.Topology), nil)
		s.fail(r, kindOf(baseCtx.Err()), "run cancelled before start")
		return
	}
	defer func() { <-s.runSem }()

	runCtx, cancelTimeout := context.WithTimeout(baseCtx, s.limits.RunTimeout)
	defer cancelTimeout()

	r.Bus.Append(events.TypeTopologyCreated, events.SnapshotTopology(r.Topology), nil)
	s.registry.MarkRunning(r.ID)
	r.Bus.Append(events.TypeExecutionStarted, events.ExecutionStartedData{Task: r.Task}, nil)

	logger.Info("run started",
		"teams", len(r.Topology.Teams),
		"execution_mode", r.Topology.ExecutionMode)

	var outcomes []teamOutcome
	if r.Topology.ExecutionMode == config.ExecutionModeParallel {
		outcomes = s.runParallel(runCtx, r)
	} else {
		outcomes = s.runSequential(runCtx, r)
	}

	if err := runCtx.Err(); err != nil {
		s.fail(r, kindOf(err), "run "+kindOf(err))
		logger.Warn("run aborted", "reason", kindOf(err))
		return
	}

	s.synthesize(runCtx, r, outcomes)
}

// synthesize produces the final result from team outcomes and terminates the
// run. A run completes only when at least one team succeeded and the global
// supervisor produced a synthesis.
func (s *Scheduler) synthesize(ctx context.Context, r *run.Run, outcomes []teamOutcome) {
	var succeeded []teamOutcome
	var lastErr error
	for _, o := range outcomes {
		if o.ok {
			succeeded = append(succeeded, o)
		} else if o.err != nil {
			lastErr = o.err
		}
	}

	if len(succeeded) == 0 {
		kind := "internal"
		msg := "no team produced output"
		if lastErr != nil {
			kind = kindOf(lastErr)
			msg = fmt.Sprintf("no team produced output: %v", lastErr)
		}
		s.fail(r, kind, msg)
		return
	}

	global := agent.NewSupervisor(s.client, r.Topology.GlobalSupervisorID, r.Topology.GlobalPrompt, s.logger)
	result, err := global.Synthesize(ctx, synthesisPrompt(r.Task, succeeded))
	if err != nil {
		s.fail(r, kindOf(err), fmt.Sprintf("global synthesis failed: %v", err))
		return
	}

	r.Bus.AppendTerminal(events.TypeExecutionCompleted, events.ExecutionCompletedData{Result: result}, nil)
	s.registry.SetResult(r.ID, result)
}

// fail emits the terminal error event and marks the run failed. Team-level
// failures go through Bus.Append instead; they are part of the log, not its
// end.
func (s *Scheduler) fail(r *run.Run, kind, message string) {
	r.Bus.AppendTerminal(events.TypeError, events.ErrorData{Kind: kind, Message: message}, nil)
	s.registry.SetError(r.ID, kind, message)
}

func synthesisPrompt(task string, outcomes []teamOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task:\n%s\n\nTeam results:\n", task)
	for _, o := range outcomes {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", o.team.Name, o.result)
	}
	b.WriteString("Produce the final answer for the task from these results.")
	return b.String()
}

// kindOf maps an error to the event error kind.
func kindOf(err error) string {
	switch {
	case err == nil:
		return "internal"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	}
	var pe *model.ProviderError
	if errors.As(err, &pe) {
		switch {
		case pe.Kind == model.ErrorKindCancelled:
			return "cancelled"
		case pe.Transient():
			// Transient failures only surface after retries exhaust.
			return "model_permanent"
		default:
			return "model_permanent"
		}
	}
	return "internal"
}
