package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/catface996/opstack-executor-sub002/pkg/config"
	"github.com/catface996/opstack-executor-sub002/pkg/events"
	"github.com/catface996/opstack-executor-sub002/pkg/run"
	"github.com/catface996/opstack-executor-sub002/pkg/scheduler"
	"github.com/catface996/opstack-executor-sub002/pkg/topology"
)

// StartRequest starts a run from either a registered hierarchy or an inline
// definition. Exactly one of HierarchyID and Hierarchy must be set.
type StartRequest struct {
	HierarchyID string                  `json:"hierarchy_id,omitempty"`
	Hierarchy   *config.HierarchyConfig `json:"hierarchy,omitempty"`
	Task        string                  `json:"task"`
}

// RunService is the run lifecycle facade: it validates requests, builds
// topologies, registers runs and hands them to the scheduler.
type RunService struct {
	hierarchies *HierarchyService
	registry    *run.Registry
	sched       *scheduler.Scheduler
	limits      *config.ExecutionLimits
	logger      *slog.Logger
}

// NewRunService wires the run facade.
func NewRunService(hierarchies *HierarchyService, registry *run.Registry, sched *scheduler.Scheduler, limits *config.ExecutionLimits, logger *slog.Logger) *RunService {
	if limits == nil {
		limits = config.DefaultExecutionLimits()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RunService{
		hierarchies: hierarchies,
		registry:    registry,
		sched:       sched,
		limits:      limits,
		logger:      logger.With("component", "service.runs"),
	}
}

// Start validates the request, registers a pending run and executes it in the
// background. The returned snapshot reflects the run at registration time.
func (s *RunService) Start(req StartRequest) (run.Run, error) {
	r, err := s.prepare(req)
	if err != nil {
		return run.Run{}, err
	}

	// Detached from the request context: the run outlives the HTTP call.
	go s.sched.Execute(context.Background(), r)

	s.logger.Info("run started", "run_id", r.ID, "hierarchy_id", r.HierarchyID)
	return s.Get(r.ID)
}

// ExecuteSync runs an inline hierarchy to completion and returns the terminal
// run snapshot together with its full event log.
func (s *RunService) ExecuteSync(ctx context.Context, cfg *config.HierarchyConfig) (run.Run, []events.Event, error) {
	r, err := s.prepare(StartRequest{Hierarchy: cfg, Task: cfg.Task})
	if err != nil {
		return run.Run{}, nil, err
	}

	s.sched.Execute(ctx, r)

	snapshot, err := s.Get(r.ID)
	if err != nil {
		return run.Run{}, nil, err
	}
	evs, _, _ := r.Bus.Since(0)
	return snapshot, evs, nil
}

// prepare resolves the hierarchy, validates it with the task, builds the
// topology and registers a pending run.
func (s *RunService) prepare(req StartRequest) (*run.Run, error) {
	cfg, hierarchyID, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	topo, err := topology.Build(cfg, id)
	if err != nil {
		return nil, err
	}

	r := &run.Run{
		ID:          id,
		HierarchyID: hierarchyID,
		Task:        cfg.Task,
		Topology:    topo,
		Bus:         events.NewBus(s.limits.EventBufferSize),
	}
	s.registry.Create(r)
	return r, nil
}

// resolve produces the effective config for a start request. Registered
// hierarchies are copied so the stored definition stays task-free.
func (s *RunService) resolve(req StartRequest) (*config.HierarchyConfig, string, error) {
	switch {
	case req.Hierarchy != nil:
		cfg := *req.Hierarchy
		if req.Task != "" {
			cfg.Task = req.Task
		}
		return &cfg, "", nil
	case req.HierarchyID != "":
		h, err := s.hierarchies.Get(req.HierarchyID)
		if err != nil {
			return nil, "", err
		}
		cfg := *h.Config
		cfg.Task = req.Task
		return &cfg, h.ID, nil
	default:
		return nil, "", ErrMissingConfig
	}
}

// Get returns a snapshot of the run, or ErrRunNotFound.
func (s *RunService) Get(id string) (run.Run, error) {
	r, err := s.registry.Get(id)
	if errors.Is(err, run.ErrNotFound) {
		return run.Run{}, ErrRunNotFound
	}
	return r, err
}

// List returns a page of run snapshots ordered newest first plus the total.
func (s *RunService) List(page, size int) ([]run.Run, int) {
	return s.registry.List(page, size)
}

// ActiveCount returns the number of non-terminal runs.
func (s *RunService) ActiveCount() int {
	return s.registry.ActiveCount()
}

// Events returns the run's retained events after cursor, the next cursor, and
// whether the log is complete.
func (s *RunService) Events(id string, cursor int64) ([]events.Event, int64, bool, error) {
	r, err := s.registry.Get(id)
	if errors.Is(err, run.ErrNotFound) {
		return nil, 0, false, ErrRunNotFound
	}
	if err != nil {
		return nil, 0, false, err
	}
	evs, next, terminal := r.Bus.Since(cursor)
	return evs, next, terminal, nil
}

// Stream subscribes to the run's event log starting after cursor. The channel
// closes at the terminal event or when ctx is cancelled.
func (s *RunService) Stream(ctx context.Context, id string, cursor int64) (<-chan events.Event, error) {
	r, err := s.registry.Get(id)
	if errors.Is(err, run.ErrNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.Bus.SubscribeFrom(ctx, cursor), nil
}

// Cancel requests cooperative cancellation of an active run.
func (s *RunService) Cancel(id string) error {
	err := s.registry.Cancel(id)
	switch {
	case errors.Is(err, run.ErrNotFound):
		return ErrRunNotFound
	case errors.Is(err, run.ErrNotCancellable):
		return ErrRunNotCancellable
	}
	return err
}
