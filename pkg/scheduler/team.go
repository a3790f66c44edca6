package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/catface996/opstack-executor-sub002/pkg/agent"
	"github.com/catface996/opstack-executor-sub002/pkg/events"
	"github.com/catface996/opstack-executor-sub002/pkg/run"
	"github.com/catface996/opstack-executor-sub002/pkg/topology"
)

// teamOutcome is the scheduler-internal result of one team.
type teamOutcome struct {
	team   *topology.Team
	ok     bool
	result string
	err    error
}

// runSequential drives teams one at a time. The global supervisor picks the
// next team from the remaining ones; FINISH skips whatever is left.
func (s *Scheduler) runSequential(ctx context.Context, r *run.Run) []teamOutcome {
	topo := r.Topology
	global := agent.NewSupervisor(s.client, topo.GlobalSupervisorID, topo.GlobalPrompt, s.logger)

	remaining := make(map[string]*topology.Team, len(topo.Teams))
	order := make([]string, 0, len(topo.Teams))
	for i := range topo.Teams {
		remaining[topo.Teams[i].Name] = &topo.Teams[i]
		order = append(order, topo.Teams[i].Name)
	}

	var outcomes []teamOutcome
	var shared []string
	for len(remaining) > 0 && ctx.Err() == nil {
		cands := make([]agent.Candidate, 0, len(remaining)+1)
		for _, name := range order {
			if team, ok := remaining[name]; ok {
				cands = append(cands, agent.Candidate{Name: name, Description: team.SupervisorPrompt})
			}
		}
		cands = append(cands, agent.Candidate{Name: agent.FinishSentinel, Description: "no further teams are needed"})

		sel, err := global.SelectOne(ctx, r.Task, cands)
		if err != nil {
			if ctx.Err() == nil {
				outcomes = append(outcomes, teamOutcome{err: err})
			}
			break
		}
		if sel.Fallback {
			r.Bus.Append(events.TypeSupervisorFallback,
				events.SupervisorFallbackData{Reason: sel.FallbackReason, Selected: sel.Name},
				&events.Metadata{SupervisorID: topo.GlobalSupervisorID})
		}
		if sel.Name == agent.FinishSentinel {
			break
		}

		team := remaining[sel.Name]
		delete(remaining, sel.Name)

		outcome := s.runTeam(ctx, r, team, strings.Join(shared, "\n\n"))
		outcomes = append(outcomes, outcome)
		if outcome.ok && topo.ContextSharing {
			shared = append(shared, fmt.Sprintf("[%s]\n%s", team.Name, outcome.result))
		}
	}
	return outcomes
}

// runParallel drives all teams concurrently, bounded by MaxTeamConcurrency.
func (s *Scheduler) runParallel(ctx context.Context, r *run.Run) []teamOutcome {
	topo := r.Topology
	bound := topo.MaxTeamConcurrency
	if bound < 1 || bound > len(topo.Teams) {
		bound = len(topo.Teams)
	}
	sem := make(chan struct{}, bound)

	outcomes := make([]teamOutcome, len(topo.Teams))
	var wg sync.WaitGroup
	for i := range topo.Teams {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[i] = teamOutcome{team: &topo.Teams[i], err: ctx.Err()}
				return
			}
			outcomes[i] = s.runTeam(ctx, r, &topo.Teams[i], "")
		}(i)
	}
	wg.Wait()
	return outcomes
}

// runTeam executes one team's select-and-execute loop to completion.
func (s *Scheduler) runTeam(parentCtx context.Context, r *run.Run, team *topology.Team, sharedContext string) teamOutcome {
	ctx, cancel := context.WithTimeout(parentCtx, s.limits.TeamTimeout)
	defer cancel()

	logger := s.logger.With("run_id", r.ID, "team_id", team.ID)
	teamMeta := &events.Metadata{TeamID: team.ID, SupervisorID: team.SupervisorID}
	r.Bus.Append(events.TypeTeamStarted, events.TeamStartedData{TeamName: team.Name}, teamMeta)

	task := r.Task
	if sharedContext != "" {
		task = fmt.Sprintf("Context from prior teams:\n%s\n\nTask:\n%s", sharedContext, r.Task)
	}

	sup := agent.NewSupervisor(s.client, team.SupervisorID, team.SupervisorPrompt, s.logger)
	maxIterations := team.MaxIterations
	if maxIterations < 1 {
		maxIterations = s.limits.TeamMaxIterations
	}

	visited := make(map[string]bool)
	failed := make(map[string]bool)
	var outputs []string
	var teamContext []string
	var lastErr error

	for iteration := 0; iteration < maxIterations; iteration++ {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		// Candidates: unfailed workers, minus visited ones when duplicates
		// are prevented. When every worker has been visited there is nothing
		// new to select and the loop ends without consulting the supervisor.
		cands := make([]agent.Candidate, 0, len(team.Workers)+1)
		unvisited := 0
		for i := range team.Workers {
			w := &team.Workers[i]
			if failed[w.Name] {
				continue
			}
			if !visited[w.Name] {
				unvisited++
			} else if team.PreventDuplicate {
				continue
			}
			cands = append(cands, agent.Candidate{
				Name:         w.Name,
				Description:  w.Role,
				Capabilities: nil,
				Tools:        w.Tools,
			})
		}
		if unvisited == 0 {
			break
		}
		if len(outputs) > 0 {
			cands = append(cands, agent.Candidate{Name: agent.FinishSentinel, Description: "the team's work is complete"})
		}

		workerTask := task
		if team.ShareContext && len(teamContext) > 0 {
			workerTask = fmt.Sprintf("%s\n\nWork so far:\n%s", task, strings.Join(teamContext, "\n\n"))
		}

		sel, err := sup.SelectOne(ctx, workerTask, cands)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			r.Bus.Append(events.TypeError,
				events.ErrorData{Kind: kindOf(err), Message: fmt.Sprintf("supervisor selection failed: %v", err)},
				teamMeta)
			break
		}
		if sel.Fallback {
			r.Bus.Append(events.TypeSupervisorFallback,
				events.SupervisorFallbackData{Reason: sel.FallbackReason, Selected: sel.Name},
				teamMeta)
		}
		if sel.Name == agent.FinishSentinel {
			break
		}
		if visited[sel.Name] {
			// Nothing new: the supervisor repeated itself.
			break
		}

		node := team.WorkerByName(sel.Name)
		if node == nil {
			lastErr = fmt.Errorf("supervisor selected unknown worker %q", sel.Name)
			r.Bus.Append(events.TypeError,
				events.ErrorData{Kind: "internal", Message: lastErr.Error()}, teamMeta)
			break
		}

		workerMeta := &events.Metadata{TeamID: team.ID, WorkerID: node.ID}
		r.Bus.Append(events.TypeWorkerStarted, events.WorkerStartedData{WorkerName: node.Name}, workerMeta)

		res, err := s.executeWorker(ctx, *node, workerTask, strings.Join(teamContext, "\n\n"))
		if err != nil {
			lastErr = err
			failed[node.Name] = true
			r.Bus.Append(events.TypeError,
				events.ErrorData{Kind: kindOf(err), Message: fmt.Sprintf("worker %s failed: %v", node.Name, err)},
				workerMeta)
			logger.Warn("worker failed", "worker_id", node.ID, "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		visited[node.Name] = true
		outputs = append(outputs, res.Text)
		if team.ShareContext {
			teamContext = append(teamContext, fmt.Sprintf("[%s]\n%s", node.Name, res.Text))
		}
		r.Bus.Append(events.TypeWorkerCompleted,
			events.WorkerCompletedData{WorkerName: node.Name, Output: res.Text, TokensUsed: res.TokensUsed},
			workerMeta)
	}

	if len(outputs) == 0 {
		r.Bus.Append(events.TypeTeamCompleted,
			events.TeamCompletedData{TeamName: team.Name, Status: "failed"}, teamMeta)
		return teamOutcome{team: team, err: lastErr}
	}

	result := s.teamResult(ctx, sup, team, task, outputs, teamContext)
	r.Bus.Append(events.TypeTeamCompleted,
		events.TeamCompletedData{TeamName: team.Name, Status: "completed", Result: result}, teamMeta)
	return teamOutcome{team: team, ok: true, result: result}
}

// executeWorker runs one worker under the per-worker timeout.
func (s *Scheduler) executeWorker(parentCtx context.Context, node topology.Worker, task, sharedContext string) (*agent.Result, error) {
	ctx, cancel := context.WithTimeout(parentCtx, s.limits.WorkerTimeout)
	defer cancel()

	w := agent.NewWorker(s.client, node, s.limits.WorkerMaxIterations, s.tools, s.logger)
	return w.Execute(ctx, task, sharedContext)
}

// teamResult aggregates worker outputs. With share_context the supervisor
// summarizes its team's work; otherwise outputs are concatenated.
func (s *Scheduler) teamResult(ctx context.Context, sup *agent.Supervisor, team *topology.Team, task string, outputs, teamContext []string) string {
	if team.ShareContext && len(outputs) > 1 && ctx.Err() == nil {
		prompt := fmt.Sprintf("Task:\n%s\n\nYour team produced:\n%s\n\nSummarize the team's result for the task.",
			task, strings.Join(teamContext, "\n\n"))
		if summary, err := sup.Synthesize(ctx, prompt); err == nil {
			return summary
		}
		s.logger.Warn("team summary failed, falling back to concatenation", "team_id", team.ID)
	}
	return strings.Join(outputs, "\n\n")
}
