// Package topology materializes a validated hierarchy configuration into an
// immutable tree of supervisors and workers with stable identifiers. Node ids
// are either taken from the config or derived deterministically, so building
// the same config twice yields the same topology.
package topology

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/catface996/opstack-executor-sub002/pkg/config"
)

// shortHashLen is the number of hex characters kept from the SHA-256 digest.
const shortHashLen = 12

// Topology is the materialized execution tree. Treat as read-only after
// Build; the scheduler and event payloads reference nodes by id only.
type Topology struct {
	RunID              string
	GlobalSupervisorID string
	GlobalPrompt       string
	Task               string
	ExecutionMode      config.ExecutionMode
	ContextSharing     bool
	MaxTeamConcurrency int

	Teams []Team

	byTeamID map[string]*Team
}

// Team is one team node with its supervisor and ordered workers.
type Team struct {
	ID               string
	Name             string
	SupervisorID     string
	SupervisorPrompt string
	PreventDuplicate bool
	ShareContext     bool
	MaxIterations    int

	Workers []Worker
}

// Worker is a leaf node.
type Worker struct {
	ID           string
	Name         string
	Role         string
	SystemPrompt string
	Tools        []string
	Temperature  *float64
	MaxTokens    *int
}

// TeamByID returns the team with the given id, or nil.
func (t *Topology) TeamByID(id string) *Team {
	return t.byTeamID[id]
}

// WorkerByName returns the worker with the given name within the team, or nil.
func (tm *Team) WorkerByName(name string) *Worker {
	for i := range tm.Workers {
		if tm.Workers[i].Name == name {
			return &tm.Workers[i]
		}
	}
	return nil
}

// Build validates cfg and materializes the topology for a run. Explicit ids
// from the config are honored; missing ids are derived from content so the
// same definition always produces the same tree.
func Build(cfg *config.HierarchyConfig, runID string) (*Topology, error) {
	if err := cfg.ValidateDefinition(); err != nil {
		return nil, err
	}

	topo := &Topology{
		RunID:              runID,
		GlobalSupervisorID: "global_" + runID,
		GlobalPrompt:       cfg.GlobalPrompt,
		Task:               cfg.Task,
		ExecutionMode:      cfg.Mode(),
		ContextSharing:     cfg.EnableContextSharing,
		MaxTeamConcurrency: cfg.MaxTeamConcurrency,
		Teams:              make([]Team, 0, len(cfg.Teams)),
		byTeamID:           make(map[string]*Team, len(cfg.Teams)),
	}

	seen := make(map[string]string)
	for i, tc := range cfg.Teams {
		teamID := tc.ID
		if teamID == "" {
			teamID = "team_" + shortHash(fmt.Sprintf("%s|%d", tc.Name, i))
		}
		if prev, dup := seen[teamID]; dup {
			return nil, config.NewValidationError(fmt.Sprintf("teams[%d].id", i),
				fmt.Sprintf("Assigned team id %q collides with %s", teamID, prev))
		}
		seen[teamID] = fmt.Sprintf("teams[%d]", i)

		team := Team{
			ID:               teamID,
			Name:             tc.Name,
			SupervisorID:     "supervisor_" + teamID,
			SupervisorPrompt: tc.SupervisorPrompt,
			PreventDuplicate: tc.PreventDuplicate,
			ShareContext:     tc.ShareContext,
			MaxIterations:    tc.MaxIterations,
			Workers:          make([]Worker, 0, len(tc.Workers)),
		}

		for j, wc := range tc.Workers {
			workerID := wc.ID
			if workerID == "" {
				workerID = "worker_" + shortHash(fmt.Sprintf("%s|%s|%d", teamID, wc.Name, j))
			}
			if prev, dup := seen[workerID]; dup {
				return nil, config.NewValidationError(fmt.Sprintf("teams[%d].workers[%d].id", i, j),
					fmt.Sprintf("Assigned worker id %q collides with %s", workerID, prev))
			}
			seen[workerID] = fmt.Sprintf("teams[%d].workers[%d]", i, j)

			team.Workers = append(team.Workers, Worker{
				ID:           workerID,
				Name:         wc.Name,
				Role:         wc.Role,
				SystemPrompt: wc.SystemPrompt,
				Tools:        append([]string(nil), wc.Tools...),
				Temperature:  wc.Temperature,
				MaxTokens:    wc.MaxTokens,
			})
		}
		topo.Teams = append(topo.Teams, team)
	}

	for i := range topo.Teams {
		topo.byTeamID[topo.Teams[i].ID] = &topo.Teams[i]
	}
	return topo, nil
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:shortHashLen]
}
