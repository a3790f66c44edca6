package topology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catface996/opstack-executor-sub002/pkg/config"
)

func twoTeamConfig() *config.HierarchyConfig {
	return &config.HierarchyConfig{
		GlobalPrompt: "coordinate",
		Task:         "do the thing",
		Teams: []config.TeamConfig{
			{
				Name:             "research",
				SupervisorPrompt: "route research",
				Workers: []config.WorkerConfig{
					{Name: "analyst", Role: "analysis", SystemPrompt: "analyze"},
					{Name: "summarizer", Role: "summaries", SystemPrompt: "summarize"},
				},
			},
			{
				Name:             "writing",
				SupervisorPrompt: "route writing",
				Workers: []config.WorkerConfig{
					{Name: "drafter", Role: "drafts", SystemPrompt: "draft"},
				},
			},
		},
	}
}

func TestBuildAssignsDeterministicIDs(t *testing.T) {
	a, err := Build(twoTeamConfig(), "run-1")
	require.NoError(t, err)
	b, err := Build(twoTeamConfig(), "run-1")
	require.NoError(t, err)

	require.Len(t, a.Teams, 2)
	assert.Equal(t, a.GlobalSupervisorID, b.GlobalSupervisorID)
	for i := range a.Teams {
		assert.Equal(t, a.Teams[i].ID, b.Teams[i].ID)
		assert.Equal(t, a.Teams[i].SupervisorID, b.Teams[i].SupervisorID)
		for j := range a.Teams[i].Workers {
			assert.Equal(t, a.Teams[i].Workers[j].ID, b.Teams[i].Workers[j].ID)
		}
	}
}

func TestBuildIDFormats(t *testing.T) {
	topo, err := Build(twoTeamConfig(), "run-42")
	require.NoError(t, err)

	assert.Equal(t, "global_run-42", topo.GlobalSupervisorID)
	for _, team := range topo.Teams {
		assert.True(t, strings.HasPrefix(team.ID, "team_"), team.ID)
		assert.Equal(t, "supervisor_"+team.ID, team.SupervisorID)
		for _, w := range team.Workers {
			assert.True(t, strings.HasPrefix(w.ID, "worker_"), w.ID)
		}
	}
}

func TestBuildProducesUniqueIDs(t *testing.T) {
	topo, err := Build(twoTeamConfig(), "run-1")
	require.NoError(t, err)

	seen := map[string]bool{topo.GlobalSupervisorID: true}
	for _, team := range topo.Teams {
		for _, id := range []string{team.ID, team.SupervisorID} {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
		for _, w := range team.Workers {
			assert.False(t, seen[w.ID], "duplicate id %s", w.ID)
			seen[w.ID] = true
		}
	}
}

func TestBuildHonorsExplicitIDs(t *testing.T) {
	cfg := twoTeamConfig()
	cfg.Teams[0].ID = "team_custom"
	cfg.Teams[0].Workers[0].ID = "worker_custom"

	topo, err := Build(cfg, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "team_custom", topo.Teams[0].ID)
	assert.Equal(t, "supervisor_team_custom", topo.Teams[0].SupervisorID)
	assert.Equal(t, "worker_custom", topo.Teams[0].Workers[0].ID)
}

func TestBuildSameWorkerNameInDifferentTeams(t *testing.T) {
	cfg := twoTeamConfig()
	cfg.Teams[1].Workers[0].Name = "analyst"

	topo, err := Build(cfg, "run-1")
	require.NoError(t, err)
	assert.NotEqual(t, topo.Teams[0].Workers[0].ID, topo.Teams[1].Workers[0].ID)
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := twoTeamConfig()
	cfg.Teams = nil

	_, err := Build(cfg, "run-1")
	require.Error(t, err)

	ve, ok := config.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "At least one team is required", ve.Reason)
}

func TestTeamLookups(t *testing.T) {
	topo, err := Build(twoTeamConfig(), "run-1")
	require.NoError(t, err)

	team := topo.TeamByID(topo.Teams[1].ID)
	require.NotNil(t, team)
	assert.Equal(t, "writing", team.Name)
	assert.Nil(t, topo.TeamByID("team_missing"))

	w := team.WorkerByName("drafter")
	require.NotNil(t, w)
	assert.Equal(t, team.Workers[0].ID, w.ID)
	assert.Nil(t, team.WorkerByName("nobody"))
}
