package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *HierarchyConfig {
	return &HierarchyConfig{
		GlobalPrompt: "coordinate the teams",
		Task:         "investigate the outage",
		Teams: []TeamConfig{
			{
				Name:             "research",
				SupervisorPrompt: "route research work",
				Workers: []WorkerConfig{
					{Name: "analyst", Role: "analysis", SystemPrompt: "you analyze"},
					{Name: "summarizer", Role: "summaries", SystemPrompt: "you summarize"},
				},
			},
		},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsEmptyTeams(t *testing.T) {
	cfg := validConfig()
	cfg.Teams = nil

	err := cfg.Validate()
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "teams", ve.Field)
	assert.Equal(t, "At least one team is required", ve.Reason)
}

func TestValidateRejectsEmptyTask(t *testing.T) {
	cfg := validConfig()
	cfg.Task = ""

	err := cfg.Validate()
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "task", ve.Field)
}

func TestValidateDefinitionAllowsMissingTask(t *testing.T) {
	cfg := validConfig()
	cfg.Task = ""
	assert.NoError(t, cfg.ValidateDefinition())
}

func TestValidateRejectsTeamWithoutWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Teams[0].Workers = []WorkerConfig{}

	err := cfg.Validate()
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "teams[0].workers", ve.Field)
	assert.Equal(t, "At least one worker is required", ve.Reason)
}

func TestValidateRejectsInvalidExecutionMode(t *testing.T) {
	cfg := validConfig()
	cfg.ExecutionMode = "round-robin"

	err := cfg.Validate()
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "execution_mode", ve.Field)
}

func TestValidateRejectsTemperatureOutOfRange(t *testing.T) {
	for _, temp := range []float64{-0.1, 2.5} {
		cfg := validConfig()
		cfg.Teams[0].Workers[0].Temperature = &temp

		err := cfg.Validate()
		require.Error(t, err, "temperature %v should be rejected", temp)

		ve, ok := AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "teams[0].workers[0].temperature", ve.Field)
	}
}

func TestValidateAcceptsBoundaryTemperatures(t *testing.T) {
	for _, temp := range []float64{0, 2} {
		cfg := validConfig()
		cfg.Teams[0].Workers[0].Temperature = &temp
		assert.NoError(t, cfg.Validate(), "temperature %v should be accepted", temp)
	}
}

func TestValidateRejectsNonPositiveMaxTokens(t *testing.T) {
	zero := 0
	cfg := validConfig()
	cfg.Teams[0].Workers[1].MaxTokens = &zero

	err := cfg.Validate()
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "teams[0].workers[1].max_tokens", ve.Field)
}

func TestValidateRejectsDuplicateWorkerNames(t *testing.T) {
	cfg := validConfig()
	cfg.Teams[0].Workers[1].Name = cfg.Teams[0].Workers[0].Name

	err := cfg.Validate()
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "teams[0].workers[1].name", ve.Field)
}

func TestValidateRejectsDuplicateTeamNames(t *testing.T) {
	cfg := validConfig()
	cfg.Teams = append(cfg.Teams, cfg.Teams[0])

	err := cfg.Validate()
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "teams[1].name", ve.Field)
}

func TestValidateRejectsDuplicateExplicitIDs(t *testing.T) {
	cfg := validConfig()
	cfg.Teams[0].Workers[0].ID = "worker_a"
	cfg.Teams[0].Workers[1].ID = "worker_a"

	err := cfg.Validate()
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "teams[0].workers[1].id", ve.Field)
}

func TestExecutionModeIsValid(t *testing.T) {
	tests := []struct {
		name  string
		mode  ExecutionMode
		valid bool
	}{
		{"sequential", ExecutionModeSequential, true},
		{"parallel", ExecutionModeParallel, true},
		{"invalid", ExecutionMode("invalid"), false},
		{"empty", ExecutionMode(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.mode.IsValid())
		})
	}
}

func TestModeDefaultsToSequential(t *testing.T) {
	cfg := &HierarchyConfig{}
	assert.Equal(t, ExecutionModeSequential, cfg.Mode())

	cfg.ExecutionMode = ExecutionModeParallel
	assert.Equal(t, ExecutionModeParallel, cfg.Mode())
}
