package config

import "fmt"

// Validate performs comprehensive validation of a hierarchy configuration
// including the task, stopping at the first error. Used by /execute and
// runs/start.
func (c *HierarchyConfig) Validate() error {
	if err := c.ValidateDefinition(); err != nil {
		return err
	}
	if c.Task == "" {
		return NewValidationError("task", "Task is required")
	}
	return nil
}

// ValidateDefinition validates everything except the task. Used when
// registering a reusable hierarchy, which carries no task of its own.
func (c *HierarchyConfig) ValidateDefinition() error {
	if len(c.Teams) == 0 {
		return NewValidationError("teams", "At least one team is required")
	}
	if c.ExecutionMode != "" && !c.ExecutionMode.IsValid() {
		return NewValidationError("execution_mode",
			fmt.Sprintf("Invalid execution mode %q: must be sequential or parallel", c.ExecutionMode))
	}
	if c.MaxTeamConcurrency < 0 {
		return NewValidationError("max_team_concurrency", "Must be zero or positive")
	}

	teamNames := make(map[string]struct{}, len(c.Teams))
	teamIDs := make(map[string]struct{}, len(c.Teams))
	for i, team := range c.Teams {
		if err := validateTeam(i, &team, teamNames, teamIDs); err != nil {
			return err
		}
	}
	return nil
}

func validateTeam(i int, team *TeamConfig, names, ids map[string]struct{}) error {
	if team.Name == "" {
		return NewValidationError(fieldf("teams[%d].name", i), "Team name is required")
	}
	if _, dup := names[team.Name]; dup {
		return NewValidationError(fieldf("teams[%d].name", i),
			fmt.Sprintf("Duplicate team name %q", team.Name))
	}
	names[team.Name] = struct{}{}

	if team.ID != "" {
		if _, dup := ids[team.ID]; dup {
			return NewValidationError(fieldf("teams[%d].id", i),
				fmt.Sprintf("Duplicate team id %q", team.ID))
		}
		ids[team.ID] = struct{}{}
	}

	if len(team.Workers) == 0 {
		return NewValidationError(fieldf("teams[%d].workers", i), "At least one worker is required")
	}
	if team.MaxIterations < 0 {
		return NewValidationError(fieldf("teams[%d].max_iterations", i), "Must be zero or positive")
	}

	workerNames := make(map[string]struct{}, len(team.Workers))
	workerIDs := make(map[string]struct{}, len(team.Workers))
	for j, worker := range team.Workers {
		if err := validateWorker(i, j, &worker, workerNames, workerIDs); err != nil {
			return err
		}
	}
	return nil
}

func validateWorker(i, j int, worker *WorkerConfig, names, ids map[string]struct{}) error {
	if worker.Name == "" {
		return NewValidationError(fieldf("teams[%d].workers[%d].name", i, j), "Worker name is required")
	}
	if _, dup := names[worker.Name]; dup {
		return NewValidationError(fieldf("teams[%d].workers[%d].name", i, j),
			fmt.Sprintf("Duplicate worker name %q", worker.Name))
	}
	names[worker.Name] = struct{}{}

	if worker.ID != "" {
		if _, dup := ids[worker.ID]; dup {
			return NewValidationError(fieldf("teams[%d].workers[%d].id", i, j),
				fmt.Sprintf("Duplicate worker id %q", worker.ID))
		}
		ids[worker.ID] = struct{}{}
	}

	if worker.Temperature != nil && (*worker.Temperature < 0 || *worker.Temperature > 2) {
		return NewValidationError(fieldf("teams[%d].workers[%d].temperature", i, j),
			"Temperature must be between 0 and 2")
	}
	if worker.MaxTokens != nil && *worker.MaxTokens <= 0 {
		return NewValidationError(fieldf("teams[%d].workers[%d].max_tokens", i, j),
			"max_tokens must be greater than 0")
	}
	return nil
}
