// Package agent implements the two node roles of the execution tree. A
// Supervisor routes work by asking its model which subordinate acts next; a
// Worker performs one leaf step, optionally looping over tool calls.
package agent

import (
	"context"
	"errors"
	"log/slog"

	"github.com/catface996/opstack-executor-sub002/pkg/model"
)

// selectionRetries is the number of numbered-menu retries after the free-form
// answer fails to resolve.
const selectionRetries = 2

var (
	// ErrEmptyCandidates is returned when a supervisor is asked to select
	// from nothing.
	ErrEmptyCandidates = errors.New("candidate list is empty")

	// ErrEmptyTask is returned when the routed task is blank.
	ErrEmptyTask = errors.New("task is empty")
)

// Candidate is one selectable subordinate.
type Candidate struct {
	Name         string
	Description  string
	Capabilities []string
	Tools        []string
}

// Selection is the outcome of a supervisor decision. Fallback is set when the
// model never named a candidate and the deterministic first-candidate
// fallback was used.
type Selection struct {
	Name           string
	Reasoning      string
	Fallback       bool
	FallbackReason string
}

// Supervisor routes tasks to subordinates using a model.
type Supervisor struct {
	client model.Client
	id     string
	prompt string
	logger *slog.Logger
}

// NewSupervisor creates a supervisor node. prompt is its system prompt.
func NewSupervisor(client model.Client, id, prompt string, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		client: client,
		id:     id,
		prompt: prompt,
		logger: logger.With("supervisor_id", id),
	}
}

// ID returns the supervisor's topology id.
func (s *Supervisor) ID() string { return s.id }

// SelectOne picks the next candidate by name. The model is asked free-form
// first; unresolvable answers are retried with a numbered menu, and if that
// also fails the first candidate is chosen deterministically with Fallback
// set.
func (s *Supervisor) SelectOne(ctx context.Context, task string, candidates []Candidate) (*Selection, error) {
	return s.selectWith(ctx, task, candidates, selectionPrompt(task, candidates))
}

// SelectOneStructured is SelectOne with the model instructed to answer in
// SELECTED/REASONING form, so the returned Selection carries reasoning.
func (s *Supervisor) SelectOneStructured(ctx context.Context, task string, candidates []Candidate) (*Selection, error) {
	return s.selectWith(ctx, task, candidates, structuredPrompt(task, candidates))
}

func (s *Supervisor) selectWith(ctx context.Context, task string, candidates []Candidate, prompt string) (*Selection, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidates
	}
	if task == "" {
		return nil, ErrEmptyTask
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}

	resp, err := s.client.Invoke(ctx, model.Request{
		System: s.prompt,
		Prompt: prompt,
	})
	if err != nil {
		return nil, err
	}

	if name, ok := MatchCandidate(resp.Text, names); ok {
		_, reasoning, _ := ParseSelected(resp.Text)
		return &Selection{Name: name, Reasoning: reasoning}, nil
	}

	s.logger.Warn("selection did not resolve, retrying with numbered menu",
		"response_preview", preview(resp.Text))

	for attempt := 1; attempt <= selectionRetries; attempt++ {
		sel, err := s.client.InvokeStructured(ctx, model.StructuredRequest{
			System:  s.prompt,
			Prompt:  retryPrompt(task),
			Choices: names,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			s.logger.Warn("menu retry failed", "attempt", attempt, "error", err)
			continue
		}
		return &Selection{Name: names[sel.Index], Reasoning: sel.Reasoning}, nil
	}

	s.logger.Warn("selection unresolved after retries, falling back to first candidate",
		"selected", names[0])
	return &Selection{
		Name:           names[0],
		Fallback:       true,
		FallbackReason: "model response did not resolve to a candidate after retries",
	}, nil
}

// Synthesize asks the supervisor's model to produce a final result from
// accumulated outputs.
func (s *Supervisor) Synthesize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.Invoke(ctx, model.Request{
		System: s.prompt,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func preview(text string) string {
	const max = 80
	if len(text) > max {
		return text[:max]
	}
	return text
}
