package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/catface996/opstack-executor-sub002/pkg/model"
	"github.com/catface996/opstack-executor-sub002/pkg/topology"
)

// toolDirective is the line prefix a worker's model uses to request a tool.
const toolDirective = "TOOL:"

// ToolExecutor runs a named tool with free-form input and returns its output.
type ToolExecutor interface {
	Execute(ctx context.Context, tool, input string) (string, error)
}

// StubToolExecutor is the default executor. Tool sandboxing is out of scope;
// it answers every request with an unavailability notice so tool-using
// prompts still converge.
type StubToolExecutor struct{}

func (StubToolExecutor) Execute(_ context.Context, tool, _ string) (string, error) {
	return fmt.Sprintf("tool %q is not available in this deployment", tool), nil
}

// Result is a worker's output for one task.
type Result struct {
	Text       string
	TokensUsed int
}

// Worker executes one leaf step with a model and optional tools. Stateless
// across invocations.
type Worker struct {
	client        model.Client
	node          topology.Worker
	maxIterations int
	executor      ToolExecutor
	logger        *slog.Logger
}

// NewWorker creates a worker for a topology node. maxIterations bounds the
// tool loop; workers without tools always make a single model call.
func NewWorker(client model.Client, node topology.Worker, maxIterations int, executor ToolExecutor, logger *slog.Logger) *Worker {
	if maxIterations < 1 {
		maxIterations = 1
	}
	if executor == nil {
		executor = StubToolExecutor{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		client:        client,
		node:          node,
		maxIterations: maxIterations,
		executor:      executor,
		logger:        logger.With("worker_id", node.ID, "worker_name", node.Name),
	}
}

// ID returns the worker's topology id.
func (w *Worker) ID() string { return w.node.ID }

// Name returns the worker's configured name.
func (w *Worker) Name() string { return w.node.Name }

// Execute produces output for the task. sharedContext carries prior outputs
// when context sharing is enabled; empty otherwise.
func (w *Worker) Execute(ctx context.Context, task, sharedContext string) (*Result, error) {
	req := model.Request{
		System: w.systemPrompt(),
		Prompt: w.buildPrompt(task, sharedContext),
	}
	if w.node.Temperature != nil {
		req.Temperature = *w.node.Temperature
	}
	if w.node.MaxTokens != nil {
		req.MaxTokens = *w.node.MaxTokens
	}

	var usage model.TokenUsage
	text := ""
	for iteration := 1; ; iteration++ {
		resp, err := w.client.Invoke(ctx, req)
		if err != nil {
			return nil, err
		}
		usage.Add(resp.Usage)
		text = resp.Text

		tool, input, ok := parseToolDirective(text)
		if !ok || len(w.node.Tools) == 0 {
			break
		}
		if iteration >= w.maxIterations {
			w.logger.Warn("tool loop hit iteration cap", "iterations", iteration)
			break
		}

		output, err := w.executor.Execute(ctx, tool, input)
		if err != nil {
			return nil, fmt.Errorf("execute tool %s: %w", tool, err)
		}
		w.logger.Debug("tool executed", "tool", tool)
		req.Prompt = fmt.Sprintf("%s\n\nTool %s returned:\n%s\n\nContinue with the task. Produce the final answer unless another tool call is required.",
			req.Prompt, tool, output)
	}

	return &Result{Text: text, TokensUsed: usage.TotalTokens}, nil
}

func (w *Worker) systemPrompt() string {
	if w.node.Role == "" {
		return w.node.SystemPrompt
	}
	return fmt.Sprintf("%s\n\nYour role: %s", w.node.SystemPrompt, w.node.Role)
}

func (w *Worker) buildPrompt(task, sharedContext string) string {
	var b strings.Builder
	if sharedContext != "" {
		fmt.Fprintf(&b, "Context from prior work:\n%s\n\n", sharedContext)
	}
	fmt.Fprintf(&b, "Task:\n%s", task)
	if len(w.node.Tools) > 0 {
		fmt.Fprintf(&b, "\n\nAvailable tools: %s\nTo use a tool, answer with a single line \"TOOL: <name> <input>\". Otherwise answer the task directly.",
			strings.Join(w.node.Tools, ", "))
	}
	return b.String()
}

// parseToolDirective detects a tool request of the form "TOOL: <name> <input>"
// on the first line of the response.
func parseToolDirective(text string) (tool, input string, ok bool) {
	first, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	if !strings.HasPrefix(first, toolDirective) {
		return "", "", false
	}
	rest := strings.TrimSpace(first[len(toolDirective):])
	if rest == "" {
		return "", "", false
	}
	tool, input, _ = strings.Cut(rest, " ")
	return tool, strings.TrimSpace(input), true
}
