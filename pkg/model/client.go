// Package model defines the provider-agnostic contract for LLM invocation
// used by workers and supervisors. Implementations wrap provider SDKs
// (OpenAI, OpenRouter, Anthropic, Bedrock) and translate Request/Response to
// provider-specific formats. The orchestration core treats clients opaquely.
package model

import "context"

// Client is the capability consumed by workers and supervisors. Clients must
// be safe for concurrent use.
type Client interface {
	// Invoke sends a single prompt to the model and returns the generated
	// text. Blocks until the provider responds or ctx is done. Failures are
	// classified via ProviderError (transient vs permanent).
	Invoke(ctx context.Context, req Request) (*Response, error)

	// InvokeStructured asks the model to pick one of the given choices.
	// Returns an index into choices plus optional free-form reasoning, or an
	// error when the model's answer cannot be resolved to a choice.
	InvokeStructured(ctx context.Context, req StructuredRequest) (*Selection, error)
}

// Request captures the normalized parameters for a model invocation.
type Request struct {
	// System is the system prompt, empty for none.
	System string

	// Prompt is the user-facing task text.
	Prompt string

	// Temperature controls sampling (0.0–2.0). Zero means provider default.
	Temperature float64

	// MaxTokens caps completion tokens. Zero means provider default.
	MaxTokens int

	// StopSequences makes generation stop when any of these strings appear.
	StopSequences []string
}

// Response wraps the generated text and token accounting.
type Response struct {
	Text  string
	Usage TokenUsage
}

// TokenUsage records prompt/completion token counts when the provider
// reports them. All fields are zero otherwise.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// StructuredRequest asks the model to choose exactly one of Choices.
type StructuredRequest struct {
	System  string
	Prompt  string
	Choices []string

	Temperature float64
	MaxTokens   int
}

// Selection is the outcome of a structured invocation.
type Selection struct {
	// Index points into StructuredRequest.Choices.
	Index int

	// Reasoning is the model's explanation when provided, empty otherwise.
	Reasoning string

	Usage TokenUsage
}
