// Package factory selects and constructs the configured model provider.
// Provider choice is data: MODEL_PROVIDER names one of the known adapters and
// MODEL_NAME the model identifier, credentials come from the provider's usual
// environment variables.
package factory

import (
	"context"
	"fmt"
	"os"

	"github.com/catface996/opstack-executor-sub002/pkg/model"
	"github.com/catface996/opstack-executor-sub002/pkg/model/anthropic"
	"github.com/catface996/opstack-executor-sub002/pkg/model/bedrock"
	"github.com/catface996/opstack-executor-sub002/pkg/model/openai"
)

// Provider identifiers accepted in MODEL_PROVIDER.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderBedrock    = "aws_bedrock"
)

// Settings captures the provider selection. Zero-value fields fall back to
// environment variables in FromEnv.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
}

// FromEnv builds the model client described by MODEL_PROVIDER and MODEL_NAME.
// API keys are read from OPENAI_API_KEY, OPENROUTER_API_KEY or
// ANTHROPIC_API_KEY; Bedrock uses the ambient AWS credential chain.
func FromEnv(ctx context.Context) (model.Client, error) {
	s := Settings{
		Provider: os.Getenv("MODEL_PROVIDER"),
		Model:    os.Getenv("MODEL_NAME"),
	}
	if s.Provider == "" {
		s.Provider = ProviderOpenAI
	}
	switch s.Provider {
	case ProviderOpenAI:
		s.APIKey = os.Getenv("OPENAI_API_KEY")
	case ProviderOpenRouter:
		s.APIKey = os.Getenv("OPENROUTER_API_KEY")
	case ProviderAnthropic:
		s.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	return New(ctx, s)
}

// New constructs the adapter named by s.Provider.
func New(ctx context.Context, s Settings) (model.Client, error) {
	if s.Model == "" {
		return nil, fmt.Errorf("MODEL_NAME is required for provider %q", s.Provider)
	}
	switch s.Provider {
	case ProviderOpenAI:
		return openai.NewFromAPIKey(s.APIKey, s.Model)
	case ProviderOpenRouter:
		return openai.NewOpenRouter(s.APIKey, s.Model)
	case ProviderAnthropic:
		return anthropic.NewFromAPIKey(s.APIKey, s.Model)
	case ProviderBedrock:
		return bedrock.NewFromAWSConfig(ctx, s.Model)
	default:
		return nil, fmt.Errorf("unknown model provider %q: must be one of openai, openrouter, anthropic, aws_bedrock", s.Provider)
	}
}
