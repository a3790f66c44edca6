// Package openai provides a model.Client backed by the OpenAI Chat
// Completions API via github.com/sashabaranov/go-openai. The same adapter
// serves OpenRouter, which speaks the OpenAI wire protocol behind a
// different base URL.
package openai

import (
	"context"
	"errors"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/catface996/opstack-executor-sub002/pkg/model"
)

// OpenRouterBaseURL is the OpenAI-compatible endpoint exposed by OpenRouter.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// ChatClient captures the subset of the go-openai client used by the adapter.
// Satisfied by *goopenai.Client and by test fakes.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request goopenai.ChatCompletionRequest) (
		goopenai.ChatCompletionResponse, error)
}

// Client implements model.Client via the OpenAI Chat Completions API.
type Client struct {
	chat     ChatClient
	model    string
	provider string
}

// New builds an adapter around an existing chat client.
func New(chat ChatClient, defaultModel string) (*Client, error) {
	if chat == nil {
		return nil, errors.New("openai chat client is required")
	}
	if defaultModel == "" {
		return nil, errors.New("default model is required")
	}
	return &Client{chat: chat, model: defaultModel, provider: "openai"}, nil
}

// NewFromAPIKey constructs a client using the default go-openai HTTP client.
func NewFromAPIKey(apiKey, defaultModel string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	return New(goopenai.NewClient(apiKey), defaultModel)
}

// NewOpenRouter constructs a client that talks to OpenRouter instead of
// api.openai.com.
func NewOpenRouter(apiKey, defaultModel string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = OpenRouterBaseURL
	c, err := New(goopenai.NewClientWithConfig(cfg), defaultModel)
	if err != nil {
		return nil, err
	}
	c.provider = "openrouter"
	return c, nil
}

// Invoke issues a single non-streaming chat completion.
func (c *Client) Invoke(ctx context.Context, req model.Request) (*model.Response, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	request := goopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Stop:     req.StopSequences,
	}
	if req.Temperature > 0 {
		request.Temperature = float32(req.Temperature)
	}
	if req.MaxTokens > 0 {
		request.MaxTokens = req.MaxTokens
	}

	resp, err := c.chat.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, c.wrapError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return nil, model.NewProviderError(c.provider, model.ErrorKindUnknown, "response has no choices", nil)
	}
	return &model.Response{
		Text: resp.Choices[0].Message.Content,
		Usage: model.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// InvokeStructured falls back to text selection; Chat Completions has no
// constrained single-choice decoding the orchestrator could rely on across
// OpenRouter's heterogeneous model pool.
func (c *Client) InvokeStructured(ctx context.Context, req model.StructuredRequest) (*model.Selection, error) {
	return model.SelectViaText(ctx, c, req)
}

func (c *Client) wrapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return model.WrapContextError(c.provider, ctx.Err())
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		pe := model.NewProviderError(c.provider, model.KindFromHTTPStatus(apiErr.HTTPStatusCode), apiErr.Message, err)
		pe.HTTPStatus = apiErr.HTTPStatusCode
		return pe
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		pe := model.NewProviderError(c.provider, model.KindFromHTTPStatus(reqErr.HTTPStatusCode), reqErr.Error(), err)
		pe.HTTPStatus = reqErr.HTTPStatusCode
		return pe
	}
	// Transport-level failures (dial, TLS, EOF) are retryable.
	return model.NewProviderError(c.provider, model.ErrorKindUnavailable, err.Error(), err)
}
