// Package anthropic provides a model.Client backed by the Anthropic Claude
// Messages API via github.com/anthropics/anthropic-sdk-go.
package anthropic

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/catface996/opstack-executor-sub002/pkg/model"
)

// Claude rejects requests without an explicit completion cap.
const defaultMaxTokens = 4096

// MessagesClient captures the subset of the Anthropic SDK used by the
// adapter. Satisfied by *sdk.MessageService and by test fakes.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Client implements model.Client on top of Anthropic Claude Messages.
type Client struct {
	msg   MessagesClient
	model string
}

// New builds an adapter around an existing messages client.
func New(msg MessagesClient, defaultModel string) (*Client, error) {
	if msg == nil {
		return nil, errors.New("anthropic messages client is required")
	}
	if defaultModel == "" {
		return nil, errors.New("default model is required")
	}
	return &Client{msg: msg, model: defaultModel}, nil
}

// NewFromAPIKey constructs a client using the default Anthropic HTTP client.
func NewFromAPIKey(apiKey, defaultModel string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	ac := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(&ac.Messages, defaultModel)
}

// Invoke issues a single non-streaming Messages.New request.
func (c *Client) Invoke(ctx context.Context, req model.Request) (*model.Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}
	if len(req.StopSequences) > 0 {
		params.StopSequences = req.StopSequences
	}

	msg, err := c.msg.New(ctx, params)
	if err != nil {
		return nil, wrapError(ctx, err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return &model.Response{
		Text: text,
		Usage: model.TokenUsage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

// InvokeStructured falls back to text selection.
func (c *Client) InvokeStructured(ctx context.Context, req model.StructuredRequest) (*model.Selection, error) {
	return model.SelectViaText(ctx, c, req)
}

func wrapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return model.WrapContextError("anthropic", ctx.Err())
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		pe := model.NewProviderError("anthropic", model.KindFromHTTPStatus(apiErr.StatusCode), apiErr.Error(), err)
		pe.HTTPStatus = apiErr.StatusCode
		return pe
	}
	return model.NewProviderError("anthropic", model.ErrorKindUnavailable, err.Error(), err)
}
