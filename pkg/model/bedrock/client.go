// Package bedrock provides a model.Client backed by the AWS Bedrock Converse
// API. Requests are encoded as a single user turn with an optional system
// block; responses concatenate the text content blocks of the output message.
package bedrock

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithy "github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/catface996/opstack-executor-sub002/pkg/model"
)

// RuntimeClient mirrors the subset of the Bedrock runtime client required by
// the adapter. Satisfied by *bedrockruntime.Client and by test fakes.
type RuntimeClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Client implements model.Client on top of AWS Bedrock Converse.
type Client struct {
	runtime RuntimeClient
	model   string
}

// New builds an adapter around an existing runtime client.
func New(runtime RuntimeClient, defaultModel string) (*Client, error) {
	if runtime == nil {
		return nil, errors.New("bedrock runtime client is required")
	}
	if defaultModel == "" {
		return nil, errors.New("default model is required")
	}
	return &Client{runtime: runtime, model: defaultModel}, nil
}

// NewFromAWSConfig constructs a client from the ambient AWS configuration
// (environment, shared config files, instance role).
func NewFromAWSConfig(ctx context.Context, defaultModel string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, model.NewProviderError("aws_bedrock", model.ErrorKindAuth, "load aws config: "+err.Error(), err)
	}
	return New(bedrockruntime.NewFromConfig(cfg), defaultModel)
}

// Invoke issues a single Converse request.
func (c *Client) Invoke(ctx context.Context, req model.Request) (*model.Response, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.model),
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: req.Prompt},
				},
			},
		},
	}
	if req.System != "" {
		input.System = []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: req.System},
		}
	}
	if cfg := inferenceConfig(req); cfg != nil {
		input.InferenceConfig = cfg
	}

	output, err := c.runtime.Converse(ctx, input)
	if err != nil {
		return nil, wrapError(ctx, err)
	}

	msg, ok := output.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return nil, model.NewProviderError("aws_bedrock", model.ErrorKindUnknown, "response has no message output", nil)
	}
	var text string
	for _, block := range msg.Value.Content {
		if tb, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text += tb.Value
		}
	}

	resp := &model.Response{Text: text}
	if output.Usage != nil {
		resp.Usage = model.TokenUsage{
			InputTokens:  int(aws.ToInt32(output.Usage.InputTokens)),
			OutputTokens: int(aws.ToInt32(output.Usage.OutputTokens)),
			TotalTokens:  int(aws.ToInt32(output.Usage.TotalTokens)),
		}
	}
	return resp, nil
}

// InvokeStructured falls back to text selection.
func (c *Client) InvokeStructured(ctx context.Context, req model.StructuredRequest) (*model.Selection, error) {
	return model.SelectViaText(ctx, c, req)
}

func inferenceConfig(req model.Request) *brtypes.InferenceConfiguration {
	cfg := &brtypes.InferenceConfiguration{}
	set := false
	if req.MaxTokens > 0 {
		cfg.MaxTokens = aws.Int32(int32(req.MaxTokens))
		set = true
	}
	if req.Temperature > 0 {
		cfg.Temperature = aws.Float32(float32(req.Temperature))
		set = true
	}
	if len(req.StopSequences) > 0 {
		cfg.StopSequences = req.StopSequences
		set = true
	}
	if !set {
		return nil
	}
	return cfg
}

func wrapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return model.WrapContextError("aws_bedrock", ctx.Err())
	}

	var status int
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	}

	kind := model.ErrorKindUnavailable
	message := err.Error()
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		message = apiErr.ErrorCode() + ": " + apiErr.ErrorMessage()
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException":
			kind = model.ErrorKindRateLimited
		case "ValidationException":
			kind = model.ErrorKindInvalidRequest
		case "AccessDeniedException", "UnrecognizedClientException":
			kind = model.ErrorKindAuth
		default:
			if status != 0 {
				kind = model.KindFromHTTPStatus(status)
			}
		}
	} else if status != 0 {
		kind = model.KindFromHTTPStatus(status)
	}
	if status == http.StatusTooManyRequests {
		kind = model.ErrorKindRateLimited
	}

	pe := model.NewProviderError("aws_bedrock", kind, message, err)
	pe.HTTPStatus = status
	return pe
}
