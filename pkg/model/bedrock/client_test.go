package bedrock

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithy "github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catface996/opstack-executor-sub002/pkg/model"
)

type fakeRuntime struct {
	lastInput *bedrockruntime.ConverseInput
	output    *bedrockruntime.ConverseOutput
	err       error
}

func (f *fakeRuntime) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.lastInput = params
	return f.output, f.err
}

func textOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role: brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: text},
				},
			},
		},
		Usage: &brtypes.TokenUsage{
			InputTokens:  aws.Int32(30),
			OutputTokens: aws.Int32(11),
			TotalTokens:  aws.Int32(41),
		},
	}
}

func TestInvokeEncodesConverseInput(t *testing.T) {
	rt := &fakeRuntime{output: textOutput("found it")}
	c, err := New(rt, "anthropic.claude-sonnet-4-20250514-v1:0")
	require.NoError(t, err)

	resp, err := c.Invoke(context.Background(), model.Request{
		System:      "stay factual",
		Prompt:      "diagnose",
		Temperature: 0.5,
		MaxTokens:   512,
	})
	require.NoError(t, err)
	assert.Equal(t, "found it", resp.Text)
	assert.Equal(t, 41, resp.Usage.TotalTokens)

	require.NotNil(t, rt.lastInput)
	assert.Equal(t, "anthropic.claude-sonnet-4-20250514-v1:0", aws.ToString(rt.lastInput.ModelId))
	require.Len(t, rt.lastInput.System, 1)
	require.NotNil(t, rt.lastInput.InferenceConfig)
	assert.Equal(t, int32(512), aws.ToInt32(rt.lastInput.InferenceConfig.MaxTokens))
	assert.InDelta(t, 0.5, float64(aws.ToFloat32(rt.lastInput.InferenceConfig.Temperature)), 0.001)
}

func TestInvokeOmitsInferenceConfigWhenUnset(t *testing.T) {
	rt := &fakeRuntime{output: textOutput("ok")}
	c, err := New(rt, "model-id")
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), model.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Nil(t, rt.lastInput.InferenceConfig)
	assert.Nil(t, rt.lastInput.System)
}

func TestInvokeClassifiesThrottling(t *testing.T) {
	rt := &fakeRuntime{err: &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}}
	c, err := New(rt, "model-id")
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), model.Request{Prompt: "hi"})
	require.Error(t, err)

	var pe *model.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, model.ErrorKindRateLimited, pe.Kind)
	assert.True(t, model.IsTransient(err))
}

func TestInvokeClassifiesValidationErrors(t *testing.T) {
	rt := &fakeRuntime{err: &smithy.GenericAPIError{Code: "ValidationException", Message: "bad model id"}}
	c, err := New(rt, "model-id")
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), model.Request{Prompt: "hi"})
	require.Error(t, err)

	var pe *model.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, model.ErrorKindInvalidRequest, pe.Kind)
	assert.False(t, model.IsTransient(err))
}
