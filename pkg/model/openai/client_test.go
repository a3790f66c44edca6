package openai

import (
	"context"
	"errors"
	"net/http"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catface996/opstack-executor-sub002/pkg/model"
)

type fakeChat struct {
	lastReq goopenai.ChatCompletionRequest
	resp    goopenai.ChatCompletionResponse
	err     error
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func textResponse(text string) goopenai.ChatCompletionResponse {
	return goopenai.ChatCompletionResponse{
		Choices: []goopenai.ChatCompletionChoice{
			{Message: goopenai.ChatCompletionMessage{Role: "assistant", Content: text}},
		},
		Usage: goopenai.Usage{PromptTokens: 12, CompletionTokens: 7, TotalTokens: 19},
	}
}

func TestInvokeEncodesSystemAndUserMessages(t *testing.T) {
	chat := &fakeChat{resp: textResponse("hello")}
	c, err := New(chat, "gpt-4o-mini")
	require.NoError(t, err)

	resp, err := c.Invoke(context.Background(), model.Request{
		System:      "you are terse",
		Prompt:      "say hello",
		Temperature: 0.7,
		MaxTokens:   64,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, 19, resp.Usage.TotalTokens)

	require.Len(t, chat.lastReq.Messages, 2)
	assert.Equal(t, goopenai.ChatMessageRoleSystem, chat.lastReq.Messages[0].Role)
	assert.Equal(t, "you are terse", chat.lastReq.Messages[0].Content)
	assert.Equal(t, goopenai.ChatMessageRoleUser, chat.lastReq.Messages[1].Role)
	assert.Equal(t, "gpt-4o-mini", chat.lastReq.Model)
	assert.InDelta(t, 0.7, chat.lastReq.Temperature, 0.001)
	assert.Equal(t, 64, chat.lastReq.MaxTokens)
}

func TestInvokeOmitsSystemMessageWhenEmpty(t *testing.T) {
	chat := &fakeChat{resp: textResponse("ok")}
	c, err := New(chat, "gpt-4o-mini")
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), model.Request{Prompt: "hi"})
	require.NoError(t, err)
	require.Len(t, chat.lastReq.Messages, 1)
	assert.Equal(t, goopenai.ChatMessageRoleUser, chat.lastReq.Messages[0].Role)
}

func TestInvokeMapsAPIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		kind      model.ErrorKind
		transient bool
	}{
		{"rate_limited", http.StatusTooManyRequests, model.ErrorKindRateLimited, true},
		{"server_error", http.StatusInternalServerError, model.ErrorKindUnavailable, true},
		{"auth", http.StatusUnauthorized, model.ErrorKindAuth, false},
		{"bad_request", http.StatusBadRequest, model.ErrorKindInvalidRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{err: &goopenai.APIError{HTTPStatusCode: tt.status, Message: "nope"}}
			c, err := New(chat, "gpt-4o-mini")
			require.NoError(t, err)

			_, err = c.Invoke(context.Background(), model.Request{Prompt: "hi"})
			require.Error(t, err)

			var pe *model.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.status, pe.HTTPStatus)
			assert.Equal(t, tt.transient, model.IsTransient(err))
		})
	}
}

func TestInvokeTreatsTransportErrorsAsTransient(t *testing.T) {
	chat := &fakeChat{err: errors.New("dial tcp: connection refused")}
	c, err := New(chat, "gpt-4o-mini")
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), model.Request{Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, model.IsTransient(err))
}

func TestNewOpenRouterSetsProviderName(t *testing.T) {
	c, err := NewOpenRouter("key", "anthropic/claude-3.5-sonnet")
	require.NoError(t, err)
	assert.Equal(t, "openrouter", c.provider)
}

func TestNewRejectsMissingArguments(t *testing.T) {
	_, err := New(nil, "m")
	assert.Error(t, err)

	_, err = New(&fakeChat{}, "")
	assert.Error(t, err)

	_, err = NewFromAPIKey("", "m")
	assert.Error(t, err)
}
