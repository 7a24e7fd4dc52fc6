package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefly/internal/core/ports/driven"
)

type mockInvoker struct {
	lastModel string
	lastBody  map[string]any
	response  string
	err       error
}

func (m *mockInvoker) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	m.lastModel = aws.ToString(in.ModelId)
	if err := json.Unmarshal(in.Body, &m.lastBody); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(m.response)}, nil
}

func TestNewLLMServiceWithClient_Defaults(t *testing.T) {
	svc := NewLLMServiceWithClient(&mockInvoker{}, "")
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestChat_RequestBody(t *testing.T) {
	mock := &mockInvoker{response: `{"content":[{"type":"text","text":"Fee is 1.5L."}],"stop_reason":"end_turn"}`}
	svc := NewLLMServiceWithClient(mock, "")

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "rules"},
		{Role: driven.RoleSystem, Content: "context"},
		{Role: driven.RoleUser, Content: "What is the fee?"},
	}, driven.ChatOptions{Temperature: 0, TopP: 0.9})
	require.NoError(t, err)
	assert.Equal(t, "Fee is 1.5L.", out)

	assert.Equal(t, DefaultModel, mock.lastModel)
	assert.Equal(t, "bedrock-2023-05-31", mock.lastBody["anthropic_version"])
	assert.Equal(t, float64(DefaultMaxTokens), mock.lastBody["max_tokens"])
	assert.Equal(t, "rules\n\ncontext", mock.lastBody["system"])
	assert.Equal(t, 0.9, mock.lastBody["top_p"])

	temp, ok := mock.lastBody["temperature"]
	require.True(t, ok, "temperature must be sent even when zero")
	assert.Equal(t, float64(0), temp)

	msgs := mock.lastBody["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestGenerate_StopWordsAndMaxTokens(t *testing.T) {
	mock := &mockInvoker{response: `{"content":[{"type":"text","text":"1. Q"}]}`}
	svc := NewLLMServiceWithClient(mock, "custom-model")

	_, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{MaxTokens: 50, StopWords: []string{"END"}})
	require.NoError(t, err)
	assert.Equal(t, "custom-model", mock.lastModel)
	assert.Equal(t, float64(50), mock.lastBody["max_tokens"])
	assert.Equal(t, []any{"END"}, mock.lastBody["stop_sequences"])
	assert.NotContains(t, mock.lastBody, "system")
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mock    *mockInvoker
		wantErr string
	}{
		{"invoke error", &mockInvoker{err: errors.New("AccessDeniedException")}, "invoke model"},
		{"bad json", &mockInvoker{response: `not json`}, "decode response"},
		{"empty content", &mockInvoker{response: `{"content":[]}`}, "no response content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewLLMServiceWithClient(tt.mock, "")
			_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleUser, Content: "hi"}}, driven.ChatOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPing(t *testing.T) {
	mock := &mockInvoker{response: `{"content":[{"type":"text","text":"p"}]}`}
	svc := NewLLMServiceWithClient(mock, "")
	require.NoError(t, svc.Ping(context.Background()))
	assert.Equal(t, float64(1), mock.lastBody["max_tokens"])

	mock.err = errors.New("no creds")
	assert.ErrorContains(t, svc.Ping(context.Background()), "ping failed")
}
