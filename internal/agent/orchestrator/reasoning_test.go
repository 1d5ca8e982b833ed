package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockchat-core-poc/server/internal/agent/model"
	errx "github.com/stockchat-core-poc/server/internal/core/error"
)

func TestStep_FinalAnswer(t *testing.T) {
	m := &scriptedModel{outputs: []*schema.Message{
		schema.AssistantMessage("AAPL closed at 230.", nil),
	}}
	rs := NewReasoningStep(m, "test-model")

	outcome, err := rs.Step(context.Background(), newState("How did AAPL close?"))
	require.NoError(t, err)

	final, ok := outcome.(model.FinalAnswer)
	require.True(t, ok, "expected FinalAnswer, got %T", outcome)
	assert.Equal(t, "AAPL closed at 230.", final.Text)
}

func TestStep_ToolCallBatch(t *testing.T) {
	m := &scriptedModel{outputs: []*schema.Message{
		schema.AssistantMessage("", []schema.ToolCall{
			{ID: "call_x", Type: "function", Function: schema.FunctionCall{Name: "company_data", Arguments: `{"symbol":"AAPL"}`}},
			{ID: "call_y", Type: "function", Function: schema.FunctionCall{Name: "get_market_data", Arguments: `{}`}},
		}),
	}}
	rs := NewReasoningStep(m, "test-model")

	outcome, err := rs.Step(context.Background(), newState("Full picture on AAPL please"))
	require.NoError(t, err)

	batch, ok := outcome.(model.ToolCallBatch)
	require.True(t, ok, "expected ToolCallBatch, got %T", outcome)
	require.Len(t, batch.Calls, 2)
	assert.Equal(t, "call_x", batch.Calls[0].ID)
	assert.Equal(t, "company_data", batch.Calls[0].Name)
	assert.Equal(t, `{"symbol":"AAPL"}`, batch.Calls[0].Arguments)
	assert.Equal(t, "get_market_data", batch.Calls[1].Name)
}

func TestStep_SynthesizesMissingToolCallIDs(t *testing.T) {
	m := &scriptedModel{outputs: []*schema.Message{
		schema.AssistantMessage("", []schema.ToolCall{
			{Function: schema.FunctionCall{Name: "company_data", Arguments: `{}`}},
			{Function: schema.FunctionCall{Name: "get_market_data", Arguments: `{}`}},
		}),
	}}
	rs := NewReasoningStep(m, "test-model")
	state := newState("query")

	outcome, err := rs.Step(context.Background(), state)
	require.NoError(t, err)

	batch := outcome.(model.ToolCallBatch)
	require.Len(t, batch.Calls, 2)
	assert.Equal(t, "call_1", batch.Calls[0].ID)
	assert.Equal(t, "call_2", batch.Calls[1].ID)
	assert.Equal(t, 2, state.ToolCallIDSeq)
}

func TestStep_ModelErrorIsWrapped(t *testing.T) {
	rs := NewReasoningStep(&scriptedModel{err: errors.New("rate limited")}, "test-model")

	_, err := rs.Step(context.Background(), newState("query"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrReasoningStep))
}

func TestBuildMessages_IncludesToolTranscript(t *testing.T) {
	rs := NewReasoningStep(&scriptedModel{}, "test-model")

	state := newState("What now?",
		schema.UserMessage("earlier question"),
		schema.AssistantMessage("earlier answer", nil),
	)
	state.IntermediateSteps = []model.Step{
		{
			Call:        model.ToolCallRequest{ID: "call_1", Name: "company_data", Arguments: `{"symbol":"AAPL"}`},
			Observation: `{"price":230}`,
		},
	}

	msgs, err := rs.buildMessages(context.Background(), state)
	require.NoError(t, err)

	// system + 2 history + user + (assistant tool call + tool result)
	require.Len(t, msgs, 6)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "earlier question", msgs[1].Content)
	assert.Equal(t, "What now?", msgs[3].Content)

	assert.Equal(t, schema.Assistant, msgs[4].Role)
	require.Len(t, msgs[4].ToolCalls, 1)
	assert.Equal(t, "call_1", msgs[4].ToolCalls[0].ID)

	assert.Equal(t, schema.Tool, msgs[5].Role)
	assert.Equal(t, `{"price":230}`, msgs[5].Content)
	assert.Equal(t, "call_1", msgs[5].ToolCallID)
}
