package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockchat-core-poc/server/internal/agent/model"
)

func slowTool(name, payload string, delay time.Duration) tool.BaseTool {
	return &fakeTool{name: name, payload: payload, delay: delay}
}

func failingTool(name string) tool.BaseTool {
	return &fakeTool{name: name, err: errors.New("upstream exploded")}
}

func TestDispatcher_PreservesRequestOrder(t *testing.T) {
	usageLog := model.NewToolUsageLog()
	d, err := NewToolDispatcher(context.Background(), []tool.BaseTool{
		slowTool("slow", `{"v":"slow"}`, 50*time.Millisecond),
		slowTool("fast", `{"v":"fast"}`, 0),
	}, usageLog, 0)
	require.NoError(t, err)

	calls := []model.ToolCallRequest{
		{ID: "c1", Name: "slow", Arguments: "{}"},
		{ID: "c2", Name: "fast", Arguments: "{}"},
	}

	steps := d.Execute(context.Background(), calls)
	require.Len(t, steps, 2)

	// The slower call finishes last but must keep its slot.
	assert.Equal(t, "c1", steps[0].Call.ID)
	assert.Equal(t, `{"v":"slow"}`, steps[0].Observation)
	assert.Equal(t, "c2", steps[1].Call.ID)
	assert.Equal(t, `{"v":"fast"}`, steps[1].Observation)

	assert.Equal(t, 2, usageLog.Len())
}

func TestDispatcher_CallsFailIndependently(t *testing.T) {
	usageLog := model.NewToolUsageLog()
	d, err := NewToolDispatcher(context.Background(), []tool.BaseTool{
		stubTool("ok", `{"fine":true}`),
		failingTool("broken"),
	}, usageLog, 0)
	require.NoError(t, err)

	calls := []model.ToolCallRequest{
		{ID: "c1", Name: "broken", Arguments: "{}"},
		{ID: "c2", Name: "ok", Arguments: "{}"},
	}

	steps := d.Execute(context.Background(), calls)
	require.Len(t, steps, 2)

	assert.Contains(t, steps[0].Observation, "tool_failed")
	assert.Contains(t, steps[0].Observation, "upstream exploded")
	assert.Equal(t, `{"fine":true}`, steps[1].Observation)

	// Failed calls are audited too.
	assert.Equal(t, 2, usageLog.Len())
}

func TestDispatcher_UnknownToolYieldsErrorPayload(t *testing.T) {
	usageLog := model.NewToolUsageLog()
	d, err := NewToolDispatcher(context.Background(), []tool.BaseTool{
		stubTool("known", `{}`),
	}, usageLog, 0)
	require.NoError(t, err)

	steps := d.Execute(context.Background(), []model.ToolCallRequest{
		{ID: "c1", Name: "made_up_tool", Arguments: "{}"},
	})

	require.Len(t, steps, 1)
	assert.Contains(t, steps[0].Observation, "unknown_tool")
	assert.Contains(t, steps[0].Observation, "made_up_tool")
}

func TestDispatcher_TimeoutCancelsSlowCall(t *testing.T) {
	usageLog := model.NewToolUsageLog()
	d, err := NewToolDispatcher(context.Background(), []tool.BaseTool{
		slowTool("glacial", `{}`, time.Second),
	}, usageLog, 10*time.Millisecond)
	require.NoError(t, err)

	steps := d.Execute(context.Background(), []model.ToolCallRequest{
		{ID: "c1", Name: "glacial", Arguments: "{}"},
	})

	require.Len(t, steps, 1)
	assert.Contains(t, steps[0].Observation, "tool_failed")
}

func TestDispatcher_EmptyBatch(t *testing.T) {
	usageLog := model.NewToolUsageLog()
	d, err := NewToolDispatcher(context.Background(), nil, usageLog, 0)
	require.NoError(t, err)

	steps := d.Execute(context.Background(), nil)
	assert.Empty(t, steps)
	assert.Zero(t, usageLog.Len())
}
