package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"golang.org/x/sync/errgroup"

	"github.com/stockchat-core-poc/server/internal/agent/model"
	logx "github.com/stockchat-core-poc/server/pkg/logger"
)

// ToolDispatcher executes batches of tool calls. Calls in a batch run
// concurrently, fail independently, and come back in request order.
type ToolDispatcher struct {
	registry map[string]tool.InvokableTool
	usageLog *model.ToolUsageLog
	timeout  time.Duration
}

// NewToolDispatcher builds the name-indexed registry from the tool set.
func NewToolDispatcher(ctx context.Context, tools []tool.BaseTool, usageLog *model.ToolUsageLog, timeout time.Duration) (*ToolDispatcher, error) {
	registry := make(map[string]tool.InvokableTool, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("get tool info: %w", err)
		}
		invokable, ok := t.(tool.InvokableTool)
		if !ok {
			return nil, fmt.Errorf("tool %s is not invokable", info.Name)
		}
		registry[info.Name] = invokable
	}
	return &ToolDispatcher{registry: registry, usageLog: usageLog, timeout: timeout}, nil
}

// Execute runs every call in the batch and returns one Step per call, in the
// same order as the input. A failing call yields an error payload in its
// observation slot instead of aborting the batch.
func (d *ToolDispatcher) Execute(ctx context.Context, calls []model.ToolCallRequest) []model.Step {
	steps := make([]model.Step, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			observation := d.invoke(gctx, call)
			steps[i] = model.Step{Call: call, Observation: observation}
			d.usageLog.Append(model.ToolUsageLogEntry{
				Tool:   call.Name,
				Input:  call.Arguments,
				Output: observation,
			})
			return nil
		})
	}
	_ = g.Wait()

	return steps
}

func (d *ToolDispatcher) invoke(ctx context.Context, call model.ToolCallRequest) string {
	t, ok := d.registry[call.Name]
	if !ok {
		logx.Warn().Str("tool", call.Name).Msg("Model requested unregistered tool")
		return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", call.Name)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	logx.Debug().Str("tool", call.Name).Str("input", call.Arguments).Msg("Executing tool")
	out, err := t.InvokableRun(ctx, call.Arguments)
	if err != nil {
		logx.Error().Err(err).Str("tool", call.Name).Msg("Tool execution failed")
		return fmt.Sprintf("{\"error\":\"tool_failed\",\"name\":%q,\"detail\":%q}", call.Name, err.Error())
	}
	return out
}
