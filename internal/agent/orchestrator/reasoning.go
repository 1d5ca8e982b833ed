package orchestrator

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/stockchat-core-poc/server/internal/agent/model"
	"github.com/stockchat-core-poc/server/internal/agent/prompts"
	errx "github.com/stockchat-core-poc/server/internal/core/error"
	logx "github.com/stockchat-core-poc/server/pkg/logger"
)

// ReasoningStep runs one tool-calling model iteration: it rebuilds the full
// reasoning context from the state and maps the model output onto an Outcome.
type ReasoningStep struct {
	chatModel einomodel.BaseChatModel
	modelName string
}

func NewReasoningStep(chatModel einomodel.BaseChatModel, modelName string) *ReasoningStep {
	return &ReasoningStep{chatModel: chatModel, modelName: modelName}
}

// Step performs a single reasoning iteration. The returned Outcome is either
// a ToolCallBatch or a FinalAnswer; errors are wrapped as reasoning failures.
func (rs *ReasoningStep) Step(ctx context.Context, state *model.ConversationState) (model.Outcome, error) {
	messages, err := rs.buildMessages(ctx, state)
	if err != nil {
		return nil, errx.WrapReasoning(err)
	}

	out, err := rs.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, errx.WrapReasoning(err)
	}
	logUsageCost(state, out, rs.modelName, "agent")

	if len(out.ToolCalls) > 0 {
		calls := make([]model.ToolCallRequest, 0, len(out.ToolCalls))
		for _, tc := range out.ToolCalls {
			id := tc.ID
			// Some providers omit tool_call ids; synthesize stable ones.
			if strings.TrimSpace(id) == "" {
				state.ToolCallIDSeq++
				id = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
			}
			calls = append(calls, model.ToolCallRequest{
				ID:        id,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		logx.Debug().Str("session_id", state.SessionID).Int("tool_count", len(calls)).Msg("Calling tools")
		return model.ToolCallBatch{Calls: calls}, nil
	}

	logx.Debug().Str("session_id", state.SessionID).Msg("AI response ready")
	return model.FinalAnswer{Text: out.Content}, nil
}

// buildMessages assembles system prompt, prior conversation, the current
// query, and the tool call transcript accumulated so far in this run.
func (rs *ReasoningStep) buildMessages(ctx context.Context, state *model.ConversationState) ([]*schema.Message, error) {
	systemPrompt, err := prompts.RenderAgentSystem(ctx)
	if err != nil {
		return nil, fmt.Errorf("render agent prompt: %w", err)
	}

	messages := make([]*schema.Message, 0, len(state.ChatHistory)+2+len(state.IntermediateSteps)*2)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	messages = append(messages, state.ChatHistory...)
	messages = append(messages, schema.UserMessage(state.Input))

	for _, step := range state.IntermediateSteps {
		messages = append(messages, schema.AssistantMessage("", []schema.ToolCall{{
			ID:   step.Call.ID,
			Type: "function",
			Function: schema.FunctionCall{
				Name:      step.Call.Name,
				Arguments: step.Call.Arguments,
			},
		}}))
		messages = append(messages, schema.ToolMessage(step.Observation, step.Call.ID))
	}

	return messages, nil
}
