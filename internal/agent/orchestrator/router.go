package orchestrator

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/stockchat-core-poc/server/internal/agent/model"
	"github.com/stockchat-core-poc/server/internal/agent/prompts"
	logx "github.com/stockchat-core-poc/server/pkg/logger"
)

// QueryRouter decides whether a query belongs to the stock domain and, when
// it does not, produces the general answer directly.
type QueryRouter struct {
	classifier          einomodel.BaseChatModel
	general             einomodel.BaseChatModel
	classifierModelName string
	generalModelName    string
	failDomain          bool
	historyMaxTurns     int
}

// NewQueryRouter wires the classifier and general-response models.
func NewQueryRouter(
	classifier einomodel.BaseChatModel,
	general einomodel.BaseChatModel,
	classifierModelName string,
	generalModelName string,
	failDomain bool,
	historyMaxTurns int,
) *QueryRouter {
	return &QueryRouter{
		classifier:          classifier,
		general:             general,
		classifierModelName: classifierModelName,
		generalModelName:    generalModelName,
		failDomain:          failDomain,
		historyMaxTurns:     historyMaxTurns,
	}
}

// Classify returns true when the query should take the tool-calling path.
// A failed classifier call degrades to the configured fallback route rather
// than failing the run.
func (r *QueryRouter) Classify(ctx context.Context, state *model.ConversationState) bool {
	systemPrompt, err := prompts.RenderClassifierSystem(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Error rendering classifier prompt")
		return r.failDomain
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(fmt.Sprintf("Is the following question about stocks or financial markets?: %s", state.Input)),
	}

	out, err := r.classifier.Generate(ctx, messages)
	if err != nil {
		logx.Warn().Err(err).Str("session_id", state.SessionID).Msg("Classifier call failed, using fallback route")
		return r.failDomain
	}
	logUsageCost(state, out, r.classifierModelName, "classifier")

	isDomain := strings.Contains(strings.ToLower(out.Content), "true")
	logx.Debug().
		Str("session_id", state.SessionID).
		Bool("is_stock_related", isDomain).
		Msg("Query classified")
	return isDomain
}

// GeneralResponse answers a non-domain query using the conversation history
// for continuity.
func (r *QueryRouter) GeneralResponse(ctx context.Context, state *model.ConversationState) (string, error) {
	systemPrompt, err := prompts.RenderGeneralSystem(ctx)
	if err != nil {
		return "", fmt.Errorf("render general prompt: %w", err)
	}

	history := trimTail(state.ChatHistory, r.historyMaxTurns*2)
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	messages = append(messages, history...)
	messages = append(messages, schema.UserMessage(state.Input))

	out, err := r.general.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("general response: %w", err)
	}
	logUsageCost(state, out, r.generalModelName, "general")

	return out.Content, nil
}

// trimTail keeps at most max trailing messages.
func trimTail(msgs []*schema.Message, max int) []*schema.Message {
	if max <= 0 || len(msgs) <= max {
		return msgs
	}
	return msgs[len(msgs)-max:]
}
