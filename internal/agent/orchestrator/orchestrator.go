package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/stockchat-core-poc/server/internal/agent/model"
	"github.com/stockchat-core-poc/server/internal/agent/tools"
	errx "github.com/stockchat-core-poc/server/internal/core/error"
	logx "github.com/stockchat-core-poc/server/pkg/logger"
)

var errUnexpectedOutcome = errors.New("unexpected run outcome")

// runState is the explicit control state of one orchestration run.
type runState int

const (
	stateClassify runState = iota
	stateGeneral
	stateAgent
	stateAction
	stateDone
)

func (s runState) String() string {
	switch s {
	case stateClassify:
		return "CLASSIFY"
	case stateGeneral:
		return "GENERAL"
	case stateAgent:
		return "AGENT"
	case stateAction:
		return "ACTION"
	case stateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Orchestrator drives a query through the classify/reason/act loop and
// persists the completed turn.
type Orchestrator struct {
	router        *QueryRouter
	reasoner      *ReasoningStep
	dispatcher    *ToolDispatcher
	sessions      model.SessionRepository
	usageLog      *model.ToolUsageLog
	maxIterations int
}

// Config carries everything needed to assemble an Orchestrator.
type Config struct {
	Models          *ChatModels
	Tools           []tool.BaseTool
	Sessions        model.SessionRepository
	FailDomain      bool
	HistoryMaxTurns int
	MaxIterations   int
	ToolTimeout     time.Duration
}

// New binds the tool set to the response model and wires the run components.
func New(ctx context.Context, cfg Config) (*Orchestrator, error) {
	infos, err := tools.GetToolInfos(ctx, cfg.Tools)
	if err != nil {
		return nil, err
	}
	if err := cfg.Models.BindToolsToResponseModel(ctx, infos); err != nil {
		return nil, err
	}

	usageLog := model.NewToolUsageLog()
	dispatcher, err := NewToolDispatcher(ctx, cfg.Tools, usageLog, cfg.ToolTimeout)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		router: NewQueryRouter(
			cfg.Models.Classifier,
			cfg.Models.Response,
			cfg.Models.ClassifierModelName,
			cfg.Models.ResponseModelName,
			cfg.FailDomain,
			cfg.HistoryMaxTurns,
		),
		reasoner:      NewReasoningStep(cfg.Models.Response, cfg.Models.ResponseModelName),
		dispatcher:    dispatcher,
		sessions:      cfg.Sessions,
		usageLog:      usageLog,
		maxIterations: cfg.MaxIterations,
	}, nil
}

// Run executes one query to completion and returns the final answer text.
//
// The run walks a fixed set of states: CLASSIFY routes to GENERAL or AGENT,
// AGENT either finishes or requests tools, ACTION executes the batch and
// returns to AGENT. Every path ends in DONE, where the turn is persisted.
func (o *Orchestrator) Run(ctx context.Context, in model.QueryInput) (string, error) {
	var history []*schema.Message
	if loaded, err := o.sessions.LoadHistory(ctx, in.SessionID); err != nil {
		// A cold or unreachable store degrades to an empty history.
		logx.Warn().Err(err).Str("session_id", in.SessionID).Msg("Failed to load history, starting fresh")
	} else {
		history = loaded.Messages
	}

	state := model.NewConversationState(in, history)
	current := stateClassify
	agentSteps := 0

	for current != stateDone {
		logx.Debug().
			Str("session_id", state.SessionID).
			Str("state", current.String()).
			Msg("Orchestration step")

		switch current {
		case stateClassify:
			state.Classification = o.router.Classify(ctx, state)
			if state.Classification {
				current = stateAgent
			} else {
				current = stateGeneral
			}

		case stateGeneral:
			answer, err := o.router.GeneralResponse(ctx, state)
			if err != nil {
				return "", err
			}
			state.Outcome = model.FinalAnswer{Text: answer}
			current = stateDone

		case stateAgent:
			if agentSteps >= o.maxIterations {
				logx.Error().
					Str("session_id", state.SessionID).
					Int("iterations", agentSteps).
					Msg("Reasoning did not converge")
				return "", errx.NonConvergence(agentSteps)
			}
			agentSteps++

			outcome, err := o.reasoner.Step(ctx, state)
			if err != nil {
				return "", err
			}
			state.Outcome = outcome

			switch outcome.(type) {
			case model.ToolCallBatch:
				current = stateAction
			case model.FinalAnswer:
				current = stateDone
			default:
				return "", errx.WrapReasoning(errUnexpectedOutcome)
			}

		case stateAction:
			batch, ok := state.Outcome.(model.ToolCallBatch)
			if !ok {
				return "", errx.WrapReasoning(errUnexpectedOutcome)
			}
			steps := o.dispatcher.Execute(ctx, batch.Calls)
			state.IntermediateSteps = append(state.IntermediateSteps, steps...)
			state.Outcome = model.Pending{}
			current = stateAgent
		}
	}

	final, ok := state.Outcome.(model.FinalAnswer)
	if !ok {
		return "", errx.WrapReasoning(errUnexpectedOutcome)
	}

	if err := o.sessions.AppendTurn(ctx, state.SessionID, state.Input, final.Text); err != nil {
		logx.Error().Err(err).Str("session_id", state.SessionID).Msg("Failed to persist turn")
		return "", err
	}

	logx.Debug().
		Str("session_id", state.SessionID).
		Int("agent_steps", agentSteps).
		Int("tool_calls", len(state.IntermediateSteps)).
		Float64("total_cost_usd", state.TotalCostUSD).
		Msg("Run complete")

	return final.Text, nil
}

// History returns the stored conversation for a session.
func (o *Orchestrator) History(ctx context.Context, sessionID string) (*model.ConversationHistory, error) {
	return o.sessions.LoadHistory(ctx, sessionID)
}

// ClearSession drops the stored conversation for a session.
func (o *Orchestrator) ClearSession(ctx context.Context, sessionID string) error {
	return o.sessions.ClearHistory(ctx, sessionID)
}

// UsageLog exposes the tool usage audit log.
func (o *Orchestrator) UsageLog() *model.ToolUsageLog {
	return o.usageLog
}
