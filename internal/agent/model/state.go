package model

import (
	"github.com/cloudwego/eino/schema"
)

// QueryInput is the caller-facing input for one orchestration run.
type QueryInput struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// ToolCallRequest names a registered tool together with its raw JSON
// arguments as emitted by the reasoning model.
type ToolCallRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Step pairs a resolved tool call with the textual observation returned to
// the reasoning model on the next iteration.
type Step struct {
	Call        ToolCallRequest
	Observation string
}

// Outcome is the closed set of decisions a run can carry. Exactly one
// variant is active at a time; consumers must type-switch over all three.
//
// Legal transitions: Pending -> ToolCallBatch -> Pending -> ... -> FinalAnswer.
// A FinalAnswer is terminal for the run.
type Outcome interface {
	isOutcome()
}

// Pending means no decision has been made yet for the current iteration.
type Pending struct{}

// ToolCallBatch carries one or more tool calls requested by a reasoning
// step. Batch members are dispatched together and fail independently.
type ToolCallBatch struct {
	Calls []ToolCallRequest
}

// FinalAnswer carries the run's externally visible answer text.
type FinalAnswer struct {
	Text string
}

func (Pending) isOutcome()       {}
func (ToolCallBatch) isOutcome() {}
func (FinalAnswer) isOutcome()   {}

// ConversationState is the unit of work threaded through one orchestration
// run. ChatHistory is loaded at run start and never mutated during the run;
// the new turn replaces the stored snapshot only when the run completes.
// IntermediateSteps is append-only and resets with every run.
type ConversationState struct {
	SessionID         string
	Input             string
	ChatHistory       []*schema.Message
	Classification    bool
	Outcome           Outcome
	IntermediateSteps []Step

	// ToolCallIDSeq synthesizes tool_call ids when the provider omits them.
	ToolCallIDSeq int

	// TotalCostUSD accumulates LLM usage cost across model calls in this run.
	TotalCostUSD float64
}

// NewConversationState seeds the state for a fresh run.
func NewConversationState(in QueryInput, history []*schema.Message) *ConversationState {
	return &ConversationState{
		SessionID:   in.SessionID,
		Input:       in.Query,
		ChatHistory: history,
		Outcome:     Pending{},
	}
}
