package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type SessionRepository interface {
	// LoadHistory retrieves the persisted history for a session. An unseen
	// session id yields an empty history, not an error.
	LoadHistory(ctx context.Context, sessionID string) (*ConversationHistory, error)

	// AppendTurn appends one (user, assistant) turn atomically: a concurrent
	// reader never observes the user message without the assistant message.
	AppendTurn(ctx context.Context, sessionID, userText, assistantText string) error

	// ClearHistory resets the session's history to empty. The id stays
	// usable; later loads return an empty history.
	ClearHistory(ctx context.Context, sessionID string) error

	// MessageCount returns the number of stored messages for the session.
	MessageCount(ctx context.Context, sessionID string) (int, error)
}

// ConversationHistory represents loaded session data.
type ConversationHistory struct {
	SessionID string
	Messages  []*schema.Message
}
