package repo

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/stockchat-core-poc/server/internal/agent/model"
)

// MemorySessionRepository keeps session histories in-process. It backs local
// runs without Redis and the test suite. Turn appends happen under one lock
// section, which gives the same never-half-a-turn guarantee as the Redis
// transaction.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string][]*schema.Message
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string][]*schema.Message)}
}

func (r *MemorySessionRepository) LoadHistory(ctx context.Context, sessionID string) (*model.ConversationHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.sessions[sessionID]
	msgs := make([]*schema.Message, len(stored))
	copy(msgs, stored)
	return &model.ConversationHistory{SessionID: sessionID, Messages: msgs}, nil
}

func (r *MemorySessionRepository) AppendTurn(ctx context.Context, sessionID, userText, assistantText string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = append(r.sessions[sessionID],
		schema.UserMessage(userText),
		schema.AssistantMessage(assistantText, nil),
	)
	return nil
}

func (r *MemorySessionRepository) ClearHistory(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = nil
	return nil
}

func (r *MemorySessionRepository) MessageCount(ctx context.Context, sessionID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions[sessionID]), nil
}

var _ model.SessionRepository = (*MemorySessionRepository)(nil)
