package model

import (
	"sync"
	"time"
)

// ToolUsageLogEntry records one tool invocation for audit and inspection.
// The orchestration state machine never reads this log.
type ToolUsageLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Tool      string    `json:"tool"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
}

// ToolUsageLog is a process-lifetime, append-only list of tool invocations,
// ordered by completion time. It is owned by the orchestrator and injected
// into the dispatcher; appends from concurrent batch members are serialized
// by the mutex.
type ToolUsageLog struct {
	mu      sync.Mutex
	entries []ToolUsageLogEntry
}

func NewToolUsageLog() *ToolUsageLog {
	return &ToolUsageLog{}
}

// Append records one completed invocation. A zero timestamp is filled with
// the current time.
func (l *ToolUsageLog) Append(e ToolUsageLogEntry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

// Entries returns a copy of the log in completion order.
func (l *ToolUsageLog) Entries() []ToolUsageLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ToolUsageLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded invocations.
func (l *ToolUsageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
