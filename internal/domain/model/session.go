package model

import (
	"time"
)

// HistoryWindow is the maximum number of turns kept per session
// (10 user/assistant exchanges). Oldest turns are dropped first.
const HistoryWindow = 20

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message within a session. Immutable once appended.
type Turn struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTurn(role, content string) Turn {
	return Turn{Role: role, Content: content, Timestamp: time.Now()}
}

// Session is a client-scoped conversation identified by an opaque token.
type Session struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Turns:     make([]Turn, 0, 8),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds turns and re-applies the history window.
func (s *Session) Append(turns ...Turn) {
	s.Turns = TrimTurns(append(s.Turns, turns...))
	s.UpdatedAt = time.Now()
}

func (s *Session) Recent(n int) []Turn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// TrimTurns enforces the history window, keeping the most recent turns in
// their original relative order. Every store backend funnels through this so
// the invariant cannot drift between them.
func TrimTurns(turns []Turn) []Turn {
	if len(turns) <= HistoryWindow {
		return turns
	}
	return turns[len(turns)-HistoryWindow:]
}
