package repository

import (
	"context"

	"map-ai-relay/internal/domain/model"
)

// SessionRepository stores bounded conversation histories keyed by an opaque
// session id. Append must be atomic per key with respect to concurrent
// requests for the same session: last-writer-wins on truncation is fine, a
// lost appended turn is not. Every Append re-applies the history window.
type SessionRepository interface {
	// Get returns the session's turns in insertion order; empty (not an
	// error) when the session is unknown.
	Get(ctx context.Context, sessionID string) ([]model.Turn, error)

	// Append adds turns to the session, creating it on demand.
	Append(ctx context.Context, sessionID string, turns ...model.Turn) error

	// Clear drops the session's history. Clearing an unknown session is a no-op.
	Clear(ctx context.Context, sessionID string) error
}
